package main

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"machrent/internal/config"
	"machrent/internal/database"
	"machrent/internal/middleware"
	"machrent/internal/modules/availability"
	"machrent/internal/modules/catalog"
	"machrent/internal/modules/notification"
	"machrent/internal/modules/pricing"
	"machrent/internal/modules/rating"
	"machrent/internal/modules/reservation"
	"machrent/internal/pkg/lock"
	"machrent/internal/repository"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	resourceRepo := repository.NewResourceRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	// One serialization domain per resource id, shared by reservation
	// creation and rating updates.
	resourceLocks := lock.NewKeyed()

	notifs := notification.NewLogSender(log)
	availabilitySvc := availability.NewService(reservationRepo, resourceRepo)
	pricer := pricing.NewCalculator()
	ratingSvc := rating.NewService(resourceRepo, resourceLocks)
	reservationSvc := reservation.NewService(
		reservationRepo,
		resourceRepo,
		availabilitySvc,
		pricer,
		ratingSvc,
		notifs,
		resourceLocks,
	)
	catalogSvc := catalog.NewService(resourceRepo)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ActorContext())
	r.Use(middleware.RequestLogger(log))

	v1 := r.Group("/api/v1")
	{
		catalog.NewHandler(catalogSvc).RegisterRoutes(v1)
		availability.NewHandler(availabilitySvc).RegisterRoutes(v1)
		reservation.NewHandler(reservationSvc).RegisterRoutes(v1)
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

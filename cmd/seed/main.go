package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"machrent/internal/config"
	"machrent/internal/database"
	"machrent/internal/domain"
	"machrent/internal/repository"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	log.Info().Msg("running migrations")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("cleaning old data")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM blackout_ranges")
	db.Exec("DELETE FROM resources")

	ctx := context.Background()
	resources := repository.NewResourceRepository(db)

	hectareRate := decimal.NewFromInt(350)
	tonRate := decimal.NewFromInt(45)

	demo := []*domain.Resource{
		{
			OwnerID:      1,
			Title:        "Compact excavator 3.5t",
			Description:  "Urban earthworks, operator included",
			PricePerDay:  decimal.NewFromInt(100),
			PricePerHour: decimal.NewFromInt(10),
		},
		{
			OwnerID:     1,
			Title:       "Combine harvester",
			Description: "Grain harvesting, priced per hectare",
			PricePerDay: decimal.NewFromInt(900),
			Tariff: &domain.TariffProfile{
				HectareRate: &hectareRate,
				TonRate:     &tonRate,
			},
		},
		{
			OwnerID:     2,
			Title:       "Grain truck 18t",
			Description: "Bulk transport, tiered distance tariff",
			PricePerDay: decimal.NewFromInt(250),
			Tariff: &domain.TariffProfile{
				KmBrackets: []domain.KmBracket{
					{MinKm: 0, MaxKm: 50, RatePerKm: decimal.NewFromInt(5)},
					{MinKm: 51, MaxKm: 200, RatePerKm: decimal.NewFromInt(3)},
				},
			},
		},
	}

	for _, res := range demo {
		if err := resources.Create(ctx, res); err != nil {
			log.Fatal().Err(err).Str("title", res.Title).Msg("seed resource failed")
		}
		log.Info().Int64("id", res.ID).Str("title", res.Title).Msg("seeded resource")
	}

	maintenance := &domain.BlackoutRange{
		ResourceID: demo[0].ID,
		Start:      time.Now().AddDate(0, 1, 0),
		End:        time.Now().AddDate(0, 1, 3),
		Kind:       domain.BlackoutMaintenance,
	}
	if err := resources.AddBlackout(ctx, maintenance); err != nil {
		log.Fatal().Err(err).Msg("seed blackout failed")
	}

	log.Info().Msg("seed complete")
}

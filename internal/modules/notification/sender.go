package notification

import (
	"context"

	"machrent/internal/domain"

	"github.com/rs/zerolog"
)

// Event type constants
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"
	TypeReviewPosted         = "review.posted"
)

// LogSender is the default notification backend: it emits a structured
// event from a goroutine and forgets about it. Delivery is best-effort
// and never feeds back into the reservation result; a real transport
// (email, push) can replace it behind the reservation module's
// NotificationSender interface.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "notifications").Logger()}
}

func (s *LogSender) ReservationCreated(ctx context.Context, ownerID int64, r *domain.Reservation) {
	go s.log.Info().
		Str("event", TypeReservationCreated).
		Int64("owner_id", ownerID).
		Int64("reservation_id", r.ID).
		Int64("resource_id", r.ResourceID).
		Time("start", r.StartTime).
		Msg("notify")
}

func (s *LogSender) ReservationCancelled(ctx context.Context, renterID int64, r *domain.Reservation, reason string) {
	go s.log.Info().
		Str("event", TypeReservationCancelled).
		Int64("renter_id", renterID).
		Int64("reservation_id", r.ID).
		Str("reason", reason).
		Msg("notify")
}

func (s *LogSender) ReviewPosted(ctx context.Context, ownerID int64, r *domain.Reservation, rating int) {
	go s.log.Info().
		Str("event", TypeReviewPosted).
		Int64("owner_id", ownerID).
		Int64("reservation_id", r.ID).
		Int("rating", rating).
		Msg("notify")
}

package availability

import (
	"context"
	"time"

	"machrent/internal/domain"
)

// ReservationReader is the slice of the reservation store the checker
// needs. It never writes.
type ReservationReader interface {
	CountOverlapping(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (int64, error)
	BlockingWindows(ctx context.Context, resourceID int64) ([]domain.Reservation, error)
}

type BlackoutReader interface {
	Blackouts(ctx context.Context, resourceID int64) ([]domain.BlackoutRange, error)
}

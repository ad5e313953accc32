package reservation

import (
	"context"
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	ListByRenter(ctx context.Context, renterID int64, from, to *time.Time) ([]domain.Reservation, error)
	ListByResource(ctx context.Context, resourceID int64, from, to *time.Time) ([]domain.Reservation, error)
}

type ResourceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (bool, error)
}

type Pricer interface {
	Compute(res *domain.Resource, st domain.ServiceType, start, end time.Time, q *domain.QuantityInputs) (decimal.Decimal, error)
}

type Rater interface {
	Apply(ctx context.Context, resourceID int64, rating int) (avg float64, count int, err error)
}

// NotificationSender delivers side-channel events. Failures are the
// sender's problem; they never affect the reservation outcome.
type NotificationSender interface {
	ReservationCreated(ctx context.Context, ownerID int64, r *domain.Reservation)
	ReservationCancelled(ctx context.Context, renterID int64, r *domain.Reservation, reason string)
	ReviewPosted(ctx context.Context, ownerID int64, r *domain.Reservation, rating int)
}

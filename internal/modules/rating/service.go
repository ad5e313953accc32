package rating

import (
	"context"
	"errors"

	"machrent/internal/domain"
	"machrent/internal/pkg/lock"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type ResourceStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	UpdateRating(ctx context.Context, id int64, avg float64, count int) error
}

// Service folds individual review ratings into a resource's running
// average. The incremental formula reproduces exactly what recomputing
// the mean over the full history would give, as long as ratings are
// never removed or edited.
type Service struct {
	resources ResourceStore
	locks     *lock.Keyed
}

func NewService(resources ResourceStore, locks *lock.Keyed) *Service {
	return &Service{resources: resources, locks: locks}
}

// Apply folds one rating into the resource aggregate. The
// read-modify-write runs inside the per-resource critical section so
// concurrent reviews never lose updates.
func (s *Service) Apply(ctx context.Context, resourceID int64, ratingValue int) (avg float64, count int, err error) {
	if ratingValue < 1 || ratingValue > 5 {
		return 0, 0, ErrInvalidRating
	}

	unlock := s.locks.Lock(resourceID)
	defer unlock()

	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return 0, 0, err
	}

	total := res.RatingAvg*float64(res.RatingCount) + float64(ratingValue)
	count = res.RatingCount + 1
	avg = total / float64(count)

	if err := s.resources.UpdateRating(ctx, resourceID, avg, count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

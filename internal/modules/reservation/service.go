package reservation

import (
	"context"
	"errors"
	"time"

	"machrent/internal/domain"
	"machrent/internal/pkg/lock"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Service owns the reservation state machine and orchestrates the
// availability check and the price computation at creation time.
type Service struct {
	reservations ReservationRepository
	resources    ResourceReader
	checker      AvailabilityChecker
	pricer       Pricer
	rater        Rater
	notifs       NotificationSender

	// Per-resource serialization point for creation: the availability
	// check and the insert commit as one critical section, so two
	// concurrent requests for the same resource cannot both pass the
	// check. Shared with the rating service.
	resourceLocks *lock.Keyed

	// Separate key space: serializes review attachment per reservation
	// so a review lands at most once.
	reviewLocks *lock.Keyed
}

func NewService(
	reservations ReservationRepository,
	resources ResourceReader,
	checker AvailabilityChecker,
	pricer Pricer,
	rater Rater,
	notifs NotificationSender,
	resourceLocks *lock.Keyed,
) *Service {
	return &Service{
		reservations:  reservations,
		resources:     resources,
		checker:       checker,
		pricer:        pricer,
		rater:         rater,
		notifs:        notifs,
		resourceLocks: resourceLocks,
		reviewLocks:   lock.NewKeyed(),
	}
}

func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrValidation
	}
	if req.StartTime.Before(time.Now()) {
		return nil, ErrValidation
	}
	st, err := domain.ParseServiceType(req.ServiceType)
	if err != nil {
		return nil, ErrValidation
	}

	res, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	var quantities *domain.QuantityInputs
	if req.Hectares != nil || req.Tons != nil || req.Km != nil {
		quantities = &domain.QuantityInputs{Hectares: req.Hectares, Tons: req.Tons, Km: req.Km}
	}

	unlock := s.resourceLocks.Lock(req.ResourceID)
	defer unlock()

	ok, err := s.checker.IsAvailable(ctx, req.ResourceID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	total, err := s.pricer.Compute(res, st, req.StartTime, req.EndTime, quantities)
	if err != nil {
		return nil, ErrValidation
	}

	r := &domain.Reservation{
		ResourceID:  req.ResourceID,
		RenterID:    req.RenterID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ServiceType: st,
		Quantities:  quantities,
		TotalPrice:  total,
		Status:      domain.ReservationConfirmed,
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		if isOverlapViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.notifs != nil {
		s.notifs.ReservationCreated(ctx, res.OwnerID, r)
	}
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) ListByRenter(ctx context.Context, renterID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return s.reservations.ListByRenter(ctx, renterID, from, to)
}

func (s *Service) ListByResource(ctx context.Context, resourceID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return s.reservations.ListByResource(ctx, resourceID, from, to)
}

// CheckIn records the hand-over evidence and moves the reservation to
// in_progress. Only a confirmed reservation can be checked in.
func (s *Service) CheckIn(ctx context.Context, id int64, photos []string) (*domain.Reservation, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationConfirmed {
		return nil, ErrInvalidTransition
	}

	r.CheckIn = &domain.CheckRecord{At: time.Now().UTC(), PhotoURLs: photos}
	r.Status = domain.ReservationInProgress
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckOut closes an in-progress rental.
func (s *Service) CheckOut(ctx context.Context, id int64, photos []string) (*domain.Reservation, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationInProgress {
		return nil, ErrInvalidTransition
	}

	r.CheckOut = &domain.CheckRecord{At: time.Now().UTC(), PhotoURLs: photos}
	r.Status = domain.ReservationCompleted
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel is allowed from pending or confirmed only. Completed and
// cancelled are terminal.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*domain.Reservation, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationPending && r.Status != domain.ReservationConfirmed {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	r.Status = domain.ReservationCancelled
	r.CancelledAt = &now
	r.CancellationReason = reason
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		s.notifs.ReservationCancelled(ctx, r.RenterID, r, reason)
	}
	return r, nil
}

// AddReview attaches a one-time review and folds its rating into the
// resource aggregate. Reviews are accepted in any status, not just
// completed, so renters can leave early feedback.
func (s *Service) AddReview(ctx context.Context, id int64, ratingValue int, comment string) (*domain.Reservation, error) {
	if ratingValue < 1 || ratingValue > 5 {
		return nil, ErrValidation
	}

	unlock := s.reviewLocks.Lock(id)
	defer unlock()

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Review != nil {
		return nil, ErrReviewExists
	}

	r.Review = &domain.Review{Rating: ratingValue, Comment: comment}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	if _, _, err := s.rater.Apply(ctx, r.ResourceID, ratingValue); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if res, err := s.resources.GetByID(ctx, r.ResourceID); err == nil {
			s.notifs.ReviewPosted(ctx, res.OwnerID, r, ratingValue)
		}
	}
	return r, nil
}

// isOverlapViolation recognizes the postgres no-overlap exclusion
// constraint (and any unique fallback) firing on insert. The keyed
// mutex already prevents this in a single process; the constraint
// covers multi-instance deployments.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" || pgErr.Code == "23505"
	}
	return false
}

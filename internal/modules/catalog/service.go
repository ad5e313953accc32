package catalog

import (
	"context"
	"errors"

	"machrent/internal/domain"

	"gorm.io/gorm"
)

// ResourceRepository is the write side of the catalog. Rating fields
// are not reachable through it; they belong to the rating module.
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	List(ctx context.Context, limit, offset int) ([]domain.Resource, error)
	Update(ctx context.Context, res *domain.Resource) error
	AddBlackout(ctx context.Context, b *domain.BlackoutRange) error
	RemoveBlackout(ctx context.Context, resourceID, blackoutID int64) error
}

type Service struct {
	resources ResourceRepository
}

func NewService(resources ResourceRepository) *Service {
	return &Service{resources: resources}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreateResourceRequest) (*domain.Resource, error) {
	if ownerID <= 0 || req.Title == "" {
		return nil, ErrValidation
	}
	if req.PricePerDay.IsNegative() || req.PricePerHour.IsNegative() {
		return nil, ErrValidation
	}
	if err := validateTariff(req.Tariff); err != nil {
		return nil, err
	}

	res := &domain.Resource{
		OwnerID:      ownerID,
		Title:        req.Title,
		Description:  req.Description,
		PricePerDay:  req.PricePerDay,
		PricePerHour: req.PricePerHour,
		Tariff:       req.Tariff,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Resource, error) {
	return s.resources.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id, actorID int64, req UpdateResourceRequest) (*domain.Resource, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != actorID {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrValidation
		}
		res.Title = *req.Title
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.PricePerDay != nil {
		if req.PricePerDay.IsNegative() {
			return nil, ErrValidation
		}
		res.PricePerDay = *req.PricePerDay
	}
	if req.PricePerHour != nil {
		if req.PricePerHour.IsNegative() {
			return nil, ErrValidation
		}
		res.PricePerHour = *req.PricePerHour
	}
	if req.Tariff != nil {
		if err := validateTariff(req.Tariff); err != nil {
			return nil, err
		}
		res.Tariff = req.Tariff
	}

	if err := s.resources.Update(ctx, res); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) AddBlackout(ctx context.Context, resourceID, actorID int64, req AddBlackoutRequest) (*domain.BlackoutRange, error) {
	if !req.End.After(req.Start) {
		return nil, ErrValidation
	}
	kind := domain.BlackoutKind(req.Kind)
	if kind == "" {
		kind = domain.BlackoutBlocked
	}
	if kind != domain.BlackoutBlocked && kind != domain.BlackoutMaintenance {
		return nil, ErrValidation
	}

	res, err := s.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != actorID {
		return nil, ErrForbidden
	}

	b := &domain.BlackoutRange{
		ResourceID: resourceID,
		Start:      req.Start,
		End:        req.End,
		Kind:       kind,
	}
	if err := s.resources.AddBlackout(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) RemoveBlackout(ctx context.Context, resourceID, blackoutID, actorID int64) error {
	res, err := s.GetByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if res.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.resources.RemoveBlackout(ctx, resourceID, blackoutID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func validateTariff(t *domain.TariffProfile) error {
	if t == nil {
		return nil
	}
	if t.HectareRate != nil && t.HectareRate.IsNegative() {
		return ErrValidation
	}
	if t.TonRate != nil && t.TonRate.IsNegative() {
		return ErrValidation
	}
	if t.FlatKmRate != nil && t.FlatKmRate.IsNegative() {
		return ErrValidation
	}
	for _, b := range t.KmBrackets {
		if b.MinKm < 0 || b.MaxKm < b.MinKm || b.RatePerKm.IsNegative() {
			return ErrValidation
		}
	}
	return nil
}

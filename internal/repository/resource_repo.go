package repository

import (
	"context"
	"encoding/json"
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type resourceModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	OwnerID     int64  `gorm:"column:owner_id;index"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description;type:text"`

	PricePerDay  decimal.Decimal `gorm:"column:price_per_day;type:numeric"`
	PricePerHour decimal.Decimal `gorm:"column:price_per_hour;type:numeric"`
	Tariff       *string         `gorm:"column:tariff;type:text"`

	RatingAvg   float64 `gorm:"column:rating_avg"`
	RatingCount int     `gorm:"column:rating_count"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (resourceModel) TableName() string { return "resources" }

type blackoutModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	ResourceID int64     `gorm:"column:resource_id;index"`
	StartTime  time.Time `gorm:"column:start_time"`
	EndTime    time.Time `gorm:"column:end_time"`
	Kind       string    `gorm:"column:kind"`
}

func (blackoutModel) TableName() string { return "blackout_ranges" }

func toDomainResource(m resourceModel, blackouts []blackoutModel) *domain.Resource {
	res := &domain.Resource{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Description:  m.Description,
		PricePerDay:  m.PricePerDay,
		PricePerHour: m.PricePerHour,
		RatingAvg:    m.RatingAvg,
		RatingCount:  m.RatingCount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Tariff != nil {
		var t domain.TariffProfile
		if err := json.Unmarshal([]byte(*m.Tariff), &t); err == nil {
			res.Tariff = &t
		}
	}
	for _, b := range blackouts {
		res.Blackouts = append(res.Blackouts, domain.BlackoutRange{
			ID:         b.ID,
			ResourceID: b.ResourceID,
			Start:      b.StartTime,
			End:        b.EndTime,
			Kind:       domain.BlackoutKind(b.Kind),
		})
	}
	return res
}

func toResourceModel(res *domain.Resource) resourceModel {
	m := resourceModel{
		ID:           res.ID,
		OwnerID:      res.OwnerID,
		Title:        res.Title,
		Description:  res.Description,
		PricePerDay:  res.PricePerDay,
		PricePerHour: res.PricePerHour,
		RatingAvg:    res.RatingAvg,
		RatingCount:  res.RatingCount,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
	}
	if res.Tariff != nil {
		if raw, err := json.Marshal(res.Tariff); err == nil {
			s := string(raw)
			m.Tariff = &s
		}
	}
	return m
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	m := toResourceModel(res)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainResource(m, nil)
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	var m resourceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	var blackouts []blackoutModel
	tx = r.db.WithContext(ctx).Where("resource_id = ?", id).Order("start_time asc").Find(&blackouts)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainResource(m, blackouts), nil
}

func (r *ResourceRepository) List(ctx context.Context, limit, offset int) ([]domain.Resource, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var ms []resourceModel
	tx := r.db.WithContext(ctx).Order("id asc").Limit(limit).Offset(offset).Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Resource, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainResource(m, nil))
	}
	return out, nil
}

// Update persists title, description, pricing, and tariff. Rating
// fields are deliberately excluded; they change only via UpdateRating.
func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	m := toResourceModel(res)
	tx := r.db.WithContext(ctx).Model(&resourceModel{}).
		Where("id = ?", res.ID).
		Updates(map[string]interface{}{
			"title":          m.Title,
			"description":    m.Description,
			"price_per_day":  m.PricePerDay,
			"price_per_hour": m.PricePerHour,
			"tariff":         m.Tariff,
			"updated_at":     time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRating writes the running aggregate. Callers serialize per
// resource; this is a plain write, not a compare-and-swap.
func (r *ResourceRepository) UpdateRating(ctx context.Context, id int64, avg float64, count int) error {
	tx := r.db.WithContext(ctx).Model(&resourceModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_avg":   avg,
			"rating_count": count,
			"updated_at":   time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ResourceRepository) AddBlackout(ctx context.Context, b *domain.BlackoutRange) error {
	m := blackoutModel{
		ResourceID: b.ResourceID,
		StartTime:  b.Start,
		EndTime:    b.End,
		Kind:       string(b.Kind),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	b.ID = m.ID
	return nil
}

func (r *ResourceRepository) RemoveBlackout(ctx context.Context, resourceID, blackoutID int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND resource_id = ?", blackoutID, resourceID).
		Delete(&blackoutModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ResourceRepository) Blackouts(ctx context.Context, resourceID int64) ([]domain.BlackoutRange, error) {
	var ms []blackoutModel
	tx := r.db.WithContext(ctx).Where("resource_id = ?", resourceID).Order("start_time asc").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.BlackoutRange, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.BlackoutRange{
			ID:         m.ID,
			ResourceID: m.ResourceID,
			Start:      m.StartTime,
			End:        m.EndTime,
			Kind:       domain.BlackoutKind(m.Kind),
		})
	}
	return out, nil
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID         int64 `gorm:"column:id;primaryKey"`
	ResourceID int64 `gorm:"column:resource_id;index"`
	RenterID   int64 `gorm:"column:renter_id;index"`

	StartTime time.Time `gorm:"column:start_time"`
	EndTime   time.Time `gorm:"column:end_time"`

	ServiceType string          `gorm:"column:service_type"`
	Quantities  *string         `gorm:"column:quantities;type:text"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric"`

	Status string `gorm:"column:status;index"`

	CheckInAt      *time.Time `gorm:"column:check_in_at"`
	CheckInPhotos  *string    `gorm:"column:check_in_photos;type:text"`
	CheckOutAt     *time.Time `gorm:"column:check_out_at"`
	CheckOutPhotos *string    `gorm:"column:check_out_photos;type:text"`

	ReviewRating  *int    `gorm:"column:review_rating"`
	ReviewComment *string `gorm:"column:review_comment;type:text"`

	CancellationReason *string    `gorm:"column:cancellation_reason;type:text"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	r := &domain.Reservation{
		ID:          m.ID,
		ResourceID:  m.ResourceID,
		RenterID:    m.RenterID,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		ServiceType: domain.ServiceType(m.ServiceType),
		TotalPrice:  m.TotalPrice,
		Status:      domain.ReservationStatus(m.Status),
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Quantities != nil {
		var q domain.QuantityInputs
		if err := json.Unmarshal([]byte(*m.Quantities), &q); err == nil {
			r.Quantities = &q
		}
	}
	if m.CheckInAt != nil {
		r.CheckIn = &domain.CheckRecord{At: *m.CheckInAt, PhotoURLs: decodePhotos(m.CheckInPhotos)}
	}
	if m.CheckOutAt != nil {
		r.CheckOut = &domain.CheckRecord{At: *m.CheckOutAt, PhotoURLs: decodePhotos(m.CheckOutPhotos)}
	}
	if m.ReviewRating != nil {
		rv := &domain.Review{Rating: *m.ReviewRating}
		if m.ReviewComment != nil {
			rv.Comment = *m.ReviewComment
		}
		r.Review = rv
	}
	if m.CancellationReason != nil {
		r.CancellationReason = *m.CancellationReason
	}
	return r
}

func toReservationModel(r *domain.Reservation) reservationModel {
	m := reservationModel{
		ID:          r.ID,
		ResourceID:  r.ResourceID,
		RenterID:    r.RenterID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		ServiceType: string(r.ServiceType),
		TotalPrice:  r.TotalPrice,
		Status:      string(r.Status),
		CancelledAt: r.CancelledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Quantities != nil {
		if raw, err := json.Marshal(r.Quantities); err == nil {
			s := string(raw)
			m.Quantities = &s
		}
	}
	if r.CheckIn != nil {
		at := r.CheckIn.At
		m.CheckInAt = &at
		m.CheckInPhotos = encodePhotos(r.CheckIn.PhotoURLs)
	}
	if r.CheckOut != nil {
		at := r.CheckOut.At
		m.CheckOutAt = &at
		m.CheckOutPhotos = encodePhotos(r.CheckOut.PhotoURLs)
	}
	if r.Review != nil {
		rating := r.Review.Rating
		m.ReviewRating = &rating
		if r.Review.Comment != "" {
			c := r.Review.Comment
			m.ReviewComment = &c
		}
	}
	if r.CancellationReason != "" {
		reason := r.CancellationReason
		m.CancellationReason = &reason
	}
	return m
}

func encodePhotos(urls []string) *string {
	if len(urls) == 0 {
		return nil
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

func decodePhotos(raw *string) []string {
	if raw == nil {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(*raw), &urls); err != nil {
		return nil
	}
	return urls
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

// Update persists the full record. Lifecycle transitions go through
// the reservation service, which owns the state machine.
func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

// CountOverlapping counts blocking reservations whose window touches
// [start, end] under inclusive boundaries: windows that merely meet at
// an endpoint still conflict. excludeID may remove one reservation
// from consideration, used when re-checking during an update.
func (r *ReservationRepository) CountOverlapping(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (int64, error) {
	q := `
SELECT COUNT(1)
FROM reservations
WHERE resource_id = ?
  AND status IN ('confirmed', 'in_progress')
  AND start_time <= ?
  AND end_time >= ?
`
	args := []interface{}{resourceID, end, start}
	if excludeID != nil {
		q += "  AND id <> ?\n"
		args = append(args, *excludeID)
	}

	var cnt int64
	tx := r.db.WithContext(ctx).Raw(q, args...).Scan(&cnt)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return cnt, nil
}

// BlockingWindows returns the windows of confirmed and in-progress
// reservations for a resource, ordered by start. Feeds the calendar.
func (r *ReservationRepository) BlockingWindows(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	var ms []reservationModel
	tx := r.db.WithContext(ctx).
		Where("resource_id = ? AND status IN ?", resourceID, []string{"confirmed", "in_progress"}).
		Order("start_time asc").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) ListByRenter(ctx context.Context, renterID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return r.list(ctx, "renter_id = ?", renterID, from, to)
}

func (r *ReservationRepository) ListByResource(ctx context.Context, resourceID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return r.list(ctx, "resource_id = ?", resourceID, from, to)
}

func (r *ReservationRepository) list(ctx context.Context, cond string, id int64, from, to *time.Time) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Where(cond, id)
	if from != nil {
		q = q.Where("start_time >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_time <= ?", *to)
	}

	var ms []reservationModel
	tx := q.Order("start_time desc").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

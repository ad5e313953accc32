package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationInProgress ReservationStatus = "in_progress"
	ReservationCompleted  ReservationStatus = "completed"
	ReservationCancelled  ReservationStatus = "cancelled"
)

// Blocks reports whether a reservation in this status occupies its
// window for availability purposes.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationConfirmed || s == ReservationInProgress
}

type ServiceType string

const (
	ServiceDaily     ServiceType = "daily"
	ServiceHourly    ServiceType = "hourly"
	ServiceHectare   ServiceType = "hectare"
	ServiceTon       ServiceType = "ton"
	ServiceKilometer ServiceType = "kilometer"
)

// ParseServiceType rejects anything outside the closed set. Unknown
// values are a boundary error, never a silent default.
func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceDaily, ServiceHourly, ServiceHectare, ServiceTon, ServiceKilometer:
		return ServiceType(s), nil
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

// QuantityInputs carries the measured quantities used by the
// hectare/ton/kilometer service types.
type QuantityInputs struct {
	Hectares *decimal.Decimal `json:"hectares,omitempty"`
	Tons     *decimal.Decimal `json:"tons,omitempty"`
	Km       *decimal.Decimal `json:"km,omitempty"`
}

// CheckRecord is the evidence captured at check-in or check-out.
type CheckRecord struct {
	At        time.Time `json:"at"`
	PhotoURLs []string  `json:"photo_urls,omitempty"`
}

type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type Reservation struct {
	ID         int64 `json:"id"`
	ResourceID int64 `json:"resource_id"`
	RenterID   int64 `json:"renter_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	ServiceType ServiceType     `json:"service_type"`
	Quantities  *QuantityInputs `json:"quantities,omitempty"`

	// Computed once at creation, never recomputed.
	TotalPrice decimal.Decimal `json:"total_price"`

	Status ReservationStatus `json:"status"`

	CheckIn  *CheckRecord `json:"check_in,omitempty"`
	CheckOut *CheckRecord `json:"check_out,omitempty"`
	Review   *Review      `json:"review,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

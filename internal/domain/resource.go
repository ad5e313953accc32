package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BlackoutKind string

const (
	BlackoutBlocked     BlackoutKind = "blocked"
	BlackoutMaintenance BlackoutKind = "maintenance"
)

// KmBracket prices one kilometer range of a tiered distance tariff.
// Brackets are ordered by MinKm; contiguity is not enforced.
type KmBracket struct {
	MinKm     int             `json:"min_km"`
	MaxKm     int             `json:"max_km"`
	RatePerKm decimal.Decimal `json:"rate_per_km"`
}

// TariffProfile is the optional specialized pricing configuration of a
// resource. Any rate may be absent; the calculator decides what that
// means per service type.
type TariffProfile struct {
	HectareRate *decimal.Decimal `json:"hectare_rate,omitempty"`
	TonRate     *decimal.Decimal `json:"ton_rate,omitempty"`
	FlatKmRate  *decimal.Decimal `json:"flat_km_rate,omitempty"`
	KmBrackets  []KmBracket      `json:"km_brackets,omitempty"`
}

// BlackoutRange is an owner-declared unavailability interval,
// independent of reservations.
type BlackoutRange struct {
	ID         int64        `json:"id"`
	ResourceID int64        `json:"resource_id"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	Kind       BlackoutKind `json:"kind"`
}

type Resource struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	PricePerDay  decimal.Decimal `json:"price_per_day"`
	PricePerHour decimal.Decimal `json:"price_per_hour"`
	Tariff       *TariffProfile  `json:"tariff,omitempty"`

	Blackouts []BlackoutRange `json:"blackouts,omitempty"`

	// Running aggregate, written only through the rating module.
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int     `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

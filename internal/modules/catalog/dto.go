package catalog

import (
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateResourceRequest struct {
	Title        string                `json:"title" binding:"required"`
	Description  string                `json:"description"`
	PricePerDay  decimal.Decimal       `json:"price_per_day"`
	PricePerHour decimal.Decimal       `json:"price_per_hour"`
	Tariff       *domain.TariffProfile `json:"tariff,omitempty"`
}

type UpdateResourceRequest struct {
	Title        *string               `json:"title,omitempty"`
	Description  *string               `json:"description,omitempty"`
	PricePerDay  *decimal.Decimal      `json:"price_per_day,omitempty"`
	PricePerHour *decimal.Decimal      `json:"price_per_hour,omitempty"`
	Tariff       *domain.TariffProfile `json:"tariff,omitempty"`
}

type AddBlackoutRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
	Kind  string    `json:"kind"`
}

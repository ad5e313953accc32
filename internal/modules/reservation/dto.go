package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateReservationRequest struct {
	ResourceID  int64     `json:"resource_id" binding:"required"`
	RenterID    int64     `json:"renter_id"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	ServiceType string    `json:"service_type" binding:"required"`

	Hectares *decimal.Decimal `json:"hectares,omitempty"`
	Tons     *decimal.Decimal `json:"tons,omitempty"`
	Km       *decimal.Decimal `json:"km,omitempty"`
}

type CheckRequest struct {
	Photos []string `json:"photos"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

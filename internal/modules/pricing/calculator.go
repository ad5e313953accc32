package pricing

import (
	"math"
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
)

// Calculator computes the total price of a reservation. It is a pure
// function of the resource tariff state and the request inputs:
// identical inputs always produce an identical total.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute dispatches on service type. Exactly one pricing model
// applies per reservation; models are never combined.
//
// Hectare/ton/kilometer pricing is permissive: a missing rate,
// quantity, or matching bracket contributes zero instead of failing.
// Callers wanting stricter validation must check inputs at the
// boundary.
func (c *Calculator) Compute(
	res *domain.Resource,
	st domain.ServiceType,
	start, end time.Time,
	q *domain.QuantityInputs,
) (decimal.Decimal, error) {
	if !end.After(start) {
		return decimal.Zero, ErrInvalidWindow
	}

	switch st {
	case domain.ServiceDaily:
		return res.PricePerDay.Mul(decimal.NewFromInt(billedDays(start, end))), nil

	case domain.ServiceHourly:
		return res.PricePerHour.Mul(decimal.NewFromInt(billedHours(start, end))), nil

	case domain.ServiceHectare:
		if res.Tariff == nil || res.Tariff.HectareRate == nil || q == nil || q.Hectares == nil {
			return decimal.Zero, nil
		}
		return q.Hectares.Mul(*res.Tariff.HectareRate), nil

	case domain.ServiceTon:
		if res.Tariff == nil || res.Tariff.TonRate == nil || q == nil || q.Tons == nil {
			return decimal.Zero, nil
		}
		return q.Tons.Mul(*res.Tariff.TonRate), nil

	case domain.ServiceKilometer:
		if res.Tariff == nil || q == nil || q.Km == nil {
			return decimal.Zero, nil
		}
		return kilometerPrice(res.Tariff, *q.Km), nil
	}

	return decimal.Zero, ErrUnknownService
}

// billedDays counts whole calendar days between the start and end
// dates, minimum one. A rental from day 0 to day 3 bills three days.
func billedDays(start, end time.Time) int64 {
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour)
	days := int64(math.Ceil(e.Sub(s).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// billedHours rounds the duration up to whole hours, minimum one.
func billedHours(start, end time.Time) int64 {
	hours := int64(math.Ceil(end.Sub(start).Hours()))
	if hours < 1 {
		hours = 1
	}
	return hours
}

// kilometerPrice prefers a flat per-km rate; otherwise the first
// bracket containing km wins. No matching bracket means zero.
func kilometerPrice(t *domain.TariffProfile, km decimal.Decimal) decimal.Decimal {
	if t.FlatKmRate != nil {
		return km.Mul(*t.FlatKmRate)
	}
	for _, b := range t.KmBrackets {
		lo := decimal.NewFromInt(int64(b.MinKm))
		hi := decimal.NewFromInt(int64(b.MaxKm))
		if km.GreaterThanOrEqual(lo) && km.LessThanOrEqual(hi) {
			return km.Mul(b.RatePerKm)
		}
	}
	return decimal.Zero
}

package pricing

import (
	"testing"
	"time"

	"machrent/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(n int) time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestCompute_Daily(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{PricePerDay: dec("100")}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"three full days", day(0), day(3), "300"},
		{"same date minimum one day", day(0), day(0).Add(6 * time.Hour), "100"},
		{"times of day ignored, dates decide", day(0).Add(10 * time.Hour), day(2).Add(18 * time.Hour), "200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compute(res, domain.ServiceDaily, tt.start, tt.end, nil)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCompute_Hourly(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{PricePerHour: dec("10")}
	start := day(0).Add(9 * time.Hour)

	got, err := c.Compute(res, domain.ServiceHourly, start, start.Add(150*time.Minute), nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("30")), "2.5h bills as 3 hours, got %s", got)

	got, err = c.Compute(res, domain.ServiceHourly, start, start.Add(20*time.Minute), nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("10")), "sub-hour bills the one-hour minimum, got %s", got)
}

func TestCompute_Hectare(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{Tariff: &domain.TariffProfile{HectareRate: decPtr("350")}}
	q := &domain.QuantityInputs{Hectares: decPtr("12.5")}

	got, err := c.Compute(res, domain.ServiceHectare, day(0), day(1), q)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("4375")))
}

func TestCompute_Ton(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{Tariff: &domain.TariffProfile{TonRate: decPtr("45")}}
	q := &domain.QuantityInputs{Tons: decPtr("8")}

	got, err := c.Compute(res, domain.ServiceTon, day(0), day(1), q)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("360")))
}

func TestCompute_KilometerBrackets(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{Tariff: &domain.TariffProfile{
		KmBrackets: []domain.KmBracket{
			{MinKm: 0, MaxKm: 50, RatePerKm: dec("5")},
			{MinKm: 51, MaxKm: 200, RatePerKm: dec("3")},
		},
	}}

	tests := []struct {
		name string
		km   string
		want string
	}{
		{"first bracket", "30", "150"},
		{"second bracket", "80", "240"},
		{"bracket boundary", "50", "250"},
		{"beyond all brackets contributes zero", "500", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &domain.QuantityInputs{Km: decPtr(tt.km)}
			got, err := c.Compute(res, domain.ServiceKilometer, day(0), day(1), q)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCompute_KilometerFlatRateWinsOverBrackets(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{Tariff: &domain.TariffProfile{
		FlatKmRate: decPtr("2"),
		KmBrackets: []domain.KmBracket{{MinKm: 0, MaxKm: 100, RatePerKm: dec("9")}},
	}}
	q := &domain.QuantityInputs{Km: decPtr("40")}

	got, err := c.Compute(res, domain.ServiceKilometer, day(0), day(1), q)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("80")))
}

// Missing tariff or quantity inputs price as zero rather than failing.
// Stricter validation lives at the HTTP boundary if stakeholders ever
// want it.
func TestCompute_MissingInputsFallBackToZero(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name string
		res  *domain.Resource
		st   domain.ServiceType
		q    *domain.QuantityInputs
	}{
		{"hectare without tariff", &domain.Resource{}, domain.ServiceHectare, &domain.QuantityInputs{Hectares: decPtr("10")}},
		{"hectare without quantity", &domain.Resource{Tariff: &domain.TariffProfile{HectareRate: decPtr("350")}}, domain.ServiceHectare, nil},
		{"ton without rate", &domain.Resource{Tariff: &domain.TariffProfile{}}, domain.ServiceTon, &domain.QuantityInputs{Tons: decPtr("5")}},
		{"kilometer without quantity", &domain.Resource{Tariff: &domain.TariffProfile{FlatKmRate: decPtr("3")}}, domain.ServiceKilometer, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compute(tt.res, tt.st, day(0), day(1), tt.q)
			require.NoError(t, err)
			assert.True(t, got.IsZero(), "got %s", got)
		})
	}
}

func TestCompute_UnknownServiceType(t *testing.T) {
	c := NewCalculator()
	_, err := c.Compute(&domain.Resource{}, domain.ServiceType("barter"), day(0), day(1), nil)
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestCompute_InvalidWindow(t *testing.T) {
	c := NewCalculator()
	_, err := c.Compute(&domain.Resource{}, domain.ServiceDaily, day(1), day(1), nil)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCompute_Deterministic(t *testing.T) {
	c := NewCalculator()
	res := &domain.Resource{Tariff: &domain.TariffProfile{
		KmBrackets: []domain.KmBracket{{MinKm: 0, MaxKm: 100, RatePerKm: dec("4.75")}},
	}}
	q := &domain.QuantityInputs{Km: decPtr("33.3")}

	first, err := c.Compute(res, domain.ServiceKilometer, day(0), day(2), q)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Compute(res, domain.ServiceKilometer, day(0), day(2), q)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

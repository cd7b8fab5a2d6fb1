package timeseries

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

func horizon(t *testing.T, start, end string) period.Horizon {
	t.Helper()
	h, err := period.NewHorizon(period.MustParse(start), period.MustParse(end))
	require.NoError(t, err)
	return h
}

func TestSeries_OutOfRange(t *testing.T) {
	s := New[int](horizon(t, "2025-01", "2025-12"))
	require.NoError(t, s.Set(period.MustParse("2025-06"), 6))

	v, err := s.At(period.MustParse("2025-06"))
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	_, err = s.At(period.MustParse("2026-01"))
	assert.ErrorIs(t, err, ErrOutOfRange)
	err = s.Set(period.MustParse("2024-12"), 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSeries_Freeze(t *testing.T) {
	s := New[string](horizon(t, "2025-01", "2025-02"))
	s.Freeze()
	assert.True(t, s.Frozen())
	assert.ErrorIs(t, s.Set(period.MustParse("2025-01"), "x"), ErrFrozen)
}

func TestSeries_AllInOrder(t *testing.T) {
	s := New[int](horizon(t, "2025-11", "2026-02"))
	var months []string
	for ym := range s.All() {
		months = append(months, ym.String())
	}
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, months)
}

func TestMoneySeries_Aggregations(t *testing.T) {
	h := horizon(t, "2025-11", "2026-02")
	s := NewMoney(h, "EUR")
	for i, ym := range h.Months() {
		require.NoError(t, s.SetAmount(ym, decimal.NewFromInt(int64(100*(i+1)))))
	}

	assert.Equal(t, "1000", s.Sum().Amount().String())
	assert.Equal(t, "300", s.YearSum(2025).Amount().String())
	assert.Equal(t, "700", s.YearSum(2026).Amount().String())
	assert.Equal(t, "0", s.YearSum(2027).Amount().String())

	sums := s.YearSums()
	require.Len(t, sums, 2)
	assert.Equal(t, 2025, sums[0].Year)
	assert.Equal(t, "700", sums[1].Total.Amount().String())

	cum := s.Cumulative()
	assert.Equal(t, "100", cum.AmountAt(0).String())
	assert.Equal(t, "300", cum.AmountAt(1).String())
	assert.Equal(t, "1000", cum.AmountAt(3).String())
}

func TestMoneySeries_CurrencyGuards(t *testing.T) {
	h := horizon(t, "2025-01", "2025-03")
	eur := NewMoney(h, "EUR")
	usd := NewMoney(h, "USD")

	_, err := eur.Plus(usd)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	err = eur.Set(period.MustParse("2025-01"), money.FromInt(1, "USD"))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	other := NewMoney(horizon(t, "2025-01", "2025-04"), "EUR")
	_, err = eur.Plus(other)
	assert.ErrorIs(t, err, ErrHorizonMismatch)
}

func TestMoneySeries_PlusMinus(t *testing.T) {
	h := horizon(t, "2025-01", "2025-02")
	a := NewMoney(h, "EUR")
	b := NewMoney(h, "EUR")
	require.NoError(t, a.AddAmount(period.MustParse("2025-01"), decimal.NewFromInt(10)))
	require.NoError(t, b.AddAmount(period.MustParse("2025-01"), decimal.NewFromInt(4)))

	sum, err := a.Plus(b)
	require.NoError(t, err)
	assert.Equal(t, "14", sum.AmountAt(0).String())

	diff, err := a.Minus(b)
	require.NoError(t, err)
	assert.Equal(t, "6", diff.AmountAt(0).String())
	assert.Equal(t, "-10", a.Neg().AmountAt(0).String())

	total, err := SumOf(h, "EUR", a, b, a)
	require.NoError(t, err)
	assert.Equal(t, "24", total.AmountAt(0).String())
}

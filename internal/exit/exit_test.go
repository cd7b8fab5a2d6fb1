package exit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

func eur(v int64) money.Money { return money.FromInt(v, "EUR") }

func horizon(t *testing.T, start, end string) period.Horizon {
	t.Helper()
	h, err := period.NewHorizon(period.MustParse(start), period.MustParse(end))
	require.NoError(t, err)
	return h
}

func inputs(t *testing.T, end string) Inputs {
	p := model.Project{
		ID:       "p",
		Currency: "EUR",
		Purchase: model.Purchase{
			Price:     eur(400000),
			LandValue: eur(100000),
			Date:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		Tax: model.TaxProfile{MarginalRatePercent: decimal.NewFromInt(40)},
	}
	return Inputs{
		Project: p,
		Horizon: horizon(t, "2025-01", end),
		Forecast: &model.PropertyValueForecast{Scenarios: []model.ValueScenario{
			{Name: "conservative", FinalValue: eur(420000)},
			{Name: "base", FinalValue: eur(500000)},
			{Name: "optimistic", FinalValue: eur(900000)},
		}},
		AccumulatedDepreciation: eur(30000),
		CapitalizedCapEx:        eur(10000),
		OutstandingDebt:         eur(200000),
		CumulativeCashflow:      eur(20000),
		EquityInvested:          eur(100000),
	}
}

func TestAnalyze_WithinSpeculationPeriod(t *testing.T) {
	res, err := Analyze(inputs(t, "2029-12"), DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), res.ExitDate)
	assert.Equal(t, "5", res.HoldingYears.String())
	require.Len(t, res.Scenarios, 3)

	b := res.Scenarios[1]
	assert.Equal(t, "base", b.Name)
	assert.True(t, b.WithinSpeculationPeriod)
	assert.Equal(t, "25000", b.SaleCosts.Amount().String())
	assert.Equal(t, "380000", b.TaxBasisAtSale.Amount().String())
	assert.Equal(t, "95000", b.CapitalGain.Amount().String())
	assert.Equal(t, "38000", b.CapitalGainsTax.Amount().String())
	assert.Equal(t, "237000", b.NetSaleProceeds.Amount().String())
	assert.Equal(t, "157000", b.TotalReturn.Amount().String())
	assert.InDelta(t, 20.78, b.AnnualizedReturnPercent.InexactFloat64(), 0.01)

	// gain of 19,000 is taxed in full as well
	c := res.Scenarios[0]
	assert.Equal(t, "19000", c.CapitalGain.Amount().String())
	assert.Equal(t, "7600", c.CapitalGainsTax.Amount().String())
}

func TestAnalyze_TenYearHoldingIsTaxFree(t *testing.T) {
	res, err := Analyze(inputs(t, "2034-12"), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "10", res.HoldingYears.String())
	for _, s := range res.Scenarios {
		assert.False(t, s.WithinSpeculationPeriod, s.Name)
		assert.True(t, s.CapitalGainsTax.IsZero(), s.Name)
	}
}

func TestAnalyze_SaleCostsOverride(t *testing.T) {
	in := inputs(t, "2034-12")
	pct := decimal.NewFromInt(6)
	in.Project.Valuation = &model.ValuationConfiguration{SaleCostsPercent: &pct}

	res, err := Analyze(in, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "30000", res.Scenarios[1].SaleCosts.Amount().String())
}

func TestAnalyze_ZeroDefaults(t *testing.T) {
	in := inputs(t, "2034-12")
	in.CapitalizedCapEx = money.Money{}
	in.OutstandingDebt = money.Money{}

	res, err := Analyze(in, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "475000", res.Scenarios[1].NetSaleProceeds.Amount().String())
}

func TestAnalyze_RequiresForecast(t *testing.T) {
	in := inputs(t, "2034-12")
	in.Forecast = nil
	_, err := Analyze(in, DefaultParams())
	assert.ErrorIs(t, err, ErrNoForecast)
}

func TestAnalyze_CurrencyMismatch(t *testing.T) {
	in := inputs(t, "2034-12")
	in.OutstandingDebt = money.FromInt(1, "USD")
	_, err := Analyze(in, DefaultParams())
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestAnnualizedReturn(t *testing.T) {
	years := decimal.NewFromInt(10)
	assert.InDelta(t, 7.18, AnnualizedReturn(eur(100000), eur(100000), years).InexactFloat64(), 0.01)
	assert.True(t, AnnualizedReturn(eur(100000), eur(0), years).IsZero())
	assert.True(t, AnnualizedReturn(eur(100000), eur(-100000), years).IsZero(), "zero multiple")
	assert.True(t, AnnualizedReturn(eur(100000), eur(-250000), years).IsZero(), "negative multiple")
	assert.True(t, AnnualizedReturn(eur(0), eur(5000), years).IsZero())
	assert.True(t, AnnualizedReturn(eur(100000), eur(5000), decimal.Zero).IsZero())
}

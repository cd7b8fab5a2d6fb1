package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/immocalc/internal/forecast"
	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

var today = model.FixedClock(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))

func calc(t *testing.T, p model.Project, scenarioID string, opts ...Option) *model.CalculationResult {
	t.Helper()
	opts = append([]Option{WithClock(today)}, opts...)
	res, err := New(opts...).Calculate(context.Background(), p, scenarioID)
	require.NoError(t, err)
	return res
}

func ym(s string) period.YearMonth { return period.MustParse(s) }

func eur(v int64) money.Money { return money.FromInt(v, "EUR") }

func TestCalculate_Deterministic(t *testing.T) {
	a := calc(t, model.SampleProject(), "")
	b := calc(t, model.SampleProject(), "")

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestCalculate_SampleShape(t *testing.T) {
	res := calc(t, model.SampleProject(), "")

	assert.Equal(t, "sample", res.ProjectID)
	assert.Equal(t, 120, res.Horizon.Len())
	for _, n := range res.Series.Named() {
		require.NotNil(t, n.Series, n.Name)
		assert.Equal(t, 120, n.Series.Len(), n.Name)
	}
	require.Len(t, res.Loans, 1)
	assert.Equal(t, "bank", res.Loans[0].LoanID)
	require.Len(t, res.Tax.Years, 10)
	assert.NotNil(t, res.Forecast)
	assert.NotNil(t, res.Exit)

	m := res.Metrics
	assert.Equal(t, "444280", m.TotalInvestment.Amount().String())
	assert.Equal(t, "80", m.InitialLTVPercent.String())
	assert.True(t, m.MinDSCR.IsPositive())
	assert.True(t, m.AverageDSCR.GreaterThanOrEqual(m.MinDSCR))
	assert.True(t, m.GrossYieldPercent.GreaterThan(m.NetYieldPercent))
}

func TestCalculate_LoanFigures(t *testing.T) {
	res := calc(t, model.SampleProject(), "")
	s := res.Series

	// disbursed in January, first installment in February
	assert.True(t, s.Interest.Amount(ym("2025-01")).IsZero())
	assert.Equal(t, "320000", s.OutstandingBalance.Amount(ym("2025-01")).String())
	assert.Equal(t, "933.33", s.Interest.Amount(ym("2025-02")).String())

	debt := s.DebtService.Amount(ym("2025-02"))
	paid := s.Interest.Amount(ym("2025-02")).Add(s.Principal.Amount(ym("2025-02")))
	assert.True(t, debt.Equal(paid))
	assert.True(t, s.OutstandingBalance.Amount(ym("2034-12")).LessThan(decimal.NewFromInt(320000)))
}

func TestCalculate_CashflowIdentities(t *testing.T) {
	res := calc(t, model.SampleProject(), "")
	s := res.Series

	for _, m := range res.Horizon.Months() {
		after := s.CashflowBeforeTax.Amount(m).Sub(s.TaxPayment.Amount(m))
		assert.True(t, after.Equal(s.CashflowAfterTax.Amount(m)), m.String())
		assert.False(t, s.ReserveBalance.Amount(m).IsNegative(), m.String())
	}
	assert.True(t, s.CumulativeCashflow.Amount(ym("2034-12")).Equal(s.CashflowAfterTax.Sum().Amount()))
	assert.True(t, res.Metrics.TotalCashflowAfterTax.Equal(s.CashflowAfterTax.Sum()))
}

func TestCalculate_AcquisitionRelatedCosts(t *testing.T) {
	p := model.SampleProject()
	p.Purchase.AcquisitionCosts = nil
	p.Financing.Equity = []model.EquityContribution{{Source: "savings", Amount: eur(80000)}}
	p.Valuation = nil
	p.CapEx = &model.CapExConfiguration{Measures: []model.CapExMeasure{{
		ID:                "CX-2027-07-001",
		Category:          model.CategoryFacade,
		PlannedPeriod:     ym("2027-07"),
		EstimatedCost:     eur(50000),
		TaxClassification: model.MaintenanceExpense,
	}}}

	res := calc(t, p, "")

	assert.Equal(t, "2", res.Tax.DepreciationRatePercent.String())
	assert.Equal(t, "6000", res.Tax.AnnualDepreciation.Amount().String())
	assert.True(t, res.Tax.AcquisitionRule.Triggered)
	assert.Equal(t, "45000", res.Tax.AcquisitionRule.Threshold.Amount().String())
	assert.Equal(t, "5000", res.Tax.AcquisitionRule.Excess.Amount().String())
	require.Len(t, res.Tax.Classifications, 1)
	assert.Equal(t, model.AcquisitionRelatedCosts, res.Tax.Classifications[0].Effective)
	assert.True(t, res.Tax.TotalMaintenance.IsZero())
	assert.True(t, res.HasWarning(model.WarningAcquisitionRelatedCostsTriggered))
}

func TestCalculate_TenYearExitIsTaxFree(t *testing.T) {
	res := calc(t, model.SampleProject(), "")

	require.NotNil(t, res.Exit)
	assert.Equal(t, time.Date(2035, time.January, 1, 0, 0, 0, 0, time.UTC), res.Exit.ExitDate)
	for _, s := range res.Exit.Scenarios {
		assert.False(t, s.WithinSpeculationPeriod, s.Name)
		assert.True(t, s.CapitalGainsTax.IsZero(), s.Name)
	}
	assert.False(t, res.HasWarning(model.WarningSaleWithinSpeculationPeriod))
}

func TestCalculate_ShortHoldingExit(t *testing.T) {
	p := model.SampleProject()
	p.EndPeriod = ym("2029-12")

	res := calc(t, p, "")
	require.NotNil(t, res.Exit)
	for _, s := range res.Exit.Scenarios {
		assert.True(t, s.WithinSpeculationPeriod, s.Name)
	}
	assert.True(t, res.HasWarning(model.WarningSaleWithinSpeculationPeriod))
}

func TestCalculate_PlannedSale(t *testing.T) {
	p := model.SampleProject()
	sale := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	p.Investor.PlannedSaleDate = &sale

	res := calc(t, p, "")
	cg := res.Tax.CapitalGains
	require.NotNil(t, cg)
	assert.Equal(t, sale, cg.SaleDate)
	assert.Equal(t, 5, cg.HoldingYears)
	assert.True(t, cg.WithinSpeculationPeriod)

	price, err := res.Series.PropertyValue.At(ym("2030-06"))
	require.NoError(t, err)
	assert.True(t, cg.SalePrice.Equal(price))
	assert.True(t, res.HasWarning(model.WarningSaleWithinSpeculationPeriod))
}

// laterHorizon moves the sample's horizon two years past the purchase.
func laterHorizon(start, end string) model.Project {
	p := model.SampleProject()
	p.CapEx = nil
	p.StartPeriod, p.EndPeriod = ym(start), ym(end)
	return p
}

func TestCalculate_DepreciationBeforeHorizonStart(t *testing.T) {
	t.Run("exit", func(t *testing.T) {
		late := calc(t, laterHorizon("2027-01", "2036-12"), "")
		full := calc(t, laterHorizon("2025-01", "2036-12"), "")

		// 144 months from the 2025-01 purchase to the 2037-01-01 exit, 120 of
		// them inside the late horizon.
		assert.Equal(t, "68856", late.Series.Depreciation.Sum().Amount().String())
		require.NotNil(t, late.Exit)
		require.NotNil(t, full.Exit)
		for i, s := range late.Exit.Scenarios {
			assert.Equal(t, "361652.8", s.TaxBasisAtSale.Amount().String(), s.Name)
			assert.True(t, s.TaxBasisAtSale.Equal(full.Exit.Scenarios[i].TaxBasisAtSale), s.Name)
		}
	})

	t.Run("planned sale", func(t *testing.T) {
		sale := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
		late := laterHorizon("2027-01", "2036-12")
		late.Investor.PlannedSaleDate = &sale
		full := laterHorizon("2025-01", "2036-12")
		full.Investor.PlannedSaleDate = &sale

		a := calc(t, late, "").Tax.CapitalGains
		b := calc(t, full, "").Tax.CapitalGains
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.True(t, a.AdjustedBasis.Equal(b.AdjustedBasis), "%s != %s", a.AdjustedBasis, b.AdjustedBasis)
		assert.True(t, a.Gain.Equal(b.Gain))
	})
}

func TestCalculate_PlannedSaleOutsideHorizon(t *testing.T) {
	p := model.SampleProject()
	sale := time.Date(2040, time.January, 1, 0, 0, 0, 0, time.UTC)
	p.Investor.PlannedSaleDate = &sale

	res := calc(t, p, "")
	assert.Nil(t, res.Tax.CapitalGains)
}

func TestCalculate_ForecastOrdering(t *testing.T) {
	res := calc(t, model.SampleProject(), "")

	fc := res.Forecast
	require.NotNil(t, fc)
	cons, ok := fc.Scenario(forecast.Conservative)
	require.True(t, ok)
	base, ok := fc.Scenario(forecast.Base)
	require.True(t, ok)
	opt, ok := fc.Scenario(forecast.Optimistic)
	require.True(t, ok)

	assert.True(t, cons.FinalValue.Amount().LessThanOrEqual(base.FinalValue.Amount()))
	assert.True(t, base.FinalValue.Amount().LessThanOrEqual(opt.FinalValue.Amount()))
	for _, sc := range fc.Scenarios {
		for i := 1; i < len(sc.Values); i++ {
			assert.True(t, sc.Values[i].MarketValue.Amount().GreaterThanOrEqual(sc.Values[i-1].MarketValue.Amount()), sc.Name)
		}
	}
}

func TestCalculate_Scenario(t *testing.T) {
	p := model.SampleProject()
	base := calc(t, p, "")
	vac := calc(t, p, "high-vacancy")

	assert.Equal(t, "high-vacancy", vac.ScenarioID)
	assert.True(t, vac.Series.EffectiveRent.Sum().Amount().LessThan(base.Series.EffectiveRent.Sum().Amount()))
	assert.Equal(t, "3", p.Rent.VacancyRatePercent.String(), "base project untouched")
}

func TestCalculate_UnknownScenario(t *testing.T) {
	_, err := New().Calculate(context.Background(), model.SampleProject(), "nope")
	assert.ErrorIs(t, err, model.ErrScenarioNotFound)
}

func TestCalculate_InvalidProject(t *testing.T) {
	p := model.SampleProject()
	p.ID = ""
	_, err := New().Calculate(context.Background(), p, "")
	assert.ErrorIs(t, err, model.ErrInvalidProject)
}

func TestCalculate_SeriesAreFrozen(t *testing.T) {
	res := calc(t, model.SampleProject(), "")
	err := res.Series.GrossRent.SetAmount(ym("2025-01"), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, timeseries.ErrFrozen)
}

func TestCalculate_Warnings(t *testing.T) {
	t.Run("reserve shortfall", func(t *testing.T) {
		res := calc(t, model.SampleProject(), "")
		assert.True(t, res.HasWarning(model.WarningReserveShortfall))
	})

	t.Run("deferred maintenance", func(t *testing.T) {
		later := model.FixedClock(time.Date(2029, time.January, 1, 0, 0, 0, 0, time.UTC))
		res := calc(t, model.SampleProject(), "", WithClock(later))
		var ids []string
		for _, w := range res.Warnings {
			if w.Code == model.WarningDeferredMaintenance {
				ids = append(ids, w.MeasureID)
			}
		}
		assert.Equal(t, []string{"CX-2028-05-001"}, ids)
	})

	t.Run("high ltv", func(t *testing.T) {
		params := DefaultParams()
		params.MaxLTVPercent = decimal.NewFromInt(70)
		res := calc(t, model.SampleProject(), "", WithParams(params))
		assert.True(t, res.HasWarning(model.WarningHighLTV))

		res = calc(t, model.SampleProject(), "")
		assert.False(t, res.HasWarning(model.WarningHighLTV), "80% is not above the limit")
	})

	t.Run("low dscr", func(t *testing.T) {
		params := DefaultParams()
		params.MinDSCR = decimal.NewFromInt(10)
		res := calc(t, model.SampleProject(), "", WithParams(params))
		assert.True(t, res.HasWarning(model.WarningLowDSCR))
	})
}

func TestCalculate_Logging(t *testing.T) {
	var buf bytes.Buffer
	calc(t, model.SampleProject(), "high-vacancy", WithLogger(log.New(&buf, "", 0)))
	assert.Contains(t, buf.String(), "applied scenario high-vacancy")
	assert.Contains(t, buf.String(), "sample: financing done")
	assert.Contains(t, buf.String(), "sample: warnings done")
}

func TestIRR(t *testing.T) {
	flows := []decimal.Decimal{decimal.NewFromInt(-1000), decimal.NewFromInt(1100)}
	assert.InDelta(t, 213.84, IRR(flows).InexactFloat64(), 0.01)

	none := []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(1100)}
	assert.True(t, IRR(none).IsZero())
}

func TestNPV(t *testing.T) {
	flows := []decimal.Decimal{decimal.NewFromInt(-1000), decimal.NewFromInt(600), decimal.NewFromInt(600)}
	assert.InDelta(t, 200, NPV(flows, decimal.Zero).InexactFloat64(), 1e-9)
	assert.Less(t, NPV(flows, decimal.NewFromInt(10)).InexactFloat64(), 200.0)
}

func TestCoverage(t *testing.T) {
	h, err := period.NewHorizon(ym("2025-01"), ym("2025-03"))
	require.NoError(t, err)
	income := timeseries.NewMoney(h, "EUR")
	obligation := timeseries.NewMoney(h, "EUR")
	for i, v := range [][2]int64{{300, 200}, {300, 0}, {300, 100}} {
		require.NoError(t, income.SetAmount(h.Start.AddMonths(i), decimal.NewFromInt(v[0])))
		require.NoError(t, obligation.SetAmount(h.Start.AddMonths(i), decimal.NewFromInt(v[1])))
	}

	st, err := coverage(income, obligation)
	require.NoError(t, err)
	assert.Equal(t, "1.5", st.min.String())
	assert.Equal(t, "2.25", st.avg.String())
	require.NotNil(t, st.at)
	assert.Equal(t, ym("2025-01"), *st.at)

	short, err := period.NewHorizon(ym("2025-01"), ym("2025-02"))
	require.NoError(t, err)
	_, err = coverage(timeseries.NewMoney(short, "EUR"), obligation)
	assert.ErrorIs(t, err, timeseries.ErrOutOfRange, "months outside the income horizon are not read as zero")
}

func TestBreakEven(t *testing.T) {
	h, err := period.NewHorizon(ym("2025-01"), ym("2025-04"))
	require.NoError(t, err)
	s := timeseries.NewMoney(h, "EUR")
	for i, v := range []int64{-100, 50, -10, 20} {
		require.NoError(t, s.SetAmount(h.Start.AddMonths(i), decimal.NewFromInt(v)))
	}
	got := breakEven(s)
	require.NotNil(t, got)
	assert.Equal(t, ym("2025-04"), *got)

	require.NoError(t, s.SetAmount(ym("2025-04"), decimal.NewFromInt(-1)))
	assert.Nil(t, breakEven(s))
}

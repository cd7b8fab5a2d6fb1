package tax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eur(v int64) money.Money { return money.FromInt(v, "EUR") }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func horizon(t *testing.T, start, end string) period.Horizon {
	t.Helper()
	h, err := period.NewHorizon(period.MustParse(start), period.MustParse(end))
	require.NoError(t, err)
	return h
}

// project: price 400,000, land 100,000, built 2000, bought 2025-01-01.
func project() model.Project {
	return model.Project{
		ID:          "p",
		Currency:    "EUR",
		StartPeriod: period.MustParse("2025-01"),
		EndPeriod:   period.MustParse("2034-12"),
		Property:    model.Property{ConstructionYear: 2000, LivingArea: dec("100")},
		Purchase: model.Purchase{
			Price:     eur(400000),
			LandValue: eur(100000),
			Date:      date(2025, time.January, 1),
		},
		Tax: model.TaxProfile{MarginalRatePercent: dec("40")},
	}
}

func maintenance(id, planned string, cost int64) model.CapExMeasure {
	return model.CapExMeasure{
		ID:                id,
		Category:          model.CategoryRoof,
		PlannedPeriod:     period.MustParse(planned),
		EstimatedCost:     eur(cost),
		TaxClassification: model.MaintenanceExpense,
	}
}

func TestDepreciationRate(t *testing.T) {
	custom := dec("4")
	tests := []struct {
		year    int
		profile model.TaxProfile
		want    string
	}{
		{2024, model.TaxProfile{}, "3"},
		{2023, model.TaxProfile{}, "3"},
		{2022, model.TaxProfile{}, "2"},
		{1925, model.TaxProfile{}, "2"},
		{1924, model.TaxProfile{}, "2.5"},
		{1890, model.TaxProfile{CustomDepreciationPercent: &custom}, "4"},
	}
	for _, tt := range tests {
		got := DepreciationRate(model.Property{ConstructionYear: tt.year}, tt.profile)
		assert.Equal(t, tt.want, got.String(), "year %d", tt.year)
	}
}

func TestAnnualDepreciation(t *testing.T) {
	p := project()
	d, err := AnnualDepreciation(p.Purchase, p.Property, p.Tax)
	require.NoError(t, err)
	assert.Equal(t, "300000", d.Base.Amount().String())
	assert.Equal(t, "6000", d.Annual.Amount().String())
	assert.Equal(t, "500", d.Monthly().String())
	assert.Equal(t, 600, d.Months())

	p.Purchase.AcquisitionCosts = []model.AcquisitionCost{
		{Kind: "notary", Amount: eur(10000), Capitalizable: true},
		{Kind: "loan fees", Amount: eur(5000)},
	}
	d, err = AnnualDepreciation(p.Purchase, p.Property, p.Tax)
	require.NoError(t, err)
	assert.Equal(t, "6200", d.Annual.Amount().String())
}

func TestDepreciationSeries_Window(t *testing.T) {
	rate := dec("50")
	d := Depreciation{RatePercent: rate, Base: eur(24000), Annual: eur(12000), Start: period.MustParse("2025-03")}
	assert.Equal(t, 24, d.Months())

	s, err := d.Series(horizon(t, "2025-01", "2027-12"))
	require.NoError(t, err)
	assert.True(t, s.Amount(period.MustParse("2025-02")).IsZero())
	assert.Equal(t, "1000", s.Amount(period.MustParse("2025-03")).String())
	assert.Equal(t, "1000", s.Amount(period.MustParse("2027-02")).String())
	assert.True(t, s.Amount(period.MustParse("2027-03")).IsZero())
	assert.Equal(t, "24000", s.Sum().Amount().String())
}

func TestDepreciation_AccumulatedBefore(t *testing.T) {
	d := Depreciation{RatePercent: dec("50"), Base: eur(24000), Annual: eur(12000), Start: period.MustParse("2025-03")}

	tests := []struct {
		ym   string
		want string
	}{
		{"2024-12", "0"},
		{"2025-03", "0"},
		{"2025-04", "1000"},
		{"2026-03", "12000"},
		{"2027-03", "24000"},
		{"2040-01", "24000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.AccumulatedBefore(period.MustParse(tt.ym)).String(), tt.ym)
	}
}

func TestPlan_AccumulatedBeforeIgnoresHorizon(t *testing.T) {
	p := project()
	p.CapEx = &model.CapExConfiguration{Measures: []model.CapExMeasure{maintenance("m1", "2027-07", 50000)}}

	plan, err := NewPlan(p, horizon(t, "2028-01", "2034-12"), DefaultParams())
	require.NoError(t, err)
	// building: 36 months of 500 before 2028-01; the 2027-07 measure is
	// outside the horizon and is not part of the plan.
	assert.Equal(t, "18000", plan.AccumulatedBefore(period.MustParse("2028-01")).Amount().String())

	plan, err = NewPlan(p, horizon(t, "2025-01", "2034-12"), DefaultParams())
	require.NoError(t, err)
	// 30 months of 500, then 6 months of 583.33 after capitalization
	assert.Equal(t, "18499.98", plan.AccumulatedBefore(period.MustParse("2028-01")).Amount().String())
	assert.True(t, plan.AccumulatedBefore(period.MustParse("2035-01")).Equal(plan.Depreciation.Sum()))
}

func TestAcquisitionRule_Triggered(t *testing.T) {
	p := project()
	measures := []model.CapExMeasure{maintenance("m1", "2027-07", 50000)}

	res, err := CheckAcquisitionRelatedCosts(p.Purchase, measures, DefaultParams())
	require.NoError(t, err)
	assert.True(t, res.Triggered)
	assert.Equal(t, "45000", res.Threshold.Amount().String())
	assert.Equal(t, "50000", res.Actual.Amount().String())
	assert.Equal(t, "5000", res.Excess.Amount().String())
	assert.Equal(t, date(2028, time.January, 1), res.WindowEnd)
}

func TestAcquisitionRule_Boundaries(t *testing.T) {
	p := project()
	tests := []struct {
		name     string
		measures []model.CapExMeasure
		want     bool
	}{
		{"exactly at threshold", []model.CapExMeasure{maintenance("m", "2026-01", 45000)}, false},
		{"one cent above", []model.CapExMeasure{{
			ID: "m", Category: model.CategoryRoof, PlannedPeriod: period.MustParse("2026-01"),
			EstimatedCost: money.New(dec("45000.01"), "EUR"), TaxClassification: model.MaintenanceExpenseDistributed, DistributionYears: 2,
		}}, true},
		{"sum of several", []model.CapExMeasure{maintenance("a", "2025-02", 30000), maintenance("b", "2027-12", 20000)}, true},
		{"after window", []model.CapExMeasure{maintenance("m", "2028-01", 90000)}, false},
		{"manufacturing ignored", []model.CapExMeasure{{
			ID: "m", Category: model.CategoryRoof, PlannedPeriod: period.MustParse("2026-01"),
			EstimatedCost: eur(90000), TaxClassification: model.ManufacturingCosts,
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CheckAcquisitionRelatedCosts(p.Purchase, tt.measures, DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Triggered)
		})
	}
}

func TestClassifyMeasure(t *testing.T) {
	p := project()
	inWindow := maintenance("in", "2026-06", 50000)
	outside := maintenance("out", "2029-06", 5000)
	manufacturing := maintenance("mfg", "2026-06", 5000)
	manufacturing.TaxClassification = model.ManufacturingCosts
	excluded := maintenance("nd", "2026-06", 5000)
	excluded.TaxClassification = model.NotDeductible

	rule, err := CheckAcquisitionRelatedCosts(p.Purchase, []model.CapExMeasure{inWindow, outside, manufacturing, excluded}, DefaultParams())
	require.NoError(t, err)
	require.True(t, rule.Triggered)

	assert.Equal(t, model.AcquisitionRelatedCosts, ClassifyMeasure(inWindow, rule, p.Purchase.Date))
	assert.Equal(t, model.MaintenanceExpense, ClassifyMeasure(outside, rule, p.Purchase.Date))
	assert.Equal(t, model.ManufacturingCosts, ClassifyMeasure(manufacturing, rule, p.Purchase.Date))
	assert.Equal(t, model.NotDeductible, ClassifyMeasure(excluded, rule, p.Purchase.Date))

	rule.Triggered = false
	assert.Equal(t, model.MaintenanceExpense, ClassifyMeasure(inWindow, rule, p.Purchase.Date))
}

func TestDistribute(t *testing.T) {
	slices, err := Distribute(eur(10000), 3, 2026)
	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, 2026, slices[0].Year)
	assert.Equal(t, 2028, slices[2].Year)
	assert.Equal(t, "3333.33", slices[0].Amount.Amount().String())
	assert.Equal(t, "3333.34", slices[2].Amount.Amount().String())

	for years := 2; years <= 5; years++ {
		slices, err := Distribute(money.New(dec("12345.67"), "EUR"), years, 2026)
		require.NoError(t, err)
		total := decimal.Zero
		for _, s := range slices {
			total = total.Add(s.Amount.Amount())
		}
		assert.Equal(t, "12345.67", total.String(), "years=%d", years)
	}

	for _, years := range []int{0, 1, 6} {
		_, err := Distribute(eur(1000), years, 2026)
		assert.ErrorIs(t, err, ErrInvalidDistributionYears)
	}
}

func TestPlan_ReclassifiedMaintenanceIsCapitalized(t *testing.T) {
	p := project()
	p.CapEx = &model.CapExConfiguration{Measures: []model.CapExMeasure{maintenance("m1", "2027-07", 50000)}}
	h := horizon(t, "2025-01", "2034-12")

	plan, err := NewPlan(p, h, DefaultParams())
	require.NoError(t, err)

	assert.True(t, plan.Rule.Triggered)
	eff, ok := plan.Classification("m1")
	require.True(t, ok)
	assert.Equal(t, model.AcquisitionRelatedCosts, eff)
	assert.True(t, plan.Classifications[0].Reclassified)

	assert.True(t, plan.Maintenance.Sum().IsZero())
	assert.Equal(t, "50000", plan.Capitalized.Amount().String())
	assert.Equal(t, "500", plan.Depreciation.Amount(period.MustParse("2027-06")).String())
	assert.Equal(t, "583.33", plan.Depreciation.Amount(period.MustParse("2027-07")).String())
}

func TestPlan_MaintenanceDeductions(t *testing.T) {
	p := project()
	distributed := maintenance("d", "2029-04", 9000)
	distributed.TaxClassification = model.MaintenanceExpenseDistributed
	distributed.DistributionYears = 3
	p.CapEx = &model.CapExConfiguration{Measures: []model.CapExMeasure{
		maintenance("m", "2030-02", 4000),
		distributed,
	}}
	h := horizon(t, "2025-01", "2030-12")

	plan, err := NewPlan(p, h, DefaultParams())
	require.NoError(t, err)
	assert.False(t, plan.Rule.Triggered)

	assert.Equal(t, "3000", plan.Maintenance.YearSum(2029).Amount().String())
	assert.Equal(t, "7000", plan.Maintenance.YearSum(2030).Amount().String())
	assert.Equal(t, "3000", plan.Maintenance.Amount(period.MustParse("2029-04")).String())
	// the 2031 slice lies beyond the horizon
	assert.Equal(t, "10000", plan.Maintenance.Sum().Amount().String())
}

func TestPlan_InvalidDistribution(t *testing.T) {
	p := project()
	m := maintenance("d", "2029-04", 9000)
	m.TaxClassification = model.MaintenanceExpenseDistributed
	m.DistributionYears = 8
	p.CapEx = &model.CapExConfiguration{Measures: []model.CapExMeasure{m}}

	_, err := NewPlan(p, horizon(t, "2025-01", "2030-12"), DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidDistributionYears)
}

func constant(h period.Horizon, amount string) *timeseries.MoneySeries {
	s := timeseries.NewMoney(h, "EUR")
	for _, ym := range h.Months() {
		_ = s.SetAmount(ym, dec(amount))
	}
	return s
}

func TestTimeSeries(t *testing.T) {
	h := horizon(t, "2025-07", "2026-12")
	zero := timeseries.NewMoney(h, "EUR")
	in := Inputs{
		Profile:         model.TaxProfile{MarginalRatePercent: dec("40")},
		GrossIncome:     constant(h, "1000"),
		Depreciation:    constant(h, "500"),
		Interest:        zero,
		Maintenance:     zero,
		OtherDeductions: zero,
	}
	res, err := TimeSeries(in)
	require.NoError(t, err)
	require.Len(t, res.Years, 2)

	// 2025: 6 months × 500 taxable = 3000 → 1200 tax → 200 per month.
	assert.Equal(t, "3000", res.Years[0].TaxableIncome.Amount().String())
	assert.Equal(t, "1200", res.Years[0].Tax.Amount().String())
	assert.Equal(t, "200", res.Tax.Amount(period.MustParse("2025-07")).String())
	assert.Equal(t, "200", res.Tax.Amount(period.MustParse("2026-12")).String())
	assert.Equal(t, "2400", res.Years[1].Tax.Amount().String())
	assert.Equal(t, "500", res.TaxableIncome.Amount(period.MustParse("2026-03")).String())
}

func TestTimeSeries_LossPaysNoTax(t *testing.T) {
	h := horizon(t, "2025-01", "2025-12")
	zero := timeseries.NewMoney(h, "EUR")
	maint := timeseries.NewMoney(h, "EUR")
	require.NoError(t, maint.SetAmount(period.MustParse("2025-05"), dec("20000")))

	res, err := TimeSeries(Inputs{
		Profile:         model.TaxProfile{MarginalRatePercent: dec("40")},
		GrossIncome:     constant(h, "1000"),
		Depreciation:    zero,
		Interest:        zero,
		Maintenance:     maint,
		OtherDeductions: zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "-8000", res.Years[0].TaxableIncome.Amount().String())
	assert.True(t, res.Tax.Sum().IsZero())
}

func TestTimeSeries_CurrencyMismatch(t *testing.T) {
	h := horizon(t, "2025-01", "2025-12")
	zero := timeseries.NewMoney(h, "EUR")
	_, err := TimeSeries(Inputs{
		GrossIncome:     constant(h, "1000"),
		Depreciation:    timeseries.NewMoney(h, "USD"),
		Interest:        zero,
		Maintenance:     zero,
		OtherDeductions: zero,
	})
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestHoldingYears(t *testing.T) {
	bought := date(2025, time.January, 1)
	assert.Equal(t, 9, HoldingYears(bought, date(2034, time.December, 31)))
	assert.Equal(t, 10, HoldingYears(bought, date(2035, time.January, 1)))
	assert.Equal(t, 0, HoldingYears(bought, date(2025, time.June, 1)))
}

func TestCapitalGainsTax_ExemptionIsThreshold(t *testing.T) {
	p := project()
	p.Purchase.Price = eur(100000)
	p.Purchase.LandValue = eur(20000)
	sale := Sale{Date: date(2030, time.January, 1), Price: eur(101000)}

	res, err := CapitalGainsTax(p.Purchase, sale, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.True(t, res.WithinSpeculationPeriod)
	assert.Equal(t, "1000", res.Gain.Amount().String())
	assert.True(t, res.Exempt)
	assert.Equal(t, ExemptBelowLimit, res.ExemptionReason)
	assert.True(t, res.Tax.IsZero())

	sale.Price = money.New(dec("101000.01"), "EUR")
	res, err = CapitalGainsTax(p.Purchase, sale, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.False(t, res.Exempt)
	assert.Equal(t, "400", res.Tax.Amount().String(), "the whole gain is taxed")
}

func TestCapitalGainsTax_Basis(t *testing.T) {
	p := project()
	p.Purchase.AcquisitionCosts = []model.AcquisitionCost{{Kind: "notary", Amount: eur(20000), Capitalizable: true}}
	sale := Sale{
		Date:                    date(2030, time.January, 1),
		Price:                   eur(500000),
		Costs:                   eur(25000),
		AccumulatedDepreciation: eur(30000),
		AdditionalBasis:         eur(10000),
	}
	res, err := CapitalGainsTax(p.Purchase, sale, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 5, res.HoldingYears)
	assert.Equal(t, "400000", res.AdjustedBasis.Amount().String())
	assert.Equal(t, "75000", res.Gain.Amount().String())
	assert.Equal(t, "30000", res.Tax.Amount().String())
}

func TestCapitalGainsTax_Exemptions(t *testing.T) {
	p := project()
	big := eur(900000)

	res, err := CapitalGainsTax(p.Purchase, Sale{Date: date(2035, time.January, 1), Price: big}, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.False(t, res.WithinSpeculationPeriod)
	assert.Equal(t, ExemptHoldingPeriod, res.ExemptionReason)
	assert.True(t, res.Tax.IsZero())

	res, err = CapitalGainsTax(p.Purchase, Sale{Date: date(2034, time.December, 31), Price: big}, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.True(t, res.WithinSpeculationPeriod)
	assert.False(t, res.Tax.IsZero())

	p.Tax.OwnerOccupied = true
	res, err = CapitalGainsTax(p.Purchase, Sale{Date: date(2027, time.January, 1), Price: big}, p.Tax, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, ExemptOwnerOccupied, res.ExemptionReason)
	assert.True(t, res.Tax.IsZero())
}

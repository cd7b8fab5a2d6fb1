package tax

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// ErrInvalidDistributionYears is returned when a maintenance expense is
// distributed over fewer than two or more than five years.
var ErrInvalidDistributionYears = errors.New("distribution years must be between 2 and 5")

// Params are the statutory constants of the tax rules.
type Params struct {
	HoldingPeriodYears          int
	CapitalGainsExemption       decimal.Decimal
	AcquisitionWindowYears      int
	AcquisitionThresholdPercent decimal.Decimal
}

// DefaultParams returns the German defaults.
func DefaultParams() Params {
	return Params{
		HoldingPeriodYears:          10,
		CapitalGainsExemption:       decimal.NewFromInt(1000),
		AcquisitionWindowYears:      3,
		AcquisitionThresholdPercent: decimal.NewFromInt(15),
	}
}

// measureDate places a measure on the first day of its month, or on the
// purchase date when both fall in the same month.
func measureDate(ym period.YearMonth, purchase time.Time) time.Time {
	d := ym.FirstDay()
	if period.Of(purchase) == ym && purchase.After(d) {
		return purchase
	}
	return d
}

// CheckAcquisitionRelatedCosts applies the 15% rule: maintenance measures
// planned within the acquisition window are summed and compared with the
// threshold share of the building value. Only the stored classification is
// considered, so the check must run before any measure is reclassified.
func CheckAcquisitionRelatedCosts(purchase model.Purchase, measures []model.CapExMeasure, params Params) (model.AcquisitionRuleResult, error) {
	building, err := purchase.BuildingValue()
	if err != nil {
		return model.AcquisitionRuleResult{}, fmt.Errorf("building value: %w", err)
	}
	res := model.AcquisitionRuleResult{
		WindowStart: purchase.Date,
		WindowEnd:   purchase.Date.AddDate(params.AcquisitionWindowYears, 0, 0),
		Threshold:   building.Mul(params.AcquisitionThresholdPercent.Div(hundred)).Round(),
		Actual:      money.Zero(building.Currency()),
		Excess:      money.Zero(building.Currency()),
	}
	for _, m := range measures {
		if !m.TaxClassification.IsMaintenance() {
			continue
		}
		if !res.InWindow(measureDate(m.PlannedPeriod, purchase.Date)) {
			continue
		}
		if res.Actual, err = res.Actual.Add(m.EstimatedCost); err != nil {
			return model.AcquisitionRuleResult{}, fmt.Errorf("measure %s: %w", m.ID, err)
		}
	}
	cmp, err := res.Actual.Cmp(res.Threshold)
	if err != nil {
		return model.AcquisitionRuleResult{}, err
	}
	if cmp > 0 {
		res.Triggered = true
		if res.Excess, err = res.Actual.Sub(res.Threshold); err != nil {
			return model.AcquisitionRuleResult{}, err
		}
	}
	return res, nil
}

// ClassifyMeasure returns the effective classification of m. Explicit
// manufacturing costs are kept; maintenance inside the window of a triggered
// 15% rule becomes acquisition-related costs; everything else keeps its
// stored classification.
func ClassifyMeasure(m model.CapExMeasure, rule model.AcquisitionRuleResult, purchaseDate time.Time) model.TaxClassification {
	switch {
	case m.TaxClassification == model.ManufacturingCosts:
		return m.TaxClassification
	case rule.Triggered && m.TaxClassification.IsMaintenance() && rule.InWindow(measureDate(m.PlannedPeriod, purchaseDate)):
		return model.AcquisitionRelatedCosts
	}
	return m.TaxClassification
}

// ClassifyAll classifies every measure in order.
func ClassifyAll(measures []model.CapExMeasure, rule model.AcquisitionRuleResult, purchaseDate time.Time) []model.MeasureClassification {
	out := make([]model.MeasureClassification, 0, len(measures))
	for _, m := range measures {
		eff := ClassifyMeasure(m, rule, purchaseDate)
		out = append(out, model.MeasureClassification{
			MeasureID:    m.ID,
			Stored:       m.TaxClassification,
			Effective:    eff,
			Reclassified: eff != m.TaxClassification,
		})
	}
	return out
}

// YearAmount is one annual slice of a distributed expense.
type YearAmount struct {
	Year   int
	Amount money.Money
}

// Distribute splits cost into years equal annual deductions starting in
// startYear. The last slice absorbs the rounding remainder so the slices sum
// to cost exactly.
func Distribute(cost money.Money, years, startYear int) ([]YearAmount, error) {
	if years < 2 || years > 5 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDistributionYears, years)
	}
	share := money.Round2(cost.Amount().Div(decimal.NewFromInt(int64(years))))
	out := make([]YearAmount, years)
	rest := cost.Amount()
	for i := range years {
		amt := share
		if i == years-1 {
			amt = rest
		}
		rest = rest.Sub(amt)
		out[i] = YearAmount{Year: startYear + i, Amount: money.New(amt, cost.Currency())}
	}
	return out, nil
}

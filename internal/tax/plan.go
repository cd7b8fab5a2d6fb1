package tax

import (
	"fmt"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// Plan is the tax treatment of the building and every CapEx measure over a
// horizon: what is depreciated, what is deducted as maintenance, and what was
// reclassified by the 15% rule.
type Plan struct {
	Building        Depreciation
	Rule            model.AcquisitionRuleResult
	Classifications []model.MeasureClassification
	// Depreciation covers the building and all capitalized CapEx.
	Depreciation *timeseries.MoneySeries
	Maintenance  *timeseries.MoneySeries
	// Capitalized is the CapEx added to the depreciation base within the horizon.
	Capitalized money.Money

	// capitalized holds one schedule per capitalized CapEx occurrence.
	capitalized []Depreciation
}

// NewPlan checks the 15% rule first and classifies afterwards; reversing the
// order would change which measures count toward the threshold.
func NewPlan(p model.Project, h period.Horizon, params Params) (*Plan, error) {
	building, err := AnnualDepreciation(p.Purchase, p.Property, p.Tax)
	if err != nil {
		return nil, err
	}
	measures := p.Measures()
	rule, err := CheckAcquisitionRelatedCosts(p.Purchase, measures, params)
	if err != nil {
		return nil, fmt.Errorf("acquisition-related costs: %w", err)
	}

	plan := &Plan{
		Building:        building,
		Rule:            rule,
		Classifications: ClassifyAll(measures, rule, p.Purchase.Date),
		Maintenance:     timeseries.NewMoney(h, p.Currency),
		Capitalized:     money.Zero(p.Currency),
	}
	if plan.Depreciation, err = building.Series(h); err != nil {
		return nil, err
	}

	for i, m := range measures {
		eff := plan.Classifications[i].Effective
		if err := plan.add(m, eff, h); err != nil {
			return nil, fmt.Errorf("measure %s: %w", m.ID, err)
		}
	}
	return plan, nil
}

// AccumulatedBefore is the depreciation of the building and the capitalized
// CapEx from the purchase month up to, not including, ym. Months before the
// horizon start count too.
func (plan *Plan) AccumulatedBefore(ym period.YearMonth) money.Money {
	total := plan.Building.AccumulatedBefore(ym)
	for _, d := range plan.capitalized {
		total = total.Add(d.AccumulatedBefore(ym))
	}
	return money.New(total, plan.Building.Base.Currency())
}

func (plan *Plan) add(m model.CapExMeasure, eff model.TaxClassification, h period.Horizon) error {
	cur := m.EstimatedCost.Currency()
	for i, occ := range m.Occurrences(h) {
		cost := money.New(occ.Cost, cur)
		switch {
		case eff.IsCapitalized():
			d := capitalized(cost, occ.Period, plan.Building.RatePercent)
			if err := d.addTo(plan.Depreciation); err != nil {
				return err
			}
			plan.capitalized = append(plan.capitalized, d)
			var err error
			if plan.Capitalized, err = plan.Capitalized.Add(cost); err != nil {
				return err
			}
		case eff == model.MaintenanceExpenseDistributed && i == 0:
			slices, err := Distribute(cost, m.DistributionYears, occ.Period.Year)
			if err != nil {
				return err
			}
			for _, s := range slices {
				ym, ok := clampYear(h, s.Year, occ.Period.Month)
				if !ok {
					continue
				}
				if err := plan.Maintenance.AddAmount(ym, s.Amount.Amount()); err != nil {
					return err
				}
			}
		case eff.IsMaintenance():
			if err := plan.Maintenance.AddAmount(occ.Period, occ.Cost); err != nil {
				return err
			}
		}
	}
	return nil
}

// clampYear returns (year, month) moved into h, or false when year lies
// outside h entirely.
func clampYear(h period.Horizon, year, month int) (period.YearMonth, bool) {
	if year < h.Start.Year || year > h.End.Year {
		return period.YearMonth{}, false
	}
	ym := period.YearMonth{Year: year, Month: month}
	if ym.Before(h.Start) {
		return h.Start, true
	}
	if ym.After(h.End) {
		return h.End, true
	}
	return ym, true
}

// Classification returns the effective classification of the measure id.
func (plan *Plan) Classification(id string) (model.TaxClassification, bool) {
	for _, c := range plan.Classifications {
		if c.MeasureID == id {
			return c.Effective, true
		}
	}
	return "", false
}

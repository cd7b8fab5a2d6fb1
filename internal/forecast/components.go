package forecast

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
)

// agingExponent shapes the deterioration curve: slow at first, steep near
// the end of the cycle.
const agingExponent = 4

// agingFraction is min(1, (age/cycle)^4).
func agingFraction(age, cycle float64) float64 {
	if age <= 0 {
		return 0
	}
	if cycle <= 0 {
		return 1
	}
	return math.Min(1, math.Pow(age/cycle, agingExponent))
}

// componentPath is the cost-based deterioration of one component.
type componentPath struct {
	forecast model.ComponentForecast
	// impacts holds the cumulative value impact at the end of each horizon year.
	impacts []float64
	overdue bool
}

// renewalCost is the category's maximum unit cost times the relevant area,
// rounded to the nearest 100.
func (in *inputs) renewalCost(c component) decimal.Decimal {
	prof := c.cond.Category.Profile()
	prop := in.project.Property
	var area decimal.Decimal
	switch prof.Basis {
	case model.AreaTotal:
		area = prop.TotalArea
		if area.IsZero() {
			area = prop.LivingArea
		}
	case model.AreaWindows:
		area = prop.WindowProxy()
	case model.AreaUnit:
		area = c.unitArea
		if c.unitID == "" {
			area = prop.LivingArea
		}
	default:
		area = prop.LivingArea
	}
	cost := prof.MaxUnitCost.Mul(area)
	return cost.Div(hundred).Round(0).Mul(hundred)
}

// cycleExtension returns the largest recurring-maintenance extension in
// percent that applies to c.
func (in *inputs) cycleExtension(c component) decimal.Decimal {
	ext := decimal.Zero
	for _, m := range in.project.Measures() {
		if m.Recurring == nil || m.Category != c.cond.Category {
			continue
		}
		if m.UnitID != "" && m.UnitID != c.unitID {
			continue
		}
		ext = decimal.Max(ext, m.Recurring.CycleExtensionPercent)
	}
	return ext
}

func (in *inputs) componentPaths() []componentPath {
	years := in.horizon.Years()
	start, end := years[0], years[len(years)-1]
	built := in.project.Property.ConstructionYear
	cur := in.project.Currency

	out := make([]componentPath, 0, len(in.components))
	for _, c := range in.components {
		cost := in.renewalCost(c)
		costF := cost.InexactFloat64()
		cycle := c.cond.CycleYears()
		ext := in.cycleExtension(c).InexactFloat64()
		effCycle := float64(cycle) * (1 + ext/100)
		last := c.cond.RenovatedIn(built)
		age0 := float64(start - last)
		due := last + int(math.Round(effCycle))

		renewed := 0
		for _, o := range in.occurrences {
			if o.matches(c.cond.Category, c.unitID) && o.period.Year >= due {
				renewed = o.period.Year
				break
			}
		}

		path := componentPath{impacts: make([]float64, len(years))}
		base := agingFraction(age0, effCycle)
		for i, y := range years {
			if renewed > 0 && y >= renewed {
				path.impacts[i] = -costF * agingFraction(float64(y-renewed), effCycle)
				continue
			}
			path.impacts[i] = -costF * (agingFraction(float64(y-last), effCycle) - base)
		}

		status := model.ComponentOK
		switch {
		case renewed > 0:
			status = model.ComponentRenewed
		case age0 >= effCycle:
			status = model.ComponentOverdueAtPurchase
		case due <= end:
			status = model.ComponentOverdue
		}
		path.overdue = status == model.ComponentOverdue || status == model.ComponentOverdueAtPurchase

		path.forecast = model.ComponentForecast{
			Category:            c.cond.Category,
			UnitID:              c.unitID,
			RenewalCost:         money.New(cost, cur),
			CycleYears:          cycle,
			EffectiveCycleYears: math.Round(effCycle*10) / 10,
			AgeAtStart:          start - last,
			DueYear:             due,
			Status:              status,
			RenewedYear:         renewed,
			ValueImpact:         money.New(toMoney(path.impacts[len(years)-1]), cur),
		}
		out = append(out, path)
	}
	return out
}

// recurring reports every recurring measure.
func (in *inputs) recurring() []model.RecurringMaintenance {
	var out []model.RecurringMaintenance
	for _, m := range in.project.Measures() {
		if m.Recurring == nil {
			continue
		}
		cost := money.Round2(m.EstimatedCost.Amount().Mul(m.Recurring.CostPercent).Div(hundred))
		out = append(out, model.RecurringMaintenance{
			MeasureID:         m.ID,
			Category:          m.Category,
			IntervalYears:     m.Recurring.IntervalYears(m.Category.Profile().CycleYears),
			Occurrences:       len(m.Occurrences(in.horizon)),
			CostPerOccurrence: money.New(cost, m.EstimatedCost.Currency()),
		})
	}
	return out
}

// toMoney converts a float amount to cents.
func toMoney(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

var hundred = decimal.NewFromInt(100)

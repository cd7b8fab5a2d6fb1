package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/period"
)

// Scenario names.
const (
	Conservative = "conservative"
	Base         = "base"
	Optimistic   = "optimistic"
)

// Rate is one named appreciation scenario.
type Rate struct {
	Name    string
	Percent decimal.Decimal
}

// Params tune the forecast.
type Params struct {
	Scenarios                  []Rate
	MeanReversionHalfLifeYears float64
	ImprovementUpliftPercent   decimal.Decimal
}

// DefaultParams returns the three standard scenarios with a seven-year
// mean-reversion half-life and a 70% improvement uplift.
func DefaultParams() Params {
	return Params{
		Scenarios: []Rate{
			{Name: Conservative, Percent: decimal.Zero},
			{Name: Base, Percent: decimal.RequireFromString("1.5")},
			{Name: Optimistic, Percent: decimal.NewFromInt(3)},
		},
		MeanReversionHalfLifeYears: 7,
		ImprovementUpliftPercent:   decimal.NewFromInt(70),
	}
}

// BaseRate returns the rate of the base scenario, or zero.
func (p Params) BaseRate() decimal.Decimal {
	for _, r := range p.Scenarios {
		if r.Name == Base {
			return r.Percent
		}
	}
	return decimal.Zero
}

// occurrence is one dated CapEx payment with its effective classification.
type occurrence struct {
	measureID string
	category  model.Category
	unitID    string
	period    period.YearMonth
	cost      decimal.Decimal
	class     model.TaxClassification
}

// matches reports whether the occurrence addresses a component. A measure
// without a unit applies to the component in every unit.
func (o occurrence) matches(cat model.Category, unitID string) bool {
	if o.category != cat {
		return false
	}
	return o.unitID == "" || o.unitID == unitID
}

// component is one recorded building or unit component.
type component struct {
	cond          model.ComponentCondition
	unitID        string
	unitArea      decimal.Decimal
	initialFactor float64
}

func (c component) label() string {
	if c.unitID == "" {
		return string(c.cond.Category)
	}
	return string(c.cond.Category) + " (" + c.unitID + ")"
}

// inputs is the read-only data shared by every scenario goroutine.
type inputs struct {
	project       model.Project
	horizon       period.Horizon
	params        Params
	initialFactor float64
	components    []component
	occurrences   []occurrence
}

func newInputs(p model.Project, h period.Horizon, classes map[string]model.TaxClassification, params Params) *inputs {
	initial := p.Property.Condition.Factor()
	in := &inputs{project: p, horizon: h, params: params, initialFactor: initial}

	factorOf := func(c model.ComponentCondition) float64 {
		if c.Condition == "" {
			return initial
		}
		return c.Condition.Factor()
	}
	for _, c := range p.Property.Components {
		in.components = append(in.components, component{cond: c, initialFactor: factorOf(c)})
	}
	for _, u := range p.Property.Units {
		for _, c := range u.Components {
			in.components = append(in.components, component{cond: c, unitID: u.ID, unitArea: u.Area, initialFactor: factorOf(c)})
		}
	}

	for _, m := range p.Measures() {
		class, ok := classes[m.ID]
		if !ok {
			class = m.TaxClassification
		}
		for _, o := range m.Occurrences(h) {
			in.occurrences = append(in.occurrences, occurrence{
				measureID: m.ID,
				category:  m.Category,
				unitID:    m.UnitID,
				period:    o.Period,
				cost:      o.Cost,
				class:     class,
			})
		}
	}
	return in
}

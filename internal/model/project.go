package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// Project is the immutable description of one investment. Calculators never
// modify a Project; scenario overrides go through Builder.
type Project struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name,omitempty" json:"name,omitempty"`
	Currency    string           `yaml:"currency" json:"currency"`
	StartPeriod period.YearMonth `yaml:"start_period" json:"startPeriod"`
	EndPeriod   period.YearMonth `yaml:"end_period" json:"endPeriod"`

	Property  Property          `yaml:"property" json:"property"`
	Purchase  Purchase          `yaml:"purchase" json:"purchase"`
	Financing Financing         `yaml:"financing" json:"financing"`
	Rent      RentConfiguration `yaml:"rent" json:"rent"`
	Costs     CostConfiguration `yaml:"costs" json:"costs"`
	Tax       TaxProfile        `yaml:"tax" json:"tax"`

	CapEx     *CapExConfiguration     `yaml:"capex,omitempty" json:"capex,omitempty"`
	Investor  *InvestorConfiguration  `yaml:"investor,omitempty" json:"investor,omitempty"`
	Valuation *ValuationConfiguration `yaml:"valuation,omitempty" json:"valuation,omitempty"`

	Scenarios []Scenario `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
}

// Horizon returns [StartPeriod, EndPeriod].
func (p Project) Horizon() (period.Horizon, error) {
	return period.NewHorizon(p.StartPeriod, p.EndPeriod)
}

// Measures returns the CapEx measures, or nil.
func (p Project) Measures() []CapExMeasure {
	if p.CapEx == nil {
		return nil
	}
	return p.CapEx.Measures
}

// Scenario returns the scenario with id.
func (p Project) Scenario(id string) (Scenario, bool) {
	for _, s := range p.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// Condition is the overall or per-component state of the building.
type Condition string

const (
	ConditionNew             Condition = "new"
	ConditionGood            Condition = "good"
	ConditionFair            Condition = "fair"
	ConditionPoor            Condition = "poor"
	ConditionNeedsRenovation Condition = "needs_renovation"
)

// Factor maps a condition to its value factor in (0, 1].
func (c Condition) Factor() float64 {
	switch c {
	case ConditionNew:
		return 1.0
	case ConditionGood:
		return 0.9
	case ConditionFair:
		return 0.8
	case ConditionPoor:
		return 0.65
	case ConditionNeedsRenovation:
		return 0.5
	}
	return 0.8
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsRenovation:
		return true
	}
	return false
}

// Property describes the physical building.
type Property struct {
	ConstructionYear int                  `yaml:"construction_year" json:"constructionYear"`
	Condition        Condition            `yaml:"condition" json:"condition"`
	TotalArea        decimal.Decimal      `yaml:"total_area" json:"totalArea"`
	LivingArea       decimal.Decimal      `yaml:"living_area" json:"livingArea"`
	WindowCount      int                  `yaml:"window_count,omitempty" json:"windowCount,omitempty"`
	Units            []Unit               `yaml:"units,omitempty" json:"units,omitempty"`
	Components       []ComponentCondition `yaml:"components,omitempty" json:"components,omitempty"`
}

// Unit is a rentable sub-area with its own interior components.
type Unit struct {
	ID         string               `yaml:"id" json:"id"`
	Name       string               `yaml:"name,omitempty" json:"name,omitempty"`
	Area       decimal.Decimal      `yaml:"area" json:"area"`
	Components []ComponentCondition `yaml:"components,omitempty" json:"components,omitempty"`
}

// ComponentCondition records the state of one component.
type ComponentCondition struct {
	Category           Category  `yaml:"category" json:"category"`
	Condition          Condition `yaml:"condition" json:"condition"`
	LastRenovationYear int       `yaml:"last_renovation_year,omitempty" json:"lastRenovationYear,omitempty"`
	ExpectedCycleYears int       `yaml:"expected_cycle_years,omitempty" json:"expectedCycleYears,omitempty"`
}

// CycleYears returns the configured cycle or the category default.
func (c ComponentCondition) CycleYears() int {
	if c.ExpectedCycleYears > 0 {
		return c.ExpectedCycleYears
	}
	return c.Category.Profile().CycleYears
}

// RenovatedIn returns the last renovation year, defaulting to the construction year.
func (c ComponentCondition) RenovatedIn(constructionYear int) int {
	if c.LastRenovationYear > 0 {
		return c.LastRenovationYear
	}
	return constructionYear
}

// HasComponentData reports whether any building or unit component is recorded.
func (p Property) HasComponentData() bool {
	if len(p.Components) > 0 {
		return true
	}
	for _, u := range p.Units {
		if len(u.Components) > 0 {
			return true
		}
	}
	return false
}

// Unit returns the unit with id.
func (p Property) Unit(id string) (Unit, bool) {
	for _, u := range p.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// WindowProxy returns the window count, estimated from living area when unknown.
func (p Property) WindowProxy() decimal.Decimal {
	if p.WindowCount > 0 {
		return decimal.NewFromInt(int64(p.WindowCount))
	}
	n := p.LivingArea.Div(decimal.NewFromInt(15)).Round(0)
	if n.LessThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return n
}

// Purchase describes the acquisition.
type Purchase struct {
	Price     money.Money `yaml:"price" json:"price"`
	LandValue money.Money `yaml:"land_value,omitempty" json:"landValue"`
	// LandSharePercent derives the land value from the price when LandValue is unset.
	LandSharePercent decimal.Decimal   `yaml:"land_share_percent,omitempty" json:"landSharePercent,omitempty"`
	Date             time.Time         `yaml:"date" json:"date"`
	AcquisitionCosts []AcquisitionCost `yaml:"acquisition_costs,omitempty" json:"acquisitionCosts,omitempty"`
}

// AcquisitionCost is one ancillary purchase cost (transfer tax, notary, broker, ...).
type AcquisitionCost struct {
	Kind          string      `yaml:"kind" json:"kind"`
	Amount        money.Money `yaml:"amount" json:"amount"`
	Capitalizable bool        `yaml:"capitalizable" json:"capitalizable"`
}

// Land returns the land value, derived from LandSharePercent when not given.
func (p Purchase) Land() money.Money {
	if p.LandValue.Currency() != "" {
		return p.LandValue
	}
	return money.New(money.Round2(p.Price.Amount().Mul(p.LandSharePercent).Div(hundred)), p.Price.Currency())
}

// BuildingValue is price minus land value.
func (p Purchase) BuildingValue() (money.Money, error) {
	return p.Price.Sub(p.Land())
}

// AcquisitionCostTotal sums every acquisition cost.
func (p Purchase) AcquisitionCostTotal() (money.Money, error) {
	total := money.Zero(p.Price.Currency())
	for _, c := range p.AcquisitionCosts {
		var err error
		if total, err = total.Add(c.Amount); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// CapitalizableCosts sums the acquisition costs that enter the depreciation base.
func (p Purchase) CapitalizableCosts() (money.Money, error) {
	total := money.Zero(p.Price.Currency())
	for _, c := range p.AcquisitionCosts {
		if !c.Capitalizable {
			continue
		}
		var err error
		if total, err = total.Add(c.Amount); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// TotalInvestment is price plus all acquisition costs.
func (p Purchase) TotalInvestment() (money.Money, error) {
	costs, err := p.AcquisitionCostTotal()
	if err != nil {
		return money.Money{}, err
	}
	return p.Price.Add(costs)
}

// DepreciationBase is the building value plus capitalizable acquisition costs.
func (p Purchase) DepreciationBase() (money.Money, error) {
	building, err := p.BuildingValue()
	if err != nil {
		return money.Money{}, err
	}
	costs, err := p.CapitalizableCosts()
	if err != nil {
		return money.Money{}, err
	}
	return building.Add(costs)
}

// Period returns the purchase month.
func (p Purchase) Period() period.YearMonth { return period.Of(p.Date) }

var hundred = decimal.NewFromInt(100)

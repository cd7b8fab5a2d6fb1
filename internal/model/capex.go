package model

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// TaxClassification controls how a measure's cost reaches the tax base.
type TaxClassification string

const (
	MaintenanceExpense            TaxClassification = "maintenance_expense"
	MaintenanceExpenseDistributed TaxClassification = "maintenance_expense_distributed"
	ManufacturingCosts            TaxClassification = "manufacturing_costs"
	AcquisitionRelatedCosts       TaxClassification = "acquisition_related_costs"
	NotDeductible                 TaxClassification = "not_deductible"
)

// IsMaintenance reports whether c is deducted as maintenance.
func (c TaxClassification) IsMaintenance() bool {
	return c == MaintenanceExpense || c == MaintenanceExpenseDistributed
}

// IsCapitalized reports whether c enters the depreciation base.
func (c TaxClassification) IsCapitalized() bool {
	return c == ManufacturingCosts || c == AcquisitionRelatedCosts
}

// Valid reports whether c is a known classification.
func (c TaxClassification) Valid() bool {
	return c.IsMaintenance() || c.IsCapitalized() || c == NotDeductible
}

// Priority ranks measures for planning.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// CapExConfiguration lists planned capital expenditures.
type CapExConfiguration struct {
	Measures []CapExMeasure `yaml:"measures,omitempty" json:"measures,omitempty"`
}

// CapExMeasure is one planned or executed building measure.
type CapExMeasure struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name,omitempty" json:"name,omitempty"`
	Category          Category          `yaml:"category" json:"category"`
	UnitID            string            `yaml:"unit_id,omitempty" json:"unitId,omitempty"`
	PlannedPeriod     period.YearMonth  `yaml:"planned" json:"planned"`
	EstimatedCost     money.Money       `yaml:"estimated_cost" json:"estimatedCost"`
	TaxClassification TaxClassification `yaml:"tax_classification" json:"taxClassification"`
	DistributionYears int               `yaml:"distribution_years,omitempty" json:"distributionYears,omitempty"`
	Recurring         *RecurringConfig  `yaml:"recurring,omitempty" json:"recurring,omitempty"`
	Impact            *EconomicImpact   `yaml:"impact,omitempty" json:"impact,omitempty"`
	Executed          bool              `yaml:"executed,omitempty" json:"executed,omitempty"`
	Priority          Priority          `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// RecurringConfig turns a measure into a maintenance cycle. All values are
// percentages: the interval as a share of the component cycle, the cost per
// occurrence as a share of the estimated cost, and the cycle extension.
type RecurringConfig struct {
	IntervalPercent       decimal.Decimal `yaml:"interval_percent" json:"intervalPercent"`
	CostPercent           decimal.Decimal `yaml:"cost_percent" json:"costPercent"`
	CycleExtensionPercent decimal.Decimal `yaml:"cycle_extension_percent" json:"cycleExtensionPercent"`
}

// EconomicImpact is the monthly effect of a measure from its planned period on.
type EconomicImpact struct {
	MonthlyCostSavings  money.Money `yaml:"monthly_cost_savings,omitempty" json:"monthlyCostSavings"`
	MonthlyRentIncrease money.Money `yaml:"monthly_rent_increase,omitempty" json:"monthlyRentIncrease"`
}

// IntervalYears returns the recurrence interval for a component cycle, at least one year.
func (r RecurringConfig) IntervalYears(cycleYears int) int {
	n := decimal.NewFromInt(int64(cycleYears)).Mul(r.IntervalPercent).Div(hundred).Round(0).IntPart()
	if n < 1 {
		return 1
	}
	return int(n)
}

// Occurrence is one payment of a (possibly recurring) measure.
type Occurrence struct {
	Period period.YearMonth
	Cost   decimal.Decimal
}

// Occurrences lists the payments of m inside h: the planned period itself and,
// for recurring measures, every interval after it.
func (m CapExMeasure) Occurrences(h period.Horizon) []Occurrence {
	var out []Occurrence
	if h.Contains(m.PlannedPeriod) {
		out = append(out, Occurrence{Period: m.PlannedPeriod, Cost: m.EstimatedCost.Amount()})
	}
	if m.Recurring == nil {
		return out
	}
	interval := m.Recurring.IntervalYears(m.Category.Profile().CycleYears)
	cost := money.Round2(m.EstimatedCost.Amount().Mul(m.Recurring.CostPercent).Div(hundred))
	for ym := m.PlannedPeriod.AddYears(interval); !ym.After(h.End); ym = ym.AddYears(interval) {
		if h.Contains(ym) {
			out = append(out, Occurrence{Period: ym, Cost: cost})
		}
	}
	return out
}

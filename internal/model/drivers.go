package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
)

// DriverKind tags a forecast driver.
type DriverKind string

const (
	DriverInitialCondition   DriverKind = "initial_condition"
	DriverOverdueComponents  DriverKind = "overdue_components"
	DriverDegradation        DriverKind = "degradation"
	DriverInvestments        DriverKind = "investments"
	DriverMarketAppreciation DriverKind = "market_appreciation"
	DriverMeanReversion      DriverKind = "mean_reversion"
	DriverSummary            DriverKind = "summary"
)

// Driver explains one influence on a forecast scenario. Drivers are
// descriptive only; nothing downstream reads them.
type Driver interface {
	Kind() DriverKind
	Summary() string
}

type InitialConditionDriver struct {
	Condition Condition `json:"condition" yaml:"condition"`
	Factor    float64   `json:"factor" yaml:"factor"`
}

type OverdueComponentsDriver struct {
	Components  []string    `json:"components" yaml:"components"`
	TotalImpact money.Money `json:"totalImpact" yaml:"total_impact"`
}

type DegradationDriver struct {
	AverageAnnualRate float64 `json:"averageAnnualRate" yaml:"average_annual_rate"`
	FinalFactor       float64 `json:"finalFactor" yaml:"final_factor"`
}

type InvestmentDriver struct {
	Measures         int         `json:"measures" yaml:"measures"`
	CapitalizedCosts money.Money `json:"capitalizedCosts" yaml:"capitalized_costs"`
	Uplift           money.Money `json:"uplift" yaml:"uplift"`
}

type MarketAppreciationDriver struct {
	RatePercent decimal.Decimal `json:"ratePercent" yaml:"rate_percent"`
	Years       int             `json:"years" yaml:"years"`
	MarketValue money.Money     `json:"marketValue" yaml:"market_value"`
}

type MeanReversionDriver struct {
	FairValue     money.Money `json:"fairValue" yaml:"fair_value"`
	Gap           money.Money `json:"gap" yaml:"gap"`
	HalfLifeYears float64     `json:"halfLifeYears" yaml:"half_life_years"`
	ClosedPortion float64     `json:"closedPortion" yaml:"closed_portion"`
	Adjustment    money.Money `json:"adjustment" yaml:"adjustment"`
}

type SummaryDriver struct {
	StartValue    money.Money     `json:"startValue" yaml:"start_value"`
	FinalValue    money.Money     `json:"finalValue" yaml:"final_value"`
	ChangePercent decimal.Decimal `json:"changePercent" yaml:"change_percent"`
}

func (InitialConditionDriver) Kind() DriverKind   { return DriverInitialCondition }
func (OverdueComponentsDriver) Kind() DriverKind  { return DriverOverdueComponents }
func (DegradationDriver) Kind() DriverKind        { return DriverDegradation }
func (InvestmentDriver) Kind() DriverKind         { return DriverInvestments }
func (MarketAppreciationDriver) Kind() DriverKind { return DriverMarketAppreciation }
func (MeanReversionDriver) Kind() DriverKind      { return DriverMeanReversion }
func (SummaryDriver) Kind() DriverKind            { return DriverSummary }

func (d InitialConditionDriver) Summary() string {
	return fmt.Sprintf("initial condition %s (factor %.2f)", d.Condition, d.Factor)
}

func (d OverdueComponentsDriver) Summary() string {
	return fmt.Sprintf("%d overdue component(s), value impact %s", len(d.Components), d.TotalImpact)
}

func (d DegradationDriver) Summary() string {
	return fmt.Sprintf("average degradation %.2f%%/yr, final condition factor %.3f", d.AverageAnnualRate*100, d.FinalFactor)
}

func (d InvestmentDriver) Summary() string {
	return fmt.Sprintf("%d value-adding measure(s) costing %s, uplift %s", d.Measures, d.CapitalizedCosts, d.Uplift)
}

func (d MarketAppreciationDriver) Summary() string {
	return fmt.Sprintf("market appreciation %s%%/yr over %d years to %s", d.RatePercent, d.Years, d.MarketValue)
}

func (d MeanReversionDriver) Summary() string {
	return fmt.Sprintf("fair value %s, gap %s, %.0f%% closed, adjustment %s", d.FairValue, d.Gap, d.ClosedPortion*100, d.Adjustment)
}

func (d SummaryDriver) Summary() string {
	return fmt.Sprintf("value %s -> %s (%s%%)", d.StartValue, d.FinalValue, d.ChangePercent.StringFixed(1))
}

// Drivers is an ordered list of drivers that encodes each entry with its kind.
type Drivers []Driver

// MarshalJSON writes [{"kind": ..., "summary": ..., "data": {...}}, ...].
func (ds Drivers) MarshalJSON() ([]byte, error) {
	type tagged struct {
		Kind    DriverKind `json:"kind"`
		Summary string     `json:"summary"`
		Data    Driver     `json:"data"`
	}
	out := make([]tagged, len(ds))
	for i, d := range ds {
		out[i] = tagged{Kind: d.Kind(), Summary: d.Summary(), Data: d}
	}
	return json.Marshal(out)
}

// Of returns the first driver of kind.
func (ds Drivers) Of(kind DriverKind) (Driver, bool) {
	for _, d := range ds {
		if d.Kind() == kind {
			return d, true
		}
	}
	return nil, false
}

package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// CalculationResult is the complete, read-only report of one calculation run.
type CalculationResult struct {
	ProjectID  string         `json:"projectId" yaml:"project_id"`
	ScenarioID string         `json:"scenarioId,omitempty" yaml:"scenario_id,omitempty"`
	Currency   string         `json:"currency" yaml:"currency"`
	Horizon    period.Horizon `json:"horizon" yaml:"horizon"`

	Series   CashflowSeries    `json:"series" yaml:"-"`
	Loans    []LoanSummary     `json:"loans,omitempty" yaml:"loans,omitempty"`
	Metrics  InvestmentMetrics `json:"metrics" yaml:"metrics"`
	Tax      TaxSummary        `json:"tax" yaml:"tax"`
	Warnings []Warning         `json:"warnings" yaml:"warnings"`

	Forecast *PropertyValueForecast `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	Exit     *ExitAnalysis          `json:"exit,omitempty" yaml:"exit,omitempty"`
}

// HasWarning reports whether a warning with code was raised.
func (r *CalculationResult) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// CashflowSeries holds one monthly series per line item.
type CashflowSeries struct {
	GrossRent             *timeseries.MoneySeries `json:"grossRent"`
	VacancyLoss           *timeseries.MoneySeries `json:"vacancyLoss"`
	EffectiveRent         *timeseries.MoneySeries `json:"effectiveRent"`
	OperatingCosts        *timeseries.MoneySeries `json:"operatingCosts"`
	NetOperatingIncome    *timeseries.MoneySeries `json:"netOperatingIncome"`
	ReserveContributions  *timeseries.MoneySeries `json:"reserveContributions"`
	CapExPayments         *timeseries.MoneySeries `json:"capexPayments"`
	Interest              *timeseries.MoneySeries `json:"interest"`
	Principal             *timeseries.MoneySeries `json:"principal"`
	CommitmentFees        *timeseries.MoneySeries `json:"commitmentFees"`
	Disagio               *timeseries.MoneySeries `json:"disagio"`
	DebtService           *timeseries.MoneySeries `json:"debtService"`
	OutstandingBalance    *timeseries.MoneySeries `json:"outstandingBalance"`
	CashflowBeforeTax     *timeseries.MoneySeries `json:"cashflowBeforeTax"`
	Depreciation          *timeseries.MoneySeries `json:"depreciation"`
	MaintenanceDeductions *timeseries.MoneySeries `json:"maintenanceDeductions"`
	TaxableIncome         *timeseries.MoneySeries `json:"taxableIncome"`
	TaxPayment            *timeseries.MoneySeries `json:"taxPayment"`
	CashflowAfterTax      *timeseries.MoneySeries `json:"cashflowAfterTax"`
	CumulativeCashflow    *timeseries.MoneySeries `json:"cumulativeCashflow"`
	ReserveBalance        *timeseries.MoneySeries `json:"reserveBalance"`
	PropertyValue         *timeseries.MoneySeries `json:"propertyValue"`
}

// NamedSeries pairs a series with its export column name.
type NamedSeries struct {
	Name   string
	Series *timeseries.MoneySeries
}

// Named lists the series in report order.
func (c CashflowSeries) Named() []NamedSeries {
	return []NamedSeries{
		{"gross_rent", c.GrossRent},
		{"vacancy_loss", c.VacancyLoss},
		{"effective_rent", c.EffectiveRent},
		{"operating_costs", c.OperatingCosts},
		{"net_operating_income", c.NetOperatingIncome},
		{"reserve_contributions", c.ReserveContributions},
		{"capex_payments", c.CapExPayments},
		{"interest", c.Interest},
		{"principal", c.Principal},
		{"commitment_fees", c.CommitmentFees},
		{"disagio", c.Disagio},
		{"debt_service", c.DebtService},
		{"outstanding_balance", c.OutstandingBalance},
		{"cashflow_before_tax", c.CashflowBeforeTax},
		{"depreciation", c.Depreciation},
		{"maintenance_deductions", c.MaintenanceDeductions},
		{"taxable_income", c.TaxableIncome},
		{"tax_payment", c.TaxPayment},
		{"cashflow_after_tax", c.CashflowAfterTax},
		{"cumulative_cashflow", c.CumulativeCashflow},
		{"reserve_balance", c.ReserveBalance},
		{"property_value", c.PropertyValue},
	}
}

// Freeze makes every series read-only.
func (c CashflowSeries) Freeze() {
	for _, n := range c.Named() {
		if n.Series != nil {
			n.Series.Freeze()
		}
	}
}

// LoanSummary condenses one amortization schedule.
type LoanSummary struct {
	LoanID        string            `json:"loanId" yaml:"loan_id"`
	Type          LoanType          `json:"type" yaml:"type"`
	Principal     money.Money       `json:"principal" yaml:"principal"`
	TotalInterest money.Money       `json:"totalInterest" yaml:"total_interest"`
	TotalRepaid   money.Money       `json:"totalRepaid" yaml:"total_repaid"`
	TotalFees     money.Money       `json:"totalFees" yaml:"total_fees"`
	BalanceAtEnd  money.Money       `json:"balanceAtEnd" yaml:"balance_at_end"`
	PaidOffIn     *period.YearMonth `json:"paidOffIn,omitempty" yaml:"paid_off_in,omitempty"`
}

// InvestmentMetrics summarizes return and risk.
type InvestmentMetrics struct {
	TotalInvestment       money.Money       `json:"totalInvestment" yaml:"total_investment"`
	EquityInvested        money.Money       `json:"equityInvested" yaml:"equity_invested"`
	TotalDebt             money.Money       `json:"totalDebt" yaml:"total_debt"`
	GrossYieldPercent     decimal.Decimal   `json:"grossYieldPercent" yaml:"gross_yield_percent"`
	NetYieldPercent       decimal.Decimal   `json:"netYieldPercent" yaml:"net_yield_percent"`
	CashOnCashPercent     decimal.Decimal   `json:"cashOnCashPercent" yaml:"cash_on_cash_percent"`
	MinDSCR               decimal.Decimal   `json:"minDscr" yaml:"min_dscr"`
	AverageDSCR           decimal.Decimal   `json:"averageDscr" yaml:"average_dscr"`
	MinICR                decimal.Decimal   `json:"minIcr" yaml:"min_icr"`
	InitialLTVPercent     decimal.Decimal   `json:"initialLtvPercent" yaml:"initial_ltv_percent"`
	IRRPercent            decimal.Decimal   `json:"irrPercent" yaml:"irr_percent"`
	NPV                   money.Money       `json:"npv" yaml:"npv"`
	EquityMultiple        decimal.Decimal   `json:"equityMultiple" yaml:"equity_multiple"`
	TotalCashflowAfterTax money.Money       `json:"totalCashflowAfterTax" yaml:"total_cashflow_after_tax"`
	BreakEvenPeriod       *period.YearMonth `json:"breakEvenPeriod,omitempty" yaml:"break_even_period,omitempty"`
}

// AcquisitionRuleResult is the outcome of the 15% rule check.
type AcquisitionRuleResult struct {
	WindowStart time.Time   `json:"windowStart" yaml:"window_start"`
	WindowEnd   time.Time   `json:"windowEnd" yaml:"window_end"`
	Threshold   money.Money `json:"threshold" yaml:"threshold"`
	Actual      money.Money `json:"actual" yaml:"actual"`
	Excess      money.Money `json:"excess" yaml:"excess"`
	Triggered   bool        `json:"triggered" yaml:"triggered"`
}

// InWindow reports whether t falls in [WindowStart, WindowEnd).
func (r AcquisitionRuleResult) InWindow(t time.Time) bool {
	return !t.Before(r.WindowStart) && t.Before(r.WindowEnd)
}

// MeasureClassification records the effective tax treatment of a measure.
type MeasureClassification struct {
	MeasureID    string            `json:"measureId" yaml:"measure_id"`
	Stored       TaxClassification `json:"stored" yaml:"stored"`
	Effective    TaxClassification `json:"effective" yaml:"effective"`
	Reclassified bool              `json:"reclassified" yaml:"reclassified"`
}

// YearlyTax is one calendar year of the tax computation.
type YearlyTax struct {
	Year            int         `json:"year" yaml:"year"`
	GrossIncome     money.Money `json:"grossIncome" yaml:"gross_income"`
	Depreciation    money.Money `json:"depreciation" yaml:"depreciation"`
	Interest        money.Money `json:"interest" yaml:"interest"`
	Maintenance     money.Money `json:"maintenance" yaml:"maintenance"`
	OtherDeductions money.Money `json:"otherDeductions" yaml:"other_deductions"`
	TaxableIncome   money.Money `json:"taxableIncome" yaml:"taxable_income"`
	Tax             money.Money `json:"tax" yaml:"tax"`
}

// CapitalGainsResult is the point-in-time tax on a sale.
type CapitalGainsResult struct {
	SaleDate                time.Time   `json:"saleDate" yaml:"sale_date"`
	HoldingYears            int         `json:"holdingYears" yaml:"holding_years"`
	WithinSpeculationPeriod bool        `json:"withinSpeculationPeriod" yaml:"within_speculation_period"`
	Exempt                  bool        `json:"exempt" yaml:"exempt"`
	ExemptionReason         string      `json:"exemptionReason,omitempty" yaml:"exemption_reason,omitempty"`
	SalePrice               money.Money `json:"salePrice" yaml:"sale_price"`
	SaleCosts               money.Money `json:"saleCosts" yaml:"sale_costs"`
	AdjustedBasis           money.Money `json:"adjustedBasis" yaml:"adjusted_basis"`
	Gain                    money.Money `json:"gain" yaml:"gain"`
	Tax                     money.Money `json:"tax" yaml:"tax"`
}

// TaxSummary aggregates the tax side of a run.
type TaxSummary struct {
	DepreciationRatePercent decimal.Decimal         `json:"depreciationRatePercent" yaml:"depreciation_rate_percent"`
	DepreciationBase        money.Money             `json:"depreciationBase" yaml:"depreciation_base"`
	AnnualDepreciation      money.Money             `json:"annualDepreciation" yaml:"annual_depreciation"`
	EffectiveRate           decimal.Decimal         `json:"effectiveRate" yaml:"effective_rate"`
	AcquisitionRule         AcquisitionRuleResult   `json:"acquisitionRule" yaml:"acquisition_rule"`
	Classifications         []MeasureClassification `json:"classifications,omitempty" yaml:"classifications,omitempty"`
	Years                   []YearlyTax             `json:"years" yaml:"years"`
	TotalDepreciation       money.Money             `json:"totalDepreciation" yaml:"total_depreciation"`
	TotalInterest           money.Money             `json:"totalInterest" yaml:"total_interest"`
	TotalMaintenance        money.Money             `json:"totalMaintenance" yaml:"total_maintenance"`
	TotalTax                money.Money             `json:"totalTax" yaml:"total_tax"`
	CapitalGains            *CapitalGainsResult     `json:"capitalGains,omitempty" yaml:"capital_gains,omitempty"`
}

// PropertyValueForecast holds the three appreciation scenarios.
type PropertyValueForecast struct {
	InitialConditionFactor float64                `json:"initialConditionFactor" yaml:"initial_condition_factor"`
	Scenarios              []ValueScenario        `json:"scenarios" yaml:"scenarios"`
	Components             []ComponentForecast    `json:"components,omitempty" yaml:"components,omitempty"`
	Recurring              []RecurringMaintenance `json:"recurring,omitempty" yaml:"recurring,omitempty"`
}

// Scenario returns the named scenario.
func (f *PropertyValueForecast) Scenario(name string) (ValueScenario, bool) {
	for _, s := range f.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return ValueScenario{}, false
}

// ValueScenario is one appreciation path.
type ValueScenario struct {
	Name                string          `json:"name" yaml:"name"`
	AppreciationPercent decimal.Decimal `json:"appreciationPercent" yaml:"appreciation_percent"`
	Values              []YearValue     `json:"values" yaml:"values"`
	FinalValue          money.Money     `json:"finalValue" yaml:"final_value"`
	Drivers             Drivers         `json:"drivers" yaml:"drivers"`
}

// YearValue is the value breakdown for one calendar year.
type YearValue struct {
	Year              int         `json:"year" yaml:"year"`
	MarketValue       money.Money `json:"marketValue" yaml:"market_value"`
	ConditionFactor   float64     `json:"conditionFactor" yaml:"condition_factor"`
	ComponentImpact   money.Money `json:"componentImpact" yaml:"component_impact"`
	ImprovementUplift money.Money `json:"improvementUplift" yaml:"improvement_uplift"`
	MeanReversion     money.Money `json:"meanReversion" yaml:"mean_reversion"`
	EstimatedValue    money.Money `json:"estimatedValue" yaml:"estimated_value"`
}

// ComponentStatus is the deterioration status of a component.
type ComponentStatus string

const (
	ComponentOK                ComponentStatus = "OK"
	ComponentOverdue           ComponentStatus = "Overdue"
	ComponentOverdueAtPurchase ComponentStatus = "OverdueAtPurchase"
	ComponentRenewed           ComponentStatus = "Renewed"
)

// ComponentForecast is the cost-based deterioration of one component.
type ComponentForecast struct {
	Category            Category        `json:"category" yaml:"category"`
	UnitID              string          `json:"unitId,omitempty" yaml:"unit_id,omitempty"`
	RenewalCost         money.Money     `json:"renewalCost" yaml:"renewal_cost"`
	CycleYears          int             `json:"cycleYears" yaml:"cycle_years"`
	EffectiveCycleYears float64         `json:"effectiveCycleYears" yaml:"effective_cycle_years"`
	AgeAtStart          int             `json:"ageAtStart" yaml:"age_at_start"`
	DueYear             int             `json:"dueYear" yaml:"due_year"`
	Status              ComponentStatus `json:"status" yaml:"status"`
	RenewedYear         int             `json:"renewedYear,omitempty" yaml:"renewed_year,omitempty"`
	ValueImpact         money.Money     `json:"valueImpact" yaml:"value_impact"`
}

// RecurringMaintenance reports a recurring measure.
type RecurringMaintenance struct {
	MeasureID         string      `json:"measureId" yaml:"measure_id"`
	Category          Category    `json:"category" yaml:"category"`
	IntervalYears     int         `json:"intervalYears" yaml:"interval_years"`
	Occurrences       int         `json:"occurrences" yaml:"occurrences"`
	CostPerOccurrence money.Money `json:"costPerOccurrence" yaml:"cost_per_occurrence"`
}

// ExitAnalysis holds the sale economics per forecast scenario.
type ExitAnalysis struct {
	PurchaseDate time.Time       `json:"purchaseDate" yaml:"purchase_date"`
	ExitDate     time.Time       `json:"exitDate" yaml:"exit_date"`
	HoldingYears decimal.Decimal `json:"holdingYears" yaml:"holding_years"`
	Scenarios    []ExitScenario  `json:"scenarios" yaml:"scenarios"`
}

// ExitScenario is the exit for one forecast scenario.
type ExitScenario struct {
	Name                    string          `json:"name" yaml:"name"`
	FinalValue              money.Money     `json:"finalValue" yaml:"final_value"`
	SaleCosts               money.Money     `json:"saleCosts" yaml:"sale_costs"`
	TaxBasisAtSale          money.Money     `json:"taxBasisAtSale" yaml:"tax_basis_at_sale"`
	CapitalGain             money.Money     `json:"capitalGain" yaml:"capital_gain"`
	WithinSpeculationPeriod bool            `json:"withinSpeculationPeriod" yaml:"within_speculation_period"`
	CapitalGainsTax         money.Money     `json:"capitalGainsTax" yaml:"capital_gains_tax"`
	OutstandingDebt         money.Money     `json:"outstandingDebt" yaml:"outstanding_debt"`
	NetSaleProceeds         money.Money     `json:"netSaleProceeds" yaml:"net_sale_proceeds"`
	CumulativeCashflow      money.Money     `json:"cumulativeCashflow" yaml:"cumulative_cashflow"`
	EquityInvested          money.Money     `json:"equityInvested" yaml:"equity_invested"`
	TotalReturn             money.Money     `json:"totalReturn" yaml:"total_return"`
	AnnualizedReturnPercent decimal.Decimal `json:"annualizedReturnPercent" yaml:"annualized_return_percent"`
}

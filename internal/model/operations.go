package model

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// RentConfiguration describes rental income.
type RentConfiguration struct {
	// MonthlyRent is the building-level cold rent; UnitRents add to it.
	MonthlyRent money.Money `yaml:"monthly_rent,omitempty" json:"monthlyRent"`
	UnitRents   []UnitRent  `yaml:"unit_rents,omitempty" json:"unitRents,omitempty"`
	OtherIncome money.Money `yaml:"other_income,omitempty" json:"otherIncome"`
	// Start defaults to the project start.
	Start                 period.YearMonth `yaml:"start,omitempty" json:"start"`
	AnnualIncreasePercent decimal.Decimal  `yaml:"annual_increase_percent,omitempty" json:"annualIncreasePercent"`
	VacancyRatePercent    decimal.Decimal  `yaml:"vacancy_rate_percent,omitempty" json:"vacancyRatePercent"`
}

// UnitRent is the monthly cold rent of one unit.
type UnitRent struct {
	UnitID      string      `yaml:"unit_id" json:"unitId"`
	MonthlyRent money.Money `yaml:"monthly_rent" json:"monthlyRent"`
}

// BaseMonthlyRent sums building, unit and other income.
func (r RentConfiguration) BaseMonthlyRent() decimal.Decimal {
	total := r.MonthlyRent.Amount().Add(r.OtherIncome.Amount())
	for _, u := range r.UnitRents {
		total = total.Add(u.MonthlyRent.Amount())
	}
	return total
}

// CostConfiguration describes recurring owner costs.
type CostConfiguration struct {
	// ManagementMonthly covers non-allocable service charges and property management.
	ManagementMonthly     money.Money     `yaml:"management_monthly,omitempty" json:"managementMonthly"`
	PropertyTaxAnnual     money.Money     `yaml:"property_tax_annual,omitempty" json:"propertyTaxAnnual"`
	InsuranceAnnual       money.Money     `yaml:"insurance_annual,omitempty" json:"insuranceAnnual"`
	OtherMonthly          money.Money     `yaml:"other_monthly,omitempty" json:"otherMonthly"`
	ReserveMonthly        money.Money     `yaml:"reserve_monthly,omitempty" json:"reserveMonthly"`
	InitialReserve        money.Money     `yaml:"initial_reserve,omitempty" json:"initialReserve"`
	AnnualIncreasePercent decimal.Decimal `yaml:"annual_increase_percent,omitempty" json:"annualIncreasePercent"`
}

// MonthlyOperating returns the deductible operating costs per month before indexation.
func (c CostConfiguration) MonthlyOperating() decimal.Decimal {
	twelve := decimal.NewFromInt(12)
	return c.ManagementMonthly.Amount().
		Add(c.OtherMonthly.Amount()).
		Add(c.PropertyTaxAnnual.Amount().Div(twelve)).
		Add(c.InsuranceAnnual.Amount().Div(twelve))
}

package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/immocalc/internal/money"
)

// ErrInvalidProject wraps every validation failure returned by Validate.
var ErrInvalidProject = errors.New("invalid project")

// ValidationError describes a single problem with a project.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// Validate returns nil when p can be calculated, or an ErrInvalidProject
// wrapping every violation found.
func (p Project) Validate() error {
	errs := p.Check()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidProject, strings.Join(msgs, "; "))
}

// Check lists every violation in p.
func (p Project) Check() []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Description: fmt.Sprintf(format, args...)})
	}
	// money fields must be either unset or in the project currency.
	checkMoney := func(field string, m money.Money, required bool) {
		switch {
		case m.Currency() == "" && required:
			add(field, "is required")
		case m.Currency() != "" && m.Currency() != p.Currency:
			add(field, "currency %s does not match project currency %s", m.Currency(), p.Currency)
		}
	}

	if p.ID == "" {
		add("id", "is required")
	}
	if _, err := money.ParseCurrency(p.Currency); err != nil {
		add("currency", "%v", err)
	}
	if p.StartPeriod.IsZero() || p.EndPeriod.IsZero() {
		add("period", "start and end period are required")
	} else if p.EndPeriod.Before(p.StartPeriod) {
		add("period", "end %s before start %s", p.EndPeriod, p.StartPeriod)
	}

	// Property.
	if p.Property.ConstructionYear <= 0 {
		add("property.construction_year", "is required")
	}
	if p.Property.Condition != "" && !p.Property.Condition.Valid() {
		add("property.condition", "unknown condition %q", p.Property.Condition)
	}
	if !p.Property.LivingArea.IsPositive() {
		add("property.living_area", "must be positive")
	}
	for _, c := range p.Property.Components {
		if !c.Category.Valid() {
			add("property.components", "unknown category %q", c.Category)
		}
	}
	unitIDs := make(map[string]bool)
	for i, u := range p.Property.Units {
		if u.ID == "" {
			add(fmt.Sprintf("property.units[%d].id", i), "is required")
		}
		if unitIDs[u.ID] {
			add(fmt.Sprintf("property.units[%d].id", i), "duplicate unit %q", u.ID)
		}
		unitIDs[u.ID] = true
	}

	// Purchase.
	checkMoney("purchase.price", p.Purchase.Price, true)
	checkMoney("purchase.land_value", p.Purchase.LandValue, false)
	if p.Purchase.Date.IsZero() {
		add("purchase.date", "is required")
	}
	if !p.Purchase.Price.IsPositive() {
		add("purchase.price", "must be positive")
	}
	if p.Purchase.Land().Amount().GreaterThan(p.Purchase.Price.Amount()) {
		add("purchase.land_value", "exceeds purchase price")
	}
	for i, c := range p.Purchase.AcquisitionCosts {
		checkMoney(fmt.Sprintf("purchase.acquisition_costs[%d]", i), c.Amount, true)
	}

	// Financing.
	for i, e := range p.Financing.Equity {
		checkMoney(fmt.Sprintf("financing.equity[%d]", i), e.Amount, true)
	}
	for i, l := range p.Financing.Loans {
		field := fmt.Sprintf("financing.loans[%d]", i)
		checkMoney(field+".principal", l.Principal, true)
		switch l.Type {
		case LoanAnnuity, LoanBullet, LoanKfW, LoanSubordinated:
		default:
			add(field+".type", "unknown loan type %q", l.Type)
		}
		if l.DisbursementDate.IsZero() {
			add(field+".disbursement", "is required")
		}
		if l.InterestRate.IsNegative() {
			add(field+".interest_rate", "must not be negative")
		}
		for j, sr := range l.SpecialRepayments {
			checkMoney(fmt.Sprintf("%s.special_repayments[%d]", field, j), sr.Amount, true)
		}
		if l.Refinancing != nil && l.Refinancing.MonthlyPayment != nil {
			checkMoney(field+".refinancing.monthly_payment", *l.Refinancing.MonthlyPayment, true)
		}
	}

	// Rent and costs.
	checkMoney("rent.monthly_rent", p.Rent.MonthlyRent, false)
	checkMoney("rent.other_income", p.Rent.OtherIncome, false)
	for i, u := range p.Rent.UnitRents {
		checkMoney(fmt.Sprintf("rent.unit_rents[%d]", i), u.MonthlyRent, true)
		if len(p.Property.Units) > 0 && !unitIDs[u.UnitID] {
			add(fmt.Sprintf("rent.unit_rents[%d].unit_id", i), "unknown unit %q", u.UnitID)
		}
	}
	for _, c := range []struct {
		field string
		m     money.Money
	}{
		{"costs.management_monthly", p.Costs.ManagementMonthly},
		{"costs.property_tax_annual", p.Costs.PropertyTaxAnnual},
		{"costs.insurance_annual", p.Costs.InsuranceAnnual},
		{"costs.other_monthly", p.Costs.OtherMonthly},
		{"costs.reserve_monthly", p.Costs.ReserveMonthly},
		{"costs.initial_reserve", p.Costs.InitialReserve},
	} {
		checkMoney(c.field, c.m, false)
	}

	// CapEx.
	seen := make(map[string]bool)
	for i, m := range p.Measures() {
		field := fmt.Sprintf("capex.measures[%d]", i)
		if m.ID != "" && seen[m.ID] {
			add(field+".id", "duplicate measure %q", m.ID)
		}
		seen[m.ID] = true
		checkMoney(field+".estimated_cost", m.EstimatedCost, true)
		if m.Impact != nil {
			checkMoney(field+".impact.monthly_rent_increase", m.Impact.MonthlyRentIncrease, false)
			checkMoney(field+".impact.monthly_cost_savings", m.Impact.MonthlyCostSavings, false)
		}
		if !m.Category.Valid() {
			add(field+".category", "unknown category %q", m.Category)
		}
		if m.PlannedPeriod.IsZero() {
			add(field+".planned", "is required")
		}
		if m.UnitID != "" && !unitIDs[m.UnitID] {
			add(field+".unit_id", "unknown unit %q", m.UnitID)
		}
		if m.TaxClassification == MaintenanceExpenseDistributed && (m.DistributionYears < 2 || m.DistributionYears > 5) {
			add(field+".distribution_years", "must be between 2 and 5, got %d", m.DistributionYears)
		}
	}

	// Tax.
	if p.Tax.MarginalRatePercent.IsNegative() {
		add("tax.marginal_rate_percent", "must not be negative")
	}
	if d := p.Tax.CustomDepreciationPercent; d != nil && !d.IsPositive() {
		add("tax.custom_depreciation_percent", "must be positive")
	}

	if p.Valuation != nil && p.Valuation.RegionalPricePerSqm != nil {
		checkMoney("valuation.regional_price_per_sqm", *p.Valuation.RegionalPricePerSqm, true)
	}

	return errs
}

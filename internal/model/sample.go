package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// SampleProject returns a complete ten-year project for a small rented
// apartment building. It is what `immocalc init` writes.
func SampleProject() Project {
	eur := func(v int64) money.Money { return money.FromInt(v, "EUR") }
	dec := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	regional := eur(4200)
	saleCosts := dec("5")

	return Project{
		ID:          "sample",
		Name:        "Sample apartment building",
		Currency:    "EUR",
		StartPeriod: period.MustParse("2025-01"),
		EndPeriod:   period.MustParse("2034-12"),
		Property: Property{
			ConstructionYear: 2000,
			Condition:        ConditionGood,
			TotalArea:        dec("120"),
			LivingArea:       dec("100"),
			Units: []Unit{
				{ID: "A", Name: "Ground floor", Area: dec("50"), Components: []ComponentCondition{
					{Category: CategoryBathroom, Condition: ConditionFair},
				}},
				{ID: "B", Name: "Upper floor", Area: dec("50")},
			},
			Components: []ComponentCondition{
				{Category: CategoryRoof, Condition: ConditionGood},
				{Category: CategoryHeating, Condition: ConditionFair},
				{Category: CategoryWindows, Condition: ConditionFair, LastRenovationYear: 2005},
			},
		},
		Purchase: Purchase{
			Price:     eur(400000),
			LandValue: eur(100000),
			Date:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			AcquisitionCosts: []AcquisitionCost{
				{Kind: "transfer_tax", Amount: eur(24000), Capitalizable: true},
				{Kind: "notary", Amount: eur(6000), Capitalizable: true},
				{Kind: "broker", Amount: eur(14280), Capitalizable: true},
			},
		},
		Financing: Financing{
			Equity: []EquityContribution{{Source: "savings", Amount: eur(124280)}},
			Loans: []Loan{{
				ID:                   "bank",
				Name:                 "Bank annuity loan",
				Type:                 LoanAnnuity,
				Principal:            eur(320000),
				DisbursementDate:     period.MustParse("2025-01"),
				InterestRate:         dec("3.5"),
				InitialRepaymentRate: dec("2"),
				FixedInterestYears:   10,
			}},
		},
		Rent: RentConfiguration{
			UnitRents: []UnitRent{
				{UnitID: "A", MonthlyRent: eur(750)},
				{UnitID: "B", MonthlyRent: eur(800)},
			},
			AnnualIncreasePercent: dec("2"),
			VacancyRatePercent:    dec("3"),
		},
		Costs: CostConfiguration{
			ManagementMonthly:     eur(150),
			PropertyTaxAnnual:     eur(480),
			InsuranceAnnual:       eur(360),
			ReserveMonthly:        eur(100),
			InitialReserve:        eur(5000),
			AnnualIncreasePercent: dec("2"),
		},
		Tax: TaxProfile{
			Ownership:                  OwnershipPrivate,
			MarginalRatePercent:        dec("42"),
			SolidaritySurchargePercent: dec("5.5"),
		},
		CapEx: &CapExConfiguration{Measures: []CapExMeasure{
			{
				ID:                "CX-2028-05-001",
				Name:              "Replace heating",
				Category:          CategoryHeating,
				PlannedPeriod:     period.MustParse("2028-05"),
				EstimatedCost:     eur(18000),
				TaxClassification: MaintenanceExpenseDistributed,
				DistributionYears: 3,
				Impact:            &EconomicImpact{MonthlyCostSavings: eur(40)},
				Priority:          PriorityHigh,
			},
			{
				ID:                "CX-2030-09-001",
				Name:              "Modernize bathroom A",
				Category:          CategoryBathroom,
				UnitID:            "A",
				PlannedPeriod:     period.MustParse("2030-09"),
				EstimatedCost:     eur(15000),
				TaxClassification: ManufacturingCosts,
				Impact:            &EconomicImpact{MonthlyRentIncrease: eur(60)},
				Priority:          PriorityMedium,
			},
		}},
		Investor: &InvestorConfiguration{
			TargetReturnPercent: dec("6"),
		},
		Valuation: &ValuationConfiguration{
			RegionalPricePerSqm: &regional,
			SaleCostsPercent:    &saleCosts,
			IncludeForecast:     true,
		},
		Scenarios: []Scenario{
			{
				ID:   "high-vacancy",
				Name: "Higher vacancy",
				Parameters: ScenarioParameters{Rent: &RentConfiguration{
					UnitRents: []UnitRent{
						{UnitID: "A", MonthlyRent: eur(750)},
						{UnitID: "B", MonthlyRent: eur(800)},
					},
					AnnualIncreasePercent: dec("1"),
					VacancyRatePercent:    dec("10"),
				}},
			},
		},
	}
}

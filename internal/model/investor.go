package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
)

// InvestorConfiguration holds the investor's return expectations and exit plan.
type InvestorConfiguration struct {
	TargetReturnPercent decimal.Decimal `yaml:"target_return_percent,omitempty" json:"targetReturnPercent"`
	// DiscountRatePercent overrides the configured NPV discount rate when set.
	DiscountRatePercent decimal.Decimal `yaml:"discount_rate_percent,omitempty" json:"discountRatePercent"`
	// PlannedSaleDate triggers the capital-gains calculation when inside the horizon.
	PlannedSaleDate *time.Time `yaml:"planned_sale_date,omitempty" json:"plannedSaleDate,omitempty"`
}

// ValuationConfiguration drives the property value forecast and exit analysis.
type ValuationConfiguration struct {
	// RegionalPricePerSqm enables mean reversion toward a regional fair value.
	RegionalPricePerSqm *money.Money `yaml:"regional_price_per_sqm,omitempty" json:"regionalPricePerSqm,omitempty"`
	// AppreciationPercent is used for the monthly property value series; defaults to the base rate.
	AppreciationPercent *decimal.Decimal `yaml:"appreciation_percent,omitempty" json:"appreciationPercent,omitempty"`
	SaleCostsPercent    *decimal.Decimal `yaml:"sale_costs_percent,omitempty" json:"saleCostsPercent,omitempty"`
	// IncludeForecast requests the forecast and exit sub-results.
	IncludeForecast bool `yaml:"include_forecast,omitempty" json:"includeForecast,omitempty"`
}

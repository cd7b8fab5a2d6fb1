package model

import (
	"github.com/shopspring/decimal"
)

// OwnershipType is the legal form holding the property.
type OwnershipType string

const (
	OwnershipPrivate     OwnershipType = "private"
	OwnershipPartnership OwnershipType = "partnership"
	OwnershipCorporation OwnershipType = "corporation"
)

// TaxProfile holds the investor's tax parameters. Rates are percentages.
type TaxProfile struct {
	Ownership                  OwnershipType    `yaml:"ownership" json:"ownership"`
	MarginalRatePercent        decimal.Decimal  `yaml:"marginal_rate_percent" json:"marginalRatePercent"`
	SolidaritySurchargePercent decimal.Decimal  `yaml:"solidarity_surcharge_percent,omitempty" json:"solidaritySurchargePercent"`
	ChurchTaxPercent           decimal.Decimal  `yaml:"church_tax_percent,omitempty" json:"churchTaxPercent"`
	CustomDepreciationPercent  *decimal.Decimal `yaml:"custom_depreciation_percent,omitempty" json:"customDepreciationPercent,omitempty"`
	// OwnerOccupied exempts a sale from capital-gains tax regardless of holding period.
	OwnerOccupied bool `yaml:"owner_occupied,omitempty" json:"ownerOccupied,omitempty"`
}

// EffectiveRate returns the combined rate as a fraction: marginal rate plus
// surcharges levied on the income tax.
func (t TaxProfile) EffectiveRate() decimal.Decimal {
	surcharges := hundred.Add(t.SolidaritySurchargePercent).Add(t.ChurchTaxPercent).Div(hundred)
	return t.MarginalRatePercent.Div(hundred).Mul(surcharges)
}

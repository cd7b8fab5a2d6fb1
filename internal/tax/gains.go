package tax

import (
	"fmt"
	"time"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
)

// Sale describes a disposal of the property.
type Sale struct {
	Date                    time.Time
	Price                   money.Money
	Costs                   money.Money
	AccumulatedDepreciation money.Money
	// AdditionalBasis is capitalized CapEx on top of the purchase.
	AdditionalBasis money.Money
}

// HoldingYears counts the whole years between from and to, day precise.
func HoldingYears(from, to time.Time) int {
	n := 0
	for !from.AddDate(n+1, 0, 0).After(to) {
		n++
	}
	return n
}

// WithinSpeculationPeriod reports whether a sale on saleDate falls before
// the holding period has elapsed.
func WithinSpeculationPeriod(purchaseDate, saleDate time.Time, holdingYears int) bool {
	return saleDate.Before(purchaseDate.AddDate(holdingYears, 0, 0))
}

// Exemption reasons.
const (
	ExemptHoldingPeriod = "holding period elapsed"
	ExemptOwnerOccupied = "owner occupied"
	ExemptBelowLimit    = "gain within exemption limit"
)

// CapitalGainsTax computes the tax on sale. The exemption limit is a
// threshold, not an allowance: a gain at the limit is exempt, a gain above
// it is taxed in full.
func CapitalGainsTax(purchase model.Purchase, sale Sale, profile model.TaxProfile, params Params) (model.CapitalGainsResult, error) {
	cur := purchase.Price.Currency()
	res := model.CapitalGainsResult{
		SaleDate:                sale.Date,
		HoldingYears:            HoldingYears(purchase.Date, sale.Date),
		WithinSpeculationPeriod: WithinSpeculationPeriod(purchase.Date, sale.Date, params.HoldingPeriodYears),
		SalePrice:               sale.Price,
		SaleCosts:               orZero(sale.Costs, cur),
		AdjustedBasis:           money.Zero(cur),
		Gain:                    money.Zero(cur),
		Tax:                     money.Zero(cur),
	}

	investment, err := purchase.TotalInvestment()
	if err != nil {
		return res, err
	}
	basis, err := money.Sum(cur, investment, orZero(sale.AdditionalBasis, cur))
	if err != nil {
		return res, fmt.Errorf("adjusted basis: %w", err)
	}
	if basis, err = basis.Sub(orZero(sale.AccumulatedDepreciation, cur)); err != nil {
		return res, fmt.Errorf("adjusted basis: %w", err)
	}
	res.AdjustedBasis = basis

	gain, err := sale.Price.Sub(res.SaleCosts)
	if err == nil {
		gain, err = gain.Sub(basis)
	}
	if err != nil {
		return res, fmt.Errorf("capital gain: %w", err)
	}
	res.Gain = gain

	switch {
	case !res.WithinSpeculationPeriod:
		res.Exempt, res.ExemptionReason = true, ExemptHoldingPeriod
	case profile.OwnerOccupied:
		res.Exempt, res.ExemptionReason = true, ExemptOwnerOccupied
	case gain.Amount().LessThanOrEqual(params.CapitalGainsExemption):
		res.Exempt, res.ExemptionReason = true, ExemptBelowLimit
	default:
		res.Tax = gain.Mul(profile.EffectiveRate()).Round()
	}
	return res, nil
}

func orZero(m money.Money, currency string) money.Money {
	if m.Currency() == "" {
		return money.Zero(currency)
	}
	return m
}

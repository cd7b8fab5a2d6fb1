// Package tax implements building depreciation, CapEx classification, the
// yearly income tax series and the capital-gains tax on a sale.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// DepreciationRate returns the yearly AfA rate in percent: the profile's
// override, or the statutory rate for the construction year.
func DepreciationRate(property model.Property, profile model.TaxProfile) decimal.Decimal {
	if profile.CustomDepreciationPercent != nil {
		return *profile.CustomDepreciationPercent
	}
	switch y := property.ConstructionYear; {
	case y >= 2023:
		return decimal.NewFromInt(3)
	case y >= 1925:
		return decimal.NewFromInt(2)
	default:
		return decimal.RequireFromString("2.5")
	}
}

// Depreciation is the straight-line building depreciation of a purchase.
type Depreciation struct {
	RatePercent decimal.Decimal
	Base        money.Money
	Annual      money.Money
	Start       period.YearMonth
}

// Months is the number of months until the base is fully depreciated.
func (d Depreciation) Months() int {
	if !d.RatePercent.IsPositive() {
		return 0
	}
	return int(hundred.Div(d.RatePercent).Mul(twelve).Round(0).IntPart())
}

// Monthly is one month of depreciation, rounded to cents.
func (d Depreciation) Monthly() decimal.Decimal {
	return money.Round2(d.Annual.Amount().Div(twelve))
}

// AccumulatedBefore is the depreciation claimed from Start up to, not
// including, ym. It does not depend on any horizon.
func (d Depreciation) AccumulatedBefore(ym period.YearMonth) decimal.Decimal {
	n := min(max(d.Start.MonthsUntil(ym), 0), d.Months())
	return d.Monthly().Mul(decimal.NewFromInt(int64(n)))
}

// AnnualDepreciation applies the AfA rate to building value plus capitalizable
// acquisition costs.
func AnnualDepreciation(purchase model.Purchase, property model.Property, profile model.TaxProfile) (Depreciation, error) {
	base, err := purchase.DepreciationBase()
	if err != nil {
		return Depreciation{}, fmt.Errorf("depreciation base: %w", err)
	}
	rate := DepreciationRate(property, profile)
	return Depreciation{
		RatePercent: rate,
		Base:        base,
		Annual:      base.Mul(rate.Div(hundred)).Round(),
		Start:       purchase.Period(),
	}, nil
}

// Series spreads d over h: Monthly from Start for Months months, zero
// before and after.
func (d Depreciation) Series(h period.Horizon) (*timeseries.MoneySeries, error) {
	s := timeseries.NewMoney(h, d.Base.Currency())
	if err := d.addTo(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (d Depreciation) addTo(s *timeseries.MoneySeries) error {
	if d.Base.Currency() != s.Currency() {
		return fmt.Errorf("depreciation: %w", money.ErrCurrencyMismatch)
	}
	monthly := d.Monthly()
	if monthly.IsZero() {
		return nil
	}
	end := d.Start.AddMonths(d.Months())
	h := s.Horizon()
	for _, ym := range h.Months() {
		if ym.Before(d.Start) || !ym.Before(end) {
			continue
		}
		if err := s.AddAmount(ym, monthly); err != nil {
			return err
		}
	}
	return nil
}

// capitalized returns the depreciation of a capitalized CapEx cost incurred
// at ym, at the building rate.
func capitalized(cost money.Money, ym period.YearMonth, rate decimal.Decimal) Depreciation {
	return Depreciation{
		RatePercent: rate,
		Base:        cost,
		Annual:      cost.Mul(rate.Div(hundred)).Round(),
		Start:       ym,
	}
}

package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// Inputs are the monthly series the income tax is derived from. All series
// share one horizon and currency.
type Inputs struct {
	Profile         model.TaxProfile
	GrossIncome     *timeseries.MoneySeries
	Depreciation    *timeseries.MoneySeries
	Interest        *timeseries.MoneySeries
	Maintenance     *timeseries.MoneySeries
	OtherDeductions *timeseries.MoneySeries
}

// Result is the income tax over the horizon.
type Result struct {
	TaxableIncome *timeseries.MoneySeries
	Tax           *timeseries.MoneySeries
	Years         []model.YearlyTax
}

// TimeSeries computes taxable income and tax per calendar year. Losses pay no
// tax and are not carried forward. Each yearly tax is split evenly over that
// year's months inside the horizon, rounded per month.
func TimeSeries(in Inputs) (*Result, error) {
	taxable := in.GrossIncome.Clone()
	for _, d := range []*timeseries.MoneySeries{in.Depreciation, in.Interest, in.Maintenance, in.OtherDeductions} {
		var err error
		if taxable, err = taxable.Minus(d); err != nil {
			return nil, fmt.Errorf("taxable income: %w", err)
		}
	}

	h := taxable.Horizon()
	cur := taxable.Currency()
	rate := in.Profile.EffectiveRate()
	res := &Result{TaxableIncome: taxable, Tax: timeseries.NewMoney(h, cur)}

	for _, year := range h.Years() {
		yt := model.YearlyTax{
			Year:            year,
			GrossIncome:     in.GrossIncome.YearSum(year),
			Depreciation:    in.Depreciation.YearSum(year),
			Interest:        in.Interest.YearSum(year),
			Maintenance:     in.Maintenance.YearSum(year),
			OtherDeductions: in.OtherDeductions.YearSum(year),
			TaxableIncome:   taxable.YearSum(year),
		}
		amount := money.Round2(decimal.Max(yt.TaxableIncome.Amount(), decimal.Zero).Mul(rate))
		yt.Tax = money.New(amount, cur)
		res.Years = append(res.Years, yt)

		n := h.MonthsInYear(year)
		if n == 0 || amount.IsZero() {
			continue
		}
		monthly := money.Round2(amount.Div(decimal.NewFromInt(int64(n))))
		for _, ym := range h.Months() {
			if ym.Year != year {
				continue
			}
			if err := res.Tax.SetAmount(ym, monthly); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

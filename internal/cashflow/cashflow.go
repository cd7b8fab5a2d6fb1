// Package cashflow builds the operating income and expense series of a
// project: rent, vacancy, operating costs, reserve contributions and CapEx.
package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

var hundred = decimal.NewFromInt(100)

// Operations are the monthly operating series of a project.
type Operations struct {
	GrossRent            *timeseries.MoneySeries
	VacancyLoss          *timeseries.MoneySeries
	EffectiveRent        *timeseries.MoneySeries
	OperatingCosts       *timeseries.MoneySeries
	NetOperatingIncome   *timeseries.MoneySeries
	ReserveContributions *timeseries.MoneySeries
	CapExPayments        *timeseries.MoneySeries
}

// Compute derives the operating series of p over h. Rents and costs are
// indexed once per full year; CapEx impacts apply from their planned month.
func Compute(p model.Project, h period.Horizon) (*Operations, error) {
	cur := p.Currency
	ops := &Operations{
		GrossRent:            timeseries.NewMoney(h, cur),
		VacancyLoss:          timeseries.NewMoney(h, cur),
		EffectiveRent:        timeseries.NewMoney(h, cur),
		OperatingCosts:       timeseries.NewMoney(h, cur),
		NetOperatingIncome:   timeseries.NewMoney(h, cur),
		ReserveContributions: timeseries.NewMoney(h, cur),
		CapExPayments:        timeseries.NewMoney(h, cur),
	}

	rentStart := p.Rent.Start
	if rentStart.IsZero() {
		rentStart = h.Start
	}
	baseRent := p.Rent.BaseMonthlyRent()
	baseCosts := p.Costs.MonthlyOperating()
	vacancy := p.Rent.VacancyRatePercent.Div(hundred)
	reserve := p.Costs.ReserveMonthly.Amount()
	measures := p.Measures()
	for _, m := range measures {
		if err := checkCurrencies(m, cur); err != nil {
			return nil, err
		}
	}

	for _, ym := range h.Months() {
		gross := decimal.Zero
		if !ym.Before(rentStart) {
			gross = money.Round2(baseRent.Mul(Indexation(p.Rent.AnnualIncreasePercent, rentStart.MonthsUntil(ym)/12)))
		}
		costs := money.Round2(baseCosts.Mul(Indexation(p.Costs.AnnualIncreasePercent, h.Start.MonthsUntil(ym)/12)))

		for _, m := range measures {
			if m.Impact == nil || ym.Before(m.PlannedPeriod) {
				continue
			}
			if !ym.Before(rentStart) {
				gross = gross.Add(m.Impact.MonthlyRentIncrease.Amount())
			}
			costs = costs.Sub(m.Impact.MonthlyCostSavings.Amount())
		}
		costs = decimal.Max(costs, decimal.Zero)

		loss := money.Round2(gross.Mul(vacancy))
		effective := gross.Sub(loss)

		for _, w := range []struct {
			s *timeseries.MoneySeries
			v decimal.Decimal
		}{
			{ops.GrossRent, gross},
			{ops.VacancyLoss, loss},
			{ops.EffectiveRent, effective},
			{ops.OperatingCosts, costs},
			{ops.NetOperatingIncome, effective.Sub(costs)},
			{ops.ReserveContributions, reserve},
		} {
			if err := w.s.SetAmount(ym, w.v); err != nil {
				return nil, err
			}
		}
	}

	for _, m := range measures {
		for _, occ := range m.Occurrences(h) {
			if err := ops.CapExPayments.AddAmount(occ.Period, occ.Cost); err != nil {
				return nil, fmt.Errorf("measure %s: %w", m.ID, err)
			}
		}
	}
	return ops, nil
}

// checkCurrencies rejects a measure whose cost or impact is not in cur.
// Unset impact amounts are zero and carry no currency.
func checkCurrencies(m model.CapExMeasure, cur string) error {
	amounts := []money.Money{m.EstimatedCost}
	if m.Impact != nil {
		amounts = append(amounts, m.Impact.MonthlyRentIncrease, m.Impact.MonthlyCostSavings)
	}
	for i, a := range amounts {
		if i > 0 && a.Currency() == "" {
			continue
		}
		if a.Currency() != cur {
			return fmt.Errorf("measure %s: %w: %s != %s", m.ID, money.ErrCurrencyMismatch, a.Currency(), cur)
		}
	}
	return nil
}

// Indexation returns (1 + percent/100)^years.
func Indexation(percent decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 || percent.IsZero() {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(percent.Div(hundred)).Pow(decimal.NewFromInt(int64(years)))
}

// Reserve tracks the maintenance reserve. CapEx is paid from the reserve
// first; whatever the reserve cannot cover is the shortfall and has to be
// paid from the owner's cashflow. The balance never goes negative.
func Reserve(initial money.Money, contributions, capex *timeseries.MoneySeries) (balance, shortfall *timeseries.MoneySeries, err error) {
	h := contributions.Horizon()
	if capex.Horizon() != h {
		return nil, nil, timeseries.ErrHorizonMismatch
	}
	cur := contributions.Currency()
	if capex.Currency() != cur || (initial.Currency() != "" && initial.Currency() != cur) {
		return nil, nil, fmt.Errorf("reserve: %w", money.ErrCurrencyMismatch)
	}
	balance = timeseries.NewMoney(h, cur)
	shortfall = timeseries.NewMoney(h, cur)

	running := initial.Amount()
	for i, ym := range h.Months() {
		running = running.Add(contributions.AmountAt(i)).Sub(capex.AmountAt(i))
		if running.IsNegative() {
			if err := shortfall.SetAmount(ym, running.Neg()); err != nil {
				return nil, nil, err
			}
			running = decimal.Zero
		}
		if err := balance.SetAmount(ym, running); err != nil {
			return nil, nil, err
		}
	}
	return balance, shortfall, nil
}

// BeforeTax is NOI minus debt service, reserve contributions and the CapEx
// the reserve could not cover.
func BeforeTax(noi, debtService, contributions, shortfall *timeseries.MoneySeries) (*timeseries.MoneySeries, error) {
	out := noi.Clone()
	for _, s := range []*timeseries.MoneySeries{debtService, contributions, shortfall} {
		var err error
		if out, err = out.Minus(s); err != nil {
			return nil, fmt.Errorf("cashflow before tax: %w", err)
		}
	}
	return out, nil
}

// AfterTax subtracts the tax payments from the cashflow before tax.
func AfterTax(beforeTax, taxPayment *timeseries.MoneySeries) (*timeseries.MoneySeries, error) {
	out, err := beforeTax.Minus(taxPayment)
	if err != nil {
		return nil, fmt.Errorf("cashflow after tax: %w", err)
	}
	return out, nil
}

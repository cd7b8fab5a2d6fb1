package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

func (c *Calculator) metrics(_ context.Context, r *run) error {
	p := r.project
	cur := p.Currency
	s := r.result.Series

	investment, err := p.Purchase.TotalInvestment()
	if err != nil {
		return err
	}
	equity, err := p.Financing.TotalEquity(cur)
	if err != nil {
		return err
	}
	debt, err := p.Financing.TotalDebt(cur)
	if err != nil {
		return err
	}

	m := model.InvestmentMetrics{
		TotalInvestment:       investment,
		EquityInvested:        equity,
		TotalDebt:             debt,
		GrossYieldPercent:     percentOf(firstYear(s.GrossRent), p.Purchase.Price.Amount()),
		NetYieldPercent:       percentOf(firstYear(s.NetOperatingIncome), investment.Amount()),
		CashOnCashPercent:     percentOf(firstYear(s.CashflowBeforeTax), equity.Amount()),
		InitialLTVPercent:     percentOf(debt.Amount(), p.Purchase.Price.Amount()),
		TotalCashflowAfterTax: s.CashflowAfterTax.Sum(),
		NPV:                   money.Zero(cur),
		BreakEvenPeriod:       breakEven(s.CumulativeCashflow),
	}
	cov, err := coverage(s.NetOperatingIncome, s.DebtService)
	if err != nil {
		return fmt.Errorf("dscr: %w", err)
	}
	m.MinDSCR, m.AverageDSCR = cov.min, cov.avg
	icr, err := coverage(s.NetOperatingIncome, s.Interest)
	if err != nil {
		return fmt.Errorf("icr: %w", err)
	}
	m.MinICR = icr.min

	flows, err := c.equityFlows(r, equity.Amount())
	if err != nil {
		return err
	}
	if equity.IsPositive() {
		m.IRRPercent = IRR(flows)
		m.NPV = money.New(money.Round2(NPV(flows, c.discountRate(p))), cur)
		total := decimal.Zero
		for _, f := range flows[1:] {
			total = total.Add(f)
		}
		m.EquityMultiple = total.Div(equity.Amount()).Round(2)
	}
	r.result.Metrics = m
	return nil
}

// equityFlows are the monthly investor cashflows: the equity at t0, the
// after-tax cashflow of every month and the net sale proceeds before
// capital gains tax in the last month.
func (c *Calculator) equityFlows(r *run, equity decimal.Decimal) ([]decimal.Decimal, error) {
	s := r.result.Series
	h := r.horizon
	flows := make([]decimal.Decimal, 0, h.Len()+1)
	flows = append(flows, equity.Neg())
	for _, v := range s.CashflowAfterTax.All() {
		flows = append(flows, v)
	}

	value, err := s.PropertyValue.At(h.End)
	if err != nil {
		return nil, fmt.Errorf("terminal value: %w", err)
	}
	balance, err := s.OutstandingBalance.At(h.End)
	if err != nil {
		return nil, fmt.Errorf("terminal balance: %w", err)
	}
	costs := money.Round2(value.Amount().Mul(c.saleCostsPercent(r.project)).Div(hundred))
	terminal := value.Amount().Sub(costs).Sub(balance.Amount())
	flows[len(flows)-1] = flows[len(flows)-1].Add(terminal)
	return flows, nil
}

func (c *Calculator) discountRate(p model.Project) decimal.Decimal {
	if p.Investor != nil && p.Investor.DiscountRatePercent.IsPositive() {
		return p.Investor.DiscountRatePercent
	}
	return c.params.DiscountRatePercent
}

// firstYear sums the first twelve months of s.
func firstYear(s *timeseries.MoneySeries) decimal.Decimal {
	total := decimal.Zero
	for i := range min(12, s.Len()) {
		total = total.Add(s.AmountAt(i))
	}
	return total
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

type coverageStats struct {
	min, avg decimal.Decimal
	// at is the month of the minimum.
	at *period.YearMonth
}

// coverage is income / obligation over the months with a positive
// obligation. Without obligations both ratios are zero.
func coverage(income, obligation *timeseries.MoneySeries) (coverageStats, error) {
	var st coverageStats
	sum := decimal.Zero
	n := 0
	for ym, o := range obligation.All() {
		if !o.IsPositive() {
			continue
		}
		in, err := income.At(ym)
		if err != nil {
			return coverageStats{}, err
		}
		ratio := in.Amount().Div(o)
		if st.at == nil || ratio.LessThan(st.min) {
			at := ym
			st.min, st.at = ratio, &at
		}
		sum = sum.Add(ratio)
		n++
	}
	if n == 0 {
		return st, nil
	}
	st.min = st.min.Round(2)
	st.avg = sum.Div(decimal.NewFromInt(int64(n))).Round(2)
	return st, nil
}

// breakEven is the first month from which the cumulative cashflow stays
// non-negative until the end of the horizon.
func breakEven(cumulative *timeseries.MoneySeries) *period.YearMonth {
	months := cumulative.Horizon().Months()
	var found *period.YearMonth
	for i := len(months) - 1; i >= 0; i-- {
		if cumulative.AmountAt(i).IsNegative() {
			break
		}
		ym := months[i]
		found = &ym
	}
	return found
}

// NPV discounts monthly flows at a yearly percent rate; flows[0] is not
// discounted.
func NPV(flows []decimal.Decimal, yearlyPercent decimal.Decimal) decimal.Decimal {
	monthly := math.Pow(1+yearlyPercent.InexactFloat64()/100, 1.0/12) - 1
	v := npv(flows, monthly)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func npv(flows []decimal.Decimal, monthly float64) float64 {
	total := 0.0
	for t, f := range flows {
		total += f.InexactFloat64() / math.Pow(1+monthly, float64(t))
	}
	return total
}

// IRR finds the monthly rate that zeroes the NPV of flows by bisection and
// annualizes it, in percent. Without a sign change in the search range, or
// when the result is not finite, it returns zero.
func IRR(flows []decimal.Decimal) decimal.Decimal {
	lo, hi := -0.99, 1.0
	flo, fhi := npv(flows, lo), npv(flows, hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return decimal.Zero
	}
	for range 200 {
		mid := (lo + hi) / 2
		fm := npv(flows, mid)
		if math.IsNaN(fm) || math.IsInf(fm, 0) {
			return decimal.Zero
		}
		if fm == 0 || hi-lo < 1e-12 {
			lo, hi = mid, mid
			break
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo, flo = mid, fm
		}
	}
	yearly := math.Pow(1+(lo+hi)/2, 12) - 1
	if math.IsNaN(yearly) || math.IsInf(yearly, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(yearly * 100).Round(2)
}

// Package financing amortizes loans into monthly schedules.
package financing

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
	// Balances below one cent are treated as repaid.
	negligible = decimal.RequireFromString("0.01")
)

// Installment is one month of a loan. TotalPayment is always Interest +
// Principal; CommitmentFee and Disagio are reported separately.
type Installment struct {
	Interest      decimal.Decimal
	Principal     decimal.Decimal
	TotalPayment  decimal.Decimal
	Balance       decimal.Decimal
	CommitmentFee decimal.Decimal
	Disagio       decimal.Decimal
}

// Schedule is the amortization of one loan over a horizon.
type Schedule struct {
	Loan     model.Loan
	Currency string
	rows     *timeseries.Series[Installment]
	// paidOff is the first month the balance reached zero after disbursement.
	paidOff *period.YearMonth
}

// Horizon returns the months covered by the schedule.
func (s *Schedule) Horizon() period.Horizon { return s.rows.Horizon() }

// At returns the installment for ym.
func (s *Schedule) At(ym period.YearMonth) (Installment, error) {
	return s.rows.At(ym)
}

// Rows returns the installments in month order.
func (s *Schedule) Rows() []Installment { return s.rows.Values() }

// Amortize computes the monthly schedule of loan over h. Months before h.Start
// are simulated so a loan disbursed earlier enters the horizon with its true
// balance.
func Amortize(loan model.Loan, h period.Horizon) (*Schedule, error) {
	cur := loan.Principal.Currency()
	if cur == "" {
		return nil, fmt.Errorf("loan %s: principal has no currency", loan.ID)
	}
	for _, sr := range loan.SpecialRepayments {
		if sr.Amount.Currency() != cur {
			return nil, fmt.Errorf("loan %s special repayment %s: %w", loan.ID, sr.Period, money.ErrCurrencyMismatch)
		}
	}
	if r := loan.Refinancing; r != nil && r.MonthlyPayment != nil && r.MonthlyPayment.Currency() != cur {
		return nil, fmt.Errorf("loan %s refinancing payment: %w", loan.ID, money.ErrCurrencyMismatch)
	}

	s := &Schedule{Loan: loan, Currency: cur, rows: timeseries.New[Installment](h)}
	st := newState(loan)

	start := h.Start
	if loan.DisbursementDate.Before(start) {
		start = loan.DisbursementDate
	}
	if fee := loan.CommitmentFee; fee != nil && fee.AgreementDate.Before(start) {
		start = fee.AgreementDate
	}

	for ym := start; !ym.After(h.End); ym = ym.AddMonths(1) {
		row := st.step(ym)
		if s.paidOff == nil && st.disbursed && row.Balance.IsZero() {
			paid := ym
			s.paidOff = &paid
		}
		if !h.Contains(ym) {
			continue
		}
		if err := s.rows.Set(ym, row); err != nil {
			return nil, fmt.Errorf("loan %s: %w", loan.ID, err)
		}
	}
	s.rows.Freeze()
	return s, nil
}

// state carries the running balance and current terms from month to month.
type state struct {
	loan      model.Loan
	principal decimal.Decimal
	balance   decimal.Decimal
	rate      decimal.Decimal
	payment   decimal.Decimal
	disbursed bool
	// months since disbursement of the current step.
	k int
}

func newState(loan model.Loan) *state {
	p := loan.Principal.Amount()
	return &state{
		loan:      loan,
		principal: p,
		rate:      loan.InterestRate,
		payment:   annuity(loan.InterestRate, loan.InitialRepaymentRate, p),
	}
}

// annuity returns the constant monthly payment (rate% + repayment%) × base / 12.
func annuity(rate, repayment, base decimal.Decimal) decimal.Decimal {
	return money.Round2(rate.Add(repayment).Mul(base).Div(hundred).Div(twelve))
}

func (st *state) step(ym period.YearMonth) Installment {
	loan := st.loan
	disb := loan.DisbursementDate

	if ym.Before(disb) {
		return Installment{CommitmentFee: st.commitmentFee(ym)}
	}
	if ym == disb {
		st.disbursed = true
		st.balance = st.principal
		return Installment{Balance: st.balance}
	}

	st.k = disb.MonthsUntil(ym)
	row := Installment{Disagio: st.disagio()}
	if st.balance.IsZero() {
		return row
	}

	st.refinance()
	row.Interest = money.Round2(st.balance.Mul(st.rate).Div(hundred).Div(twelve))

	principal := decimal.Zero
	switch {
	case st.k <= loan.GracePeriodMonths:
		// interest only
	case loan.Type == model.LoanBullet:
		if loan.TermYears > 0 && st.k >= loan.TermYears*12 {
			principal = st.balance
		}
	case loan.Type == model.LoanSubordinated && loan.InitialRepaymentRate.IsZero() && !st.refinanced():
		// interest only
	default:
		principal = decimal.Max(st.payment.Sub(row.Interest), decimal.Zero)
	}

	for _, sr := range loan.SpecialRepayments {
		if sr.Period == ym {
			principal = principal.Add(sr.Amount.Amount())
		}
	}
	if principal.GreaterThan(st.balance) {
		principal = st.balance
	}

	st.balance = st.balance.Sub(principal)
	if st.balance.LessThan(negligible) {
		principal = principal.Add(st.balance)
		st.balance = decimal.Zero
	}

	row.Principal = principal
	row.TotalPayment = row.Interest.Add(principal)
	row.Balance = st.balance
	return row
}

func (st *state) commitmentFee(ym period.YearMonth) decimal.Decimal {
	fee := st.loan.CommitmentFee
	if fee == nil || fee.AgreementDate.IsZero() {
		return decimal.Zero
	}
	if ym.Before(fee.AgreementDate.AddMonths(fee.FreeMonths)) {
		return decimal.Zero
	}
	return money.Round2(st.principal.Mul(fee.RatePercent).Div(hundred).Div(twelve))
}

// disagio spreads the discount evenly over the fixed-interest period, or
// over the first month when no fixed period is set.
func (st *state) disagio() decimal.Decimal {
	d := st.loan.DisagioPercent
	if !d.IsPositive() {
		return decimal.Zero
	}
	total := st.principal.Mul(d).Div(hundred)
	months := st.loan.FixedInterestYears * 12
	if months <= 0 {
		if st.k == 1 {
			return money.Round2(total)
		}
		return decimal.Zero
	}
	if st.k > months {
		return decimal.Zero
	}
	return money.Round2(total.Div(decimal.NewFromInt(int64(months))))
}

func (st *state) refinanced() bool {
	fixed := st.loan.FixedInterestYears * 12
	return st.loan.Refinancing != nil && fixed > 0 && st.k > fixed
}

// refinance switches to the follow-up terms in the first month after the
// fixed-interest period.
func (st *state) refinance() {
	r := st.loan.Refinancing
	if r == nil || st.loan.FixedInterestYears <= 0 || st.k != st.loan.FixedInterestYears*12+1 {
		return
	}
	st.rate = r.InterestRate
	switch {
	case r.MonthlyPayment != nil:
		st.payment = r.MonthlyPayment.Amount()
	default:
		repay := r.RepaymentRate
		if repay.IsZero() {
			repay = st.loan.InitialRepaymentRate
		}
		st.payment = annuity(r.InterestRate, repay, st.balance)
	}
}

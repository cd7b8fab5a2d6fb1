package financing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// Totals is the pointwise sum of several schedules.
type Totals struct {
	Interest       *timeseries.MoneySeries
	Principal      *timeseries.MoneySeries
	TotalPayment   *timeseries.MoneySeries
	CommitmentFees *timeseries.MoneySeries
	Disagio        *timeseries.MoneySeries
	// DebtService is TotalPayment plus commitment fees.
	DebtService *timeseries.MoneySeries
	Balance     *timeseries.MoneySeries
}

// Aggregate sums schedules month by month over h. Every schedule must use
// currency and cover exactly h.
func Aggregate(schedules []*Schedule, h period.Horizon, currency string) (Totals, error) {
	t := Totals{
		Interest:       timeseries.NewMoney(h, currency),
		Principal:      timeseries.NewMoney(h, currency),
		TotalPayment:   timeseries.NewMoney(h, currency),
		CommitmentFees: timeseries.NewMoney(h, currency),
		Disagio:        timeseries.NewMoney(h, currency),
		DebtService:    timeseries.NewMoney(h, currency),
		Balance:        timeseries.NewMoney(h, currency),
	}
	for _, s := range schedules {
		if s.Currency != currency {
			return Totals{}, fmt.Errorf("loan %s: %w", s.Loan.ID, money.ErrCurrencyMismatch)
		}
		if s.Horizon() != h {
			return Totals{}, fmt.Errorf("loan %s: %w", s.Loan.ID, timeseries.ErrHorizonMismatch)
		}
		for ym, row := range s.rows.All() {
			adds := []struct {
				series *timeseries.MoneySeries
				amount decimal.Decimal
			}{
				{t.Interest, row.Interest},
				{t.Principal, row.Principal},
				{t.TotalPayment, row.TotalPayment},
				{t.CommitmentFees, row.CommitmentFee},
				{t.Disagio, row.Disagio},
				{t.DebtService, row.TotalPayment.Add(row.CommitmentFee)},
				{t.Balance, row.Balance},
			}
			for _, a := range adds {
				if err := a.series.AddAmount(ym, a.amount); err != nil {
					return Totals{}, err
				}
			}
		}
	}
	return t, nil
}

// Summary condenses the schedule into totals for reporting.
func (s *Schedule) Summary() model.LoanSummary {
	interest, repaid, fees := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range s.rows.Values() {
		interest = interest.Add(row.Interest)
		repaid = repaid.Add(row.Principal)
		fees = fees.Add(row.CommitmentFee).Add(row.Disagio)
	}
	end, _ := s.rows.At(s.Horizon().End)
	return model.LoanSummary{
		LoanID:        s.Loan.ID,
		Type:          s.Loan.Type,
		Principal:     s.Loan.Principal,
		TotalInterest: money.New(interest, s.Currency),
		TotalRepaid:   money.New(repaid, s.Currency),
		TotalFees:     money.New(fees, s.Currency),
		BalanceAtEnd:  money.New(end.Balance, s.Currency),
		PaidOffIn:     s.paidOff,
	}
}

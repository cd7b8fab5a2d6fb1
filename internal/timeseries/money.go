package timeseries

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// MoneySeries is a Series of amounts in a single currency.
type MoneySeries struct {
	amounts  *Series[decimal.Decimal]
	currency string
}

// NewMoney returns a zero-filled money series.
func NewMoney(h period.Horizon, currency string) *MoneySeries {
	return &MoneySeries{amounts: New[decimal.Decimal](h), currency: currency}
}

func (s *MoneySeries) Horizon() period.Horizon { return s.amounts.Horizon() }
func (s *MoneySeries) Currency() string        { return s.currency }
func (s *MoneySeries) Len() int                { return s.amounts.Len() }
func (s *MoneySeries) Freeze()                 { s.amounts.Freeze() }

// At returns the money at ym.
func (s *MoneySeries) At(ym period.YearMonth) (money.Money, error) {
	d, err := s.amounts.At(ym)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(d, s.currency), nil
}

// Amount returns the raw amount at ym. It is a reading helper for months
// known to lie in the horizon and returns zero outside it; code that cannot
// guarantee that uses At, which reports ErrOutOfRange.
func (s *MoneySeries) Amount(ym period.YearMonth) decimal.Decimal {
	d, _ := s.amounts.At(ym)
	return d
}

// AmountAt returns the i-th raw amount.
func (s *MoneySeries) AmountAt(i int) decimal.Decimal { return s.amounts.Index(i) }

// Set writes m at ym. m must share the series currency.
func (s *MoneySeries) Set(ym period.YearMonth, m money.Money) error {
	if m.Currency() != s.currency {
		return fmt.Errorf("%w: %s != %s", money.ErrCurrencyMismatch, m.Currency(), s.currency)
	}
	return s.amounts.Set(ym, m.Amount())
}

// SetAmount writes a raw amount in the series currency.
func (s *MoneySeries) SetAmount(ym period.YearMonth, d decimal.Decimal) error {
	return s.amounts.Set(ym, d)
}

// AddAmount adds d to the value at ym.
func (s *MoneySeries) AddAmount(ym period.YearMonth, d decimal.Decimal) error {
	cur, err := s.amounts.At(ym)
	if err != nil {
		return err
	}
	return s.amounts.Set(ym, cur.Add(d))
}

// Sum totals the whole series.
func (s *MoneySeries) Sum() money.Money {
	total := decimal.Zero
	for _, d := range s.amounts.All() {
		total = total.Add(d)
	}
	return money.New(total, s.currency)
}

// YearSum totals the months of year that lie in the horizon.
func (s *MoneySeries) YearSum(year int) money.Money {
	total := decimal.Zero
	for ym, d := range s.amounts.All() {
		if ym.Year == year {
			total = total.Add(d)
		}
	}
	return money.New(total, s.currency)
}

// YearSums returns per-year totals in calendar order.
func (s *MoneySeries) YearSums() []YearTotal {
	var out []YearTotal
	for ym, d := range s.amounts.All() {
		if len(out) == 0 || out[len(out)-1].Year != ym.Year {
			out = append(out, YearTotal{Year: ym.Year, Total: money.Zero(s.currency)})
		}
		last := &out[len(out)-1]
		last.Total = money.New(last.Total.Amount().Add(d), s.currency)
	}
	return out
}

// YearTotal is one bucket of YearSums.
type YearTotal struct {
	Year  int         `json:"year" yaml:"year"`
	Total money.Money `json:"total" yaml:"total"`
}

// Cumulative returns the running total.
func (s *MoneySeries) Cumulative() *MoneySeries {
	out := NewMoney(s.Horizon(), s.currency)
	running := decimal.Zero
	for i, d := range s.amounts.values {
		running = running.Add(d)
		out.amounts.values[i] = running
	}
	return out
}

// Plus adds two series pointwise.
func (s *MoneySeries) Plus(o *MoneySeries) (*MoneySeries, error) {
	return s.combine(o, decimal.Decimal.Add)
}

// Minus subtracts o from s pointwise.
func (s *MoneySeries) Minus(o *MoneySeries) (*MoneySeries, error) {
	return s.combine(o, decimal.Decimal.Sub)
}

// Neg returns the negated series.
func (s *MoneySeries) Neg() *MoneySeries {
	out := NewMoney(s.Horizon(), s.currency)
	for i, d := range s.amounts.values {
		out.amounts.values[i] = d.Neg()
	}
	return out
}

// Clone returns an unfrozen copy.
func (s *MoneySeries) Clone() *MoneySeries {
	out := NewMoney(s.Horizon(), s.currency)
	copy(out.amounts.values, s.amounts.values)
	return out
}

// SumOf adds any number of series pointwise.
func SumOf(h period.Horizon, currency string, series ...*MoneySeries) (*MoneySeries, error) {
	total := NewMoney(h, currency)
	for _, s := range series {
		var err error
		if total, err = total.Plus(s); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// All iterates months and amounts in order.
func (s *MoneySeries) All() iter.Seq2[period.YearMonth, decimal.Decimal] {
	return s.amounts.All()
}

func (s *MoneySeries) combine(o *MoneySeries, op func(decimal.Decimal, decimal.Decimal) decimal.Decimal) (*MoneySeries, error) {
	if s.currency != o.currency {
		return nil, fmt.Errorf("%w: %s != %s", money.ErrCurrencyMismatch, s.currency, o.currency)
	}
	if s.Horizon() != o.Horizon() {
		return nil, fmt.Errorf("%w: %s vs %s", ErrHorizonMismatch, s.Horizon(), o.Horizon())
	}
	out := NewMoney(s.Horizon(), s.currency)
	for i := range s.amounts.values {
		out.amounts.values[i] = op(s.amounts.values[i], o.amounts.values[i])
	}
	return out, nil
}

type point struct {
	Period period.YearMonth `json:"period"`
	Amount decimal.Decimal  `json:"amount"`
}

// MarshalJSON encodes as {"currency": ..., "points": [{period, amount}, ...]}.
func (s *MoneySeries) MarshalJSON() ([]byte, error) {
	points := make([]point, 0, s.Len())
	for ym, d := range s.amounts.All() {
		points = append(points, point{Period: ym, Amount: d})
	}
	return json.Marshal(struct {
		Currency string  `json:"currency"`
		Points   []point `json:"points"`
	}{s.currency, points})
}

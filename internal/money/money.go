package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	// ErrCurrencyMismatch is returned by every binary operation on two different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrUnknownCurrency is returned for codes that are not ISO 4217.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrInvalidAmount is returned when an amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Money is an exact decimal amount in a single currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New returns amount in currency.
func New(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// FromInt is shorthand for whole amounts.
func FromInt(amount int64, currency string) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: currency}
}

// Zero returns 0 in currency.
func Zero(currency string) Money { return Money{amount: decimal.Zero, currency: currency} }

// MustParse reads "1234.56 EUR" and panics on error. Intended for tests and literals.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Parse reads "1234.56 EUR".
func Parse(s string) (Money, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Money{}, fmt.Errorf("%w: %q (want \"<amount> <currency>\")", ErrInvalidAmount, s)
	}
	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	cur, err := ParseCurrency(fields[1])
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// ParseCurrency normalizes and validates an ISO 4217 code.
func ParseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if gomoney.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return code, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }
func (m Money) Neg() Money              { return Money{amount: m.amount.Neg(), currency: m.currency} }

// Equal compares amount and currency.
func (m Money) Equal(n Money) bool { return m.currency == n.currency && m.amount.Equal(n.amount) }

// Round rounds to 2 decimals, half away from zero.
func (m Money) Round() Money { return Money{amount: Round2(m.amount), currency: m.currency} }

// Mul scales by a factor; the currency is kept.
func (m Money) Mul(f decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(f), currency: m.currency}
}

// Add returns m+n or ErrCurrencyMismatch.
func (m Money) Add(n Money) (Money, error) {
	if err := m.same(n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(n.amount), currency: m.currency}, nil
}

// Sub returns m-n or ErrCurrencyMismatch.
func (m Money) Sub(n Money) (Money, error) {
	if err := m.same(n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(n.amount), currency: m.currency}, nil
}

// Cmp compares two amounts of the same currency.
func (m Money) Cmp(n Money) (int, error) {
	if err := m.same(n); err != nil {
		return 0, err
	}
	return m.amount.Cmp(n.amount), nil
}

// Sum adds all values; the first value fixes the currency.
func Sum(currency string, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (m Money) same(n Money) error {
	if m.currency != n.currency {
		return fmt.Errorf("%w: %s != %s", ErrCurrencyMismatch, m.currency, n.currency)
	}
	return nil
}

// Round2 rounds d to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// String renders with the currency's own formatting rules.
func (m Money) String() string {
	cur := gomoney.GetCurrency(m.currency)
	if cur == nil {
		return m.amount.StringFixed(2) + " " + m.currency
	}
	minor := m.amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, m.currency).Display()
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON encodes as {"amount": "1.23", "currency": "EUR"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON accepts the object form or "1.23 EUR".
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	cur, err := ParseCurrency(raw.Currency)
	if err != nil {
		return err
	}
	*m = Money{amount: raw.Amount, currency: cur}
	return nil
}

// MarshalYAML encodes as the scalar "1.23 EUR".
func (m Money) MarshalYAML() (any, error) {
	return m.amount.String() + " " + m.currency, nil
}

// UnmarshalYAML accepts "1.23 EUR" or an {amount, currency} mapping.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	var raw struct {
		Amount   string `yaml:"amount"`
		Currency string `yaml:"currency"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	v, err := Parse(raw.Amount + " " + raw.Currency)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAddSameCurrency(t *testing.T) {
	a := MustParse("100.10 EUR")
	b := MustParse("0.90 EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(MustParse("101 EUR")), "got %s", sum.Amount())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "99.2", diff.Amount().String())
}

func TestCurrencyMismatch(t *testing.T) {
	eur := MustParse("1 EUR")
	usd := MustParse("1 USD")

	_, err := eur.Add(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = eur.Sub(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = eur.Cmp(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = Sum("EUR", eur, usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2.345", "2.35"},
		{"2.344", "2.34"},
		{"-2.345", "-2.35"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"10", "10"},
	}
	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.in))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "Round2(%s) = %s", tt.in, got)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("400000 eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", m.Currency())
	assert.Equal(t, "400000", m.Amount().String())

	for _, bad := range []string{"", "100", "abc EUR", "100 XXXX", "1 2 3"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
	_, err = ParseCurrency("ZZZ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestJSONShape(t *testing.T) {
	data, err := json.Marshal(MustParse("12.5 EUR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.5","currency":"EUR"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.True(t, m.Equal(MustParse("12.5 EUR")))
}

func TestYAMLForms(t *testing.T) {
	var doc struct {
		Price Money `yaml:"price"`
		Land  Money `yaml:"land"`
	}
	src := "price: 400000 EUR\nland:\n  amount: 100000\n  currency: EUR\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	assert.True(t, doc.Price.Equal(FromInt(400000, "EUR")))
	assert.True(t, doc.Land.Equal(FromInt(100000, "EUR")))
}

func TestString(t *testing.T) {
	assert.NotEmpty(t, MustParse("1234.5 EUR").String())
	assert.Equal(t, "1.00 QQQ", New(decimal.NewFromInt(1), "QQQ").String())
}

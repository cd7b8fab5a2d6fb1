package period

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYearMonthArithmetic(t *testing.T) {
	tests := []struct {
		start string
		add   int
		want  string
	}{
		{"2025-01", 1, "2025-02"},
		{"2025-12", 1, "2026-01"},
		{"2025-01", -1, "2024-12"},
		{"2025-06", 30, "2027-12"},
		{"2025-03", -27, "2022-12"},
	}
	for _, tt := range tests {
		got := MustParse(tt.start).AddMonths(tt.add)
		assert.Equal(t, tt.want, got.String(), "%s + %d", tt.start, tt.add)
	}

	assert.Equal(t, "2035-01", MustParse("2025-01").AddYears(10).String())
	assert.Equal(t, 119, MustParse("2025-01").MonthsUntil(MustParse("2034-12")))
	assert.Equal(t, -1, MustParse("2025-02").MonthsUntil(MustParse("2025-01")))
}

func TestYearMonthOrdering(t *testing.T) {
	a := MustParse("2025-01")
	b := MustParse("2025-02")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, a, Of(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "2025", "2025-13", "2025-00", "xxxx-01", "2025-ab"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrInvalidYearMonth, "input %q", input)
	}
}

func TestYearMonthJSON(t *testing.T) {
	data, err := json.Marshal(MustParse("2025-03"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2025,"month":3}`, string(data))

	var ym YearMonth
	require.NoError(t, json.Unmarshal([]byte(`"2026-11"`), &ym))
	assert.Equal(t, YearMonth{Year: 2026, Month: 11}, ym)
}

func TestYearMonthYAML(t *testing.T) {
	var doc struct {
		A YearMonth `yaml:"a"`
		B YearMonth `yaml:"b"`
	}
	err := yaml.Unmarshal([]byte("a: 2025-01\nb:\n  year: 2030\n  month: 7\n"), &doc)
	require.NoError(t, err)
	assert.Equal(t, MustParse("2025-01"), doc.A)
	assert.Equal(t, MustParse("2030-07"), doc.B)
}

func TestHorizon(t *testing.T) {
	h, err := NewHorizon(MustParse("2025-07"), MustParse("2027-02"))
	require.NoError(t, err)

	assert.Equal(t, 20, h.Len())
	assert.Equal(t, []int{2025, 2026, 2027}, h.Years())
	assert.Equal(t, 6, h.MonthsInYear(2025))
	assert.Equal(t, 12, h.MonthsInYear(2026))
	assert.Equal(t, 2, h.MonthsInYear(2027))
	assert.Equal(t, 0, h.MonthsInYear(2028))
	assert.True(t, h.Contains(MustParse("2025-07")))
	assert.True(t, h.Contains(MustParse("2027-02")))
	assert.False(t, h.Contains(MustParse("2027-03")))
	assert.Len(t, h.Months(), 20)

	_, err = NewHorizon(MustParse("2025-02"), MustParse("2025-01"))
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

package period

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidYearMonth is returned when a year-month cannot be constructed or parsed.
var ErrInvalidYearMonth = errors.New("invalid year-month")

// YearMonth is a calendar month. The zero value is not a valid month.
type YearMonth struct {
	Year  int
	Month int
}

// New returns a validated YearMonth.
func New(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: month %d out of 1..12", ErrInvalidYearMonth, month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// FromIndex is the inverse of Index.
func FromIndex(i int) YearMonth {
	y := i / 12
	m := i % 12
	if m < 0 {
		m += 12
		y--
	}
	return YearMonth{Year: y, Month: m + 1}
}

// Parse reads "YYYY-MM".
func Parse(s string) (YearMonth, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: year in %q", ErrInvalidYearMonth, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: month in %q", ErrInvalidYearMonth, s)
	}
	return New(y, m)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) YearMonth {
	ym, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ym
}

// Index flattens the month to an absolute month count.
func (ym YearMonth) Index() int { return ym.Year*12 + ym.Month - 1 }

// IsZero reports whether ym is unset.
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// AddMonths returns ym shifted by n months.
func (ym YearMonth) AddMonths(n int) YearMonth { return FromIndex(ym.Index() + n) }

// AddYears returns ym shifted by n years.
func (ym YearMonth) AddYears(n int) YearMonth { return ym.AddMonths(12 * n) }

// MonthsUntil returns the signed number of months from ym to other.
func (ym YearMonth) MonthsUntil(other YearMonth) int { return other.Index() - ym.Index() }

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool { return ym.Index() < other.Index() }

// After reports whether ym is strictly later than other.
func (ym YearMonth) After(other YearMonth) bool { return ym.Index() > other.Index() }

// Compare returns -1, 0 or +1.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Index() < other.Index():
		return -1
	case ym.Index() > other.Index():
		return 1
	}
	return 0
}

// FirstDay returns midnight UTC of the first day of the month.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

// String formats as "YYYY-MM".
func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month) }

type yearMonthJSON struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MarshalJSON encodes as {"year": 2025, "month": 1}.
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(yearMonthJSON{Year: ym.Year, Month: ym.Month})
}

// UnmarshalJSON accepts {"year":..,"month":..} or "YYYY-MM".
func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*ym = v
		return nil
	}
	var raw yearMonthJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidYearMonth, data)
	}
	v, err := New(raw.Year, raw.Month)
	if err != nil {
		return err
	}
	*ym = v
	return nil
}

// MarshalYAML encodes as the scalar "YYYY-MM".
func (ym YearMonth) MarshalYAML() (any, error) {
	return ym.String(), nil
}

// UnmarshalYAML accepts "YYYY-MM" or a {year, month} mapping.
func (ym *YearMonth) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*ym = v
		return nil
	}
	var raw struct {
		Year  int `yaml:"year"`
		Month int `yaml:"month"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYearMonth, err)
	}
	v, err := New(raw.Year, raw.Month)
	if err != nil {
		return err
	}
	*ym = v
	return nil
}

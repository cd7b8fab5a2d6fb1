package period

import (
	"errors"
	"fmt"
)

// ErrInvalidHorizon is returned when a horizon ends before it starts.
var ErrInvalidHorizon = errors.New("invalid horizon")

// Horizon is an inclusive range of months.
type Horizon struct {
	Start YearMonth `json:"start" yaml:"start"`
	End   YearMonth `json:"end" yaml:"end"`
}

// NewHorizon validates that start <= end.
func NewHorizon(start, end YearMonth) (Horizon, error) {
	if end.Before(start) {
		return Horizon{}, fmt.Errorf("%w: %s..%s", ErrInvalidHorizon, start, end)
	}
	return Horizon{Start: start, End: end}, nil
}

// Len returns the number of months in the horizon.
func (h Horizon) Len() int { return h.Start.MonthsUntil(h.End) + 1 }

// Contains reports whether ym lies within the horizon.
func (h Horizon) Contains(ym YearMonth) bool {
	return !ym.Before(h.Start) && !ym.After(h.End)
}

// Offset returns the position of ym relative to Start.
func (h Horizon) Offset(ym YearMonth) int { return h.Start.MonthsUntil(ym) }

// Months lists every month of the horizon in order.
func (h Horizon) Months() []YearMonth {
	out := make([]YearMonth, 0, h.Len())
	for i := range h.Len() {
		out = append(out, h.Start.AddMonths(i))
	}
	return out
}

// Years lists the calendar years touched by the horizon.
func (h Horizon) Years() []int {
	out := make([]int, 0, h.End.Year-h.Start.Year+1)
	for y := h.Start.Year; y <= h.End.Year; y++ {
		out = append(out, y)
	}
	return out
}

// MonthsInYear counts the horizon months that fall in year.
func (h Horizon) MonthsInYear(year int) int {
	if year < h.Start.Year || year > h.End.Year {
		return 0
	}
	first, last := 1, 12
	if year == h.Start.Year {
		first = h.Start.Month
	}
	if year == h.End.Year {
		last = h.End.Month
	}
	return last - first + 1
}

func (h Horizon) String() string { return h.Start.String() + ".." + h.End.String() }

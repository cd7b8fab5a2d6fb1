// Package timeseries holds dense monthly series over a fixed horizon.
package timeseries

import (
	"errors"
	"fmt"
	"iter"

	"github.com/cleared-dev/immocalc/internal/period"
)

var (
	// ErrOutOfRange is returned when a month lies outside the series horizon.
	ErrOutOfRange = errors.New("month outside series horizon")

	// ErrFrozen is returned when writing to a series that has been published in a result.
	ErrFrozen = errors.New("series is frozen")

	// ErrHorizonMismatch is returned when combining series of different horizons.
	ErrHorizonMismatch = errors.New("series horizons differ")
)

// Series maps every month of a horizon to a value.
type Series[V any] struct {
	horizon period.Horizon
	values  []V
	frozen  bool
}

// New returns a series with the zero value in every month.
func New[V any](h period.Horizon) *Series[V] {
	return &Series[V]{horizon: h, values: make([]V, h.Len())}
}

// Horizon returns the months covered.
func (s *Series[V]) Horizon() period.Horizon { return s.horizon }

// Len returns the number of months.
func (s *Series[V]) Len() int { return len(s.values) }

// At returns the value at ym.
func (s *Series[V]) At(ym period.YearMonth) (V, error) {
	i, err := s.index(ym)
	if err != nil {
		var zero V
		return zero, err
	}
	return s.values[i], nil
}

// Set writes the value at ym.
func (s *Series[V]) Set(ym period.YearMonth, v V) error {
	if s.frozen {
		return ErrFrozen
	}
	i, err := s.index(ym)
	if err != nil {
		return err
	}
	s.values[i] = v
	return nil
}

// Index returns the i-th value; i must be within [0, Len).
func (s *Series[V]) Index(i int) V { return s.values[i] }

// All iterates months and values in order.
func (s *Series[V]) All() iter.Seq2[period.YearMonth, V] {
	return func(yield func(period.YearMonth, V) bool) {
		for i, v := range s.values {
			if !yield(s.horizon.Start.AddMonths(i), v) {
				return
			}
		}
	}
}

// Values returns a copy of the underlying values.
func (s *Series[V]) Values() []V {
	out := make([]V, len(s.values))
	copy(out, s.values)
	return out
}

// Freeze makes every later Set fail.
func (s *Series[V]) Freeze() { s.frozen = true }

// Frozen reports whether the series is read-only.
func (s *Series[V]) Frozen() bool { return s.frozen }

func (s *Series[V]) index(ym period.YearMonth) (int, error) {
	if !s.horizon.Contains(ym) {
		return 0, fmt.Errorf("%w: %s not in %s", ErrOutOfRange, ym, s.horizon)
	}
	return s.horizon.Offset(ym), nil
}

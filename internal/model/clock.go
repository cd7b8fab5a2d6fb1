package model

import "time"

// Clock supplies "today" to age- and risk-dependent rules.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FixedClock always returns the same day.
type FixedClock time.Time

func (c FixedClock) Today() time.Time { return time.Time(c) }

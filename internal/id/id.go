package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cleared-dev/immocalc/internal/period"
)

// MeasurePrefix starts every CapEx measure id.
const MeasurePrefix = "CX"

// NewProjectID returns a random project id.
func NewProjectID() string { return uuid.NewString() }

// NewRunID returns a random id for one calculation run.
func NewRunID() string { return uuid.NewString() }

// FormatMeasureID returns a measure ID like "CX-2027-06-001".
func FormatMeasureID(planned period.YearMonth, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", MeasurePrefix, planned.Year, planned.Month, seq)
}

// ParseMeasureID parses "CX-2027-06-001" into its planned month and sequence.
func ParseMeasureID(id string) (period.YearMonth, int, error) {
	rest, ok := strings.CutPrefix(id, MeasurePrefix+"-")
	if !ok {
		return period.YearMonth{}, 0, fmt.Errorf("invalid measure ID format: %q", id)
	}
	parts := strings.SplitN(rest, "-", 3)
	if len(parts) != 3 {
		return period.YearMonth{}, 0, fmt.Errorf("invalid measure ID format: %q", id)
	}

	ym, err := period.Parse(parts[0] + "-" + parts[1])
	if err != nil {
		return period.YearMonth{}, 0, fmt.Errorf("invalid period in measure ID %q: %w", id, err)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return period.YearMonth{}, 0, fmt.Errorf("invalid sequence in measure ID %q: %w", id, err)
	}
	return ym, seq, nil
}

// NextMeasureID returns the next free id for planned, one past the highest
// sequence among existing ids of that month. Ids in other formats are ignored.
func NextMeasureID(existing []string, planned period.YearMonth) string {
	highest := 0
	for _, e := range existing {
		ym, seq, err := ParseMeasureID(e)
		if err != nil || ym != planned {
			continue
		}
		highest = max(highest, seq)
	}
	return FormatMeasureID(planned, highest+1)
}

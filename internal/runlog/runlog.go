// Package runlog keeps an append-only CSV record of calculation runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/immocalc/internal/model"
)

// Entry is one row in the calculation log.
type Entry struct {
	Timestamp  time.Time
	RunID      string
	ProjectID  string
	ScenarioID string
	Warnings   int
	IRRPercent string
	// CashflowAfterTax is the horizon total as a plain decimal.
	CashflowAfterTax string
}

// Header is the CSV header for calculation-log.csv.
const Header = "timestamp,run_id,project_id,scenario_id,warnings,irr_percent,cashflow_after_tax"

const (
	numFields           = 7
	logDir              = "logs"
	logFile             = "logs/calculation-log.csv"
	colTimestamp        = 0
	colRunID            = 1
	colProjectID        = 2
	colScenarioID       = 3
	colWarnings         = 4
	colIRR              = 5
	colCashflowAfterTax = 6
)

// FromResult builds the log entry of one finished run.
func FromResult(runID string, at time.Time, res *model.CalculationResult) Entry {
	return Entry{
		Timestamp:        at,
		RunID:            runID,
		ProjectID:        res.ProjectID,
		ScenarioID:       res.ScenarioID,
		Warnings:         len(res.Warnings),
		IRRPercent:       res.Metrics.IRRPercent.String(),
		CashflowAfterTax: res.Metrics.TotalCashflowAfterTax.Amount().StringFixed(2),
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colProjectID] = e.ProjectID
	row[colScenarioID] = e.ScenarioID
	row[colWarnings] = strconv.Itoa(e.Warnings)
	row[colIRR] = e.IRRPercent
	row[colCashflowAfterTax] = e.CashflowAfterTax
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	warnings, err := strconv.Atoi(record[colWarnings])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing warnings %q: %w", record[colWarnings], err)
	}

	return Entry{
		Timestamp:        ts,
		RunID:            record[colRunID],
		ProjectID:        record[colProjectID],
		ScenarioID:       record[colScenarioID],
		Warnings:         warnings,
		IRRPercent:       record[colIRR],
		CashflowAfterTax: record[colCashflowAfterTax],
	}, nil
}

// Append writes entries to <root>/logs/calculation-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening calculation log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <root>/logs/calculation-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening calculation log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading calculation log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

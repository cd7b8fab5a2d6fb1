// Package export writes calculation results as CSV time series, YAML or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/period"
)

// Format selects the output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts yaml, yml, json and csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (want yaml, json or csv)", s)
}

// Write encodes res in format. YAML carries the summary without the monthly
// series, CSV carries only the series, JSON carries everything.
func Write(w io.Writer, res *model.CalculationResult, format Format) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteSeries(w, res.Series)
	}
	return fmt.Errorf("unknown format %q", format)
}

// WriteYAML writes the result summary.
func WriteYAML(w io.Writer, res *model.CalculationResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the full result, indented.
func WriteJSON(w io.Writer, res *model.CalculationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

const colPeriod = "period"

// SeriesHeader returns the CSV header for the result series.
func SeriesHeader(s model.CashflowSeries) []string {
	named := s.Named()
	header := make([]string, 0, len(named)+1)
	header = append(header, colPeriod)
	for _, n := range named {
		header = append(header, n.Name)
	}
	return header
}

// WriteSeries writes one row per month with one column per series
// (including header).
func WriteSeries(w io.Writer, s model.CashflowSeries) error {
	named := s.Named()
	for _, n := range named {
		if n.Series == nil {
			return fmt.Errorf("series %s is missing", n.Name)
		}
	}
	h := named[0].Series.Horizon()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(SeriesHeader(s)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, ym := range h.Months() {
		row := make([]string, 0, len(named)+1)
		row = append(row, ym.String())
		for _, n := range named {
			row = append(row, n.Series.AmountAt(i).StringFixed(2))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Row is one month read back from a series CSV.
type Row struct {
	Period  period.YearMonth
	Amounts map[string]decimal.Decimal
}

// ReadSeries reads a CSV written by WriteSeries.
func ReadSeries(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading series CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if len(header) == 0 || header[0] != colPeriod {
		return nil, fmt.Errorf("first column must be %q", colPeriod)
	}

	var rows []Row
	for i, rec := range records[1:] {
		ym, err := period.Parse(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := Row{Period: ym, Amounts: make(map[string]decimal.Decimal, len(header)-1)}
		for j, name := range header[1:] {
			v, err := decimal.NewFromString(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing %s %q: %w", i+2, name, rec[j+1], err)
			}
			row.Amounts[name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

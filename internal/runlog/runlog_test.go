package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:        testTime,
		RunID:            "4f1c2a9e-0d7b-4c55-9d3e-1b2a3c4d5e6f",
		ProjectID:        "sample",
		ScenarioID:       "high-vacancy",
		Warnings:         3,
		IRRPercent:       "4.21",
		CashflowAfterTax: "-12345.67",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "sample", entries[0].ProjectID)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.ScenarioID = ""
	e2.Warnings = 0
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "high-vacancy", entries[0].ScenarioID)
	assert.Equal(t, "", entries[1].ScenarioID)
	assert.Equal(t, 0, entries[1].Warnings)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "calculation-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 fields")
}

func TestUnmarshalEntry_BadWarnings(t *testing.T) {
	row := MarshalEntry(testEntry())
	row[4] = "many"
	_, err := UnmarshalEntry(row)
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2025-01-15T10:30:00Z", row[0])
}

func TestFromResult(t *testing.T) {
	res := &model.CalculationResult{
		ProjectID:  "p",
		ScenarioID: "s",
		Warnings:   []model.Warning{{Code: model.WarningHighLTV}},
		Metrics: model.InvestmentMetrics{
			IRRPercent:            decimal.RequireFromString("5.5"),
			TotalCashflowAfterTax: money.FromInt(1200, "EUR"),
		},
	}
	e := FromResult("run", testTime, res)
	assert.Equal(t, Entry{
		Timestamp:        testTime,
		RunID:            "run",
		ProjectID:        "p",
		ScenarioID:       "s",
		Warnings:         1,
		IRRPercent:       "5.5",
		CashflowAfterTax: "1200.00",
	}, e)
}

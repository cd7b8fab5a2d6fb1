package model

import "github.com/cleared-dev/immocalc/internal/period"

// WarningCode identifies a domain red flag. Warnings never abort a calculation.
type WarningCode string

const (
	WarningNegativeCashflow                 WarningCode = "NegativeCashflow"
	WarningLowDSCR                          WarningCode = "LowDSCR"
	WarningReserveShortfall                 WarningCode = "ReserveShortfall"
	WarningDeferredMaintenance              WarningCode = "DeferredMaintenance"
	WarningOverdueComponents                WarningCode = "OverdueComponents"
	WarningHighLTV                          WarningCode = "HighLTV"
	WarningAcquisitionRelatedCostsTriggered WarningCode = "AcquisitionRelatedCostsTriggered"
	WarningSaleWithinSpeculationPeriod      WarningCode = "SaleWithinSpeculationPeriod"
)

// Severity grades a warning.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Warning is one structured red flag on a result.
type Warning struct {
	Code      WarningCode       `json:"code" yaml:"code"`
	Severity  Severity          `json:"severity" yaml:"severity"`
	Message   string            `json:"message" yaml:"message"`
	Period    *period.YearMonth `json:"period,omitempty" yaml:"period,omitempty"`
	MeasureID string            `json:"measureId,omitempty" yaml:"measure_id,omitempty"`
}

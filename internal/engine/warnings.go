package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/period"
)

func (c *Calculator) warnings(_ context.Context, r *run) error {
	p := r.project
	res := r.result
	s := res.Series
	add := func(w model.Warning) { res.Warnings = append(res.Warnings, w) }

	for _, y := range s.CashflowAfterTax.YearSums() {
		if !y.Total.IsNegative() {
			continue
		}
		at := firstMonthOf(r.horizon, y.Year)
		add(model.Warning{
			Code:     model.WarningNegativeCashflow,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("cashflow after tax in %d is %s", y.Year, y.Total),
			Period:   &at,
		})
	}

	dscr, err := coverage(s.NetOperatingIncome, s.DebtService)
	if err != nil {
		return err
	}
	if dscr.at != nil && dscr.min.LessThan(c.params.MinDSCR) {
		sev := model.SeverityWarning
		if dscr.min.LessThan(one) {
			sev = model.SeverityCritical
		}
		add(model.Warning{
			Code:     model.WarningLowDSCR,
			Severity: sev,
			Message:  fmt.Sprintf("debt service coverage drops to %s (minimum %s)", dscr.min, c.params.MinDSCR),
			Period:   dscr.at,
		})
	}

	for ym, v := range r.shortfall.All() {
		if v.IsPositive() {
			at := ym
			add(model.Warning{
				Code:     model.WarningReserveShortfall,
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("reserve cannot cover CapEx, %s paid from cashflow in total", r.shortfall.Sum()),
				Period:   &at,
			})
			break
		}
	}

	today := period.Of(c.clock.Today())
	for _, m := range p.Measures() {
		if m.Executed || !m.PlannedPeriod.Before(today) {
			continue
		}
		at := m.PlannedPeriod
		add(model.Warning{
			Code:      model.WarningDeferredMaintenance,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("measure %s was planned for %s and is not executed", m.ID, m.PlannedPeriod),
			Period:    &at,
			MeasureID: m.ID,
		})
	}

	if fc := res.Forecast; fc != nil {
		var overdue []string
		for _, cf := range fc.Components {
			if cf.Status != model.ComponentOverdue && cf.Status != model.ComponentOverdueAtPurchase {
				continue
			}
			label := string(cf.Category)
			if cf.UnitID != "" {
				label += " (" + cf.UnitID + ")"
			}
			overdue = append(overdue, fmt.Sprintf("%s due %d", label, cf.DueYear))
		}
		if len(overdue) > 0 {
			add(model.Warning{
				Code:     model.WarningOverdueComponents,
				Severity: model.SeverityInfo,
				Message:  "components overdue for renewal: " + strings.Join(overdue, ", "),
			})
		}
	}

	if ltv := res.Metrics.InitialLTVPercent; ltv.GreaterThan(c.params.MaxLTVPercent) {
		add(model.Warning{
			Code:     model.WarningHighLTV,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("initial loan-to-value is %s%% (maximum %s%%)", ltv, c.params.MaxLTVPercent),
		})
	}

	if rule := res.Tax.AcquisitionRule; rule.Triggered {
		add(model.Warning{
			Code:     model.WarningAcquisitionRelatedCostsTriggered,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf("maintenance of %s within %d years of purchase exceeds %s; measures are capitalized",
				rule.Actual, c.params.Tax.AcquisitionWindowYears, rule.Threshold),
		})
	}

	if cg := res.Tax.CapitalGains; cg != nil && cg.WithinSpeculationPeriod {
		at := period.Of(cg.SaleDate)
		add(model.Warning{
			Code:     model.WarningSaleWithinSpeculationPeriod,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("planned sale after %d years is taxed: %s on a gain of %s", cg.HoldingYears, cg.Tax, cg.Gain),
			Period:   &at,
		})
	}
	if ex := res.Exit; ex != nil && len(ex.Scenarios) > 0 && ex.Scenarios[0].WithinSpeculationPeriod {
		add(model.Warning{
			Code:     model.WarningSaleWithinSpeculationPeriod,
			Severity: model.SeverityInfo,
			Message:  fmt.Sprintf("exit on %s is within the speculation period", ex.ExitDate.Format("2006-01-02")),
		})
	}
	return nil
}

func firstMonthOf(h period.Horizon, year int) period.YearMonth {
	ym := period.YearMonth{Year: year, Month: 1}
	if ym.Before(h.Start) {
		return h.Start
	}
	return ym
}

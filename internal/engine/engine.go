// Package engine runs the full calculation pipeline for one project and
// assembles the result report.
package engine

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/cashflow"
	"github.com/cleared-dev/immocalc/internal/exit"
	"github.com/cleared-dev/immocalc/internal/financing"
	"github.com/cleared-dev/immocalc/internal/forecast"
	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/tax"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// Params collect the tunable rules of every calculator.
type Params struct {
	Tax      tax.Params
	Exit     exit.Params
	Forecast forecast.Params

	// MinDSCR is the coverage below which LowDSCR is raised.
	MinDSCR       decimal.Decimal
	MaxLTVPercent decimal.Decimal
	// DiscountRatePercent is the yearly NPV rate unless the investor sets one.
	DiscountRatePercent decimal.Decimal
}

// DefaultParams returns the standard rules.
func DefaultParams() Params {
	return Params{
		Tax:                 tax.DefaultParams(),
		Exit:                exit.DefaultParams(),
		Forecast:            forecast.DefaultParams(),
		MinDSCR:             decimal.RequireFromString("1.2"),
		MaxLTVPercent:       decimal.NewFromInt(80),
		DiscountRatePercent: decimal.NewFromInt(4),
	}
}

// Calculator turns projects into results. It holds no per-run state and is
// safe for concurrent use.
type Calculator struct {
	params Params
	clock  model.Clock
	log    *log.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

func WithParams(p Params) Option { return func(c *Calculator) { c.params = p } }

func WithClock(clock model.Clock) Option { return func(c *Calculator) { c.clock = clock } }

// WithLogger receives one line per pipeline stage.
func WithLogger(l *log.Logger) Option { return func(c *Calculator) { c.log = l } }

// New returns a Calculator with default params, the system clock and no logging.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		params: DefaultParams(),
		clock:  model.SystemClock{},
		log:    log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// run carries the intermediate series of one calculation.
type run struct {
	project   model.Project
	horizon   period.Horizon
	schedules []*financing.Schedule
	debt      financing.Totals
	ops       *cashflow.Operations
	plan      *tax.Plan
	taxes     *tax.Result
	shortfall *timeseries.MoneySeries
	result    *model.CalculationResult
}

// Calculate runs p, with the overrides of scenarioID applied when it is not
// empty. Any failing stage aborts the run; domain red flags are returned as
// warnings on the result instead.
func (c *Calculator) Calculate(ctx context.Context, p model.Project, scenarioID string) (*model.CalculationResult, error) {
	if scenarioID != "" {
		sc, ok := p.Scenario(scenarioID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrScenarioNotFound, scenarioID)
		}
		p = model.NewBuilder(p).WithScenario(sc).Build()
		c.log.Printf("applied scenario %s", scenarioID)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h, err := p.Horizon()
	if err != nil {
		return nil, err
	}

	r := &run{
		project: p,
		horizon: h,
		result: &model.CalculationResult{
			ProjectID:  p.ID,
			ScenarioID: scenarioID,
			Currency:   p.Currency,
			Horizon:    h,
		},
	}
	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{"financing", c.loans},
		{"operations", c.operations},
		{"tax", c.incomeTax},
		{"cashflow", c.cashflows},
		{"property value", c.propertyValue},
		{"capital gains", c.capitalGains},
		{"forecast", c.valueForecast},
		{"metrics", c.metrics},
		{"warnings", c.warnings},
	}
	for _, s := range stages {
		if err := s.fn(ctx, r); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		c.log.Printf("%s: %s done", p.ID, s.name)
	}

	r.result.Series.Freeze()
	return r.result, nil
}

func (c *Calculator) loans(_ context.Context, r *run) error {
	p := r.project
	for _, loan := range p.Financing.Loans {
		s, err := financing.Amortize(loan, r.horizon)
		if err != nil {
			return fmt.Errorf("loan %s: %w", loan.ID, err)
		}
		r.schedules = append(r.schedules, s)
		r.result.Loans = append(r.result.Loans, s.Summary())
	}
	debt, err := financing.Aggregate(r.schedules, r.horizon, p.Currency)
	if err != nil {
		return err
	}
	r.debt = debt

	s := &r.result.Series
	s.Interest = debt.Interest
	s.Principal = debt.Principal
	s.CommitmentFees = debt.CommitmentFees
	s.Disagio = debt.Disagio
	s.DebtService = debt.DebtService
	s.OutstandingBalance = debt.Balance
	return nil
}

func (c *Calculator) operations(_ context.Context, r *run) error {
	ops, err := cashflow.Compute(r.project, r.horizon)
	if err != nil {
		return err
	}
	r.ops = ops

	s := &r.result.Series
	s.GrossRent = ops.GrossRent
	s.VacancyLoss = ops.VacancyLoss
	s.EffectiveRent = ops.EffectiveRent
	s.OperatingCosts = ops.OperatingCosts
	s.NetOperatingIncome = ops.NetOperatingIncome
	s.ReserveContributions = ops.ReserveContributions
	s.CapExPayments = ops.CapExPayments
	return nil
}

// incomeTax classifies CapEx (15% rule first) and derives the yearly income tax.
// Operating costs, commitment fees and disagio are deductible besides
// interest, depreciation and maintenance.
func (c *Calculator) incomeTax(_ context.Context, r *run) error {
	p := r.project
	plan, err := tax.NewPlan(p, r.horizon, c.params.Tax)
	if err != nil {
		return err
	}
	r.plan = plan

	other, err := timeseries.SumOf(r.horizon, p.Currency, r.ops.OperatingCosts, r.debt.CommitmentFees, r.debt.Disagio)
	if err != nil {
		return fmt.Errorf("other deductions: %w", err)
	}
	taxes, err := tax.TimeSeries(tax.Inputs{
		Profile:         p.Tax,
		GrossIncome:     r.ops.EffectiveRent,
		Depreciation:    plan.Depreciation,
		Interest:        r.debt.Interest,
		Maintenance:     plan.Maintenance,
		OtherDeductions: other,
	})
	if err != nil {
		return err
	}
	r.taxes = taxes

	s := &r.result.Series
	s.Depreciation = plan.Depreciation
	s.MaintenanceDeductions = plan.Maintenance
	s.TaxableIncome = taxes.TaxableIncome
	s.TaxPayment = taxes.Tax

	r.result.Tax = model.TaxSummary{
		DepreciationRatePercent: plan.Building.RatePercent,
		DepreciationBase:        plan.Building.Base,
		AnnualDepreciation:      plan.Building.Annual,
		EffectiveRate:           p.Tax.EffectiveRate(),
		AcquisitionRule:         plan.Rule,
		Classifications:         plan.Classifications,
		Years:                   taxes.Years,
		TotalDepreciation:       plan.Depreciation.Sum(),
		TotalInterest:           r.debt.Interest.Sum(),
		TotalMaintenance:        plan.Maintenance.Sum(),
		TotalTax:                taxes.Tax.Sum(),
	}
	return nil
}

func (c *Calculator) cashflows(_ context.Context, r *run) error {
	p := r.project
	balance, shortfall, err := cashflow.Reserve(p.Costs.InitialReserve, r.ops.ReserveContributions, r.ops.CapExPayments)
	if err != nil {
		return err
	}
	r.shortfall = shortfall

	before, err := cashflow.BeforeTax(r.ops.NetOperatingIncome, r.debt.DebtService, r.ops.ReserveContributions, shortfall)
	if err != nil {
		return err
	}
	after, err := cashflow.AfterTax(before, r.taxes.Tax)
	if err != nil {
		return err
	}

	s := &r.result.Series
	s.CashflowBeforeTax = before
	s.CashflowAfterTax = after
	s.CumulativeCashflow = after.Cumulative()
	s.ReserveBalance = balance
	return nil
}

// appreciationRate is the valuation's rate, or the base forecast rate.
func (c *Calculator) appreciationRate(p model.Project) decimal.Decimal {
	if v := p.Valuation; v != nil && v.AppreciationPercent != nil {
		return *v.AppreciationPercent
	}
	return c.params.Forecast.BaseRate()
}

func (c *Calculator) propertyValue(_ context.Context, r *run) error {
	p := r.project
	values, err := forecast.MonthlyValues(p.Purchase.Price, p.Purchase.Period(), c.appreciationRate(p), r.horizon)
	if err != nil {
		return err
	}
	r.result.Series.PropertyValue = values
	return nil
}

func (c *Calculator) saleCostsPercent(p model.Project) decimal.Decimal {
	if v := p.Valuation; v != nil && v.SaleCostsPercent != nil {
		return *v.SaleCostsPercent
	}
	return c.params.Exit.SaleCostsPercent
}

// capitalGains taxes a planned sale inside the horizon at the modeled
// property value of the sale month.
func (c *Calculator) capitalGains(_ context.Context, r *run) error {
	p := r.project
	if p.Investor == nil || p.Investor.PlannedSaleDate == nil {
		return nil
	}
	date := *p.Investor.PlannedSaleDate
	ym := period.Of(date)
	if !r.horizon.Contains(ym) {
		return nil
	}

	price, err := r.result.Series.PropertyValue.At(ym)
	if err != nil {
		return err
	}
	additional, err := c.capitalizedBefore(r, ym)
	if err != nil {
		return err
	}

	res, err := tax.CapitalGainsTax(p.Purchase, tax.Sale{
		Date:                    date,
		Price:                   price,
		Costs:                   price.Mul(c.saleCostsPercent(p).Div(hundred)).Round(),
		AccumulatedDepreciation: r.plan.AccumulatedBefore(ym),
		AdditionalBasis:         additional,
	}, p.Tax, c.params.Tax)
	if err != nil {
		return err
	}
	r.result.Tax.CapitalGains = &res
	return nil
}

// capitalizedBefore sums the capitalized CapEx paid before ym.
func (c *Calculator) capitalizedBefore(r *run, ym period.YearMonth) (money.Money, error) {
	total := money.Zero(r.project.Currency)
	for _, m := range r.project.Measures() {
		class, ok := r.plan.Classification(m.ID)
		if !ok || !class.IsCapitalized() {
			continue
		}
		for _, o := range m.Occurrences(r.horizon) {
			if !o.Period.Before(ym) {
				continue
			}
			var err error
			if total, err = total.Add(money.New(o.Cost, m.EstimatedCost.Currency())); err != nil {
				return money.Money{}, fmt.Errorf("measure %s: %w", m.ID, err)
			}
		}
	}
	return total, nil
}

// valueForecast runs the value forecast and the exit analysis when requested.
func (c *Calculator) valueForecast(ctx context.Context, r *run) error {
	p := r.project
	if p.Valuation == nil || !p.Valuation.IncludeForecast {
		return nil
	}
	classes := make(map[string]model.TaxClassification, len(r.plan.Classifications))
	for _, mc := range r.plan.Classifications {
		classes[mc.MeasureID] = mc.Effective
	}
	fc, err := forecast.Forecast(ctx, p, r.horizon, classes, c.params.Forecast)
	if err != nil {
		return err
	}
	r.result.Forecast = fc

	equity, err := p.Financing.TotalEquity(p.Currency)
	if err != nil {
		return err
	}
	debt, err := r.debt.Balance.At(r.horizon.End)
	if err != nil {
		return fmt.Errorf("balance at exit: %w", err)
	}
	ex, err := exit.Analyze(exit.Inputs{
		Project:                 p,
		Horizon:                 r.horizon,
		Forecast:                fc,
		AccumulatedDepreciation: r.plan.AccumulatedBefore(r.horizon.End.AddMonths(1)),
		CapitalizedCapEx:        r.plan.Capitalized,
		OutstandingDebt:         debt,
		CumulativeCashflow:      r.result.Series.CashflowAfterTax.Sum(),
		EquityInvested:          equity,
	}, c.params.Exit)
	if err != nil {
		return fmt.Errorf("exit: %w", err)
	}
	r.result.Exit = ex
	return nil
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

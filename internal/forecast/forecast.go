// Package forecast projects the property value under several appreciation
// scenarios, combining market growth, building condition, component aging,
// value-adding investments and mean reversion toward a regional fair value.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/immocalc/internal/cashflow"
	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/timeseries"
)

// ErrNoPurchasePrice is returned when the purchase price is not positive.
var ErrNoPurchasePrice = errors.New("forecast needs a positive purchase price")

// Forecast computes every scenario of params over the calendar years of h.
// classes maps measure ids to their effective tax classification; measures
// missing from it keep their stored classification. Scenarios share no
// mutable state and run concurrently.
func Forecast(ctx context.Context, p model.Project, h period.Horizon, classes map[string]model.TaxClassification, params Params) (*model.PropertyValueForecast, error) {
	if !p.Purchase.Price.IsPositive() {
		return nil, ErrNoPurchasePrice
	}
	if v := p.Valuation; v != nil && v.RegionalPricePerSqm != nil && v.RegionalPricePerSqm.Currency() != p.Currency {
		return nil, fmt.Errorf("regional price: %w", money.ErrCurrencyMismatch)
	}

	in := newInputs(p, h, classes, params)
	shared := &shared{
		condition:  conditionPath(in),
		components: in.componentPaths(),
		uplift:     in.upliftPath(),
	}

	scenarios := make([]model.ValueScenario, len(params.Scenarios))
	g, ctx := errgroup.WithContext(ctx)
	for i, rate := range params.Scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scenarios[i] = in.scenario(rate, shared)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	out := &model.PropertyValueForecast{
		InitialConditionFactor: in.initialFactor,
		Scenarios:              scenarios,
		Recurring:              in.recurring(),
	}
	for _, c := range shared.components {
		out.Components = append(out.Components, c.forecast)
	}
	return out, nil
}

// shared holds the rate-independent paths, computed once and only read by
// the scenario goroutines.
type shared struct {
	condition  []float64
	components []componentPath
	// uplift is the cumulative improvement uplift per horizon year.
	uplift []decimal.Decimal
}

// upliftPath accumulates the uplift share of capitalized CapEx in the year
// it is incurred.
func (in *inputs) upliftPath() []decimal.Decimal {
	years := in.horizon.Years()
	share := in.params.ImprovementUpliftPercent.Div(hundred)
	out := make([]decimal.Decimal, len(years))
	running := decimal.Zero
	for i, y := range years {
		for _, o := range in.occurrences {
			if o.period.Year == y && o.class.IsCapitalized() {
				running = running.Add(money.Round2(o.cost.Mul(share)))
			}
		}
		out[i] = running
	}
	return out
}

func (in *inputs) capitalizedTotals() (decimal.Decimal, int) {
	total := decimal.Zero
	ids := map[string]bool{}
	for _, o := range in.occurrences {
		if o.class.IsCapitalized() {
			total = total.Add(o.cost)
			ids[o.measureID] = true
		}
	}
	return total, len(ids)
}

// scenario computes one appreciation path.
func (in *inputs) scenario(rate Rate, sh *shared) model.ValueScenario {
	p := in.project
	cur := p.Currency
	years := in.horizon.Years()
	purchaseYear := p.Purchase.Date.Year()
	price := p.Purchase.Price.Amount().InexactFloat64()
	hasComponents := p.Property.HasComponentData()

	fair, hasFair := in.fairValue()
	halfLife := in.params.MeanReversionHalfLifeYears

	sc := model.ValueScenario{Name: rate.Name, AppreciationPercent: rate.Percent}
	var last model.YearValue
	var lastElapsed int
	var lastClosed float64
	for i, y := range years {
		elapsed := max(0, y-purchaseYear)
		indexed := cashflow.Indexation(rate.Percent, elapsed)
		growth := indexed.InexactFloat64()
		market := money.Round2(p.Purchase.Price.Amount().Mul(indexed))

		yv := model.YearValue{
			Year:              y,
			MarketValue:       money.New(market, cur),
			ConditionFactor:   round4(sh.condition[i]),
			ImprovementUplift: money.New(sh.uplift[i], cur),
			MeanReversion:     money.Zero(cur),
		}

		var impact decimal.Decimal
		if hasComponents {
			total := 0.0
			for _, c := range sh.components {
				total += c.impacts[i]
			}
			impact = toMoney(total)
		} else {
			ratio := 1.0
			if in.initialFactor > 0 {
				ratio = sh.condition[i] / in.initialFactor
			}
			impact = toMoney(price * growth * ratio).Sub(market)
		}
		yv.ComponentImpact = money.New(impact, cur)

		closed := 0.0
		if hasFair && halfLife > 0 {
			closed = 1 - math.Pow(0.5, float64(elapsed)/halfLife)
			gap := (fair - price) * growth
			yv.MeanReversion = money.New(toMoney(gap*closed), cur)
		}

		est := market.Add(impact).Add(sh.uplift[i]).Add(yv.MeanReversion.Amount())
		yv.EstimatedValue = money.New(est, cur)
		sc.Values = append(sc.Values, yv)
		last, lastElapsed, lastClosed = yv, elapsed, closed
	}
	sc.FinalValue = last.EstimatedValue
	sc.Drivers = in.drivers(rate, sh, last, lastElapsed, lastClosed)
	return sc
}

// fairValue returns regional price per m² times living area.
func (in *inputs) fairValue() (float64, bool) {
	v := in.project.Valuation
	if v == nil || v.RegionalPricePerSqm == nil || !v.RegionalPricePerSqm.IsPositive() {
		return 0, false
	}
	return v.RegionalPricePerSqm.Amount().Mul(in.project.Property.LivingArea).InexactFloat64(), true
}

func (in *inputs) drivers(rate Rate, sh *shared, last model.YearValue, elapsed int, closed float64) model.Drivers {
	p := in.project
	cur := p.Currency
	ds := model.Drivers{
		model.InitialConditionDriver{Condition: p.Property.Condition, Factor: in.initialFactor},
	}

	var overdue []string
	overdueImpact := 0.0
	for i, c := range sh.components {
		if c.overdue {
			overdue = append(overdue, in.components[i].label())
			overdueImpact += c.impacts[len(c.impacts)-1]
		}
	}
	if len(overdue) > 0 {
		ds = append(ds, model.OverdueComponentsDriver{Components: overdue, TotalImpact: money.New(toMoney(overdueImpact), cur)})
	}

	final := sh.condition[len(sh.condition)-1]
	ds = append(ds, model.DegradationDriver{
		AverageAnnualRate: round4((in.initialFactor - final) / float64(len(sh.condition))),
		FinalFactor:       round4(final),
	})

	if capex, n := in.capitalizedTotals(); n > 0 {
		ds = append(ds, model.InvestmentDriver{
			Measures:         n,
			CapitalizedCosts: money.New(capex, cur),
			Uplift:           money.New(sh.uplift[len(sh.uplift)-1], cur),
		})
	}

	ds = append(ds, model.MarketAppreciationDriver{RatePercent: rate.Percent, Years: elapsed, MarketValue: last.MarketValue})

	if fair, ok := in.fairValue(); ok {
		f := toMoney(fair)
		gap := f.Sub(p.Purchase.Price.Amount())
		ds = append(ds, model.MeanReversionDriver{
			FairValue:     money.New(f, cur),
			Gap:           money.New(gap, cur),
			HalfLifeYears: in.params.MeanReversionHalfLifeYears,
			ClosedPortion: round4(closed),
			Adjustment:    last.MeanReversion,
		})
	}

	price := p.Purchase.Price.Amount()
	change := last.EstimatedValue.Amount().Sub(price).Div(price).Mul(hundred).Round(2)
	ds = append(ds, model.SummaryDriver{StartValue: p.Purchase.Price, FinalValue: last.EstimatedValue, ChangePercent: change})
	return ds
}

// MonthlyValues is purchasePrice × (1 + rate)^(months since purchase / 12)
// for every month of h; months before the purchase carry the price.
func MonthlyValues(price money.Money, purchase period.YearMonth, ratePercent decimal.Decimal, h period.Horizon) (*timeseries.MoneySeries, error) {
	s := timeseries.NewMoney(h, price.Currency())
	p := price.Amount().InexactFloat64()
	r := ratePercent.InexactFloat64() / 100
	for _, ym := range h.Months() {
		months := max(0, purchase.MonthsUntil(ym))
		v := toMoney(p * math.Pow(1+r, float64(months)/12))
		if err := s.SetAmount(ym, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

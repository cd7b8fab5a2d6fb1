// Package exit computes the sale economics at the end of the horizon for
// every property value scenario.
package exit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/tax"
)

// ErrNoForecast is returned when there is nothing to exit from.
var ErrNoForecast = errors.New("exit analysis needs a property value forecast")

var hundred = decimal.NewFromInt(100)

// Params configure the exit.
type Params struct {
	SaleCostsPercent decimal.Decimal
	Tax              tax.Params
}

// DefaultParams returns 5% sale costs and the default tax rules.
func DefaultParams() Params {
	return Params{SaleCostsPercent: decimal.NewFromInt(5), Tax: tax.DefaultParams()}
}

// Inputs are the results of the earlier pipeline stages the exit depends on.
type Inputs struct {
	Project  model.Project
	Horizon  period.Horizon
	Forecast *model.PropertyValueForecast
	// AccumulatedDepreciation is the depreciation claimed until the exit.
	AccumulatedDepreciation money.Money
	CapitalizedCapEx        money.Money
	OutstandingDebt         money.Money
	// CumulativeCashflow is the sum of after-tax cashflows over the horizon.
	CumulativeCashflow money.Money
	EquityInvested     money.Money
}

// Date is the exit date for h: the first day after its last month.
func Date(h period.Horizon) period.YearMonth { return h.End.AddMonths(1) }

// Analyze sells the property at the end of the horizon in every scenario.
func Analyze(in Inputs, params Params) (*model.ExitAnalysis, error) {
	if in.Forecast == nil {
		return nil, ErrNoForecast
	}
	p := in.Project
	for _, m := range []*money.Money{&in.AccumulatedDepreciation, &in.CapitalizedCapEx, &in.OutstandingDebt, &in.CumulativeCashflow, &in.EquityInvested} {
		if m.Currency() == "" {
			*m = money.Zero(p.Currency)
		}
	}
	if v := p.Valuation; v != nil && v.SaleCostsPercent != nil {
		params.SaleCostsPercent = *v.SaleCostsPercent
	}

	exitDate := Date(in.Horizon).FirstDay()
	months := p.Purchase.Period().MonthsUntil(Date(in.Horizon))
	years := decimal.NewFromInt(int64(max(0, months))).Div(decimal.NewFromInt(12)).Round(2)

	out := &model.ExitAnalysis{
		PurchaseDate: p.Purchase.Date,
		ExitDate:     exitDate,
		HoldingYears: years,
	}
	for _, sc := range in.Forecast.Scenarios {
		es, err := scenario(in, sc, exitDate, years, params)
		if err != nil {
			return nil, fmt.Errorf("exit %s: %w", sc.Name, err)
		}
		out.Scenarios = append(out.Scenarios, es)
	}
	return out, nil
}

func scenario(in Inputs, sc model.ValueScenario, exitDate time.Time, years decimal.Decimal, params Params) (model.ExitScenario, error) {
	p := in.Project
	final := sc.FinalValue
	saleCosts := final.Mul(params.SaleCostsPercent.Div(hundred)).Round()

	gains, err := tax.CapitalGainsTax(p.Purchase, tax.Sale{
		Date:                    exitDate,
		Price:                   final,
		Costs:                   saleCosts,
		AccumulatedDepreciation: in.AccumulatedDepreciation,
		AdditionalBasis:         in.CapitalizedCapEx,
	}, p.Tax, params.Tax)
	if err != nil {
		return model.ExitScenario{}, err
	}

	net, err := final.Sub(saleCosts)
	for _, m := range []money.Money{gains.Tax, in.OutstandingDebt} {
		if err != nil {
			break
		}
		net, err = net.Sub(m)
	}
	if err != nil {
		return model.ExitScenario{}, fmt.Errorf("net sale proceeds: %w", err)
	}

	total, err := net.Add(in.CumulativeCashflow)
	if err == nil {
		total, err = total.Sub(in.EquityInvested)
	}
	if err != nil {
		return model.ExitScenario{}, fmt.Errorf("total return: %w", err)
	}

	return model.ExitScenario{
		Name:                    sc.Name,
		FinalValue:              final,
		SaleCosts:               saleCosts,
		TaxBasisAtSale:          gains.AdjustedBasis,
		CapitalGain:             gains.Gain,
		WithinSpeculationPeriod: gains.WithinSpeculationPeriod,
		CapitalGainsTax:         gains.Tax,
		OutstandingDebt:         in.OutstandingDebt,
		NetSaleProceeds:         net,
		CumulativeCashflow:      in.CumulativeCashflow,
		EquityInvested:          in.EquityInvested,
		TotalReturn:             total,
		AnnualizedReturnPercent: AnnualizedReturn(in.EquityInvested, total, years),
	}, nil
}

// AnnualizedReturn is the compound yearly growth of equity into
// equity + totalReturn over years, in percent. A non-positive multiple or
// holding period yields zero.
func AnnualizedReturn(equity, totalReturn money.Money, years decimal.Decimal) decimal.Decimal {
	if !equity.IsPositive() || !years.IsPositive() {
		return decimal.Zero
	}
	multiple := equity.Amount().Add(totalReturn.Amount()).Div(equity.Amount()).InexactFloat64()
	if multiple <= 0 {
		return decimal.Zero
	}
	r := math.Pow(multiple, 1/years.InexactFloat64()) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(r * 100).Round(2)
}

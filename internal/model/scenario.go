package model

import (
	"errors"
	"slices"
)

// ErrScenarioNotFound is returned when a scenario id is not part of the project.
var ErrScenarioNotFound = errors.New("scenario not found")

// Scenario is a named set of sub-record overrides.
type Scenario struct {
	ID         string             `yaml:"id" json:"id"`
	Name       string             `yaml:"name,omitempty" json:"name,omitempty"`
	Parameters ScenarioParameters `yaml:"parameters" json:"parameters"`
}

// ScenarioParameters replaces whole sub-records; nil fields keep the base value.
type ScenarioParameters struct {
	Valuation *ValuationConfiguration `yaml:"valuation,omitempty" json:"valuation,omitempty"`
	Rent      *RentConfiguration      `yaml:"rent,omitempty" json:"rent,omitempty"`
	Financing *Financing              `yaml:"financing,omitempty" json:"financing,omitempty"`
	Costs     *CostConfiguration      `yaml:"costs,omitempty" json:"costs,omitempty"`
	CapEx     *CapExConfiguration     `yaml:"capex,omitempty" json:"capex,omitempty"`
}

// Builder copies a base project and replaces only the named sub-records.
// The base project is never touched.
type Builder struct {
	p Project
}

// NewBuilder starts from a deep copy of base.
func NewBuilder(base Project) *Builder {
	return &Builder{p: base.Clone()}
}

func (b *Builder) WithValuation(v ValuationConfiguration) *Builder {
	c := cloneValuation(&v)
	b.p.Valuation = c
	return b
}

func (b *Builder) WithRent(r RentConfiguration) *Builder {
	b.p.Rent = cloneRent(r)
	return b
}

func (b *Builder) WithFinancing(f Financing) *Builder {
	b.p.Financing = cloneFinancing(f)
	return b
}

func (b *Builder) WithCosts(c CostConfiguration) *Builder {
	b.p.Costs = c
	return b
}

func (b *Builder) WithCapEx(c CapExConfiguration) *Builder {
	b.p.CapEx = cloneCapEx(&c)
	return b
}

// WithScenario applies every non-nil override of s.
func (b *Builder) WithScenario(s Scenario) *Builder {
	ps := s.Parameters
	if ps.Valuation != nil {
		b.WithValuation(*ps.Valuation)
	}
	if ps.Rent != nil {
		b.WithRent(*ps.Rent)
	}
	if ps.Financing != nil {
		b.WithFinancing(*ps.Financing)
	}
	if ps.Costs != nil {
		b.WithCosts(*ps.Costs)
	}
	if ps.CapEx != nil {
		b.WithCapEx(*ps.CapEx)
	}
	return b
}

// Build returns an independent copy of the assembled project.
func (b *Builder) Build() Project { return b.p.Clone() }

// Clone returns a deep copy sharing no mutable state with p.
func (p Project) Clone() Project {
	c := p
	c.Property = cloneProperty(p.Property)
	c.Purchase.AcquisitionCosts = slices.Clone(p.Purchase.AcquisitionCosts)
	c.Financing = cloneFinancing(p.Financing)
	c.Rent = cloneRent(p.Rent)
	c.Tax = cloneTax(p.Tax)
	c.CapEx = cloneCapEx(p.CapEx)
	c.Investor = cloneInvestor(p.Investor)
	c.Valuation = cloneValuation(p.Valuation)
	if p.Scenarios != nil {
		c.Scenarios = make([]Scenario, len(p.Scenarios))
		for i, s := range p.Scenarios {
			c.Scenarios[i] = cloneScenario(s)
		}
	}
	return c
}

func cloneProperty(p Property) Property {
	c := p
	c.Components = slices.Clone(p.Components)
	if p.Units != nil {
		c.Units = make([]Unit, len(p.Units))
		for i, u := range p.Units {
			u.Components = slices.Clone(u.Components)
			c.Units[i] = u
		}
	}
	return c
}

func cloneFinancing(f Financing) Financing {
	c := Financing{Equity: slices.Clone(f.Equity)}
	if f.Loans != nil {
		c.Loans = make([]Loan, len(f.Loans))
		for i, l := range f.Loans {
			if l.CommitmentFee != nil {
				fee := *l.CommitmentFee
				l.CommitmentFee = &fee
			}
			if l.Refinancing != nil {
				r := *l.Refinancing
				if r.MonthlyPayment != nil {
					pay := *r.MonthlyPayment
					r.MonthlyPayment = &pay
				}
				l.Refinancing = &r
			}
			l.SpecialRepayments = slices.Clone(l.SpecialRepayments)
			c.Loans[i] = l
		}
	}
	return c
}

func cloneRent(r RentConfiguration) RentConfiguration {
	r.UnitRents = slices.Clone(r.UnitRents)
	return r
}

func cloneTax(t TaxProfile) TaxProfile {
	if t.CustomDepreciationPercent != nil {
		d := *t.CustomDepreciationPercent
		t.CustomDepreciationPercent = &d
	}
	return t
}

func cloneCapEx(c *CapExConfiguration) *CapExConfiguration {
	if c == nil {
		return nil
	}
	out := &CapExConfiguration{}
	if c.Measures != nil {
		out.Measures = make([]CapExMeasure, len(c.Measures))
		for i, m := range c.Measures {
			if m.Recurring != nil {
				r := *m.Recurring
				m.Recurring = &r
			}
			if m.Impact != nil {
				im := *m.Impact
				m.Impact = &im
			}
			out.Measures[i] = m
		}
	}
	return out
}

func cloneInvestor(i *InvestorConfiguration) *InvestorConfiguration {
	if i == nil {
		return nil
	}
	c := *i
	if i.PlannedSaleDate != nil {
		d := *i.PlannedSaleDate
		c.PlannedSaleDate = &d
	}
	return &c
}

func cloneValuation(v *ValuationConfiguration) *ValuationConfiguration {
	if v == nil {
		return nil
	}
	c := *v
	if v.RegionalPricePerSqm != nil {
		m := *v.RegionalPricePerSqm
		c.RegionalPricePerSqm = &m
	}
	if v.AppreciationPercent != nil {
		d := *v.AppreciationPercent
		c.AppreciationPercent = &d
	}
	if v.SaleCostsPercent != nil {
		d := *v.SaleCostsPercent
		c.SaleCostsPercent = &d
	}
	return &c
}

func cloneScenario(s Scenario) Scenario {
	ps := s.Parameters
	c := Scenario{ID: s.ID, Name: s.Name}
	c.Parameters.Valuation = cloneValuation(ps.Valuation)
	c.Parameters.CapEx = cloneCapEx(ps.CapEx)
	if ps.Rent != nil {
		r := cloneRent(*ps.Rent)
		c.Parameters.Rent = &r
	}
	if ps.Financing != nil {
		f := cloneFinancing(*ps.Financing)
		c.Parameters.Financing = &f
	}
	if ps.Costs != nil {
		costs := *ps.Costs
		c.Parameters.Costs = &costs
	}
	return c
}

package forecast

import (
	"github.com/cleared-dev/immocalc/internal/model"
)

// Boost kinds of a CapEx event on the condition model.
type eventKind int

const (
	eventNone eventKind = iota
	eventMaintenance
	eventImprovement
)

// Degradation tiers keyed on age / cycle.
const (
	tierLowRatio  = 0.7
	tierHighRatio = 1.0
	tierLowRate   = 0.003
	tierMidRate   = 0.008
	tierHighRate  = 0.015

	improvementBoost = 0.30
	maintenanceBoost = 0.15

	simpleBaseRate         = 0.005
	simpleAgeRate          = 0.005
	simpleAgeSpan          = 60.0
	simpleImprovementBoost = 0.08
	simpleMaintenanceBoost = 0.05
)

// componentState is the per-component accumulator of the condition model.
type componentState struct {
	category model.Category
	unitID   string
	cycle    float64
	age      float64
	factor   float64
}

// tierRate returns the yearly degradation for an age/cycle ratio.
func tierRate(age, cycle float64) float64 {
	ratio := 1.0
	if cycle > 0 {
		ratio = age / cycle
	}
	switch {
	case ratio <= tierLowRatio:
		return tierLowRate
	case ratio <= tierHighRatio:
		return tierMidRate
	default:
		return tierHighRate
	}
}

// step advances one component by one year.
func (s componentState) step(ev eventKind) componentState {
	switch ev {
	case eventImprovement:
		s.age = 0
		s.factor = min(1, s.factor+improvementBoost)
	case eventMaintenance:
		s.age /= 2
		s.factor = min(1, s.factor+maintenanceBoost)
	default:
		s.factor = max(0, s.factor-tierRate(s.age, s.cycle))
	}
	s.age++
	return s
}

// simpleState is the accumulator used when no component data is recorded.
type simpleState struct {
	buildingAge float64
	factor      float64
}

func (s simpleState) step(ev eventKind) simpleState {
	switch ev {
	case eventImprovement:
		s.factor = min(1, s.factor+simpleImprovementBoost)
	case eventMaintenance:
		s.factor = min(1, s.factor+simpleMaintenanceBoost)
	default:
		s.factor = max(0, s.factor-(simpleBaseRate+simpleAgeRate*s.buildingAge/simpleAgeSpan))
	}
	s.buildingAge++
	return s
}

// conditionPath returns the overall condition factor at the end of each
// horizon year. It does not depend on the appreciation rate, so all
// scenarios share it.
func conditionPath(in *inputs) []float64 {
	years := in.horizon.Years()
	out := make([]float64, len(years))
	prop := in.project.Property

	if !prop.HasComponentData() {
		st := simpleState{
			buildingAge: float64(years[0] - prop.ConstructionYear),
			factor:      in.initialFactor,
		}
		for i, y := range years {
			st = st.step(in.strongestEvent(y, "", ""))
			out[i] = st.factor
		}
		return out
	}

	states := make([]componentState, 0)
	for _, c := range in.components {
		states = append(states, componentState{
			category: c.cond.Category,
			unitID:   c.unitID,
			cycle:    float64(c.cond.CycleYears()),
			age:      float64(years[0] - c.cond.RenovatedIn(prop.ConstructionYear)),
			factor:   c.initialFactor,
		})
	}
	for i, y := range years {
		total := 0.0
		for j := range states {
			states[j] = states[j].step(in.strongestEvent(y, states[j].category, states[j].unitID))
			total += states[j].factor
		}
		out[i] = total / float64(len(states))
	}
	return out
}

// strongestEvent returns the most valuable CapEx event of year for a
// component scope; an empty category matches every measure.
func (in *inputs) strongestEvent(year int, cat model.Category, unitID string) eventKind {
	ev := eventNone
	for _, o := range in.occurrences {
		if o.period.Year != year {
			continue
		}
		if cat != "" && !o.matches(cat, unitID) {
			continue
		}
		if o.class.IsCapitalized() {
			return eventImprovement
		}
		ev = eventMaintenance
	}
	return ev
}

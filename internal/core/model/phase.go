package model

import "time"

// Phase is one segment of a breathing cycle.
type Phase string

const (
	PhaseInhale     Phase = "INHALE"
	PhaseInhaleHold Phase = "INHALE_HOLD"
	PhaseExhale     Phase = "EXHALE"
	PhaseExhaleHold Phase = "EXHALE_HOLD"
)

// Phases lists every phase in cycle order.
var Phases = [...]Phase{PhaseInhale, PhaseInhaleHold, PhaseExhale, PhaseExhaleHold}

// Next returns the phase that follows and reports whether the step wraps
// around to a new cycle.
func (phase Phase) Next() (Phase, bool) {
	for index, candidate := range Phases {
		if candidate == phase {
			next := (index + 1) % len(Phases)
			return Phases[next], next == 0
		}
	}
	return PhaseInhale, false
}

// Valid reports whether phase is one of the four known phases.
func (phase Phase) Valid() bool {
	for _, candidate := range Phases {
		if candidate == phase {
			return true
		}
	}
	return false
}

// Label returns the short display name.
func (phase Phase) Label() string {
	switch phase {
	case PhaseInhale:
		return "Inhale"
	case PhaseExhale:
		return "Exhale"
	case PhaseInhaleHold, PhaseExhaleHold:
		return "Hold"
	default:
		return string(phase)
	}
}

// PhaseDurations maps every phase to its length.
type PhaseDurations map[Phase]time.Duration

// UniformDurations returns durations with every phase set to value.
func UniformDurations(value time.Duration) PhaseDurations {
	durations := make(PhaseDurations, len(Phases))
	for _, phase := range Phases {
		durations[phase] = value
	}
	return durations
}

// Of returns the duration configured for phase.
func (durations PhaseDurations) Of(phase Phase) time.Duration {
	return durations[phase]
}

// Cycle returns the length of one full cycle.
func (durations PhaseDurations) Cycle() time.Duration {
	var total time.Duration
	for _, phase := range Phases {
		total += durations[phase]
	}
	return total
}

// Clone returns an independent copy.
func (durations PhaseDurations) Clone() PhaseDurations {
	cloned := make(PhaseDurations, len(durations))
	for phase, value := range durations {
		cloned[phase] = value
	}
	return cloned
}

package model

import (
	"strings"
	"time"
)

// Program is a named set of phase lengths in whole seconds.
type Program struct {
	Name       string
	Inhale     int
	InhaleHold int
	Exhale     int
	ExhaleHold int
}

// CustomProgram is the settings value for user-defined durations.
const CustomProgram = "custom"

// Programs are the built-in presets.
var Programs = []Program{
	{Name: "Focus", Inhale: 4, InhaleHold: 4, Exhale: 4, ExhaleHold: 4},
	{Name: "Wake up", Inhale: 6, InhaleHold: 1, Exhale: 3, ExhaleHold: 1},
	{Name: "Sleep", Inhale: 4, InhaleHold: 7, Exhale: 8, ExhaleHold: 1},
}

// LookupProgram finds a preset by name, ignoring case.
func LookupProgram(name string) (Program, bool) {
	for _, program := range Programs {
		if strings.EqualFold(program.Name, strings.TrimSpace(name)) {
			return program, true
		}
	}
	return Program{}, false
}

// ProgramNames returns the preset names in display order.
func ProgramNames() []string {
	names := make([]string, 0, len(Programs))
	for _, program := range Programs {
		names = append(names, program.Name)
	}
	return names
}

// Durations converts the preset to PhaseDurations.
func (program Program) Durations() PhaseDurations {
	return PhaseDurations{
		PhaseInhale:     time.Duration(program.Inhale) * time.Second,
		PhaseInhaleHold: time.Duration(program.InhaleHold) * time.Second,
		PhaseExhale:     time.Duration(program.Exhale) * time.Second,
		PhaseExhaleHold: time.Duration(program.ExhaleHold) * time.Second,
	}
}

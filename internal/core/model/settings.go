package model

import (
	"fmt"
	"time"
)

const (
	// MaxRepeat bounds the number of cycles per session.
	MaxRepeat = 99
	// DefaultCountdown is the pre-session countdown in seconds.
	DefaultCountdown = 3
)

// Settings defines editable user preferences.
type Settings struct {
	Program string

	// Custom phase lengths, used when Program is CustomProgram.
	Inhale     time.Duration
	InhaleHold time.Duration
	Exhale     time.Duration
	ExhaleHold time.Duration

	Repeat           int
	CountdownSeconds int
	SoundEnabled     bool
}

// DefaultSettings returns default settings for BoxBreath.
func DefaultSettings() Settings {
	return Settings{
		Program:          "Focus",
		Inhale:           5 * time.Second,
		InhaleHold:       5 * time.Second,
		Exhale:           5 * time.Second,
		ExhaleHold:       5 * time.Second,
		Repeat:           6,
		CountdownSeconds: DefaultCountdown,
		SoundEnabled:     true,
	}
}

// Durations resolves the phase lengths of the selected program. Unknown
// program names fall back to the custom durations.
func (settings Settings) Durations() PhaseDurations {
	if program, ok := LookupProgram(settings.Program); ok {
		return program.Durations()
	}
	return PhaseDurations{
		PhaseInhale:     settings.Inhale,
		PhaseInhaleHold: settings.InhaleHold,
		PhaseExhale:     settings.Exhale,
		PhaseExhaleHold: settings.ExhaleHold,
	}
}

// SessionConfig converts settings to the engine configuration.
func (settings Settings) SessionConfig() SessionConfig {
	return SessionConfig{
		TotalCycles:      settings.Repeat,
		Durations:        settings.Durations(),
		CountdownSeconds: settings.CountdownSeconds,
	}
}

// ApplyProgram selects a preset and copies its durations into the custom
// fields, so switching to custom starts from the last preset.
func (settings *Settings) ApplyProgram(program Program) {
	settings.Program = program.Name
	durations := program.Durations()
	settings.Inhale = durations[PhaseInhale]
	settings.InhaleHold = durations[PhaseInhaleHold]
	settings.Exhale = durations[PhaseExhale]
	settings.ExhaleHold = durations[PhaseExhaleHold]
}

// TotalTimeLabel renders the whole session length as "Xm Ys".
func (settings Settings) TotalTimeLabel() string {
	total := int(settings.SessionConfig().TotalDuration() / time.Second)
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

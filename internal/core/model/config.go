package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid session config")

// SessionConfig holds everything the breathing engine needs for one session.
type SessionConfig struct {
	TotalCycles      int
	Durations        PhaseDurations
	CountdownSeconds int
}

// Validate checks the configuration and reports the first offending field.
func (config SessionConfig) Validate() error {
	if config.TotalCycles < 1 {
		return fmt.Errorf("%w: total cycles must be at least 1, got %d", ErrInvalidConfig, config.TotalCycles)
	}
	if config.CountdownSeconds < 0 {
		return fmt.Errorf("%w: countdown must not be negative, got %d", ErrInvalidConfig, config.CountdownSeconds)
	}
	for phase := range config.Durations {
		if !phase.Valid() {
			return fmt.Errorf("%w: unknown phase %q", ErrInvalidConfig, phase)
		}
	}
	for _, phase := range Phases {
		duration, ok := config.Durations[phase]
		if !ok {
			return fmt.Errorf("%w: missing duration for %s", ErrInvalidConfig, phase)
		}
		if duration <= 0 {
			return fmt.Errorf("%w: duration for %s must be positive, got %s", ErrInvalidConfig, phase, duration)
		}
	}
	return nil
}

// TotalDuration is the length of the whole session excluding the countdown.
func (config SessionConfig) TotalDuration() time.Duration {
	return config.Durations.Cycle() * time.Duration(config.TotalCycles)
}

// Clone returns a copy that shares no mutable state with config.
func (config SessionConfig) Clone() SessionConfig {
	config.Durations = config.Durations.Clone()
	return config
}

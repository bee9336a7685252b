package breath

import (
	"fmt"
	"math"
	"time"

	"boxbreath/internal/core/model"
)

// Countdown describes the pre-session countdown.
type Countdown struct {
	Active      bool
	SecondsLeft int
}

// Snapshot is an immutable view of the engine at one instant.
type Snapshot struct {
	CurrentPhase      model.Phase
	CycleIndex        int
	TotalCycles       int
	IsActive          bool
	HasStarted        bool
	Completed         bool
	Remaining         time.Duration
	PhaseDuration     time.Duration
	Progress          float64
	Countdown         Countdown
	Elapsed           time.Duration
	TotalSession      time.Duration
	TimeLeft          time.Duration
	FormattedTimeLeft string
}

// SecondsLeftInPhase rounds the phase remainder up to whole seconds.
func (snapshot Snapshot) SecondsLeftInPhase() int {
	return int(math.Ceil(snapshot.Remaining.Seconds()))
}

// Paused reports whether a started session is currently on hold.
func (snapshot Snapshot) Paused() bool {
	return snapshot.HasStarted && !snapshot.IsActive
}

// PhaseProgress returns 1 - remaining/total clamped to [0, 1].
func PhaseProgress(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	progress := 1 - float64(remaining)/float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// FormatClock renders a duration as m:ss with floored seconds.
func FormatClock(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func buildSnapshot(state engineState, config model.SessionConfig) Snapshot {
	phaseDuration := config.Durations.Of(state.phase)
	total := config.TotalDuration()
	timeLeft := total - state.elapsed
	if timeLeft < 0 {
		timeLeft = 0
	}
	return Snapshot{
		CurrentPhase:      state.phase,
		CycleIndex:        state.cycleIndex,
		TotalCycles:       config.TotalCycles,
		IsActive:          state.isActive,
		HasStarted:        state.hasStarted,
		Completed:         state.completed,
		Remaining:         state.remaining,
		PhaseDuration:     phaseDuration,
		Progress:          PhaseProgress(state.remaining, phaseDuration),
		Countdown:         Countdown{Active: state.countdownActive, SecondsLeft: state.secondsLeft},
		Elapsed:           state.elapsed,
		TotalSession:      total,
		TimeLeft:          timeLeft,
		FormattedTimeLeft: FormatClock(timeLeft),
	}
}

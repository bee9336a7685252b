package breath

import (
	"time"

	"boxbreath/internal/core/model"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventCountdown   EventType = "countdown"
	EventPhaseChange EventType = "phase_change"
	EventProgress    EventType = "progress"
	EventCompleted   EventType = "completed"
)

// Event is an engine update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	At       time.Time
}

// Notifier receives feedback hooks around transitions. Hooks run outside
// the engine lock and may read the engine's Snapshot.
type Notifier interface {
	// PhaseAdvanced fires when from expires, before the next phase is applied.
	PhaseAdvanced(from model.Phase)
	// CountdownTick fires once per countdown second, before the decrement
	// becomes visible. secondsLeft is the value after the decrement.
	CountdownTick(secondsLeft int)
}

// NotifierFuncs adapts plain functions to Notifier. Nil fields are skipped.
type NotifierFuncs struct {
	OnPhaseAdvance  func(from model.Phase)
	OnCountdownTick func(secondsLeft int)
}

// PhaseAdvanced implements Notifier.
func (funcs NotifierFuncs) PhaseAdvanced(from model.Phase) {
	if funcs.OnPhaseAdvance != nil {
		funcs.OnPhaseAdvance(from)
	}
}

// CountdownTick implements Notifier.
func (funcs NotifierFuncs) CountdownTick(secondsLeft int) {
	if funcs.OnCountdownTick != nil {
		funcs.OnCountdownTick(secondsLeft)
	}
}

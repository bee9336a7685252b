// Package feedback plays short audio cues around breathing transitions.
package feedback

import (
	"io"
	"sync"

	"boxbreath/internal/core/model"
)

// Cue identifies a feedback sound.
type Cue string

const (
	// CueBoop marks a phase change or a control action.
	CueBoop Cue = "boop"
	// CueTick marks one countdown second.
	CueTick Cue = "tick"
)

// Sink renders a cue.
type Sink interface {
	Play(cue Cue)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Cue)

// Play implements Sink.
func (fn SinkFunc) Play(cue Cue) {
	fn(cue)
}

// Player maps engine hooks to cues. It implements breath.Notifier.
type Player struct {
	mu      sync.Mutex
	sink    Sink
	enabled bool
}

// NewPlayer returns an enabled player. A nil sink plays nothing.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink, enabled: true}
}

// SetEnabled turns sound on or off.
func (player *Player) SetEnabled(enabled bool) {
	player.mu.Lock()
	player.enabled = enabled
	player.mu.Unlock()
}

// Enabled reports whether cues are played.
func (player *Player) Enabled() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.enabled
}

// Play emits cue when enabled.
func (player *Player) Play(cue Cue) {
	player.mu.Lock()
	sink, enabled := player.sink, player.enabled
	player.mu.Unlock()
	if !enabled || sink == nil {
		return
	}
	sink.Play(cue)
}

// With plays cue and then runs fn.
func (player *Player) With(cue Cue, fn func()) func() {
	return func() {
		player.Play(cue)
		if fn != nil {
			fn()
		}
	}
}

// PhaseAdvanced plays a boop.
func (player *Player) PhaseAdvanced(model.Phase) {
	player.Play(CueBoop)
}

// CountdownTick plays a tick.
func (player *Player) CountdownTick(int) {
	player.Play(CueTick)
}

// Bell writes the terminal bell for every cue.
type Bell struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewBell returns a Bell writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{writer: w}
}

// Play implements Sink.
func (bell *Bell) Play(Cue) {
	bell.mu.Lock()
	defer bell.mu.Unlock()
	_, _ = bell.writer.Write([]byte{'\a'})
}

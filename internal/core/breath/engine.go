package breath

import (
	"log/slog"
	"sync"
	"time"

	"boxbreath/internal/core/model"

	"github.com/google/uuid"
)

const (
	// DefaultTickInterval is the display refresh period while a phase runs.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultCountdownInterval is the length of one countdown step.
	DefaultCountdownInterval = time.Second
)

// Options contains runtime collaborators for the Engine.
type Options struct {
	TickInterval      time.Duration
	CountdownInterval time.Duration
	Scheduler         Scheduler
	Notifier          Notifier
	Logger            *slog.Logger
}

type engineState struct {
	phase           model.Phase
	cycleIndex      int
	remaining       time.Duration
	isActive        bool
	hasStarted      bool
	completed       bool
	countdownActive bool
	secondsLeft     int
	elapsed         time.Duration
}

// Engine drives the four-phase breathing cycle.
//
// Remaining phase time is derived from a single deadline per phase and
// elapsed session time from the instant phase timing last (re)started, so
// display ticks and the phase timer can never disagree. Every armed task
// carries the epoch it was armed in; cancelling bumps the epoch and a task
// that fires late against a newer epoch does nothing.
type Engine struct {
	mu              sync.Mutex
	config          model.SessionConfig
	options         Options
	state           engineState
	deadline        time.Time
	activeSince     time.Time
	countdownAnchor time.Time
	tasks           map[taskRole]func() bool
	epoch           uint64
	announced       bool
	sessionID       string
	logger          *slog.Logger
	events          []chan Event
	closed          bool
}

// New validates config and returns an engine in its initial state.
func New(config model.SessionConfig, options Options) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.CountdownInterval <= 0 {
		options.CountdownInterval = DefaultCountdownInterval
	}
	if options.Scheduler == nil {
		options.Scheduler = SystemScheduler{}
	}
	if options.Notifier == nil {
		options.Notifier = NotifierFuncs{}
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		config:  config.Clone(),
		options: options,
		tasks:   make(map[taskRole]func() bool),
		logger:  options.Logger,
	}
	engine.state = initialState(engine.config)
	return engine, nil
}

func initialState(config model.SessionConfig) engineState {
	return engineState{
		phase:       model.PhaseInhale,
		remaining:   config.Durations.Of(model.PhaseInhale),
		secondsLeft: config.CountdownSeconds,
	}
}

// Config returns a copy of the active configuration.
func (engine *Engine) Config() model.SessionConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config.Clone()
}

// Subscribe registers a new observer channel. Slow observers miss progress
// events rather than blocking the engine; for any other event a full channel
// drops its oldest entry, so the latest state change is always delivered.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// Snapshot returns the current read model.
func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshotLocked(engine.options.Scheduler.Now())
}

// Start begins a fresh session, or resumes a paused one. It is a no-op
// while a countdown or session is already running, and after natural
// completion until Reset is called.
func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}

	now := engine.options.Scheduler.Now()
	state := &engine.state
	switch {
	case state.countdownActive || (state.hasStarted && state.isActive):
		engine.logger.Debug("start ignored", "reason", "already running")
	case state.hasStarted:
		engine.resumeLocked(now)
	case state.completed:
		engine.logger.Debug("start ignored", "reason", "session complete, reset required")
	case engine.config.CountdownSeconds > 0:
		engine.beginCountdownLocked(now)
	default:
		engine.newSessionLocked()
		engine.beginCyclesLocked(now)
	}
}

// Pause freezes a running session. Ignored before start, while paused and
// during the countdown.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	state := &engine.state
	if engine.closed || !engine.phaseRunningLocked() {
		engine.logger.Debug("pause ignored", "active", state.isActive, "started", state.hasStarted, "countdown", state.countdownActive)
		return
	}

	now := engine.options.Scheduler.Now()
	state.remaining = engine.remainingAtLocked(now)
	end := now
	if engine.announced && now.After(engine.deadline) {
		end = engine.deadline
	}
	engine.foldElapsedLocked(end)
	engine.cancelTasksLocked()
	state.isActive = false

	engine.logger.Info("session paused", "phase", state.phase, "remaining", state.remaining, "cycle", state.cycleIndex)
	engine.emitLocked(EventStateChange, now)
}

// Resume continues a paused session from the frozen phase remainder.
func (engine *Engine) Resume() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	state := &engine.state
	if engine.closed || !state.hasStarted || state.isActive {
		engine.logger.Debug("resume ignored", "active", state.isActive, "started", state.hasStarted)
		return
	}
	engine.resumeLocked(engine.options.Scheduler.Now())
}

// Reset cancels all timers and returns to the construction-time state.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.resetLocked(engine.options.Scheduler.Now())
}

// Reconfigure replaces the session configuration and resets the engine.
// An invalid configuration is rejected without touching the engine.
func (engine *Engine) Reconfigure(config model.SessionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.config = config.Clone()
	engine.logger.Info("session reconfigured", "cycles", config.TotalCycles, "countdown", config.CountdownSeconds, "cycle_length", config.Durations.Cycle())
	engine.resetLocked(engine.options.Scheduler.Now())
	return nil
}

// Close cancels all timers and closes observer channels.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.cancelTasksLocked()
	engine.closed = true
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) resetLocked(now time.Time) {
	engine.cancelTasksLocked()
	engine.state = initialState(engine.config)
	engine.deadline = time.Time{}
	engine.activeSince = time.Time{}
	engine.announced = false
	engine.logger.Info("session reset")
	engine.sessionID = ""
	engine.logger = engine.options.Logger
	engine.emitLocked(EventStateChange, now)
}

func (engine *Engine) newSessionLocked() {
	engine.sessionID = uuid.NewString()
	engine.logger = engine.options.Logger.With("session_id", engine.sessionID)
}

func (engine *Engine) beginCountdownLocked(now time.Time) {
	engine.cancelTasksLocked()
	engine.newSessionLocked()

	state := &engine.state
	state.isActive = true
	state.countdownActive = true
	state.secondsLeft = engine.config.CountdownSeconds
	engine.countdownAnchor = now
	engine.scheduleCountdownLocked(now, 1)

	engine.logger.Info("countdown started", "seconds", state.secondsLeft)
	engine.emitLocked(EventCountdown, now)
}

func (engine *Engine) scheduleCountdownLocked(now time.Time, step int) {
	epoch := engine.epoch
	due := engine.countdownAnchor.Add(time.Duration(step) * engine.options.CountdownInterval)
	engine.tasks[roleCountdown] = engine.options.Scheduler.AfterFunc(due.Sub(now), func() {
		engine.onCountdownStep(epoch, step)
	})
}

func (engine *Engine) onCountdownStep(epoch uint64, step int) {
	engine.mu.Lock()
	if !engine.currentLocked(epoch) || !engine.state.countdownActive {
		engine.mu.Unlock()
		return
	}
	left := engine.state.secondsLeft - 1
	engine.mu.Unlock()

	engine.options.Notifier.CountdownTick(left)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.currentLocked(epoch) {
		return
	}

	now := engine.options.Scheduler.Now()
	engine.state.secondsLeft = left
	if left > 0 {
		engine.scheduleCountdownLocked(now, step+1)
		engine.emitLocked(EventCountdown, now)
		return
	}
	engine.beginCyclesLocked(now)
}

func (engine *Engine) beginCyclesLocked(now time.Time) {
	engine.cancelTasksLocked()

	state := &engine.state
	state.countdownActive = false
	state.secondsLeft = engine.config.CountdownSeconds
	state.phase = model.PhaseInhale
	state.cycleIndex = 0
	state.remaining = engine.config.Durations.Of(model.PhaseInhale)
	state.elapsed = 0
	state.completed = false
	state.hasStarted = true
	state.isActive = true
	engine.activeSince = now
	engine.armPhaseLocked(now, now)

	engine.logger.Info("session started", "cycles", engine.config.TotalCycles, "total", engine.config.TotalDuration())
	engine.emitLocked(EventStateChange, now)
}

func (engine *Engine) resumeLocked(now time.Time) {
	engine.state.isActive = true
	if engine.announced && engine.state.remaining <= 0 {
		// Paused after PhaseAdvanced fired but before the advance landed.
		engine.activeSince = now
		engine.deadline = now
		engine.logger.Info("session resumed", "phase", engine.state.phase, "remaining", engine.state.remaining)
		engine.advanceLocked(now)
		return
	}
	engine.armPhaseLocked(now, now)
	engine.logger.Info("session resumed", "phase", engine.state.phase, "remaining", engine.state.remaining)
	engine.emitLocked(EventStateChange, now)
}

// armPhaseLocked schedules the deadline, display tick and elapsed tick for
// the current phase, whose remainder starts counting at start.
func (engine *Engine) armPhaseLocked(start, now time.Time) {
	epoch := engine.epoch
	engine.announced = false
	engine.deadline = start.Add(engine.state.remaining)
	if start.After(engine.activeSince) {
		engine.activeSince = start
	}

	engine.tasks[roleDeadline] = engine.options.Scheduler.AfterFunc(engine.deadline.Sub(now), func() {
		engine.onDeadline(epoch)
	})
	engine.scheduleRepeatingLocked(roleTick, start, now, epoch, engine.refreshRemainingLocked)
	engine.scheduleRepeatingLocked(roleElapsed, start, now, epoch, engine.foldElapsedLocked)
}

// scheduleRepeatingLocked arms fn on the tick grid anchored at anchor,
// skipping grid points that already passed.
func (engine *Engine) scheduleRepeatingLocked(role taskRole, anchor, now time.Time, epoch uint64, fn func(time.Time)) {
	interval := engine.options.TickInterval
	step := int64(1)
	if now.After(anchor) {
		step = int64(now.Sub(anchor)/interval) + 1
	}
	due := anchor.Add(time.Duration(step) * interval)

	engine.tasks[role] = engine.options.Scheduler.AfterFunc(due.Sub(now), func() {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		if !engine.currentLocked(epoch) {
			return
		}
		fired := engine.options.Scheduler.Now()
		fn(fired)
		engine.scheduleRepeatingLocked(role, anchor, fired, epoch, fn)
	})
}

func (engine *Engine) refreshRemainingLocked(now time.Time) {
	engine.state.remaining = engine.remainingAtLocked(now)
	engine.emitLocked(EventProgress, now)
}

func (engine *Engine) foldElapsedLocked(now time.Time) {
	if now.After(engine.activeSince) {
		engine.state.elapsed += now.Sub(engine.activeSince)
		engine.activeSince = now
	}
}

func (engine *Engine) onDeadline(epoch uint64) {
	engine.mu.Lock()
	if !engine.currentLocked(epoch) || !engine.phaseRunningLocked() {
		engine.mu.Unlock()
		return
	}
	from := engine.state.phase
	engine.announced = true
	engine.mu.Unlock()

	engine.options.Notifier.PhaseAdvanced(from)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.currentLocked(epoch) {
		return
	}
	engine.advanceLocked(engine.options.Scheduler.Now())
}

func (engine *Engine) advanceLocked(now time.Time) {
	end := engine.deadline
	engine.foldElapsedLocked(end)
	engine.cancelTasksLocked()

	state := &engine.state
	from := state.phase
	state.remaining = 0
	next, wrapped := from.Next()
	if wrapped {
		cycle := state.cycleIndex + 1
		state.cycleIndex = cycle
		if cycle >= engine.config.TotalCycles {
			engine.completeLocked(now)
			return
		}
	}

	state.phase = next
	state.remaining = engine.config.Durations.Of(next)
	engine.armPhaseLocked(end, now)

	engine.logger.Debug("phase advanced", "from", from, "to", next, "cycle", state.cycleIndex)
	engine.emitLocked(EventPhaseChange, now)
}

func (engine *Engine) completeLocked(now time.Time) {
	state := &engine.state
	state.isActive = false
	state.hasStarted = false
	state.completed = true

	engine.logger.Info("session complete", "cycles", state.cycleIndex, "elapsed", state.elapsed)
	engine.emitLocked(EventCompleted, now)
}

func (engine *Engine) phaseRunningLocked() bool {
	state := engine.state
	return state.isActive && state.hasStarted && !state.countdownActive
}

func (engine *Engine) currentLocked(epoch uint64) bool {
	return !engine.closed && epoch == engine.epoch
}

func (engine *Engine) remainingAtLocked(now time.Time) time.Duration {
	remaining := engine.deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	if total := engine.config.Durations.Of(engine.state.phase); remaining > total {
		return total
	}
	return remaining
}

func (engine *Engine) cancelTasksLocked() {
	for role, stop := range engine.tasks {
		stop()
		delete(engine.tasks, role)
	}
	engine.epoch++
}

func (engine *Engine) snapshotLocked(now time.Time) Snapshot {
	state := engine.state
	if engine.phaseRunningLocked() {
		state.remaining = engine.remainingAtLocked(now)
		if now.After(engine.activeSince) {
			state.elapsed += now.Sub(engine.activeSince)
		}
	}
	return buildSnapshot(state, engine.config)
}

func (engine *Engine) emitLocked(eventType EventType, now time.Time) {
	if len(engine.events) == 0 {
		return
	}
	event := Event{
		Type:     eventType,
		Snapshot: engine.snapshotLocked(now),
		At:       now,
	}
	for _, ch := range engine.events {
		select {
		case ch <- event:
			continue
		default:
		}
		if eventType == EventProgress {
			continue
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

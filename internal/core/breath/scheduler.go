package breath

import "time"

// Scheduler is the time source that drives the engine.
type Scheduler interface {
	Now() time.Time
	// AfterFunc calls fn once after delay and returns a function that
	// cancels the call if it has not fired yet.
	AfterFunc(delay time.Duration, fn func()) (stop func() bool)
}

// SystemScheduler schedules on the wall clock.
type SystemScheduler struct{}

// Now returns the current time.
func (SystemScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(delay time.Duration, fn func()) func() bool {
	return time.AfterFunc(delay, fn).Stop
}

type taskRole string

const (
	roleCountdown taskRole = "countdown"
	roleTick      taskRole = "tick"
	roleDeadline  taskRole = "deadline"
	roleElapsed   taskRole = "elapsed"
)

package testutil

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a simulated clock whose timers only fire when the test
// advances time.
//
// Timers due at the same instant fire in the order they were scheduled.
// Callbacks run on the goroutine calling Advance, without the scheduler's
// lock held, so they may schedule or cancel further timers.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
}

// Epoch is the default start time of a ManualScheduler.
var Epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// NewManualScheduler creates a scheduler starting at Epoch.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: Epoch}
}

// Now returns the simulated time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Since returns the simulated time elapsed since Epoch.
func (s *ManualScheduler) Since() time.Duration {
	return s.Now().Sub(Epoch)
}

// AfterFunc schedules fn to run once delay has been advanced past.
func (s *ManualScheduler) AfterFunc(delay time.Duration, fn func()) func() bool {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	timer := &manualTimer{due: s.now.Add(delay), seq: s.seq, fn: fn}
	s.timers = append(s.timers, timer)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if timer.stopped {
			return false
		}
		timer.stopped = true
		s.removeLocked(timer)
		return true
	}
}

// Advance moves time forward by delta, firing every timer that falls due,
// including timers scheduled by callbacks along the way.
func (s *ManualScheduler) Advance(delta time.Duration) {
	s.mu.Lock()
	target := s.now.Add(delta)
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo moves time forward to target.
func (s *ManualScheduler) AdvanceTo(target time.Time) {
	for {
		s.mu.Lock()
		timer := s.nextDueLocked(target)
		if timer == nil {
			if target.After(s.now) {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		timer.stopped = true
		s.removeLocked(timer)
		if timer.due.After(s.now) {
			s.now = timer.due
		}
		s.mu.Unlock()

		timer.fn()
	}
}

// Step advances in increments of step until total has elapsed.
func (s *ManualScheduler) Step(total, step time.Duration) {
	for advanced := time.Duration(0); advanced < total; advanced += step {
		s.Advance(step)
	}
}

// Pending returns the number of armed timers.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTimer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.Slice(s.timers, func(i, j int) bool {
		if s.timers[i].due.Equal(s.timers[j].due) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].due.Before(s.timers[j].due)
	})
	if s.timers[0].due.After(target) {
		return nil
	}
	return s.timers[0]
}

func (s *ManualScheduler) removeLocked(timer *manualTimer) {
	for index, candidate := range s.timers {
		if candidate == timer {
			s.timers = append(s.timers[:index], s.timers[index+1:]...)
			return
		}
	}
}

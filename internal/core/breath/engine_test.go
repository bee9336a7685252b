package breath

import (
	"sync"
	"testing"
	"time"

	"boxbreath/internal/core/model"
	"boxbreath/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	scheduler *testutil.ManualScheduler
	engine    *Engine
	advances  []model.Phase
	ticks     []int
	tickTimes []time.Duration
	seen      []Snapshot
}

func (rec *recorder) PhaseAdvanced(from model.Phase) {
	snapshot := rec.engine.Snapshot()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.advances = append(rec.advances, from)
	rec.seen = append(rec.seen, snapshot)
}

func (rec *recorder) CountdownTick(secondsLeft int) {
	snapshot := rec.engine.Snapshot()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.ticks = append(rec.ticks, secondsLeft)
	rec.tickTimes = append(rec.tickTimes, rec.scheduler.Since())
	rec.seen = append(rec.seen, snapshot)
}

func newTestEngine(t *testing.T, cycles int, phase time.Duration, countdown int) (*Engine, *testutil.ManualScheduler, *recorder) {
	t.Helper()
	scheduler := testutil.NewManualScheduler()
	rec := &recorder{scheduler: scheduler}
	engine, err := New(model.SessionConfig{
		TotalCycles:      cycles,
		Durations:        model.UniformDurations(phase),
		CountdownSeconds: countdown,
	}, Options{Scheduler: scheduler, Notifier: rec})
	require.NoError(t, err)
	rec.engine = engine
	t.Cleanup(engine.Close)
	return engine, scheduler, rec
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(model.SessionConfig{TotalCycles: 0, Durations: model.UniformDurations(time.Second)}, Options{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = New(model.SessionConfig{TotalCycles: 1, Durations: model.UniformDurations(0)}, Options{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = New(model.SessionConfig{TotalCycles: 1, Durations: model.UniformDurations(time.Second), CountdownSeconds: -1}, Options{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestInitialState(t *testing.T) {
	engine, _, _ := newTestEngine(t, 6, 5*time.Second, 3)
	snapshot := engine.Snapshot()

	assert.Equal(t, model.PhaseInhale, snapshot.CurrentPhase)
	assert.Equal(t, 0, snapshot.CycleIndex)
	assert.Equal(t, 6, snapshot.TotalCycles)
	assert.Equal(t, 5*time.Second, snapshot.Remaining)
	assert.False(t, snapshot.IsActive)
	assert.False(t, snapshot.HasStarted)
	assert.Equal(t, Countdown{Active: false, SecondsLeft: 3}, snapshot.Countdown)
	assert.Zero(t, snapshot.Elapsed)
	assert.Zero(t, snapshot.Progress)
	assert.Equal(t, 2*time.Minute, snapshot.TotalSession)
	assert.Equal(t, "2:00", snapshot.FormattedTimeLeft)
}

func TestStartWithoutCountdown(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 2, time.Second, 0)
	engine.Start()

	snapshot := engine.Snapshot()
	assert.True(t, snapshot.HasStarted)
	assert.True(t, snapshot.IsActive)
	assert.Equal(t, model.PhaseInhale, snapshot.CurrentPhase)
	assert.Equal(t, time.Second, snapshot.Remaining)
	assert.False(t, snapshot.Countdown.Active)
	assert.Equal(t, 3, scheduler.Pending(), "deadline, display tick and elapsed tick")
}

func TestSingleCycleRunsFourPhasesThenStops(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, time.Second, 0)
	engine.Start()

	scheduler.Step(4*time.Second, 100*time.Millisecond)

	assert.Equal(t, []model.Phase{
		model.PhaseInhale, model.PhaseInhaleHold, model.PhaseExhale, model.PhaseExhaleHold,
	}, rec.advances)

	snapshot := engine.Snapshot()
	assert.False(t, snapshot.IsActive)
	assert.False(t, snapshot.HasStarted)
	assert.True(t, snapshot.Completed)
	assert.Equal(t, 1, snapshot.CycleIndex)
	assert.Equal(t, model.PhaseExhaleHold, snapshot.CurrentPhase)
	assert.Equal(t, 4*time.Second, snapshot.Elapsed)
	assert.Equal(t, "0:00", snapshot.FormattedTimeLeft)
	assert.Zero(t, scheduler.Pending())

	scheduler.Advance(10 * time.Second)
	assert.Len(t, rec.advances, 4)
}

func TestPhaseSequenceAcrossCycles(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 3, 500*time.Millisecond, 0)
	engine.Start()

	scheduler.Advance(2 * time.Second)
	snapshot := engine.Snapshot()
	assert.Equal(t, 1, snapshot.CycleIndex)
	assert.Equal(t, model.PhaseInhale, snapshot.CurrentPhase)
	assert.Equal(t, 500*time.Millisecond, snapshot.Remaining)

	scheduler.Advance(1250 * time.Millisecond)
	snapshot = engine.Snapshot()
	assert.Equal(t, 1, snapshot.CycleIndex)
	assert.Equal(t, model.PhaseExhale, snapshot.CurrentPhase)
	assert.Equal(t, 250*time.Millisecond, snapshot.Remaining)
	assert.Equal(t, 3250*time.Millisecond, snapshot.Elapsed)
	assert.Equal(t, 2750*time.Millisecond, snapshot.TimeLeft)
}

func TestCountdownTicksThenStarts(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, time.Second, 3)
	engine.Start()

	snapshot := engine.Snapshot()
	assert.True(t, snapshot.IsActive)
	assert.False(t, snapshot.HasStarted)
	assert.Equal(t, Countdown{Active: true, SecondsLeft: 3}, snapshot.Countdown)

	for step := 0; step < 29; step++ {
		scheduler.Advance(100 * time.Millisecond)
		snapshot = engine.Snapshot()
		assert.False(t, snapshot.Countdown.Active && snapshot.HasStarted)
		assert.Zero(t, snapshot.Elapsed)
	}
	assert.False(t, engine.Snapshot().HasStarted)
	assert.Equal(t, 1, engine.Snapshot().Countdown.SecondsLeft)

	scheduler.Advance(100 * time.Millisecond)

	assert.Equal(t, []int{2, 1, 0}, rec.ticks)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, rec.tickTimes)

	snapshot = engine.Snapshot()
	assert.True(t, snapshot.HasStarted)
	assert.True(t, snapshot.IsActive)
	assert.False(t, snapshot.Countdown.Active)
	assert.Equal(t, model.PhaseInhale, snapshot.CurrentPhase)
	assert.Equal(t, time.Second, snapshot.Remaining)
	assert.Zero(t, snapshot.Elapsed)

	scheduler.Advance(time.Second)
	assert.Equal(t, []model.Phase{model.PhaseInhale}, rec.advances)
}

func TestCountdownHookRunsBeforeDecrement(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, time.Second, 2)
	engine.Start()
	scheduler.Advance(2 * time.Second)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, 2, rec.seen[0].Countdown.SecondsLeft)
	assert.Equal(t, 1, rec.seen[1].Countdown.SecondsLeft)
	assert.False(t, rec.seen[1].HasStarted)
}

func TestPhaseHookRunsBeforeTransition(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, time.Second, 0)
	engine.Start()
	scheduler.Advance(2 * time.Second)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, model.PhaseInhale, rec.seen[0].CurrentPhase)
	assert.Zero(t, rec.seen[0].Remaining)
	assert.Equal(t, model.PhaseInhaleHold, rec.seen[1].CurrentPhase)
}

func TestPauseAndResumeKeepPhaseProgress(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 2, time.Second, 0)
	engine.Start()

	scheduler.Step(600*time.Millisecond, 100*time.Millisecond)
	engine.Pause()

	paused := engine.Snapshot()
	assert.False(t, paused.IsActive)
	assert.True(t, paused.HasStarted)
	assert.True(t, paused.Paused())
	assert.Equal(t, 400*time.Millisecond, paused.Remaining)
	assert.Equal(t, 600*time.Millisecond, paused.Elapsed)
	assert.Zero(t, scheduler.Pending())

	scheduler.AdvanceTo(testutil.Epoch.Add(5 * time.Second))
	assert.Equal(t, paused, engine.Snapshot())
	assert.Empty(t, rec.advances)

	engine.Resume()
	resumed := engine.Snapshot()
	assert.True(t, resumed.IsActive)
	assert.Equal(t, 400*time.Millisecond, resumed.Remaining)
	assert.Equal(t, 600*time.Millisecond, resumed.Elapsed)

	scheduler.Advance(399 * time.Millisecond)
	assert.Equal(t, model.PhaseInhale, engine.Snapshot().CurrentPhase)

	scheduler.Advance(time.Millisecond)
	snapshot := engine.Snapshot()
	assert.Equal(t, model.PhaseInhaleHold, snapshot.CurrentPhase)
	assert.Equal(t, time.Second, snapshot.Remaining)
	assert.Equal(t, time.Second, snapshot.Elapsed)
}

func TestStartResumesPausedSession(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 1, time.Second, 3)
	engine.Start()
	scheduler.Advance(3300 * time.Millisecond)
	engine.Pause()
	require.Equal(t, 700*time.Millisecond, engine.Snapshot().Remaining)

	engine.Start()
	snapshot := engine.Snapshot()
	assert.True(t, snapshot.IsActive)
	assert.False(t, snapshot.Countdown.Active, "resume must not rerun the countdown")
	assert.Equal(t, 700*time.Millisecond, snapshot.Remaining)
}

func TestInvalidControlCallsAreIgnored(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, time.Second, 2)
	initial := engine.Snapshot()

	engine.Pause()
	engine.Resume()
	assert.Equal(t, initial, engine.Snapshot())
	assert.Zero(t, scheduler.Pending())

	engine.Start()
	pending := scheduler.Pending()
	engine.Start()
	engine.Pause()
	engine.Resume()
	assert.Equal(t, pending, scheduler.Pending())
	assert.True(t, engine.Snapshot().Countdown.Active)

	scheduler.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 0}, rec.ticks)
	assert.True(t, engine.Snapshot().HasStarted)

	pending = scheduler.Pending()
	engine.Start()
	engine.Resume()
	assert.Equal(t, pending, scheduler.Pending())
}

func TestStartAfterCompletionRequiresReset(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 1, 100*time.Millisecond, 0)
	engine.Start()
	scheduler.Advance(time.Second)
	completed := engine.Snapshot()
	require.True(t, completed.Completed)

	engine.Start()
	assert.Equal(t, completed, engine.Snapshot())
	assert.Zero(t, scheduler.Pending())

	engine.Reset()
	engine.Start()
	scheduler.Advance(time.Second)
	assert.Len(t, rec.advances, 8)
	assert.True(t, engine.Snapshot().Completed)
}

func TestResetFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		drive func(*Engine, *testutil.ManualScheduler)
	}{
		{"idle", func(*Engine, *testutil.ManualScheduler) {}},
		{"mid countdown", func(e *Engine, s *testutil.ManualScheduler) {
			e.Start()
			s.Advance(1500 * time.Millisecond)
		}},
		{"mid cycle", func(e *Engine, s *testutil.ManualScheduler) {
			e.Start()
			s.Advance(6700 * time.Millisecond)
		}},
		{"paused", func(e *Engine, s *testutil.ManualScheduler) {
			e.Start()
			s.Advance(4200 * time.Millisecond)
			e.Pause()
		}},
		{"completed", func(e *Engine, s *testutil.ManualScheduler) {
			e.Start()
			s.Advance(time.Minute)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, scheduler, _ := newTestEngine(t, 2, time.Second, 2)
			initial := engine.Snapshot()

			tt.drive(engine, scheduler)
			engine.Reset()

			assert.Equal(t, initial, engine.Snapshot())
			assert.Zero(t, scheduler.Pending())

			scheduler.Advance(time.Minute)
			assert.Equal(t, initial, engine.Snapshot())
		})
	}
}

func TestProgressWithinPhase(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 1, time.Second, 0)
	engine.Start()
	assert.Zero(t, engine.Snapshot().Progress)

	scheduler.Advance(500 * time.Millisecond)
	assert.InDelta(t, 0.5, engine.Snapshot().Progress, 1e-9)

	scheduler.Advance(400 * time.Millisecond)
	assert.InDelta(t, 0.9, engine.Snapshot().Progress, 1e-9)

	scheduler.Advance(100 * time.Millisecond)
	snapshot := engine.Snapshot()
	assert.Equal(t, model.PhaseInhaleHold, snapshot.CurrentPhase)
	assert.Zero(t, snapshot.Progress)
}

func TestReconfigure(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 2, time.Second, 0)
	engine.Start()
	scheduler.Advance(1500 * time.Millisecond)

	err := engine.Reconfigure(model.SessionConfig{TotalCycles: 0, Durations: model.UniformDurations(time.Second)})
	require.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.True(t, engine.Snapshot().IsActive, "rejected config must not touch the running session")
	assert.Equal(t, 2, engine.Config().TotalCycles)

	program, ok := model.LookupProgram("Sleep")
	require.True(t, ok)
	require.NoError(t, engine.Reconfigure(model.SessionConfig{TotalCycles: 3, Durations: program.Durations()}))

	snapshot := engine.Snapshot()
	assert.False(t, snapshot.IsActive)
	assert.False(t, snapshot.HasStarted)
	assert.Equal(t, 4*time.Second, snapshot.Remaining)
	assert.Equal(t, 60*time.Second, snapshot.TotalSession)
	assert.Equal(t, "1:00", snapshot.FormattedTimeLeft)
	assert.Zero(t, scheduler.Pending())
}

func TestConfigIsCopied(t *testing.T) {
	durations := model.UniformDurations(time.Second)
	engine, err := New(model.SessionConfig{TotalCycles: 1, Durations: durations}, Options{Scheduler: testutil.NewManualScheduler()})
	require.NoError(t, err)
	durations[model.PhaseInhale] = time.Hour
	assert.Equal(t, time.Second, engine.Config().Durations[model.PhaseInhale])
}

func TestSubscribeReceivesLifecycleEvents(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 1, time.Second, 1)
	events := engine.Subscribe(256)

	engine.Start()
	scheduler.Step(5*time.Second, 100*time.Millisecond)
	engine.Close()

	counts := map[EventType]int{}
	var last Event
	for event := range events {
		counts[event.Type]++
		last = event
	}
	assert.Equal(t, 1, counts[EventCountdown])
	assert.Equal(t, 1, counts[EventStateChange])
	assert.Equal(t, 3, counts[EventPhaseChange])
	assert.Equal(t, 1, counts[EventCompleted])
	assert.Greater(t, counts[EventProgress], 30)
	assert.Equal(t, EventCompleted, last.Type)
	assert.True(t, last.Snapshot.Completed)
}

func TestFullSubscriberStillSeesCompletion(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, 1, time.Second, 0)
	events := engine.Subscribe(1)

	engine.Start()
	scheduler.Step(5*time.Second, 100*time.Millisecond)

	event := <-events
	assert.Equal(t, EventCompleted, event.Type)
	assert.True(t, event.Snapshot.Completed)
}

func TestPauseInsidePhaseHookAnnouncesOnce(t *testing.T) {
	scheduler := testutil.NewManualScheduler()
	var engine *Engine
	var advances []model.Phase
	paused := false
	notifier := NotifierFuncs{OnPhaseAdvance: func(from model.Phase) {
		advances = append(advances, from)
		if !paused {
			paused = true
			engine.Pause()
		}
	}}
	engine, err := New(model.SessionConfig{
		TotalCycles: 1,
		Durations:   model.UniformDurations(time.Second),
	}, Options{Scheduler: scheduler, Notifier: notifier})
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	engine.Start()
	scheduler.Advance(time.Second)

	snapshot := engine.Snapshot()
	assert.True(t, snapshot.Paused())
	assert.Equal(t, model.PhaseInhale, snapshot.CurrentPhase)
	assert.Zero(t, snapshot.Remaining)
	assert.Equal(t, time.Second, snapshot.Elapsed)

	scheduler.Advance(5 * time.Second)
	engine.Resume()
	snapshot = engine.Snapshot()
	assert.True(t, snapshot.IsActive)
	assert.Equal(t, model.PhaseInhaleHold, snapshot.CurrentPhase)
	assert.Equal(t, time.Second, snapshot.Remaining)
	assert.Equal(t, time.Second, snapshot.Elapsed)

	scheduler.Advance(time.Millisecond)
	assert.Equal(t, []model.Phase{model.PhaseInhale}, advances)

	scheduler.Advance(time.Second)
	assert.Equal(t, []model.Phase{model.PhaseInhale, model.PhaseInhaleHold}, advances)
}

func TestCloseStopsEverything(t *testing.T) {
	engine, scheduler, rec := newTestEngine(t, 2, time.Second, 0)
	engine.Start()
	engine.Close()

	assert.Zero(t, scheduler.Pending())
	scheduler.Advance(time.Minute)
	assert.Empty(t, rec.advances)

	engine.Start()
	assert.Zero(t, scheduler.Pending())

	_, open := <-engine.Subscribe(1)
	assert.False(t, open)
}

func TestNoopNotifierByDefault(t *testing.T) {
	scheduler := testutil.NewManualScheduler()
	engine, err := New(model.SessionConfig{
		TotalCycles:      1,
		Durations:        model.UniformDurations(200 * time.Millisecond),
		CountdownSeconds: 1,
	}, Options{Scheduler: scheduler})
	require.NoError(t, err)

	engine.Start()
	scheduler.Advance(2 * time.Second)
	assert.True(t, engine.Snapshot().Completed)
}

func TestSystemSchedulerRunsSession(t *testing.T) {
	var mu sync.Mutex
	var advances int
	done := make(chan struct{})
	engine, err := New(model.SessionConfig{
		TotalCycles: 1,
		Durations:   model.UniformDurations(20 * time.Millisecond),
	}, Options{
		TickInterval: 5 * time.Millisecond,
		Notifier: NotifierFuncs{OnPhaseAdvance: func(model.Phase) {
			mu.Lock()
			advances++
			mu.Unlock()
		}},
	})
	require.NoError(t, err)
	events := engine.Subscribe(512)
	go func() {
		for event := range events {
			if event.Type == EventCompleted {
				close(done)
				return
			}
		}
	}()

	engine.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not complete")
	}
	engine.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, advances)
	assert.Equal(t, 1, engine.Snapshot().CycleIndex)
}

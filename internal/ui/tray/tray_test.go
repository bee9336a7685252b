package tray

import (
	"testing"

	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTray struct {
	menu *fyne.Menu
	icon fyne.Resource
}

func (tray *fakeTray) SetSystemTrayMenu(menu *fyne.Menu) { tray.menu = menu }
func (tray *fakeTray) SetSystemTrayIcon(icon fyne.Resource) { tray.icon = icon }
func (tray *fakeTray) SetSystemTrayWindow(window fyne.Window) {}

func labels(menu *fyne.Menu) []string {
	out := make([]string, 0, len(menu.Items))
	for _, item := range menu.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestManagerMenu(t *testing.T) {
	app := &fakeTray{}
	toggled, instructed := 0, 0
	manager := New(app, "BoxBreath", Callbacks{
		OnToggle:       func() { toggled++ },
		OnInstructions: func() { instructed++ },
	})

	require.NotNil(t, app.menu)
	assert.Equal(t, []string{"Status: ready", "Show", "Start", "Reset", "", "How to breathe", "Preferences", "Quit"}, labels(app.menu))
	app.menu.Items[5].Action()
	assert.Equal(t, 1, instructed)
	assert.True(t, manager.resetItem.Disabled)

	app.menu.Items[2].Action()
	assert.Equal(t, 1, toggled)
	app.menu.Items[1].Action()
}

func TestManagerUpdate(t *testing.T) {
	app := &fakeTray{}
	manager := New(app, "BoxBreath", Callbacks{})

	manager.Update(breath.Snapshot{
		CurrentPhase: model.PhaseExhale,
		CycleIndex:   2,
		TotalCycles:  6,
		IsActive:     true,
		HasStarted:   true,
	})
	assert.Equal(t, "Status: Exhale, cycle 3 of 6", app.menu.Items[0].Label)
	assert.Equal(t, "Pause", app.menu.Items[2].Label)
	assert.False(t, manager.resetItem.Disabled)

	manager.Update(breath.Snapshot{HasStarted: true, FormattedTimeLeft: "1:05"})
	assert.Equal(t, "Status: paused, 1:05 left", app.menu.Items[0].Label)
	assert.Equal(t, "Resume", app.menu.Items[2].Label)

	manager.Update(breath.Snapshot{Countdown: breath.Countdown{Active: true, SecondsLeft: 2}})
	assert.Equal(t, "Status: starting in 2", app.menu.Items[0].Label)
	assert.True(t, manager.toggleItem.Disabled)

	manager.Update(breath.Snapshot{Completed: true})
	assert.Equal(t, "Status: session complete", app.menu.Items[0].Label)
	assert.Equal(t, "Start", app.menu.Items[2].Label)
	assert.True(t, manager.toggleItem.Disabled)
}

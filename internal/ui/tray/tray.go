package tray

import (
	"fmt"

	"boxbreath/internal/core/breath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow         func()
	OnInstructions func()
	OnPreferences  func()
	OnToggle       func()
	OnReset        func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	title       string
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	resetItem   *fyne.MenuItem
	callbacks   Callbacks
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, title string, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		title:     title,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start", call(&manager.callbacks.OnToggle))
	manager.resetItem = fyne.NewMenuItem("Reset", call(&manager.callbacks.OnReset))
	manager.resetItem.Disabled = true

	manager.refreshMenu()
	return manager
}

// Update reflects snapshot in the status line and the session items.
func (manager *Manager) Update(snapshot breath.Snapshot) {
	manager.statusLabel = Status(snapshot)
	manager.toggleItem.Label = "Start"
	if snapshot.HasStarted && snapshot.IsActive {
		manager.toggleItem.Label = "Pause"
	} else if snapshot.Paused() {
		manager.toggleItem.Label = "Resume"
	}
	manager.toggleItem.Disabled = snapshot.Countdown.Active || snapshot.Completed
	manager.resetItem.Disabled = !(snapshot.HasStarted || snapshot.Countdown.Active || snapshot.Completed)
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.statusLabel)
	manager.refreshMenu()
}

// Status is the short tray status line for snapshot.
func Status(snapshot breath.Snapshot) string {
	switch {
	case snapshot.Countdown.Active:
		return fmt.Sprintf("starting in %d", snapshot.Countdown.SecondsLeft)
	case snapshot.Paused():
		return fmt.Sprintf("paused, %s left", snapshot.FormattedTimeLeft)
	case snapshot.HasStarted:
		return fmt.Sprintf("%s, cycle %d of %d", snapshot.CurrentPhase.Label(), snapshot.CycleIndex+1, snapshot.TotalCycles)
	case snapshot.Completed:
		return "session complete"
	default:
		return "ready"
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.title,
		manager.statusItem,
		fyne.NewMenuItem("Show", call(&manager.callbacks.OnShow)),
		manager.toggleItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("How to breathe", call(&manager.callbacks.OnInstructions)),
		fyne.NewMenuItem("Preferences", call(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", call(&manager.callbacks.OnQuit)),
	))
}

func call(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"boxbreath/internal/cli"
	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"
	"boxbreath/internal/feedback"
	"boxbreath/internal/platform"
	"boxbreath/internal/ui/box"
	"boxbreath/internal/ui/preferences"
	"boxbreath/internal/ui/tray"
	"boxbreath/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const appID = "com.boxbreath.app"

func main() {
	if err := cli.NewRootCommand(runDesktop).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDesktop(settings model.Settings, save func(model.Settings) error, logger *slog.Logger) error {
	guard, err := platform.AcquireSingleInstance(cli.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Info("already running", "error", err)
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconLogo))

	var boxWindow *box.Window
	player := feedback.NewPlayer(feedback.SinkFunc(func(feedback.Cue) {
		fyne.Do(func() {
			if boxWindow != nil {
				boxWindow.Flash()
			}
		})
	}))
	player.SetEnabled(settings.SoundEnabled)

	engine, err := breath.New(settings.SessionConfig(), breath.Options{Notifier: player, Logger: logger})
	if err != nil {
		return err
	}
	defer engine.Close()

	start := player.With(feedback.CueTick, engine.Start)
	pause := player.With(feedback.CueBoop, engine.Pause)
	resume := player.With(feedback.CueBoop, engine.Resume)
	reset := player.With(feedback.CueBoop, engine.Reset)
	toggle := func() {
		cli.ToggleSession(engine, player)
	}

	boxWindow = box.New(fyneApp, cli.AppName, box.Controls{
		OnStart:    start,
		OnPause:    pause,
		OnResume:   resume,
		OnReset:    reset,
		OnNavigate: func() { player.Play(feedback.CueBoop) },
	})

	prefsWindow := preferences.New(fyneApp, settings, func(updated model.Settings) {
		player.SetEnabled(updated.SoundEnabled)
		if err := engine.Reconfigure(updated.SessionConfig()); err != nil {
			logger.Error("apply settings", "error", err)
			return
		}
		if err := save(updated); err != nil {
			logger.Error("save settings", "error", err)
		}
	})

	var trayManager *tray.Manager
	activeIcon := resources.MustIcon(resources.IconActive)
	pausedIcon := resources.MustIcon(resources.IconPaused)
	idleIcon := resources.MustIcon(resources.IconLogo)

	desktopApp, ok := fyneApp.(desktop.App)
	if ok {
		trayManager = tray.New(desktopApp, cli.AppName, tray.Callbacks{
			OnShow: boxWindow.Show,
			OnInstructions: func() {
				boxWindow.ShowInstructions()
				boxWindow.Show()
			},
			OnPreferences: prefsWindow.Show,
			OnToggle:      toggle,
			OnReset:       reset,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(idleIcon)
		boxWindow.SetOnClosed(nil)
	} else {
		logger.Warn("system tray unsupported on this platform")
		boxWindow.SetMaster()
	}

	go guard.Serve(func() {
		fyne.Do(boxWindow.Show)
	})

	events := engine.Subscribe(16)
	go func() {
		for event := range events {
			snapshot := event.Snapshot
			stateChanged := event.Type != breath.EventProgress
			fyne.Do(func() {
				boxWindow.Update(snapshot)
				if trayManager == nil {
					return
				}
				trayManager.Update(snapshot)
				if stateChanged {
					desktopApp.SetSystemTrayIcon(trayIcon(snapshot, idleIcon, activeIcon, pausedIcon))
				}
			})
		}
	}()

	initial := engine.Snapshot()
	boxWindow.Update(initial)
	if trayManager != nil {
		trayManager.Update(initial)
	}

	logger.Info("desktop started", "program", settings.Program, "cycles", settings.Repeat)
	boxWindow.Show()
	fyneApp.Run()
	return nil
}

func trayIcon(snapshot breath.Snapshot, idle, active, paused fyne.Resource) fyne.Resource {
	switch {
	case snapshot.Paused():
		return paused
	case snapshot.HasStarted || snapshot.Countdown.Active:
		return active
	default:
		return idle
	}
}

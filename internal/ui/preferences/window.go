package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"boxbreath/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const customLabel = "Custom"

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   model.Settings
	onSave     func(model.Settings)
	program    *widget.Select
	inhale     *widget.Entry
	inhaleHold *widget.Entry
	exhale     *widget.Entry
	exhaleHold *widget.Entry
	repeat     *widget.Entry
	countdown  *widget.Entry
	sound      *widget.Check
	total      *widget.Label
	saveButton *widget.Button
	loading    bool
}

// New creates a preferences window.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings)) *Window {
	window := app.NewWindow("BoxBreath Settings")

	prefs := &Window{
		window:     window,
		settings:   settings,
		onSave:     onSave,
		inhale:     widget.NewEntry(),
		inhaleHold: widget.NewEntry(),
		exhale:     widget.NewEntry(),
		exhaleHold: widget.NewEntry(),
		repeat:     widget.NewEntry(),
		countdown:  widget.NewEntry(),
		sound:      widget.NewCheck("Sound on phase change", nil),
		total:      widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	}

	options := append(model.ProgramNames(), customLabel)
	prefs.program = widget.NewSelect(options, prefs.handleProgram)
	for _, entry := range []*widget.Entry{prefs.inhale, prefs.inhaleHold, prefs.exhale, prefs.exhaleHold, prefs.repeat} {
		entry.OnChanged = func(string) { prefs.refreshTotal() }
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Program", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.program,
		container.NewGridWithColumns(3,
			widget.NewLabel("Inhale"), prefs.inhale, widget.NewLabel("sec"),
			widget.NewLabel("Hold"), prefs.inhaleHold, widget.NewLabel("sec"),
			widget.NewLabel("Exhale"), prefs.exhale, widget.NewLabel("sec"),
			widget.NewLabel("Hold"), prefs.exhaleHold, widget.NewLabel("sec"),
		),
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(3,
			widget.NewLabel("Repeat"), prefs.repeat, widget.NewLabel("cycles"),
			widget.NewLabel("Countdown"), prefs.countdown, widget.NewLabel("sec"),
		),
		prefs.sound,
		container.NewHBox(widget.NewLabel("Total time"), prefs.total),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 440))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.loading = true
	defer func() {
		prefs.loading = false
		prefs.refreshTotal()
	}()

	prefs.settings = settings
	if program, ok := model.LookupProgram(settings.Program); ok {
		prefs.program.SetSelected(program.Name)
	} else {
		prefs.program.SetSelected(customLabel)
	}
	prefs.setDurations(settings)
	prefs.repeat.SetText(strconv.Itoa(settings.Repeat))
	prefs.countdown.SetText(strconv.Itoa(settings.CountdownSeconds))
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.setCustomEnabled(!isPreset(prefs.program.Selected))
}

// Settings returns the values currently entered in the window. Entries that
// do not parse keep their previous value.
func (prefs *Window) Settings() model.Settings {
	settings := prefs.settings

	if program, ok := model.LookupProgram(prefs.program.Selected); ok {
		settings.ApplyProgram(program)
	} else {
		settings.Program = model.CustomProgram
		fields := []struct {
			entry  *widget.Entry
			target *time.Duration
		}{
			{prefs.inhale, &settings.Inhale},
			{prefs.inhaleHold, &settings.InhaleHold},
			{prefs.exhale, &settings.Exhale},
			{prefs.exhaleHold, &settings.ExhaleHold},
		}
		for _, field := range fields {
			if seconds, ok := parseInt(field.entry.Text, 1, 0); ok {
				*field.target = time.Duration(seconds) * time.Second
			}
		}
	}

	if repeat, ok := parseInt(prefs.repeat.Text, 1, model.MaxRepeat); ok {
		settings.Repeat = repeat
	}
	if countdown, ok := parseInt(prefs.countdown.Text, 0, 0); ok {
		settings.CountdownSeconds = countdown
	}
	settings.SoundEnabled = prefs.sound.Checked
	return settings
}

func (prefs *Window) handleProgram(selected string) {
	if prefs.loading {
		return
	}
	if program, ok := model.LookupProgram(selected); ok {
		settings := prefs.settings
		settings.ApplyProgram(program)
		prefs.setDurations(settings)
	}
	prefs.setCustomEnabled(!isPreset(selected))
	prefs.refreshTotal()
}

func (prefs *Window) handleSave() {
	settings := prefs.Settings()
	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func (prefs *Window) setDurations(settings model.Settings) {
	durations := settings.Durations()
	prefs.inhale.SetText(seconds(durations.Of(model.PhaseInhale)))
	prefs.inhaleHold.SetText(seconds(durations.Of(model.PhaseInhaleHold)))
	prefs.exhale.SetText(seconds(durations.Of(model.PhaseExhale)))
	prefs.exhaleHold.SetText(seconds(durations.Of(model.PhaseExhaleHold)))
}

func (prefs *Window) setCustomEnabled(enabled bool) {
	for _, entry := range []*widget.Entry{prefs.inhale, prefs.inhaleHold, prefs.exhale, prefs.exhaleHold} {
		if enabled {
			entry.Enable()
		} else {
			entry.Disable()
		}
	}
}

func (prefs *Window) refreshTotal() {
	if prefs.loading {
		return
	}
	prefs.total.SetText(prefs.Settings().TotalTimeLabel())
}

func isPreset(name string) bool {
	_, ok := model.LookupProgram(name)
	return ok
}

func seconds(value time.Duration) string {
	return fmt.Sprintf("%d", int(value/time.Second))
}

// parseInt accepts integers of at least min and, when max is positive, at
// most max.
func parseInt(value string, min, max int) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < min || (max > 0 && parsed > max) {
		return 0, false
	}
	return parsed, true
}

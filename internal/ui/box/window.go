package box

import (
	"fmt"
	"image/color"
	"time"

	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Controls are the session actions offered by the window.
type Controls struct {
	OnStart  func()
	OnPause  func()
	OnResume func()
	OnReset  func()
	// OnNavigate runs when the user moves between the instructions and the
	// session view.
	OnNavigate func()
}

// Window shows the breathing instructions first, then the session: phase
// indicators, phase progress, countdown, cycle counter and the time left.
type Window struct {
	window       fyne.Window
	controls     Controls
	instructions fyne.CanvasObject
	session      fyne.CanvasObject
	nextButton   *widget.Button
	backButton   *widget.Button
	phases       map[model.Phase]*canvas.Text
	seconds      *canvas.Text
	progress     *widget.ProgressBar
	cycle        *widget.Label
	timeLeft     *widget.Label
	status       *widget.Label
	startButton  *widget.Button
	resetButton  *widget.Button
	snapshot     breath.Snapshot
	flash        *fyne.Animation
}

var (
	colorActive   = color.NRGBA{R: 94, G: 194, B: 183, A: 255}
	colorInactive = color.NRGBA{R: 138, G: 146, B: 153, A: 255}
	colorCount    = color.NRGBA{R: 242, G: 193, B: 78, A: 255}
)

const (
	phaseTextSize   = 18
	secondsTextSize = 56
	flashDuration   = 400 * time.Millisecond
)

// New creates the session window. It is not shown until Show is called.
func New(app fyne.App, title string, controls Controls) *Window {
	window := app.NewWindow(title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	phases := make(map[model.Phase]*canvas.Text, len(model.Phases))
	row := container.NewHBox(layout.NewSpacer())
	for _, phase := range model.Phases {
		text := canvas.NewText(phase.Label(), colorInactive)
		text.TextSize = phaseTextSize
		text.Alignment = fyne.TextAlignCenter
		phases[phase] = text
		row.Add(container.NewPadded(text))
	}
	row.Add(layout.NewSpacer())

	seconds := canvas.NewText("", colorActive)
	seconds.TextSize = secondsTextSize
	seconds.TextStyle = fyne.TextStyle{Bold: true}
	seconds.Alignment = fyne.TextAlignCenter

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	box := &Window{
		window:   window,
		controls: controls,
		phases:   phases,
		seconds:  seconds,
		progress: progress,
		cycle:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		timeLeft: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		status:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}
	box.startButton = widget.NewButton("Start", box.toggle)
	box.resetButton = widget.NewButton("Cancel", func() {
		if box.controls.OnReset != nil {
			box.controls.OnReset()
		}
	})

	box.nextButton = widget.NewButton("Next", func() {
		box.navigate(false)
	})
	box.backButton = widget.NewButton("How to breathe", func() {
		box.navigate(true)
	})

	buttons := container.NewHBox(layout.NewSpacer(), box.startButton, box.resetButton, layout.NewSpacer())
	box.session = container.NewVBox(container.NewHBox(box.backButton), row, seconds, progress, box.cycle, box.timeLeft, box.status, buttons)
	box.instructions = newInstructions(box.nextButton)
	window.SetContent(container.NewPadded(container.NewStack(box.instructions, box.session)))
	window.Resize(fyne.NewSize(420, 380))

	box.Update(breath.Snapshot{})
	box.ShowInstructions()
	return box
}

func newInstructions(next *widget.Button) fyne.CanvasObject {
	title := widget.NewLabelWithStyle(model.InstructionsTitle, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	steps := container.NewVBox()
	for index, text := range model.Instructions {
		step := widget.NewLabel(fmt.Sprintf("%d. %s", index+1, text))
		step.Wrapping = fyne.TextWrapWord
		steps.Add(step)
	}
	return container.NewBorder(title, container.NewHBox(layout.NewSpacer(), next, layout.NewSpacer()), nil, nil,
		container.NewVScroll(steps))
}

// ShowInstructions switches to the instructions view.
func (box *Window) ShowInstructions() {
	box.session.Hide()
	box.instructions.Show()
}

// ShowSession switches to the session view.
func (box *Window) ShowSession() {
	box.instructions.Hide()
	box.session.Show()
}

// InstructionsVisible reports whether the instructions view is shown.
func (box *Window) InstructionsVisible() bool {
	return box.instructions.Visible()
}

func (box *Window) navigate(toInstructions bool) {
	if box.controls.OnNavigate != nil {
		box.controls.OnNavigate()
	}
	if toInstructions {
		box.ShowInstructions()
		return
	}
	box.ShowSession()
}

// Show displays the window.
func (box *Window) Show() {
	box.window.Show()
	box.window.RequestFocus()
}

// SetMaster makes closing this window quit the app.
func (box *Window) SetMaster() {
	box.window.SetMaster()
}

// SetOnClosed hides the window instead of closing it and calls handler.
func (box *Window) SetOnClosed(handler func()) {
	box.window.SetCloseIntercept(func() {
		box.window.Hide()
		if handler != nil {
			handler()
		}
	})
}

// Update redraws the window from snapshot. Must run on the UI goroutine.
func (box *Window) Update(snapshot breath.Snapshot) {
	box.snapshot = snapshot
	running := snapshot.HasStarted || snapshot.Countdown.Active

	for phase, text := range box.phases {
		text.Color = colorInactive
		text.TextStyle = fyne.TextStyle{}
		if snapshot.HasStarted && phase == snapshot.CurrentPhase {
			text.Color = colorActive
			text.TextStyle = fyne.TextStyle{Bold: true}
		}
		text.Refresh()
	}

	switch {
	case snapshot.Countdown.Active:
		box.seconds.Text = fmt.Sprintf("%d", snapshot.Countdown.SecondsLeft)
		box.seconds.Color = colorCount
	case snapshot.HasStarted:
		box.seconds.Text = fmt.Sprintf("%d", snapshot.SecondsLeftInPhase())
		box.seconds.Color = colorActive
	default:
		box.seconds.Text = ""
	}
	box.seconds.Refresh()

	box.progress.SetValue(snapshot.Progress)
	if snapshot.HasStarted {
		box.cycle.SetText(fmt.Sprintf("Cycle: %d of %d", snapshot.CycleIndex+1, snapshot.TotalCycles))
	} else {
		box.cycle.SetText("")
	}
	box.timeLeft.SetText(snapshot.FormattedTimeLeft)
	box.status.SetText(StatusText(snapshot))

	box.startButton.SetText(ButtonLabel(snapshot))
	if snapshot.Countdown.Active || snapshot.Completed {
		box.startButton.Disable()
	} else {
		box.startButton.Enable()
	}
	if running || snapshot.Completed {
		box.resetButton.Enable()
		box.backButton.Hide()
	} else {
		box.resetButton.Disable()
		box.backButton.Show()
	}
}

// Flash pulses the seconds display. It is the visual cue for phase changes
// and countdown ticks.
func (box *Window) Flash() {
	if box.flash != nil {
		box.flash.Stop()
	}
	base, pulse := color.Color(colorActive), color.Color(colorCount)
	if box.snapshot.Countdown.Active {
		base, pulse = colorCount, colorActive
	}
	box.flash = canvas.NewColorRGBAAnimation(pulse, base, flashDuration, func(c color.Color) {
		box.seconds.Color = c
		box.seconds.Refresh()
	})
	box.flash.Start()
}

func (box *Window) toggle() {
	var action func()
	switch {
	case box.snapshot.HasStarted && box.snapshot.IsActive:
		action = box.controls.OnPause
	case box.snapshot.Paused():
		action = box.controls.OnResume
	default:
		action = box.controls.OnStart
	}
	if action != nil {
		action()
	}
}

// ButtonLabel is the label of the start/pause button for snapshot.
func ButtonLabel(snapshot breath.Snapshot) string {
	switch {
	case snapshot.HasStarted && snapshot.IsActive:
		return "Pause"
	case snapshot.Paused():
		return "Resume"
	default:
		return "Start"
	}
}

// StatusText describes the session state in a few words.
func StatusText(snapshot breath.Snapshot) string {
	switch {
	case snapshot.Countdown.Active:
		return "Get ready"
	case snapshot.Paused():
		return "Paused"
	case snapshot.HasStarted:
		return snapshot.CurrentPhase.Label()
	case snapshot.Completed:
		return fmt.Sprintf("Session complete: %d of %d cycles", snapshot.CycleIndex, snapshot.TotalCycles)
	default:
		return "Press Start to begin"
	}
}

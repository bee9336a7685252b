// Package term renders engine snapshots for a terminal session.
package term

import (
	"fmt"
	"strings"

	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"

	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 32

var (
	colorActive = lipgloss.Color("#1E3A8A")
	colorMuted  = lipgloss.Color("#94A3B8")
	colorAccent = lipgloss.Color("#3B82F6")
)

// Renderer formats snapshots with lipgloss styles.
type Renderer struct {
	BarWidth int

	title    lipgloss.Style
	active   lipgloss.Style
	inactive lipgloss.Style
	bar      lipgloss.Style
	muted    lipgloss.Style
	big      lipgloss.Style
}

// NewRenderer returns a renderer with the default palette.
func NewRenderer() *Renderer {
	return &Renderer{
		BarWidth: defaultBarWidth,
		title:    lipgloss.NewStyle().Bold(true).Foreground(colorActive),
		active:   lipgloss.NewStyle().Bold(true).Foreground(colorActive).Padding(0, 1),
		inactive: lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1),
		bar:      lipgloss.NewStyle().Foreground(colorAccent),
		muted:    lipgloss.NewStyle().Foreground(colorMuted),
		big:      lipgloss.NewStyle().Bold(true).Foreground(colorActive).Padding(0, 2),
	}
}

// Render returns the full frame for snapshot.
func (renderer *Renderer) Render(snapshot breath.Snapshot) string {
	switch {
	case snapshot.Countdown.Active:
		return renderer.countdown(snapshot)
	case snapshot.HasStarted:
		return renderer.session(snapshot)
	case snapshot.Completed:
		return renderer.title.Render(fmt.Sprintf("Session complete: %d of %d cycles", snapshot.CycleIndex, snapshot.TotalCycles))
	default:
		return renderer.muted.Render(fmt.Sprintf("Ready: %d cycles, %s total", snapshot.TotalCycles, breath.FormatClock(snapshot.TotalSession)))
	}
}

// Summary is a one-line status used by the tray and window titles.
func Summary(snapshot breath.Snapshot) string {
	switch {
	case snapshot.Countdown.Active:
		return fmt.Sprintf("starting in %d", snapshot.Countdown.SecondsLeft)
	case snapshot.Paused():
		return fmt.Sprintf("paused, %s left", snapshot.FormattedTimeLeft)
	case snapshot.HasStarted:
		return fmt.Sprintf("%s %ds, cycle %d/%d", snapshot.CurrentPhase.Label(), snapshot.SecondsLeftInPhase(), snapshot.CycleIndex+1, snapshot.TotalCycles)
	case snapshot.Completed:
		return "complete"
	default:
		return "ready"
	}
}

// ProgressBar draws progress in [0,1] as a bar of width cells.
func ProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (renderer *Renderer) countdown(snapshot breath.Snapshot) string {
	return lipgloss.JoinVertical(lipgloss.Center,
		renderer.big.Render(fmt.Sprintf("%d", snapshot.Countdown.SecondsLeft)),
		renderer.muted.Render("Empty your lungs and get ready to inhale..."),
	)
}

func (renderer *Renderer) session(snapshot breath.Snapshot) string {
	phases := make([]string, 0, len(model.Phases))
	for _, phase := range model.Phases {
		if phase == snapshot.CurrentPhase {
			phases = append(phases, renderer.active.Render(phase.Label()))
			continue
		}
		phases = append(phases, renderer.inactive.Render(phase.Label()))
	}

	status := fmt.Sprintf("%ds left", snapshot.SecondsLeftInPhase())
	if snapshot.Paused() {
		status += " (paused)"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, phases...),
		renderer.bar.Render(ProgressBar(snapshot.Progress, renderer.BarWidth)),
		renderer.muted.Render(status),
		fmt.Sprintf("Cycle: %d of %d", snapshot.CycleIndex+1, snapshot.TotalCycles),
		renderer.title.Render(snapshot.FormattedTimeLeft),
	)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is the loading indicator shown while a reply is pending.
type Spinner struct {
	spinner spinner.Model

	style     SpinnerStyle
	message   string
	startTime time.Time

	isActive  bool
	showTimer bool
}

// SpinnerStyle defines the visual style for the spinner.
type SpinnerStyle int

const (
	SpinnerLine  SpinnerStyle = iota // Line rotation
	SpinnerDots                      // Classic dots
	SpinnerPulse                     // Pulsing circle
)

// SpinnerStyleFor maps a config name ("pulse", "dots", "line") to a style.
// Unknown names get the pulse.
func SpinnerStyleFor(name string) SpinnerStyle {
	switch name {
	case "dots":
		return SpinnerDots
	case "line":
		return SpinnerLine
	}
	return SpinnerPulse
}

// NewSpinner creates an inactive spinner with ASCII frames.
func NewSpinner() Spinner {
	s := Spinner{
		spinner:   spinner.New(),
		message:   "Consulting the oracle",
		showTimer: true,
	}
	s.SetStyle(SpinnerPulse)
	return s
}

// SetStyle changes the spinner animation style.
func (s *Spinner) SetStyle(style SpinnerStyle) {
	s.style = style

	switch style {
	case SpinnerDots:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
			FPS:    time.Second / 6,
		}
	case SpinnerPulse:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"( )", "(o)", "(O)", "(o)"},
			FPS:    time.Second / 8,
		}
	default:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"|", "/", "-", "\\"},
			FPS:    time.Second / 10,
		}
	}
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and returns its first tick.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner. Pending ticks are ignored by Update.
func (s *Spinner) Stop() {
	s.isActive = false
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update advances the animation while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner, or "" when inactive.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	result := lipgloss.NewStyle().Foreground(styles.Purple).Render(s.spinner.View()) +
		" " +
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(s.message+"...")

	if s.showTimer && !s.startTime.IsZero() {
		result += lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(time.Since(s.startTime)) + ")")
	}
	return result
}

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

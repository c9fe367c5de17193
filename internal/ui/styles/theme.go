// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Widget
	Widget      lipgloss.Style
	Title       lipgloss.Style
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Query       lipgloss.Style
	Response    lipgloss.Style
	Error       lipgloss.Style
	Loading     lipgloss.Style
	Hint        lipgloss.Style

	// Backdrop glyph styles, densest first
	BackdropNear lipgloss.Style
	BackdropMid  lipgloss.Style
	BackdropFar  lipgloss.Style
}

// NewTheme creates a theme. name is ThemeDark or ThemeLight; anything else
// uses the detected terminal background.
func NewTheme(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	isDark := termenv.HasDarkBackground()
	switch name {
	case ThemeDark:
		isDark = true
	case ThemeLight:
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Widget = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Background(Surface).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Prompt = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Query = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Response = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Error = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.Loading = lipgloss.NewStyle().Foreground(Purple)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)

	t.BackdropNear = lipgloss.NewStyle().Foreground(BackdropNear)
	t.BackdropMid = lipgloss.NewStyle().Foreground(BackdropMid)
	t.BackdropFar = lipgloss.NewStyle().Foreground(BackdropFar)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// WidgetWidth returns the outer width of the chat widget for the current
// terminal width.
func (t *Theme) WidgetWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-2, 10)
	case LayoutMedium:
		return t.Width * 3 / 4
	default:
		return min(t.Width/2, 90)
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)

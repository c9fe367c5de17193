// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// PromptStyle renders the REPL prompt.
	PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	// TitleStyle is used for banners.
	TitleStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)

	// LabelStyle is used for field labels.
	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

	// DimStyle is used for hints and timings.
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// render applies style only when colors are enabled.
func render(style lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}

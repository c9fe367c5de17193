// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/oracle-tui/internal/ui/styles"
	"github.com/jeranaias/oracle-tui/internal/util"
)

// View renders the widget box.
func (m Model) View() string {
	inner := m.innerWidth()
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Ask the Oracle"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Overlay).Render(strings.Repeat("-", inner)))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
	case m.display != "":
		if m.exchange.Query != "" {
			b.WriteString(m.theme.Query.Render(util.TruncateWidth(util.OneLine(m.exchange.Query), inner)))
			b.WriteString("\n")
		}
		b.WriteString(m.viewport.View())
	default:
		b.WriteString(m.theme.Hint.Render(" "))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render(m.hint()))

	return m.theme.Widget.Width(max(m.width-2, 12)).Render(b.String())
}

func (m Model) hint() string {
	parts := []string{"enter ask"}
	if m.Revealing() {
		shown, total := m.reveal.Progress()
		parts = append(parts, fmt.Sprintf("esc skip %d/%d", shown, total))
	}
	if m.viewport.TotalLineCount() > m.viewport.Height {
		parts = append(parts, "pgup/pgdn scroll")
	}
	parts = append(parts, "ctrl+c quit")
	return strings.Join(parts, " | ")
}

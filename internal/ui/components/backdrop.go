// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/oracle-tui/internal/ui/styles"
	"github.com/jeranaias/oracle-tui/internal/util"
)

// =============================================================================
// BACKDROP
// =============================================================================

// glyph density classes
const (
	densityBlank = iota
	densityFar
	densityMid
	densityNear
)

// Backdrop colors scene raster lines and composites a foreground box on top.
type Backdrop struct {
	theme *styles.Theme
	// Plain disables coloring, for tests and dumb terminals.
	Plain bool
}

// NewBackdrop creates a backdrop renderer for theme.
func NewBackdrop(theme *styles.Theme) Backdrop {
	return Backdrop{theme: theme}
}

func density(r rune) int {
	switch r {
	case ' ':
		return densityBlank
	case '.', ',', '-', '~':
		return densityFar
	case ':', ';', '=', '!', '+':
		return densityMid
	default:
		return densityNear
	}
}

func (b Backdrop) styleFor(class int) lipgloss.Style {
	switch class {
	case densityNear:
		return b.theme.BackdropNear
	case densityMid:
		return b.theme.BackdropMid
	default:
		return b.theme.BackdropFar
	}
}

// Colorize styles one raster line, grouping runs of equal density.
func (b Backdrop) Colorize(line string) string {
	if b.Plain || b.theme == nil || line == "" {
		return line
	}
	var out strings.Builder
	runes := []rune(line)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && density(runes[i]) == density(runes[start]) {
			continue
		}
		seg := string(runes[start:i])
		if c := density(runes[start]); c == densityBlank {
			out.WriteString(seg)
		} else {
			out.WriteString(b.styleFor(c).Render(seg))
		}
		start = i
	}
	return out.String()
}

// Compose draws fg centered over the backdrop lines bg and returns exactly
// height lines of width cells. bg lines are plain single-width glyphs; fg
// may contain ANSI styling.
func (b Backdrop) Compose(bg []string, fg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	fgLines := strings.Split(fg, "\n")
	if fg == "" {
		fgLines = nil
	}
	fgW := 0
	for _, l := range fgLines {
		fgW = max(fgW, lipgloss.Width(l))
	}
	fgW = min(fgW, width)
	x := (width - fgW) / 2
	y := max(0, (height-len(fgLines))/2)

	out := make([]string, height)
	for row := 0; row < height; row++ {
		line := ""
		if row < len(bg) {
			line = bg[row]
		}
		line = util.PadWidth(line, width)

		k := row - y
		if k < 0 || k >= len(fgLines) {
			out[row] = b.Colorize(line)
			continue
		}
		runes := []rune(line)
		mid := fgLines[k]
		if lipgloss.Width(mid) > fgW {
			mid = lipgloss.NewStyle().MaxWidth(fgW).Render(mid)
		}
		pad := fgW - lipgloss.Width(mid)
		out[row] = b.Colorize(string(runes[:x])) +
			mid + strings.Repeat(" ", pad) +
			b.Colorize(string(runes[x+fgW:]))
	}
	return strings.Join(out, "\n")
}

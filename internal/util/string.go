// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: width-aware helpers. Terminal cells, not runes or bytes, are the
// unit everything on screen is measured in.

// TruncateWidth truncates s to at most maxWidth display cells.
// If the string is truncated and there is room, "..." is appended.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads or truncates s so it occupies exactly width cells.
func PadWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "")
	if w := runewidth.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// OneLine collapses newlines and runs of whitespace so s fits a log field.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

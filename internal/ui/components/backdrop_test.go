// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

func TestBackdropCompose_Dimensions(t *testing.T) {
	b := Backdrop{Plain: true}
	bg := []string{"..........", "::::::::::", "##########", "          "}

	out := b.Compose(bg, "ab\ncd", 10, 4)
	lines := strings.Split(out, "\n")

	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 10 {
			t.Errorf("line %d width = %d, want 10", i, w)
		}
	}
	if lines[1] != "::::ab::::" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "####cd####" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[0] != ".........." {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestBackdropCompose_ShortBackground(t *testing.T) {
	b := Backdrop{Plain: true}
	out := b.Compose([]string{"xx"}, "", 5, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "xx   " || lines[2] != "     " {
		t.Errorf("lines = %q", lines)
	}
}

func TestBackdropCompose_ForegroundWiderThanScreen(t *testing.T) {
	b := Backdrop{Plain: true}
	out := b.Compose([]string{"....."}, "abcdefgh", 5, 1)
	if w := lipgloss.Width(out); w != 5 {
		t.Errorf("width = %d, want 5 (%q)", w, out)
	}
}

func TestBackdropCompose_Empty(t *testing.T) {
	if got := (Backdrop{Plain: true}).Compose(nil, "x", 0, 0); got != "" {
		t.Errorf("Compose with zero size = %q", got)
	}
}

func TestBackdropColorize_KeepsText(t *testing.T) {
	b := NewBackdrop(styles.NewTheme(styles.ThemeDark))
	line := "  ..::##  "
	got := b.Colorize(line)
	if lipgloss.Width(got) != len(line) {
		t.Errorf("colorized width = %d, want %d", lipgloss.Width(got), len(line))
	}
}

func TestDensity(t *testing.T) {
	cases := map[rune]int{' ': densityBlank, '.': densityFar, '=': densityMid, '@': densityNear, '#': densityNear}
	for r, want := range cases {
		if got := density(r); got != want {
			t.Errorf("density(%q) = %d, want %d", r, got, want)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultDelay is the pause between two revealed units.
const DefaultDelay = 20 * time.Millisecond

// =============================================================================
// UNITS
// =============================================================================

// Units splits text into grapheme clusters.
func Units(text string) []string {
	if text == "" {
		return nil
	}
	units := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		units = append(units, g.Str())
	}
	return units
}

// =============================================================================
// TASK
// =============================================================================

// Task is a cancellable cursor over the units of one reply.
type Task struct {
	mu        sync.Mutex
	units     []string
	shown     strings.Builder
	pos       int
	cancelled bool
}

// NewTask creates a task for text. Nothing is shown until Next is called.
func NewTask(text string) *Task {
	return &Task{units: Units(text)}
}

// Next reveals one more unit and returns the text shown so far.
// done is true once every unit is visible or the task was cancelled.
func (t *Task) Next() (shown string, done bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled || t.pos >= len(t.units) {
		return t.shown.String(), true
	}
	u := t.units[t.pos]
	t.shown.WriteString(u)
	t.pos++
	return t.shown.String(), t.pos >= len(t.units)
}

// Skip reveals the remaining units at once.
func (t *Task) Skip() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cancelled {
		for ; t.pos < len(t.units); t.pos++ {
			t.shown.WriteString(t.units[t.pos])
		}
	}
	return t.shown.String()
}

// Cancel stops the task. Later calls to Next report done without progress.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done reports whether nothing is left to reveal.
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled || t.pos >= len(t.units)
}

// Progress returns revealed and total unit counts.
func (t *Task) Progress() (revealed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos, len(t.units)
}

// =============================================================================
// RUN
// =============================================================================

// Run calls emit with each unit of text, pausing delay between units.
// It returns ctx.Err() if ctx is cancelled before the last unit.
// A non-positive delay emits everything without pausing.
func Run(ctx context.Context, text string, delay time.Duration, emit func(unit string)) error {
	units := Units(text)
	if delay <= 0 {
		for _, u := range units {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(u)
		}
		return nil
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for i, u := range units {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(u)
	}
	return nil
}

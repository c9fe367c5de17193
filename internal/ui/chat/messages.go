// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of the request with sequence number Seq.
type ReplyMsg struct {
	Seq      uint64
	Reply    chatapi.Reply
	Err      error
	Duration time.Duration
}

// RevealTickMsg asks the widget to reveal the next unit of reply Seq.
type RevealTickMsg struct {
	Seq uint64
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd performs the request off the event loop.
func sendCmd(ctx context.Context, sender Sender, seq uint64, text string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		reply, err := sender.Send(ctx, text)
		return ReplyMsg{Seq: seq, Reply: reply, Err: err, Duration: time.Since(start)}
	}
}

// revealTick schedules the next reveal step.
func revealTick(seq uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return RevealTickMsg{Seq: seq}
	})
}

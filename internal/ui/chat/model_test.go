// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	ctxs  []context.Context
	reply chatapi.Reply
	err   error
}

func (f *fakeSender) Send(ctx context.Context, message string) (chatapi.Reply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, message)
	f.ctxs = append(f.ctxs, ctx)
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestModel(sender Sender, opts Options) Model {
	opts.Logger = log.New(io.Discard, "", 0)
	m := New(sender, styles.NewTheme(styles.ThemeDark), opts)
	m.SetSize(60, 20)
	return m
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// collectReply runs cmd (and any batch it returns) and returns the ReplyMsg
// it produced.
func collectReply(t *testing.T, cmd tea.Cmd) ReplyMsg {
	t.Helper()
	require.NotNil(t, cmd)

	out := make(chan tea.Msg, 16)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, inner := range batch {
					run(inner)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-out:
			if r, ok := msg.(ReplyMsg); ok {
				return r
			}
		case <-deadline:
			t.Fatal("no ReplyMsg produced")
		}
	}
}

// submit types text, presses enter and feeds the reply back.
func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.SetInput(text)
	m, cmd := m.Update(enter)
	reply := collectReply(t, cmd)
	m, cmd = m.Update(reply)
	return drainReveal(m, cmd)
}

// drainReveal delivers reveal ticks without waiting for the timer.
func drainReveal(m Model, cmd tea.Cmd) Model {
	for i := 0; cmd != nil && i < 10000; i++ {
		m, cmd = m.Update(RevealTickMsg{Seq: m.Seq()})
	}
	return m
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_BlankInputIsNoOp(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n "} {
		sender := &fakeSender{}
		m := newTestModel(sender, Options{})
		m.SetInput(text)

		m, cmd := m.Update(enter)

		assert.Nil(t, cmd)
		assert.Equal(t, 0, sender.callCount())
		assert.False(t, m.Loading())
		assert.Equal(t, uint64(0), m.Seq())
		assert.Equal(t, "", m.Display())
		assert.Equal(t, text, m.InputValue())
	}
}

func TestSubmit_ClearsInputAndShowsLoading(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "yes"}}
	m := newTestModel(sender, Options{})
	m.SetInput("  will it rain?  ")

	m, cmd := m.Update(enter)

	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Equal(t, "", m.InputValue())
	assert.Equal(t, "will it rain?", m.Exchange().Query)
	assert.Equal(t, uint64(1), m.Seq())
	assert.Contains(t, m.View(), "Consulting the oracle")

	collectReply(t, cmd)
	assert.Equal(t, []string{"will it rain?"}, sender.calls)
}

func TestLoadingIndicatorOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantText  string
		wantTimer bool
	}{
		{"defaults", Options{}, "Consulting the oracle", false},
		{"custom text with timer", Options{LoadingText: "Gazing", Spinner: "dots", ShowTimer: true}, "Gazing", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeSender{}, tt.opts)
			m.SetInput("q")
			m, cmd := m.Update(enter)

			view := m.View()
			assert.Contains(t, view, tt.wantText)
			assert.Equal(t, tt.wantTimer, strings.Contains(view, "(0s)"))
			collectReply(t, cmd)
		})
	}
}

func TestSubmit_CtrlS(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "ok"}}
	m := newTestModel(sender, Options{})
	m.SetInput("hi")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	collectReply(t, cmd)
	assert.True(t, m.Loading())
	assert.Equal(t, 1, sender.callCount())
}

// =============================================================================
// REPLIES
// =============================================================================

func TestReply_Success(t *testing.T) {
	for _, revealOn := range []bool{false, true} {
		t.Run(fmt.Sprintf("reveal=%t", revealOn), func(t *testing.T) {
			sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "hello"}}
			m := newTestModel(sender, Options{Reveal: revealOn})

			m = submit(t, m, "greet me")

			assert.Equal(t, "hello", m.Display())
			assert.False(t, m.Loading())
			assert.False(t, m.IsError())
			assert.False(t, m.Revealing())
			assert.Equal(t, "hello", m.Exchange().Response)
			assert.NotContains(t, m.View(), "Consulting the oracle")
		})
	}
}

func TestReply_ApplicationError(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: false, Error: "bad input"}}
	m := newTestModel(sender, Options{Reveal: true})

	m = submit(t, m, "x")

	assert.Equal(t, "Error: bad input", m.Display())
	assert.True(t, m.IsError())
	assert.False(t, m.Loading())
	assert.Equal(t, "Error: bad input", m.Exchange().Err)
}

func TestReply_ApplicationErrorWithoutMessage(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: false}}
	m := newTestModel(sender, Options{})

	m = submit(t, m, "x")

	assert.Equal(t, "Error: Unknown error", m.Display())
}

func TestReply_NetworkFailure(t *testing.T) {
	sender := &fakeSender{err: fmt.Errorf("%w: dial tcp: refused", chatapi.ErrConnection)}
	m := newTestModel(sender, Options{Reveal: true})

	m = submit(t, m, "x")

	assert.Equal(t, "Error: Could not connect to server", m.Display())
	assert.True(t, m.IsError())
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "Error: Could not connect to server")
}

func TestReply_AnyErrorIsConnectionFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("boom")}
	m := newTestModel(sender, Options{})

	m = submit(t, m, "x")

	assert.Equal(t, "Error: Could not connect to server", m.Display())
}

// =============================================================================
// SEQUENCING
// =============================================================================

func TestStaleReplyIgnored(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModel(sender, Options{})

	m.SetInput("first")
	m, _ = m.Update(enter)
	m.SetInput("second")
	m, _ = m.Update(enter)
	require.Equal(t, uint64(2), m.Seq())

	m, cmd := m.Update(ReplyMsg{Seq: 1, Reply: chatapi.Reply{Success: true, Response: "old"}})
	assert.Nil(t, cmd)
	assert.True(t, m.Loading(), "stale reply must not hide loading")
	assert.Equal(t, "", m.Display())

	m, _ = m.Update(ReplyMsg{Seq: 2, Reply: chatapi.Reply{Success: true, Response: "new"}})
	assert.Equal(t, "new", m.Display())
	assert.False(t, m.Loading())
}

func TestNewSubmitCancelsInFlightRequest(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "ok"}}
	m := newTestModel(sender, Options{})

	m.SetInput("first")
	m, cmd1 := m.Update(enter)
	collectReply(t, cmd1)
	m.SetInput("second")
	m, cmd2 := m.Update(enter)
	collectReply(t, cmd2)

	require.Len(t, sender.ctxs, 2)
	assert.ErrorIs(t, sender.ctxs[0].Err(), context.Canceled)
	assert.NoError(t, sender.ctxs[1].Err())
}

func TestNewSubmitCancelsReveal(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "a long prophecy"}}
	m := newTestModel(sender, Options{Reveal: true, RevealDelay: time.Millisecond})

	m.SetInput("q1")
	m, cmd := m.Update(enter)
	m, cmd = m.Update(collectReply(t, cmd))
	require.NotNil(t, cmd)
	require.True(t, m.Revealing())
	partial := m.Display()

	m.SetInput("q2")
	m, _ = m.Update(enter)
	assert.False(t, m.Revealing())

	// A tick left over from the first reply changes nothing.
	m, cmd = m.Update(RevealTickMsg{Seq: 1})
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.Display())
	assert.NotEqual(t, "a long prophecy", partial)
}

// =============================================================================
// REVEAL
// =============================================================================

func TestReveal_OneUnitPerTick(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "abc"}}
	m := newTestModel(sender, Options{Reveal: true})

	m.SetInput("q")
	m, cmd := m.Update(enter)
	m, cmd = m.Update(collectReply(t, cmd))
	assert.Equal(t, "a", m.Display())
	require.NotNil(t, cmd)

	m, cmd = m.Update(RevealTickMsg{Seq: m.Seq()})
	assert.Equal(t, "ab", m.Display())
	require.NotNil(t, cmd)

	m, cmd = m.Update(RevealTickMsg{Seq: m.Seq()})
	assert.Equal(t, "abc", m.Display())
	assert.Nil(t, cmd)
	assert.False(t, m.Revealing())
}

func TestReveal_HintShowsProgress(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "abc"}}
	m := newTestModel(sender, Options{Reveal: true})

	m.SetInput("q")
	m, cmd := m.Update(enter)
	m, _ = m.Update(collectReply(t, cmd))

	assert.Contains(t, m.View(), "esc skip 1/3")
	m, _ = m.Update(RevealTickMsg{Seq: m.Seq()})
	assert.Contains(t, m.View(), "esc skip 2/3")
}

func TestReveal_EscSkips(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "the answer is forty-two"}}
	m := newTestModel(sender, Options{Reveal: true})

	m.SetInput("q")
	m, cmd := m.Update(enter)
	m, _ = m.Update(collectReply(t, cmd))
	require.True(t, m.Revealing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, "the answer is forty-two", m.Display())
	assert.False(t, m.Revealing())
}

// =============================================================================
// RENDERING
// =============================================================================

func TestMarkdownRendering(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "**Doomed**"}}
	m := newTestModel(sender, Options{Markdown: true})

	m = submit(t, m, "q")

	assert.Contains(t, m.Display(), "Doomed")
	assert.NotContains(t, m.Display(), "**")
	assert.Equal(t, "**Doomed**", m.Exchange().Response)
}

func TestView_ShowsQueryAndHint(t *testing.T) {
	sender := &fakeSender{reply: chatapi.Reply{Success: true, Response: "Tuesday"}}
	m := newTestModel(sender, Options{})

	m = submit(t, m, "when?")
	view := m.View()

	assert.Contains(t, view, "Ask the Oracle")
	assert.Contains(t, view, "when?")
	assert.Contains(t, view, "Tuesday")
	assert.Contains(t, view, "enter ask")
	assert.False(t, strings.Contains(view, "esc skip"))
}

func TestClose_CancelsPending(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModel(sender, Options{})
	m.SetInput("q")
	m, cmd := m.Update(enter)
	collectReply(t, cmd)

	var logs strings.Builder
	m.logger = log.New(&logs, "", 0)

	m.Close()
	m.Close()

	assert.ErrorIs(t, sender.ctxs[0].Err(), context.Canceled)
	assert.False(t, m.cancelMgr.pending())
	assert.Equal(t, 1, strings.Count(logs.String(), "CHAT_CANCELLED | seq=1"))
}

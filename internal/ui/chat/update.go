// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/reveal"
)

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the widget.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m, m.handleReply(msg)

	case RevealTickMsg:
		return m, m.handleRevealTick(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.Skip):
		if m.Revealing() {
			m.reveal.Skip()
			m.finishReveal()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit starts a request for the trimmed input. Blank input is a no-op.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	// Supersede whatever is in flight.
	m.cancelMgr.clear()
	if m.reveal != nil {
		m.reveal.Cancel()
		m.reveal = nil
	}

	m.input.Reset()
	m.seq++
	m.exchange = Exchange{Seq: m.seq, Query: text}
	m.loading = true
	m.setDisplay("", false)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	m.logger.Printf("CHAT_SUBMIT | seq=%d chars=%d", m.seq, len([]rune(text)))
	return tea.Batch(m.spinner.Start(), sendCmd(ctx, m.sender, m.seq, text))
}

// =============================================================================
// REPLIES
// =============================================================================

func (m *Model) handleReply(msg ReplyMsg) tea.Cmd {
	if msg.Seq != m.seq {
		m.logger.Printf("STALE_RESPONSE | seq=%d latest=%d", msg.Seq, m.seq)
		return nil
	}

	m.cancelMgr.clear()
	m.loading = false
	m.spinner.Stop()

	text, isErr := chatapi.Outcome(msg.Reply, msg.Err)
	if msg.Err != nil {
		m.logger.Printf("CHAT_FAILED | seq=%d duration=%dms error=%v", msg.Seq, msg.Duration.Milliseconds(), msg.Err)
	} else {
		m.logger.Printf("CHAT_REPLY | seq=%d success=%t duration=%dms", msg.Seq, msg.Reply.Success, msg.Duration.Milliseconds())
	}

	if isErr {
		m.exchange.Err = text
		m.setDisplay(text, true)
		return nil
	}
	m.exchange.Response = text

	if !m.opts.Reveal || text == "" {
		m.setDisplay(m.renderFinal(text), false)
		return nil
	}

	m.reveal = reveal.NewTask(text)
	m.setDisplay("", false)
	return m.handleRevealTick(RevealTickMsg{Seq: m.seq})
}

func (m *Model) handleRevealTick(msg RevealTickMsg) tea.Cmd {
	if msg.Seq != m.seq || m.reveal == nil || m.reveal.Cancelled() {
		return nil
	}
	shown, done := m.reveal.Next()
	if done {
		m.finishReveal()
		return nil
	}
	m.setDisplay(shown, false)
	return revealTick(m.seq, m.opts.RevealDelay)
}

// finishReveal shows the full reply and drops the reveal task.
func (m *Model) finishReveal() {
	m.reveal = nil
	m.setDisplay(m.renderFinal(m.exchange.Response), false)
}

// renderFinal applies markdown rendering when enabled.
func (m *Model) renderFinal(text string) string {
	if !m.opts.Markdown || text == "" {
		return text
	}
	r := m.markdownRenderer()
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		m.logger.Printf("MARKDOWN_ERROR | error=%v", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) markdownRenderer() *glamour.TermRenderer {
	width := m.innerWidth()
	if m.renderer != nil && m.rendererWidth == width {
		return m.renderer
	}
	style := glamour.WithStandardStyle("dark")
	if !m.theme.IsDark {
		style = glamour.WithStandardStyle("light")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		m.logger.Printf("MARKDOWN_ERROR | error=%v", err)
		return nil
	}
	m.renderer, m.rendererWidth = r, width
	return r
}

// =============================================================================
// LAYOUT
// =============================================================================

// SetSize sets the outer width of the widget and the available height.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	inner := m.innerWidth()
	m.input.Width = max(inner-lenPrompt(m.input.Prompt)-1, 1)
	m.viewport.Width = inner
	m.setDisplay(m.display, m.isErr)
}

// innerWidth is the content width inside the widget border and padding.
func (m *Model) innerWidth() int {
	return max(m.width-4, 10)
}

// setDisplay replaces the response text and refits the viewport.
func (m *Model) setDisplay(text string, isErr bool) {
	m.display, m.isErr = text, isErr
	if text == "" {
		m.viewport.SetContent("")
		m.viewport.Height = 1
		return
	}
	style := m.theme.Response
	if isErr {
		style = m.theme.Error
	}
	body := style.Width(m.innerWidth()).Render(text)
	lines := strings.Count(body, "\n") + 1
	m.viewport.Height = min(lines, MaxResponseLines)
	m.viewport.SetContent(body)
	if m.reveal != nil {
		m.viewport.GotoBottom()
	}
}

func lenPrompt(p string) int { return len([]rune(p)) }

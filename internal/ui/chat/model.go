// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/config"
	"github.com/jeranaias/oracle-tui/internal/reveal"
	"github.com/jeranaias/oracle-tui/internal/ui/components"
	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

// =============================================================================
// TYPES
// =============================================================================

// Sender posts one message to the chat backend. *chatapi.Client implements it.
type Sender interface {
	Send(ctx context.Context, message string) (chatapi.Reply, error)
}

// Exchange is the current query and its outcome. It is replaced on every
// submission and never persisted.
type Exchange struct {
	Seq      uint64
	Query    string
	Response string
	Err      string
}

// Options tune the widget.
type Options struct {
	Reveal      bool
	RevealDelay time.Duration
	Markdown    bool
	// LoadingText replaces the spinner message when set.
	LoadingText string
	// Spinner names the spinner style; see components.SpinnerStyleFor.
	Spinner   string
	ShowTimer bool
	Logger    *log.Logger
}

// OptionsFromConfig reads the [ui] section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Reveal:      cfg.UI.Reveal,
		RevealDelay: cfg.RevealDelay(),
		Markdown:    cfg.UI.RenderMarkdown,
		LoadingText: cfg.UI.LoadingText,
		Spinner:     cfg.UI.Spinner,
		ShowTimer:   cfg.UI.ShowTimer,
	}
}

// MaxResponseLines bounds the height of the response area.
const MaxResponseLines = 10

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat widget.
type Model struct {
	sender Sender
	theme  *styles.Theme
	keys   KeyMap
	opts   Options
	logger *log.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  components.Spinner

	seq      uint64
	exchange Exchange
	loading  bool
	reveal   *reveal.Task

	display string
	isErr   bool

	renderer      *glamour.TermRenderer
	rendererWidth int

	cancelMgr *cancelManager

	width  int
	height int
}

// New creates a focused widget.
func New(sender Sender, theme *styles.Theme, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = reveal.DefaultDelay
	}

	in := textinput.New()
	in.Placeholder = "Ask the oracle anything..."
	in.Prompt = "> "
	in.CharLimit = 4000
	in.PromptStyle = theme.Prompt
	in.PlaceholderStyle = theme.Placeholder
	in.Focus()

	vp := viewport.New(40, 1)

	sp := components.NewSpinner()
	sp.SetStyle(components.SpinnerStyleFor(opts.Spinner))
	sp.SetShowTimer(opts.ShowTimer)
	if opts.LoadingText != "" {
		sp.SetMessage(opts.LoadingText)
	}

	return Model{
		sender:    sender,
		theme:     theme,
		keys:      DefaultKeyMap(),
		opts:      opts,
		logger:    opts.Logger,
		input:     in,
		viewport:  vp,
		spinner:   sp,
		cancelMgr: newCancelManager(),
	}
}

// Seq returns the sequence number of the latest submission.
func (m Model) Seq() uint64 { return m.seq }

// Exchange returns the current exchange.
func (m Model) Exchange() Exchange { return m.exchange }

// Loading reports whether the loading indicator is shown.
func (m Model) Loading() bool { return m.loading }

// Display returns the text in the response area, without styling.
func (m Model) Display() string { return m.display }

// IsError reports whether Display is an error message.
func (m Model) IsError() bool { return m.isErr }

// Revealing reports whether a reveal is in progress.
func (m Model) Revealing() bool { return m.reveal != nil && !m.reveal.Done() }

// InputValue returns the current input text.
func (m Model) InputValue() string { return m.input.Value() }

// SetInput replaces the input text.
func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// Close cancels any in-flight request.
func (m Model) Close() {
	if m.cancelMgr.pending() {
		m.logger.Printf("CHAT_CANCELLED | seq=%d", m.seq)
	}
	m.cancelMgr.clear()
}

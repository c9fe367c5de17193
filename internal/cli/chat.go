// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/reveal"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one edited line. *liner.State implements it.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// ChatCLI provides line editing and history for the REPL. History lives
// only as long as the session.
type ChatCLI struct {
	line *liner.State
}

// NewChatCLI creates a line editor. Ctrl+C aborts the current prompt.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &ChatCLI{line: line}
}

// Prompt reads a line of input with the given prompt.
func (c *ChatCLI) Prompt(prompt string) (string, error) { return c.line.Prompt(prompt) }

// AppendHistory adds item to the session history.
func (c *ChatCLI) AppendHistory(item string) { c.line.AppendHistory(item) }

// Close restores the terminal.
func (c *ChatCLI) Close() error { return c.line.Close() }

// =============================================================================
// COMMAND
// =============================================================================

func newChatCommand(g *globalOptions) *cobra.Command {
	var typewriter bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Long: `Starts a REPL against the chat endpoint.

Commands: /help, /quit. Ctrl+C cancels a pending request; Ctrl+D exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if !IsTTY() {
				return errors.New("stdin is not a terminal; use 'oracle ask' for scripted input")
			}

			in := NewChatCLI()
			defer in.Close()

			s := &chatSession{
				sender:     newClient(cfg, g.logger(cmd.ErrOrStderr())),
				in:         in,
				out:        cmd.OutOrStdout(),
				typewriter: typewriter,
				delay:      cfg.RevealDelay(),
			}
			defer s.watchInterrupts()()
			return s.run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&typewriter, "typewriter", "t", false, "reveal answers one character at a time")
	return cmd
}

// =============================================================================
// SESSION
// =============================================================================

// chatSession is one REPL run.
type chatSession struct {
	sender     sender
	in         lineReader
	out        io.Writer
	typewriter bool
	delay      time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc

	asked int
}

// watchInterrupts cancels the pending request on SIGINT. While a prompt is
// active liner handles Ctrl+C itself.
func (s *chatSession) watchInterrupts() (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		for range sigChan {
			s.cancelPending()
		}
	}()
	return func() {
		signal.Stop(sigChan)
		close(sigChan)
	}
}

func (s *chatSession) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// run reads lines until /quit, Ctrl+D or Ctrl+C at the prompt.
func (s *chatSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, render(TitleStyle, "The oracle is listening.")+" "+render(DimStyle, "/help for commands"))

	for {
		input, err := s.in.Prompt("oracle> ")
		if err != nil {
			// liner.ErrPromptAborted, io.EOF and closed terminals all end the session.
			fmt.Fprintln(s.out)
			s.printSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		s.in.AppendHistory(input)

		switch strings.ToLower(input) {
		case "/quit", "/q", "exit", "quit":
			s.printSummary()
			return nil
		case "/help", "/h":
			fmt.Fprintln(s.out, render(DimStyle, "Type a question and press enter. /quit exits."))
			continue
		}

		s.ask(ctx, input)
	}
}

// ask sends one question and prints the outcome.
func (s *chatSession) ask(parent context.Context, question string) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer s.cancelPending()

	start := time.Now()
	reply, err := s.sender.Send(ctx, question)
	s.asked++

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(s.out, render(DimStyle, "[Cancelled]"))
		return
	}

	text, isErr := chatapi.Outcome(reply, err)
	if isErr {
		fmt.Fprintln(s.out, render(ErrorStyle, text))
		return
	}

	if s.typewriter {
		if rerr := reveal.Run(ctx, text, s.delay, func(u string) { fmt.Fprint(s.out, u) }); rerr != nil {
			fmt.Fprintln(s.out)
			return
		}
		fmt.Fprintln(s.out)
	} else {
		fmt.Fprintln(s.out, text)
	}
	fmt.Fprintln(s.out, render(DimStyle, fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond))))
}

func (s *chatSession) printSummary() {
	fmt.Fprintln(s.out, render(DimStyle, fmt.Sprintf("%d question(s) asked. Farewell.", s.asked)))
}

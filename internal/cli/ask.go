// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/reveal"
)

// askOptions are the flags of the ask command.
type askOptions struct {
	typewriter bool
	jsonOut    bool
	markdown   bool
	delay      time.Duration
}

func newAskCommand(g *globalOptions) *cobra.Command {
	o := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Example: `  oracle ask "Will it rain tomorrow?"
  oracle ask --typewriter "What is my destiny?"
  oracle ask --json "Should I deploy on Friday?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("delay") {
				o.delay = cfg.RevealDelay()
			}
			if !cmd.Flags().Changed("markdown") {
				o.markdown = cfg.UI.RenderMarkdown
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			client := newClient(cfg, g.logger(cmd.ErrOrStderr()))
			return runAsk(ctx, client, strings.Join(args, " "), o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&o.typewriter, "typewriter", "t", false, "reveal the answer one character at a time")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "print the raw endpoint reply")
	cmd.Flags().BoolVar(&o.markdown, "markdown", false, "render the answer as markdown when stdout is a terminal")
	cmd.Flags().DurationVar(&o.delay, "delay", reveal.DefaultDelay, "pause between revealed characters")
	return cmd
}

// runAsk sends one question and writes the answer to out.
func runAsk(ctx context.Context, s sender, question string, o *askOptions, out io.Writer) error {
	reply, err := s.Send(ctx, question)
	if errors.Is(err, chatapi.ErrEmptyMessage) {
		return fmt.Errorf("question must not be blank: %w", err)
	}

	if o.jsonOut {
		if err != nil {
			return err
		}
		data, mErr := json.MarshalIndent(reply, "", "  ")
		if mErr != nil {
			return fmt.Errorf("failed to encode reply: %w", mErr)
		}
		if IsStdoutTTY() && ColorsEnabled() {
			data = []byte(highlightJSON(string(data)))
		}
		fmt.Fprintln(out, string(data))
		if !reply.Success {
			return ErrReplyFailed
		}
		return nil
	}

	text, isErr := chatapi.Outcome(reply, err)
	if isErr {
		// Print the widget's message, then return the cause for the exit code.
		fmt.Fprintln(out, text)
		if err != nil {
			return err
		}
		return ErrReplyFailed
	}

	if o.typewriter {
		if err := reveal.Run(ctx, text, o.delay, func(unit string) { fmt.Fprint(out, unit) }); err != nil {
			fmt.Fprintln(out)
			return err
		}
		fmt.Fprintln(out)
		return nil
	}

	if o.markdown && IsStdoutTTY() {
		fmt.Fprint(out, renderMarkdown(text, GetTerminalWidth()))
		return nil
	}
	fmt.Fprintln(out, text)
	return nil
}

// =============================================================================
// RENDERING
// =============================================================================

// renderMarkdown renders text with glamour, returning it unchanged on failure.
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// highlightJSON colors a JSON document for the terminal.
func highlightJSON(src string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return src
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}

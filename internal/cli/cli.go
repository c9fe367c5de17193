// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	endpoint   string
	assets     string
	verbose    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "oracle",
		Short: "Ask the oracle, over a field of floating eyes",
		Long: `oracle is a terminal chat widget.

Type a question, press enter, and the reply from the chat endpoint is
revealed over an animated 3D backdrop. Move the mouse and the eyes follow.

Run without arguments to start the full-screen interface.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lipgloss.SetColorProfile(GetColorProfile())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.oracle/config.toml)")
	pf.StringVar(&opts.endpoint, "endpoint", "", "chat endpoint URL")
	pf.StringVar(&opts.assets, "assets", "", `model source: "embedded", a directory, or an http(s) URL`)
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newAskCommand(opts),
		newChatCommand(opts),
		newConfigCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render(ErrorStyle, "Error: ")+err.Error())
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// CONFIG / LOGGING
// =============================================================================

// load reads the config file named by --config, or the default location,
// then applies flag overrides and validates the result.
func (o *globalOptions) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &configError{err: err}
	}

	if o.endpoint != "" {
		cfg.Chat.Endpoint = strings.TrimSpace(o.endpoint)
	}
	if o.assets != "" {
		cfg.Assets.Source = strings.TrimSpace(o.assets)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &configError{err: fmt.Errorf("invalid config: %w", err)}
	}
	return cfg, nil
}

// logger returns a stderr logger with --verbose, otherwise a silent one.
func (o *globalOptions) logger(stderr io.Writer) *log.Logger {
	if !o.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(stderr, "", log.LstdFlags)
}

// sender posts one message to the chat endpoint.
type sender interface {
	Send(ctx context.Context, message string) (chatapi.Reply, error)
}

// newClient builds the chat client for cfg.
func newClient(cfg *config.Config, logger *log.Logger) *chatapi.Client {
	return chatapi.NewClient(cfg.Chat.Endpoint).
		WithTimeout(cfg.ChatTimeout()).
		WithLogger(logger)
}

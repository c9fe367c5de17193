// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/oracle-tui/internal/server"
)

// serveOptions are the flags of serve-mock.
type serveOptions struct {
	addr    string
	rate    float64
	burst   int
	latency time.Duration
	echo    bool
}

func newServeCommand(g *globalOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "Serve a local stand-in for the chat endpoint",
		Long: `Serves POST /api/chat with canned one-word oracle answers, or echoes
the message back with --echo. Point the TUI at it with
--endpoint http://127.0.0.1:5000/api/chat (the default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.Config{
				Addr:          o.addr,
				RatePerSecond: o.rate,
				Burst:         o.burst,
				Latency:       o.latency,
				Logger:        log.New(cmd.ErrOrStderr(), "", log.LstdFlags),
			}
			if o.echo {
				cfg.Responder = server.EchoResponder
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, server.New(cfg))
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Float64Var(&o.rate, "rate", 5, "requests per second per client (0 disables limiting)")
	cmd.Flags().IntVar(&o.burst, "burst", 10, "rate limiter burst")
	cmd.Flags().DurationVar(&o.latency, "latency", 400*time.Millisecond, "delay before each reply")
	cmd.Flags().BoolVar(&o.echo, "echo", false, "echo the message instead of answering")
	return cmd
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *server.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

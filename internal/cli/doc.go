// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the oracle command line.
//
// # Commands
//
//   - oracle: full-screen TUI (default)
//   - ask: one question, answer on stdout
//   - chat: line-mode REPL with history
//   - config: show, path, init
//   - serve-mock: local stand-in for the chat endpoint
//
// Global flags --config, --endpoint and --assets override the loaded
// configuration; --verbose sends logs to stderr in line modes.
package cli

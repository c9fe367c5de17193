// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the oracle chat widget for the TUI.
//
// The widget is a single text input with a response area below it. On
// submit the trimmed query is posted through a Sender, a loading indicator
// is shown, and the reply (or an "Error: ..." line) replaces it. Successful
// replies can be revealed one character at a time.
//
// Every request carries a sequence number. Only the reply to the latest
// submission is shown; a newer submission cancels the in-flight request
// and any reveal still running.
//
// # Keys
//
//   - Enter, Ctrl+S - submit
//   - Esc           - show the rest of a reply at once
//   - PgUp/PgDn     - scroll long replies
package chat

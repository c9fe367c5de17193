// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal shows a reply one user-perceived character at a time.
//
// Text is split into grapheme clusters so that emoji sequences and letters
// with combining marks appear whole. A Task is a cursor over those units and
// is driven by the caller (the TUI advances it on tea.Tick); Run is the
// blocking equivalent used by the command-line typewriter output.
package reveal

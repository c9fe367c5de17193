// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across oracle.
//
// String Utilities:
//   - TruncateWidth: cell-width aware truncation with ellipsis
//   - PadWidth: pad a string to an exact cell width
//   - OneLine: collapse whitespace runs for log lines
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
package util

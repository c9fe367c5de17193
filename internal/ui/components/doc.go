// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the oracle TUI.

Spinner (spinner.go) - Animated loading indicator with an optional timer.

Backdrop (backdrop.go) - Colors scene raster lines by glyph density and
composites a foreground block over them. Compose always returns exactly the
requested number of lines, each exactly the requested width.
*/
package components

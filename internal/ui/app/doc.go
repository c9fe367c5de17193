// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level bubbletea model of the oracle TUI.
//
// It draws the ambient scene full-screen and composites the chat widget on
// top. The two share no state: window size, mouse and frame messages go to
// the scene, keys and replies go to the widget.
//
// # Message Flow
//
//	tea.WindowSizeMsg -> scene.Resize + chat.SetSize
//	tea.MouseMsg      -> scene.SetPointer
//	FrameMsg          -> scene.Step, next frame scheduled
//	AssetsLoadedMsg   -> clones spawned, singletons added, watcher started
//	AssetsChangedMsg  -> changed models reloaded in place
//	everything else   -> chat widget
package app

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/oracle-tui/internal/assets"
)

// =============================================================================
// MESSAGES
// =============================================================================

// FrameMsg advances the scene to Time.
type FrameMsg struct {
	Time time.Time
}

// AssetsLoadedMsg carries the startup load results, in config order.
type AssetsLoadedMsg struct {
	Results []assets.Result
}

// AssetsChangedMsg names models whose files changed on disk.
type AssetsChangedMsg struct {
	Names []string
}

// AssetsReloadedMsg carries the results of a hot reload.
type AssetsReloadedMsg struct {
	Results []assets.Result
}

// =============================================================================
// COMMANDS
// =============================================================================

// frameTick schedules the next frame.
func frameTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

// loadAssets loads every spec off the event loop.
func loadAssets(ctx context.Context, loader *assets.Loader, specs []assets.Spec) tea.Cmd {
	return func() tea.Msg {
		return AssetsLoadedMsg{Results: loader.LoadAll(ctx, specs)}
	}
}

// reloadAssets reloads the given specs off the event loop.
func reloadAssets(ctx context.Context, loader *assets.Loader, specs []assets.Spec) tea.Cmd {
	return func() tea.Msg {
		return AssetsReloadedMsg{Results: loader.LoadAll(ctx, specs)}
	}
}

// waitForChanges blocks until the watcher reports a batch. It returns nil
// once the watcher is closed.
func waitForChanges(changes <-chan []string) tea.Cmd {
	return func() tea.Msg {
		names, ok := <-changes
		if !ok {
			return nil
		}
		return AssetsChangedMsg{Names: names}
	}
}

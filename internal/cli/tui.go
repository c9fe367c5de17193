// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/oracle-tui/internal/config"
	"github.com/jeranaias/oracle-tui/internal/ui/app"
)

// runTUI starts the full-screen interface. Logs go to cfg.UI.LogFile while
// the program owns the terminal.
func runTUI(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.UI.LogFile), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.UI.LogFile, "")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	logger := log.Default()
	logger.Printf("TUI_START | endpoint=%s assets=%s fps=%d", cfg.Chat.Endpoint, cfg.Assets.Source, cfg.Scene.FPS)

	m, err := app.New(cfg, newClient(cfg, logger), logger)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running oracle: %w", err)
	}
	logger.Printf("TUI_EXIT")
	return nil
}

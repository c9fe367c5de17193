// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/oracle-tui/internal/assets"
	"github.com/jeranaias/oracle-tui/internal/config"
	"github.com/jeranaias/oracle-tui/internal/scene"
	"github.com/jeranaias/oracle-tui/internal/ui/chat"
	"github.com/jeranaias/oracle-tui/internal/ui/components"
	"github.com/jeranaias/oracle-tui/internal/ui/styles"
)

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root bubbletea model.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	logger *log.Logger

	scene    *scene.Scene
	backdrop components.Backdrop
	chat     chat.Model

	fetcher assets.Fetcher
	loader  *assets.Loader
	specs   []assets.Spec
	roles   map[string]string
	watcher *assets.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	interval time.Duration
	width    int
	height   int
}

// New builds the root model. It fails only when the asset source is unusable.
func New(cfg *config.Config, sender chat.Sender, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = log.Default()
	}

	fetcher, err := assets.NewFetcher(cfg.Assets.Source)
	if err != nil {
		return nil, fmt.Errorf("asset source: %w", err)
	}

	theme := styles.NewTheme(cfg.UI.Theme)

	opts := chat.OptionsFromConfig(cfg)
	opts.Logger = logger

	specs := make([]assets.Spec, 0, len(cfg.Assets.Models))
	for _, mc := range cfg.Assets.Models {
		specs = append(specs, assets.Spec{Name: mc.Name, Primary: mc.Primary, Fallback: mc.Fallback})
	}
	roles := make(map[string]string, len(cfg.Assets.Models))
	for _, role := range []string{config.RoleClone, config.RoleSingleton} {
		models, err := cfg.ModelsByRole(role)
		if errors.Is(err, config.ErrNoModels) {
			logger.Printf("ASSET_ROLE_EMPTY | role=%s", role)
			continue
		}
		for _, mc := range models {
			roles[mc.Name] = role
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		cfg:      cfg,
		theme:    theme,
		logger:   logger,
		scene:    scene.New(append(scene.FromConfig(cfg.Scene), scene.WithLogger(logger))...),
		backdrop: components.NewBackdrop(theme),
		chat:     chat.New(sender, theme, opts),
		fetcher:  fetcher,
		loader:   assets.NewLoader(fetcher).WithLogger(logger),
		specs:    specs,
		roles:    roles,
		ctx:      ctx,
		cancel:   cancel,
		interval: cfg.FrameInterval(),
	}, nil
}

// Scene returns the ambient scene.
func (m *Model) Scene() *scene.Scene { return m.scene }

// Chat returns the chat widget.
func (m *Model) Chat() chat.Model { return m.chat }

// Close stops background work and releases the scene. Safe to call twice.
func (m *Model) Close() error {
	m.cancel()
	m.chat.Close()
	return m.scene.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chat.Init()}
	if m.cfg.Scene.Enabled {
		cmds = append(cmds, loadAssets(m.ctx, m.loader, m.specs), frameTick(m.interval))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.scene.Resize(msg.Width, msg.Height)
		m.chat.SetSize(m.theme.WidgetWidth(), msg.Height)
		return m, nil

	case tea.MouseMsg:
		m.scene.SetPointer(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if err := m.Close(); err != nil {
				m.logger.Printf("CLOSE_ERROR | error=%v", err)
			}
			return m, tea.Quit
		}

	case FrameMsg:
		m.scene.Step(msg.Time)
		return m, frameTick(m.interval)

	case AssetsLoadedMsg:
		m.place(msg.Results)
		return m, m.startWatcher()

	case AssetsChangedMsg:
		cmds := []tea.Cmd{reloadAssets(m.ctx, m.loader, m.specsFor(msg.Names))}
		if m.watcher != nil {
			cmds = append(cmds, waitForChanges(m.watcher.Changes()))
		}
		return m, tea.Batch(cmds...)

	case AssetsReloadedMsg:
		// Reloads only swap meshes; the object count is fixed at startup.
		for _, r := range msg.Results {
			if !r.Status.Loaded() {
				continue
			}
			if n := m.scene.ReplaceMesh(r.Spec.Name, r.Mesh); n == 0 {
				m.logger.Printf("ASSET_RELOAD_SKIPPED | name=%s reason=not_placed", r.Spec.Name)
			} else {
				m.logger.Printf("ASSET_RELOADED | name=%s objects=%d", r.Spec.Name, n)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// place adds loaded meshes to the scene according to their role. Failed
// models never appear.
func (m *Model) place(results []assets.Result) {
	for _, r := range results {
		if !r.Status.Loaded() {
			continue
		}
		switch m.roles[r.Spec.Name] {
		case config.RoleSingleton:
			m.scene.AddSingleton(r.Mesh)
		default:
			m.scene.SpawnClones(r.Mesh)
		}
	}
}

// startWatcher begins hot reload when models come from a local directory.
func (m *Model) startWatcher() tea.Cmd {
	if !m.cfg.Assets.Watch || m.watcher != nil {
		return nil
	}
	fsf, ok := m.fetcher.(*assets.FSFetcher)
	if !ok || fsf.Dir == "" {
		return nil
	}

	w, err := assets.NewWatcher(fsf.Dir, m.specs, m.logger)
	if err != nil {
		m.logger.Printf("ASSET_WATCH_ERROR | error=%v", err)
		return nil
	}
	if err := w.Watch(); err != nil {
		m.logger.Printf("ASSET_WATCH_ERROR | error=%v", err)
		w.Close()
		return nil
	}
	if err := m.scene.Attach(w); err != nil {
		return nil
	}
	m.watcher = w
	return waitForChanges(w.Changes())
}

func (m *Model) specsFor(names []string) []assets.Spec {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []assets.Spec
	for _, s := range m.specs {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var bg []string
	if m.cfg.Scene.Enabled {
		bg = m.scene.Render().Lines()
	}
	return m.backdrop.Compose(bg, m.chat.View(), m.width, m.height)
}

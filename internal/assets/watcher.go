// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// =============================================================================
// WATCHER
// =============================================================================

// Watcher reports models whose files changed in a directory source.
// Bursts of writes are coalesced over a debounce window and batches are
// released at most once per second.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	names    map[string][]string // slash path relative to root -> model names
	limiter  *rate.Limiter
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]time.Time // model name -> last change

	changes chan []string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher creates a watcher for the models in specs under root.
func NewWatcher(root string, specs []Spec, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	names := make(map[string][]string)
	for _, s := range specs {
		for _, p := range []string{s.Primary, s.Fallback} {
			if p == "" {
				continue
			}
			key := cleanPath(p)
			names[key] = append(names[key], s.Name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		root:     root,
		names:    names,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		debounce: 150 * time.Millisecond,
		logger:   logger,
		pending:  make(map[string]time.Time),
		changes:  make(chan []string, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching every existing directory that holds a model path.
func (w *Watcher) Watch() error {
	dirs := make(map[string]bool)
	for p := range w.names {
		dir := filepath.Join(w.root, filepath.FromSlash(filepath.Dir(p)))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs[dir] = true
		}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.logger.Printf("ASSET_WATCH | root=%s dirs=%d", w.root, len(dirs))

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return nil
}

// Changes delivers batches of model names to reload. It is closed by Close.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Close stops watching and closes Changes.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			names := w.names[filepath.ToSlash(rel)]
			if len(names) == 0 {
				continue
			}
			now := time.Now()
			w.mu.Lock()
			for _, n := range names {
				w.pending[n] = now
			}
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("ASSET_WATCH_ERROR | error=%v", err)
		}
	}
}

func (w *Watcher) processPending() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}

		batch := w.settled(time.Now())
		if len(batch) == 0 || !w.limiter.Allow() {
			continue
		}

		w.mu.Lock()
		for _, n := range batch {
			delete(w.pending, n)
		}
		w.mu.Unlock()

		select {
		case w.changes <- batch:
			w.logger.Printf("ASSET_CHANGED | models=%v", batch)
		case <-w.ctx.Done():
			return
		}
	}
}

// settled returns pending names untouched for at least the debounce window.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for n, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the final state of a model load.
type Status int

const (
	// StatusLoading is the zero value; a returned Result never carries it.
	StatusLoading Status = iota
	// StatusReady means the primary path loaded.
	StatusReady
	// StatusFallbackReady means the primary failed and the fallback loaded.
	StatusFallbackReady
	// StatusFailed means both paths failed. The model is not drawn.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFallbackReady:
		return "fallback_ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Loaded reports whether a mesh is available.
func (s Status) Loaded() bool {
	return s == StatusReady || s == StatusFallbackReady
}

// =============================================================================
// LOADER
// =============================================================================

// Spec names a model and where to find it.
type Spec struct {
	Name     string
	Primary  string
	Fallback string
}

// Result is the outcome of loading one Spec.
type Result struct {
	Spec   Spec
	Status Status
	Mesh   *Mesh
	// Path is the path the mesh came from; empty on failure.
	Path string
	// Err holds the last error when Status is StatusFailed, and the primary
	// error when Status is StatusFallbackReady.
	Err      error
	Duration time.Duration
}

// Loader turns Specs into meshes.
type Loader struct {
	fetcher     Fetcher
	logger      *log.Logger
	concurrency int
}

// NewLoader creates a loader over fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher, logger: log.Default(), concurrency: 4}
}

// WithLogger sets the logger used for load events.
func (l *Loader) WithLogger(logger *log.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load fetches and parses spec.Primary, trying spec.Fallback exactly once
// if the primary fails. It never returns an error; see Result.Status.
func (l *Loader) Load(ctx context.Context, spec Spec) Result {
	start := time.Now()
	res := Result{Spec: spec, Status: StatusLoading}

	mesh, err := l.loadPath(ctx, spec.Name, spec.Primary)
	if err == nil {
		res.Status, res.Mesh, res.Path = StatusReady, mesh, spec.Primary
		res.Duration = time.Since(start)
		l.logger.Printf("ASSET_READY | name=%s path=%s vertices=%d duration=%dms",
			spec.Name, spec.Primary, len(mesh.Vertices), res.Duration.Milliseconds())
		return res
	}
	res.Err = err

	if spec.Fallback == "" || ctx.Err() != nil {
		res.Status = StatusFailed
		res.Duration = time.Since(start)
		l.logger.Printf("ASSET_FAILED | name=%s primary=%s fallback=%s error=%v",
			spec.Name, spec.Primary, spec.Fallback, err)
		return res
	}

	l.logger.Printf("ASSET_FALLBACK | name=%s primary=%s fallback=%s error=%v",
		spec.Name, spec.Primary, spec.Fallback, err)

	mesh, ferr := l.loadPath(ctx, spec.Name, spec.Fallback)
	res.Duration = time.Since(start)
	if ferr != nil {
		res.Status, res.Err = StatusFailed, ferr
		l.logger.Printf("ASSET_FAILED | name=%s primary=%s fallback=%s error=%v",
			spec.Name, spec.Primary, spec.Fallback, ferr)
		return res
	}

	res.Status, res.Mesh, res.Path = StatusFallbackReady, mesh, spec.Fallback
	l.logger.Printf("ASSET_READY | name=%s path=%s vertices=%d fallback=true duration=%dms",
		spec.Name, spec.Fallback, len(mesh.Vertices), res.Duration.Milliseconds())
	return res
}

// LoadAll loads specs concurrently. Results are in input order.
func (l *Loader) LoadAll(ctx context.Context, specs []Spec) []Result {
	results := make([]Result, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, spec := range specs {
		g.Go(func() error {
			results[i] = l.Load(gctx, spec)
			return nil
		})
	}
	g.Wait()
	return results
}

func (l *Loader) loadPath(ctx context.Context, name, p string) (*Mesh, error) {
	data, err := l.fetcher.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	mesh, err := ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	mesh.Name = name
	return mesh.Normalize(), nil
}

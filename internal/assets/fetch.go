// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// SourceEmbedded selects the models compiled into the binary.
const SourceEmbedded = "embedded"

// MaxModelSize bounds a single model file (8MB).
const MaxModelSize = 8 * 1024 * 1024

// Fetch errors.
var (
	ErrNotFound      = errors.New("model not found")
	ErrFetch         = errors.New("model fetch failed")
	ErrModelTooLarge = errors.New("model too large")
)

//go:embed models static
var embedded embed.FS

// Embedded returns the built-in model tree.
func Embedded() fs.FS {
	return embedded
}

// Fetcher retrieves model bytes by slash-separated path.
type Fetcher interface {
	Fetch(ctx context.Context, p string) ([]byte, error)
}

// NewFetcher picks a Fetcher for source: "embedded", an http(s) base URL,
// or a directory path.
func NewFetcher(source string) (Fetcher, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "" || source == SourceEmbedded:
		return &FSFetcher{FS: Embedded()}, nil
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		if _, err := url.Parse(source); err != nil {
			return nil, fmt.Errorf("invalid asset URL %q: %w", source, err)
		}
		return NewHTTPFetcher(source), nil
	default:
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("asset directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("asset source %q is not a directory", source)
		}
		return &FSFetcher{FS: os.DirFS(source), Dir: source}, nil
	}
}

// =============================================================================
// FILESYSTEM
// =============================================================================

// FSFetcher reads models from an fs.FS.
type FSFetcher struct {
	FS fs.FS
	// Dir is the on-disk root when FS came from os.DirFS; empty otherwise.
	Dir string
}

// Fetch implements Fetcher.
func (f *FSFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := cleanPath(p)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: invalid path %q", ErrNotFound, p)
	}
	info, err := fs.Stat(f.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if info.Size() > MaxModelSize {
		return nil, fmt.Errorf("%w: %s", ErrModelTooLarge, p)
	}
	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return data, nil
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPFetcher fetches models relative to a base URL.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher rooted at base.
func NewHTTPFetcher(base string) *HTTPFetcher {
	return &HTTPFetcher{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements Fetcher. 404 maps to ErrNotFound; any other non-2xx
// status to ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	u := f.base + "/" + cleanPath(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrFetch, u, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxModelSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if len(data) > MaxModelSize {
		return nil, fmt.Errorf("%w: %s", ErrModelTooLarge, u)
	}
	return data, nil
}

// cleanPath turns "/static/models/x.obj" into "static/models/x.obj".
func cleanPath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

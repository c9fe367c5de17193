// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assets loads the decorative models drawn behind the chat widget.
//
// Models are Wavefront OBJ files fetched from a Fetcher: the embedded
// static tree, a directory on disk, or an HTTP base URL. Every model has a
// primary path and one fallback path. Loading never fails loudly; the
// outcome is a Result whose Status is Ready, FallbackReady or Failed.
//
// # Usage
//
//	fetcher, err := assets.NewFetcher(cfg.Assets.Source)
//	loader := assets.NewLoader(fetcher)
//	results := loader.LoadAll(ctx, specs)
//	for _, r := range results {
//		if r.Status.Loaded() {
//			// use r.Mesh
//		}
//	}
package assets

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for oracle.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ChatConfig: Chat endpoint and request timeout
//   - SceneConfig: Backdrop frame rate, object count and gaze tuning
//   - AssetsConfig: Model source and per-model primary/fallback paths
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ORACLE_*), including those set by ./.env
//   - --config path or ~/.oracle/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := chatapi.NewClient(cfg.Chat.Endpoint)
package config

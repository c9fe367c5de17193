// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a development stand-in for the chat backend.
//
// The real backend is an external service. This package serves the same
// contract so the widget can be exercised locally and in tests.
//
// # Endpoints
//
//   - POST /api/chat - {"message"} -> {"success", "response"} or {"error"}
//   - GET  /health   - Health check
//
// # Middleware
//
//   - Recovery from handler panics
//   - Request logging in the EVENT | key=value format
//   - Per-client token-bucket rate limiting (x/time/rate)
//
// # Usage
//
//	srv := server.New(server.Config{Addr: "127.0.0.1:5000"})
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server

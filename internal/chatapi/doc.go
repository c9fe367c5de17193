// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi is the client for the oracle chat endpoint.
//
// The endpoint contract is small:
//
//	POST /api/chat  {"message": "..."}
//	200             {"success": true, "response": "..."}
//	200             {"success": false, "error": "..."}
//
// Two kinds of failure are kept apart. An application failure reported by
// the backend comes back as a Reply with Success false. Anything else (a
// transport error, a non-2xx status, an oversized or malformed body) is an
// error wrapping ErrConnection.
//
// # Usage
//
//	client := chatapi.NewClient(cfg.Chat.Endpoint)
//	reply, err := client.Send(ctx, "will it rain tomorrow?")
//	text, isErr := chatapi.Outcome(reply, err)
package chatapi

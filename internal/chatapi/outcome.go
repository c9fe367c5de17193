// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

// Display strings shown to the user.
const (
	ErrorPrefix           = "Error: "
	DefaultErrorMessage   = "Unknown error"
	ConnectionFailMessage = "Could not connect to server"
)

// Outcome maps the result of Send to the text the widget shows.
// isErr reports whether the text is an error message.
func Outcome(reply Reply, err error) (text string, isErr bool) {
	if err != nil {
		return ErrorPrefix + ConnectionFailMessage, true
	}
	if !reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = DefaultErrorMessage
		}
		return ErrorPrefix + msg, true
	}
	return reply.Response, false
}

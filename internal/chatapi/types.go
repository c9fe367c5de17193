// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"errors"
	"fmt"
)

// Request is the JSON body posted to the chat endpoint.
type Request struct {
	Message string `json:"message"`
}

// Reply is the JSON body returned by the chat endpoint.
// Response is set on success, Error on application failure.
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Error variables for chat requests.
var (
	// ErrConnection covers every failure that is not an application-level
	// reply: transport errors, non-2xx statuses and unparseable bodies.
	ErrConnection = errors.New("could not connect to server")

	// ErrEmptyMessage is returned by Send when the message is blank after trimming.
	ErrEmptyMessage = errors.New("empty message")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// StatusError reports a non-2xx response. It unwraps to ErrConnection.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("chat endpoint returned HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("chat endpoint returned HTTP %d", e.Status)
}

// Unwrap lets errors.Is(err, ErrConnection) match.
func (e *StatusError) Unwrap() error {
	return ErrConnection
}

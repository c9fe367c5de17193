// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/jeranaias/oracle-tui/internal/chatapi"
	"github.com/jeranaias/oracle-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the chat endpoint could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

var (
	// ErrReplyFailed is returned by ask when the endpoint answered with
	// success false.
	ErrReplyFailed = errors.New("endpoint reported failure")

	// ErrConfigExists is returned by config init when the file exists.
	ErrConfigExists = errors.New("config file already exists")
)

// configError marks errors that come from loading configuration.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *configError
	var verrs config.ValidateErrors
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &verrs):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, chatapi.ErrConnection):
		return ExitNetworkError
	case errors.Is(err, chatapi.ErrEmptyMessage):
		return ExitUsageError
	}
	return ExitGeneralError
}

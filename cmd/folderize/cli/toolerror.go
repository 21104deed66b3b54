// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCategory classifies command errors so that scripts can make
// decisions (retry, fix input) from the exit code without parsing
// error text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing arguments, unparseable values, an invalid config file.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// a missing input file, an unknown repository.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a temporary failure: network error,
	// timeout, rate limit. The caller should back off and retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected failure: I/O errors,
	// rejected list edits, bugs.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps categories to process exit codes. 1 is also what
// uncategorized errors exit with.
var exitCodes = map[ErrorCategory]int{
	CategoryInternal:   1,
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryTransient:  4,
}

// ToolError is a categorized error returned by commands. It wraps an
// inner error, preserving the chain for errors.Is and errors.As.
// Use the category constructors rather than building one directly.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional next step appended to the message.
	Hint string
}

// Error returns the underlying message, followed by the hint when
// one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// ExitCode returns the process exit code for the category.
func (e *ToolError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return 1
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// ExitError signals a non-zero exit code without printing an extra
// error message: the command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit code %d", e.Code) }

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int { return e.Code }

// ExitCode returns the process exit code for err: 0 for nil, the
// category code for a ToolError anywhere in the chain, 130 for a
// cancelled context (interrupted by a signal), otherwise 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.ExitCode()
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

// Silent reports whether err carries its own output and should not be
// printed again.
func Silent(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError)
}

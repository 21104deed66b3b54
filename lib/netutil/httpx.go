// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response reads.
//
// API helpers (ReadResponse, DecodeResponse, ErrorBody) cap reads at
// MaxResponseSize so a misbehaving server cannot exhaust memory.
// ReadLimited applies a caller-chosen cap and reports truncation as
// ErrTooLarge, for page bodies whose size the caller configures.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 64 MB.
// Legitimate API responses are orders of magnitude smaller.
const MaxResponseSize int64 = 64 << 20

// ErrTooLarge is returned by ReadLimited when the body exceeds the
// limit.
var ErrTooLarge = errors.New("response body too large")

// ReadResponse reads an API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads an API response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an HTTP error response body for diagnostic messages.
// Read errors are ignored: a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}

// ReadLimited reads body fully unless it is longer than limit bytes,
// in which case it returns ErrTooLarge. A limit of zero or less means
// MaxResponseSize.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxResponseSize
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}

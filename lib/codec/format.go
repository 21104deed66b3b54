// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is a structured output format.
type Format string

const (
	// Text is the human-readable rendering. Callers provide it;
	// Encode rejects it.
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists every accepted format name, for flag help.
var Formats = []Format{Text, JSON, YAML, CBOR}

// ParseFormat validates a --format value.
func ParseFormat(name string) (Format, error) {
	for _, format := range Formats {
		if string(format) == name {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", name, Formats)
}

// Binary reports whether the format is unsuitable for a terminal.
func (format Format) Binary() bool { return format == CBOR }

// Encode writes v to w in format. JSON is indented; YAML uses two
// space indentation; CBOR is deterministic.
func (format Format) Encode(w io.Writer, v any) error {
	switch format {
	case JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case CBOR:
		return NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("codec: %q is not a structured format", format)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, test := range tests {
		level, err := ParseLevel(test.name)
		if (err != nil) != test.wantErr || level != test.want {
			t.Errorf("ParseLevel(%q) = %v, %v", test.name, level, err)
		}
	}
}

func TestNewLoggerHandlers(t *testing.T) {
	var jsonOutput bytes.Buffer
	newLogger(&jsonOutput, false, slog.LevelInfo).Info("pass complete", "folders", 2)

	var record map[string]any
	if err := json.Unmarshal(jsonOutput.Bytes(), &record); err != nil {
		t.Fatalf("piped output is not JSON: %v\n%s", err, jsonOutput.String())
	}
	if record["msg"] != "pass complete" || record["folders"] != float64(2) {
		t.Errorf("record = %v", record)
	}

	var textOutput bytes.Buffer
	newLogger(&textOutput, true, slog.LevelWarn).Info("filtered")
	newLogger(&textOutput, true, slog.LevelWarn).Warn("page failed", "page", 3)
	if strings.Contains(textOutput.String(), "filtered") {
		t.Error("info record passed a warn-level logger")
	}
	if !strings.Contains(textOutput.String(), "page=3") {
		t.Errorf("terminal output not text: %q", textOutput.String())
	}
}

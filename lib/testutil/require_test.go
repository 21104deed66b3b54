// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strings"
	"testing"
	"time"
)

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "buffered value"); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestRequireNoReceive(t *testing.T) {
	RequireNoReceive(t, make(chan int), 10*time.Millisecond, "idle channel")
}

func TestUniqueID(t *testing.T) {
	first, second := UniqueID("page"), UniqueID("page")
	if first == second || !strings.HasPrefix(first, "page-") {
		t.Errorf("UniqueID gave %q then %q", first, second)
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		args []any
		want string
	}{
		{nil, "(no message)"},
		{[]any{"plain"}, "plain"},
		{[]any{"page %d", 3}, "page 3"},
		{[]any{42}, "42"},
	}
	for _, test := range tests {
		if got := formatMessage(test.args); got != test.want {
			t.Errorf("formatMessage(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}

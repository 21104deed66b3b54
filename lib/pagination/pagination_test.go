// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pagination

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/folderize/lib/testutil"
)

// fakeSource serves pages of row labels from a map. Pages listed in
// failures return an error instead.
type fakeSource struct {
	control    Control
	hasControl bool
	pages      map[int][]string
	failures   map[int]error
	mergeErr   map[int]error

	// started, when set, receives each page number as Fetch begins and
	// release gates every Fetch until closed.
	started chan int
	release chan struct{}

	mu         sync.Mutex
	fetches    []int
	merged     []string
	mergeOrder []int
	suppressed int
}

func (source *fakeSource) Control(context.Context) (Control, bool) {
	return source.control, source.hasControl
}

func (source *fakeSource) Fetch(ctx context.Context, control Control, page int) ([]string, error) {
	source.mu.Lock()
	source.fetches = append(source.fetches, page)
	source.mu.Unlock()

	if source.started != nil {
		source.started <- page
		<-source.release
	}
	if err := source.failures[page]; err != nil {
		return nil, err
	}
	return source.pages[page], nil
}

func (source *fakeSource) Merge(page int, rows []string) (int, error) {
	if err := source.mergeErr[page]; err != nil {
		return 0, err
	}
	source.mergeOrder = append(source.mergeOrder, page)
	source.merged = append(source.merged, rows...)
	return len(rows), nil
}

func (source *fakeSource) Suppress(Control) { source.suppressed++ }

func TestLoadMergesRemainingPagesInOrder(t *testing.T) {
	source := &fakeSource{
		control:    Control{Current: 1, Total: 4, URL: "/list?page={page}"},
		hasControl: true,
		pages: map[int][]string{
			2: {"ci/b"},
			3: {"ci/c", "deploy"},
			4: {"docs/site"},
		},
	}

	result := New[[]string](source, Config{}).Load(context.Background())

	if result.Requested != 3 || result.Fetched != 3 || result.Merged != 4 || result.Partial() {
		t.Errorf("result = %+v", result)
	}
	if want := []int{2, 3, 4}; !reflect.DeepEqual(source.mergeOrder, want) {
		t.Errorf("merge order = %v, want %v", source.mergeOrder, want)
	}
	if want := []string{"ci/b", "ci/c", "deploy", "docs/site"}; !reflect.DeepEqual(source.merged, want) {
		t.Errorf("merged rows = %v, want %v", source.merged, want)
	}
	if source.suppressed != 1 {
		t.Errorf("Suppress called %d times, want 1", source.suppressed)
	}
}

func TestLoadNothingToDo(t *testing.T) {
	tests := []struct {
		name       string
		control    Control
		hasControl bool
	}{
		{"no control", Control{}, false},
		{"already complete", Control{Current: 3, Total: 3}, true},
		{"single page", Control{Current: 1, Total: 1}, true},
		{"current past total", Control{Current: 5, Total: 2}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			source := &fakeSource{control: test.control, hasControl: test.hasControl}
			result := New[[]string](source, Config{}).Load(context.Background())

			if !reflect.DeepEqual(result, Result{}) {
				t.Errorf("result = %+v, want zero", result)
			}
			if len(source.fetches) != 0 || source.suppressed != 0 {
				t.Errorf("fetches = %v, suppressed = %d, want no activity", source.fetches, source.suppressed)
			}
		})
	}
}

func TestLoadToleratesFailedPages(t *testing.T) {
	source := &fakeSource{
		control:    Control{Current: 1, Total: 5},
		hasControl: true,
		pages: map[int][]string{
			2: {"a/1"},
			4: {"a/2"},
			5: {"a/3"},
		},
		failures: map[int]error{3: errors.New("connection reset")},
		mergeErr: map[int]error{5: errors.New("row container gone")},
	}

	result := New[[]string](source, Config{}).Load(context.Background())

	if want := []int{3, 5}; !reflect.DeepEqual(result.Failed, want) {
		t.Errorf("Failed = %v, want %v", result.Failed, want)
	}
	if result.Fetched != 2 || result.Merged != 2 {
		t.Errorf("Fetched = %d, Merged = %d, want 2, 2", result.Fetched, result.Merged)
	}
	if source.suppressed != 1 {
		t.Error("Suppress not called after a partial load")
	}
}

func TestLoadFetchesConcurrently(t *testing.T) {
	source := &fakeSource{
		control:    Control{Current: 1, Total: 4},
		hasControl: true,
		started:    make(chan int, 3),
		release:    make(chan struct{}),
	}

	done := make(chan Result, 1)
	go func() { done <- New[[]string](source, Config{}).Load(context.Background()) }()

	// All three fetches must be in flight before any is released.
	seen := make(map[int]bool)
	for range 3 {
		seen[testutil.RequireReceive(t, source.started, 5*time.Second, "waiting for fetch to start")] = true
	}
	if len(seen) != 3 {
		t.Fatalf("started pages = %v, want 2, 3 and 4", seen)
	}
	close(source.release)

	result := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Load")
	if result.Fetched != 3 {
		t.Errorf("Fetched = %d, want 3", result.Fetched)
	}
}

func TestLoadRespectsMaxConcurrency(t *testing.T) {
	source := &fakeSource{
		control:    Control{Current: 0, Total: 3},
		hasControl: true,
		started:    make(chan int, 3),
		release:    make(chan struct{}),
	}

	done := make(chan Result, 1)
	go func() { done <- New[[]string](source, Config{MaxConcurrency: 1}).Load(context.Background()) }()

	testutil.RequireReceive(t, source.started, 5*time.Second, "waiting for first fetch")
	select {
	case page := <-source.started:
		t.Fatalf("page %d started while the limit was held", page)
	default:
	}
	close(source.release)

	result := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Load")
	if result.Requested != 3 || result.Fetched != 3 {
		t.Errorf("result = %+v, want 3 requested and fetched", result)
	}
}

func TestControlRemaining(t *testing.T) {
	tests := []struct {
		control Control
		limit   int
		want    []int
	}{
		{Control{Current: 1, Total: 3}, 0, []int{2, 3}},
		{Control{Current: 0, Total: 2}, 0, []int{1, 2}},
		{Control{Current: -4, Total: 1}, 0, []int{1}},
		{Control{Current: 2, Total: 2}, 0, nil},
		{Control{Current: 1, Total: 0}, 0, nil},
		{Control{Current: 1, Total: -3}, 0, nil},
		{Control{Current: 1, Total: 10}, 4, []int{2, 3, 4}},
		{Control{Current: 5, Total: 10}, 4, nil},
		{Control{Current: 1, Total: math.MaxInt}, 3, []int{2, 3}},
		{Control{Current: math.MaxInt, Total: math.MaxInt}, 0, nil},
	}
	for _, test := range tests {
		if got := test.control.Remaining(test.limit); !reflect.DeepEqual(got, test.want) {
			t.Errorf("%+v.Remaining(%d) = %v, want %v", test.control, test.limit, got, test.want)
		}
	}

	if got := (Control{Current: 1, Total: math.MaxInt}).Remaining(0); len(got) != DefaultMaxPages-1 {
		t.Errorf("Remaining(0) with a huge total returned %d pages, want %d", len(got), DefaultMaxPages-1)
	}
}

func TestLoadCapsHugeTotal(t *testing.T) {
	source := &fakeSource{
		control:    Control{Current: 1, Total: math.MaxInt, URL: "/list?page={page}"},
		hasControl: true,
		pages:      map[int][]string{2: {"ci/b"}, 3: {"ci/c"}},
	}

	result := New[[]string](source, Config{MaxPages: 3}).Load(context.Background())

	if result.Requested != 2 || result.Fetched != 2 {
		t.Errorf("result = %+v, want 2 requested and fetched", result)
	}
	if !reflect.DeepEqual(source.mergeOrder, []int{2, 3}) {
		t.Errorf("merge order = %v, want [2 3]", source.mergeOrder)
	}
	if source.suppressed != 1 {
		t.Errorf("Suppress called %d times, want 1", source.suppressed)
	}
}

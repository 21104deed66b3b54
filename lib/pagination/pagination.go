// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pagination completes a paged list before it is grouped.
//
// A host that shows only the first page of a list exposes a [Control]
// describing how many pages exist. [Loader.Load] fetches the
// remaining pages, up to [Config.MaxPages], concurrently, merges the
// results into the host in page order, and hides the host's "load
// more" affordance. A page that fails to load is logged and skipped:
// grouping a partial list is better than grouping none of it.
package pagination

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Control is the host's pagination state.
type Control struct {
	// Current is the highest page already present in the list,
	// counting from 1.
	Current int

	// Total is the number of pages the list has.
	Total int

	// URL is the request template for a page. Sources interpret it;
	// the loader only passes it back to Fetch.
	URL string
}

// DefaultMaxPages is the highest page number a Loader fetches when
// Config.MaxPages is unset.
const DefaultMaxPages = 100

// Remaining returns the page numbers still to load, in order, never
// past page limit. A limit below one means DefaultMaxPages.
func (control Control) Remaining(limit int) []int {
	if limit < 1 {
		limit = DefaultMaxPages
	}
	last := min(control.Total, limit)
	if control.Current >= last {
		return nil
	}
	start := max(control.Current, 0) + 1
	pages := make([]int, 0, last-start+1)
	for page := start; page <= last; page++ {
		pages = append(pages, page)
	}
	return pages
}

// Source connects a Loader to a host list. P is whatever one fetched
// page decodes to: parsed markup rows, API records.
type Source[P any] interface {
	// Control reports the host's pagination state. False means the
	// host has no pagination control and there is nothing to load.
	Control(ctx context.Context) (Control, bool)

	// Fetch loads one page. Called concurrently for different pages.
	Fetch(ctx context.Context, control Control, page int) (P, error)

	// Merge inserts a fetched page into the host list and returns how
	// many rows it added. Called sequentially in page order.
	Merge(page int, contents P) (int, error)

	// Suppress hides the host's "load more" affordance once loading
	// has finished, whether or not every page succeeded.
	Suppress(control Control)
}

// Config configures a Loader.
type Config struct {
	// MaxConcurrency bounds concurrent page fetches. Zero or negative
	// means one goroutine per remaining page.
	MaxConcurrency int

	// MaxPages is the highest page number fetched, however many pages
	// the control claims. Zero or negative means DefaultMaxPages.
	MaxPages int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes one Load.
type Result struct {
	// Requested is the number of pages the loader tried to fetch.
	Requested int `json:"requested" yaml:"requested" cbor:"requested"`

	// Fetched is the number of pages fetched and merged.
	Fetched int `json:"fetched" yaml:"fetched" cbor:"fetched"`

	// Failed lists pages whose fetch or merge failed, ascending.
	Failed []int `json:"failed" yaml:"failed" cbor:"failed"`

	// Merged is the number of rows added to the list.
	Merged int `json:"merged" yaml:"merged" cbor:"merged"`
}

// Partial reports whether some pages could not be loaded.
func (result Result) Partial() bool { return len(result.Failed) > 0 }

// Loader fetches the remaining pages of a Source.
type Loader[P any] struct {
	source         Source[P]
	maxConcurrency int
	maxPages       int
	logger         *slog.Logger
}

// New returns a Loader for source.
func New[P any](source Source[P], config Config) *Loader[P] {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxPages := config.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	return &Loader[P]{
		source:         source,
		maxConcurrency: config.MaxConcurrency,
		maxPages:       maxPages,
		logger:         logger,
	}
}

type fetched[P any] struct {
	contents P
	err      error
}

// Load completes the list. It returns immediately, without touching
// the network, when the source has no control or no remaining pages.
// Load never fails: fetch and merge errors are logged and reported in
// Result.Failed.
func (loader *Loader[P]) Load(ctx context.Context) Result {
	control, ok := loader.source.Control(ctx)
	if !ok {
		return Result{}
	}
	if control.Total > loader.maxPages {
		loader.logger.Warn("pagination control exceeds page limit, loading a partial list",
			"total_pages", control.Total,
			"max_pages", loader.maxPages,
		)
	}
	pages := control.Remaining(loader.maxPages)
	if len(pages) == 0 {
		return Result{}
	}

	result := Result{Requested: len(pages)}
	results := make([]fetched[P], len(pages))

	var group errgroup.Group
	if loader.maxConcurrency > 0 {
		group.SetLimit(loader.maxConcurrency)
	}
	for index, page := range pages {
		group.Go(func() error {
			contents, err := loader.source.Fetch(ctx, control, page)
			results[index] = fetched[P]{contents: contents, err: err}
			return nil
		})
	}
	// Goroutines record their own errors; Wait only joins.
	_ = group.Wait()

	for index, page := range pages {
		if err := results[index].err; err != nil {
			loader.logger.Warn("page fetch failed", "page", page, "error", err)
			result.Failed = append(result.Failed, page)
			continue
		}
		added, err := loader.source.Merge(page, results[index].contents)
		if err != nil {
			loader.logger.Warn("page merge failed", "page", page, "error", fmt.Errorf("merging page %d: %w", page, err))
			result.Failed = append(result.Failed, page)
			continue
		}
		result.Fetched++
		result.Merged += added
	}

	loader.source.Suppress(control)

	if result.Partial() {
		loader.logger.Warn("pagination incomplete, grouping a partial list",
			"failed_pages", result.Failed,
			"total_pages", control.Total,
		)
	} else {
		loader.logger.Debug("pagination complete",
			"pages", result.Fetched,
			"rows", result.Merged,
		)
	}
	return result
}

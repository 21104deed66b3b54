// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine wires the pipeline that one scheduled pass runs:
// an optional host refresh, the pagination loader, then the
// reconciler. [Engine.Run] has the scheduler.PassFunc signature.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/folderize/lib/clock"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/reconcile"
	"github.com/bureau-foundation/folderize/lib/scheduler"
)

// Loader completes a paged list. *pagination.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context) pagination.Result
}

// Config configures an Engine.
type Config struct {
	// List is the host list passes operate on. Required.
	List livelist.List

	// Reconciler is required.
	Reconciler *reconcile.Reconciler

	// Loader is optional; without one the list is grouped as is.
	Loader Loader

	// Prepare, when set, runs first in every pass. Hosts use it to
	// reload content that changed underneath them.
	Prepare func(ctx context.Context, trigger scheduler.Trigger) error

	// Metrics is optional.
	Metrics *Metrics

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Report describes one completed pass.
type Report struct {
	ID        string            `json:"id" yaml:"id" cbor:"id"`
	Trigger   scheduler.Trigger `json:"-" yaml:"-" cbor:"-"`
	Pages     pagination.Result `json:"pages" yaml:"pages" cbor:"pages"`
	Reconcile reconcile.Result  `json:"reconcile" yaml:"reconcile" cbor:"reconcile"`
	Duration  time.Duration     `json:"duration" yaml:"duration" cbor:"duration"`
}

// Engine runs passes against one list.
type Engine struct {
	list       livelist.List
	reconciler *reconcile.Reconciler
	loader     Loader
	prepare    func(ctx context.Context, trigger scheduler.Trigger) error
	metrics    *Metrics
	clock      clock.Clock
	logger     *slog.Logger

	mu   sync.Mutex
	last *Report
}

// New returns an Engine.
func New(config Config) (*Engine, error) {
	if config.List == nil {
		return nil, errors.New("engine: List is required")
	}
	if config.Reconciler == nil {
		return nil, errors.New("engine: Reconciler is required")
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		list:       config.List,
		reconciler: config.Reconciler,
		loader:     config.Loader,
		prepare:    config.Prepare,
		metrics:    config.Metrics,
		clock:      clk,
		logger:     logger,
	}, nil
}

// Pass runs one pass and returns its report. Page failures do not fail
// the pass; a Prepare error or a rejected list move does.
func (engine *Engine) Pass(ctx context.Context, trigger scheduler.Trigger) (Report, error) {
	report := Report{ID: uuid.NewString(), Trigger: trigger}
	logger := engine.logger.With("pass", report.ID, "trigger", trigger.String())
	started := engine.clock.Now()

	err := engine.pass(ctx, logger, &report)
	report.Duration = engine.clock.Now().Sub(started)
	engine.metrics.observe(report, err)

	engine.mu.Lock()
	engine.last = &report
	engine.mu.Unlock()

	if err != nil {
		return report, err
	}
	logger.Info("pass complete",
		"folders", report.Reconcile.Folders,
		"grouped", report.Reconcile.Grouped,
		"ungrouped", report.Reconcile.Ungrouped,
		"pages_fetched", report.Pages.Fetched,
		"pages_failed", len(report.Pages.Failed),
		"duration", report.Duration,
	)
	return report, nil
}

func (engine *Engine) pass(ctx context.Context, logger *slog.Logger, report *Report) error {
	if engine.prepare != nil {
		if err := engine.prepare(ctx, report.Trigger); err != nil {
			return fmt.Errorf("preparing list: %w", err)
		}
	}
	if engine.loader != nil {
		report.Pages = engine.loader.Load(ctx)
		if report.Pages.Partial() {
			logger.Warn("grouping partial list", "failed_pages", report.Pages.Failed)
		}
	}

	result, err := engine.reconciler.Reconcile(engine.list)
	report.Reconcile = result
	if err != nil {
		return fmt.Errorf("reconciling list: %w", err)
	}
	return nil
}

// Run is Pass with the scheduler.PassFunc signature.
func (engine *Engine) Run(ctx context.Context, trigger scheduler.Trigger) error {
	_, err := engine.Pass(ctx, trigger)
	return err
}

// Last returns the report of the most recent pass.
func (engine *Engine) Last() (Report, bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.last == nil {
		return Report{}, false
	}
	return *engine.last, true
}

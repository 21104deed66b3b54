// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler decides when a reconciliation pass runs.
//
// Two kinds of event arrive. Mutation events ([Scheduler.Notify]) come
// in bursts while a host renders rows; they are debounced so a burst
// produces one pass after the list has been quiet for the debounce
// interval. Navigation events ([Scheduler.Navigate]) mean the host has
// replaced its content; they bypass the debounce and run a pass at
// once, cancelling any pending timer.
//
// While a pass runs, every event is dropped. A pass rewrites the list
// it observes, and without this gate its own changes would schedule
// the next pass forever.
//
//	Idle ──Notify──▶ Pending ──timer──▶ Running ──done──▶ Idle
//	  │                 │ ▲                 ▲
//	  │                 └─┘ Notify          │
//	  └──────────── Navigate ───────────────┘
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/folderize/lib/clock"
)

// DefaultDebounce is the quiet period after the last mutation before a
// pass runs.
const DefaultDebounce = 200 * time.Millisecond

// State is the scheduler's position in its state machine.
type State int

const (
	StateIdle State = iota
	StatePending
	StateRunning
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Trigger tells a pass which event started it.
type Trigger int

const (
	TriggerMutation Trigger = iota
	TriggerNavigation
)

func (trigger Trigger) String() string {
	switch trigger {
	case TriggerMutation:
		return "mutation"
	case TriggerNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// PassFunc runs one pass. An error, or a panic, is logged; the scheduler
// returns to idle either way.
type PassFunc func(ctx context.Context, trigger Trigger) error

// Config configures a Scheduler.
type Config struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Pass is required.
	Pass PassFunc
}

// Scheduler serializes passes and coalesces mutation bursts. Its
// methods are safe to call from any goroutine: timer callbacks, signal
// handlers, UI commands.
type Scheduler struct {
	ctx      context.Context
	debounce time.Duration
	clock    clock.Clock
	logger   *slog.Logger
	pass     PassFunc

	mu    sync.Mutex
	state State
	timer *clock.Timer
	// generation is bumped whenever the pending timer is replaced or
	// cancelled; a firing timer that sees a newer generation is stale.
	generation uint64
	closed     bool
	passes     uint64
	dropped    uint64
}

// New returns an idle Scheduler. Passes receive ctx.
func New(ctx context.Context, config Config) (*Scheduler, error) {
	if config.Pass == nil {
		return nil, errors.New("scheduler: Pass is required")
	}
	if config.Debounce < 0 {
		return nil, errors.New("scheduler: Debounce must not be negative")
	}

	debounce := config.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		ctx:      ctx,
		debounce: debounce,
		clock:    clk,
		logger:   logger,
		pass:     config.Pass,
	}, nil
}

// Notify reports a mutation. It (re)arms the debounce timer unless a
// pass is running, in which case the event is dropped.
func (scheduler *Scheduler) Notify() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.closed {
		return
	}
	if scheduler.state == StateRunning {
		scheduler.dropped++
		return
	}

	scheduler.generation++
	generation := scheduler.generation
	if scheduler.timer != nil {
		scheduler.timer.Stop()
	}
	scheduler.state = StatePending
	scheduler.timer = scheduler.clock.AfterFunc(scheduler.debounce, func() {
		scheduler.fire(generation)
	})
}

// Navigate reports that the host replaced its content and runs a pass
// immediately on the calling goroutine. It returns false, doing
// nothing, when a pass is already running or the scheduler is closed.
func (scheduler *Scheduler) Navigate() bool {
	scheduler.mu.Lock()
	if scheduler.closed {
		scheduler.mu.Unlock()
		return false
	}
	if scheduler.state == StateRunning {
		scheduler.dropped++
		scheduler.mu.Unlock()
		return false
	}
	scheduler.cancelTimerLocked()
	scheduler.state = StateRunning
	scheduler.mu.Unlock()

	scheduler.run(TriggerNavigation)
	return true
}

func (scheduler *Scheduler) fire(generation uint64) {
	scheduler.mu.Lock()
	if scheduler.closed || generation != scheduler.generation || scheduler.state != StatePending {
		scheduler.mu.Unlock()
		return
	}
	scheduler.timer = nil
	scheduler.state = StateRunning
	scheduler.mu.Unlock()

	scheduler.run(TriggerMutation)
}

func (scheduler *Scheduler) run(trigger Trigger) {
	started := scheduler.clock.Now()
	err := scheduler.callPass(trigger)

	scheduler.mu.Lock()
	scheduler.state = StateIdle
	scheduler.passes++
	scheduler.mu.Unlock()

	if err != nil {
		scheduler.logger.Error("pass failed",
			"trigger", trigger.String(),
			"error", err,
		)
		return
	}
	scheduler.logger.Debug("pass complete",
		"trigger", trigger.String(),
		"duration", scheduler.clock.Now().Sub(started),
	)
}

// callPass runs the pass function, turning a panic into an error so the
// scheduler always leaves StateRunning.
func (scheduler *Scheduler) callPass(trigger Trigger) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s pass panicked: %v", trigger, recovered)
		}
	}()
	return scheduler.pass(scheduler.ctx, trigger)
}

func (scheduler *Scheduler) cancelTimerLocked() {
	scheduler.generation++
	if scheduler.timer != nil {
		scheduler.timer.Stop()
		scheduler.timer = nil
	}
}

// State returns the current state.
func (scheduler *Scheduler) State() State {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.state
}

// Passes returns the number of passes that have completed.
func (scheduler *Scheduler) Passes() uint64 {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.passes
}

// Dropped returns the number of events ignored because a pass was
// running.
func (scheduler *Scheduler) Dropped() uint64 {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.dropped
}

// Close cancels any pending pass. Later events are ignored. A pass
// already running finishes normally.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.closed = true
	scheduler.cancelTimerLocked()
	if scheduler.state == StatePending {
		scheduler.state = StateIdle
	}
}

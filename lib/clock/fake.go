// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves when Advance is called.
// It is safe for concurrent use.
//
// Callbacks run in the goroutine that calls Advance. A callback must
// not call Advance itself.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	// Exactly one of callback and channel is set.
	callback func()
	channel  chan time.Time
	active   bool
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// Now returns the fake time.
func (clock *FakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

// After returns a channel that receives once the clock has been
// advanced by at least d.
func (clock *FakeClock) After(d time.Duration) <-chan time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- clock.current
		return channel
	}
	clock.addLocked(&fakeTimer{deadline: clock.current.Add(d), channel: channel, active: true})
	return channel
}

// AfterFunc registers f to run during the Advance call that moves the
// clock past now+d. If d <= 0, f runs before AfterFunc returns.
func (clock *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{
			stopFunc:  func() bool { return false },
			resetFunc: func(time.Duration) bool { return false },
		}
	}

	clock.mu.Lock()
	timer := &fakeTimer{deadline: clock.current.Add(d), callback: f, active: true}
	clock.addLocked(timer)
	clock.mu.Unlock()

	return &Timer{
		stopFunc: func() bool {
			clock.mu.Lock()
			defer clock.mu.Unlock()
			wasActive := timer.active
			timer.active = false
			return wasActive
		},
		resetFunc: func(d time.Duration) bool {
			clock.mu.Lock()
			defer clock.mu.Unlock()
			wasActive := timer.active
			timer.deadline = clock.current.Add(d)
			if !wasActive {
				timer.active = true
				clock.addLocked(timer)
			}
			return wasActive
		},
	}
}

// addLocked registers a timer. Caller holds clock.mu.
func (clock *FakeClock) addLocked(timer *fakeTimer) {
	clock.pending = append(clock.pending, timer)
	clock.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is reached, earliest first. A callback that registers a new
// timer measures it from the advanced time.
func (clock *FakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.current = clock.current.Add(d)
	target := clock.current
	clock.mu.Unlock()

	for {
		due := clock.takeDue(target)
		if len(due) == 0 {
			return
		}
		for _, timer := range due {
			if timer.callback != nil {
				timer.callback()
				continue
			}
			select {
			case timer.channel <- target:
			default:
			}
		}
	}
}

// takeDue removes and returns the active timers due at target, sorted
// by deadline. Inactive timers are dropped.
func (clock *FakeClock) takeDue(target time.Time) []*fakeTimer {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	var due, remaining []*fakeTimer
	for _, timer := range clock.pending {
		switch {
		case !timer.active:
		case timer.deadline.After(target):
			remaining = append(remaining, timer)
		default:
			timer.active = false
			due = append(due, timer)
		}
	}
	clock.pending = remaining

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	return due
}

// PendingCount returns the number of timers that have not fired and
// have not been stopped.
func (clock *FakeClock) PendingCount() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.pendingCountLocked()
}

func (clock *FakeClock) pendingCountLocked() int {
	count := 0
	for _, timer := range clock.pending {
		if timer.active {
			count++
		}
	}
	return count
}

// WaitForTimers blocks until at least n timers are pending. Use it to
// avoid racing a goroutine that is about to register a timer.
func (clock *FakeClock) WaitForTimers(n int) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	for clock.pendingCountLocked() < n {
		clock.changed.Wait()
	}
}

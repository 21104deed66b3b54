// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source used by folderize's debounce
// scheduler and HTTP clients.
//
// Components that wait on time hold a Clock instead of calling the
// time package directly. Production wiring passes Real(); tests pass
// Fake() and move time forward explicitly with Advance, which makes
// debounce behavior deterministic:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	scheduler := scheduler.New(ctx, scheduler.Config{Clock: fake, ...})
//	scheduler.Notify()
//	fake.Advance(200 * time.Millisecond) // the debounced pass runs here
//
// AfterFunc callbacks registered on a FakeClock run synchronously
// inside Advance, in deadline order.
package clock

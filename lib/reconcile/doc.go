// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile projects a folder tree onto a host list.
//
// Each call to [Reconciler.Reconcile] is one full pass:
//
//  1. Cleanup. Every wrapper left by an earlier pass is dissolved: its
//     members get their recorded full names back, lose the marker, and
//     return to the wrapper's position in order. Cleanup always runs,
//     even when the pass will create no folders, so repeated passes
//     never accumulate state.
//  2. Recompute. The now-flat items are grouped with grouping.Build.
//     No folders means the pass stops and the list stays flat.
//  3. Project. One wrapper per folder, in first-occurrence order. Each
//     member's full name is recorded before its label is replaced by
//     the display name, and the member is moved into the wrapper.
//
// A wrapper starts expanded exactly when one of its members is the
// host's active row. Passes are idempotent: two consecutive passes
// with no data change in between leave identical [Snapshot] values.
package reconcile

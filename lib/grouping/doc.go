// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grouping turns flat item names into a one-level folder tree.
//
// [ParseName] splits a single name at its first delimiter. Names with
// no delimiter, a leading delimiter, or a trailing delimiter are not
// groupable. Only the first delimiter is significant: "frontend/tests/unit"
// lands in folder "frontend" with display name "tests/unit".
//
// [Build] applies ParseName to an ordered sequence of items and returns
// a [Tree]: the ungrouped items in their original order, and the folders
// in order of first appearance. Every input item lands in exactly one
// place.
//
// This package is pure: no I/O, no logging, no shared state.
package grouping

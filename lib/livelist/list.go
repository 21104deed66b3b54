// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package livelist

import (
	"errors"
	"fmt"
)

// Item is a handle to one row of the host list. Handles are compared
// by identity: two calls that return the same row return the same
// handle value.
type Item interface {
	// Label returns the row's visible name.
	Label() string

	// SetLabel overwrites the row's visible name.
	SetLabel(label string)

	// OriginalLabel returns the full name stashed by SetOriginalLabel.
	OriginalLabel() (string, bool)

	// SetOriginalLabel stashes the full name so it can be restored
	// exactly after the row is relabeled.
	SetOriginalLabel(label string)

	// ClearOriginalLabel removes the stashed name.
	ClearOriginalLabel()

	// Active reports whether the host marks this row as the current
	// selection.
	Active() bool
}

// Header describes a folder wrapper's visible heading.
type Header struct {
	Folder string
	Count  int
}

// Wrapper is a folder node inserted into the list by the engine.
type Wrapper interface {
	Header() Header

	// Members returns the items inside the wrapper, in order.
	Members() []Item

	Expanded() bool

	// SetExpanded flips the open state. It does not touch members.
	SetExpanded(expanded bool)
}

// Placement selects where a new wrapper goes.
type Placement int

const (
	// PlaceFirstMember inserts the wrapper where its first member
	// currently sits.
	PlaceFirstMember Placement = iota

	// PlaceEndAnchor inserts the wrapper just before the host's
	// end-of-list anchor (a "show more" row). Hosts without an anchor
	// fall back to PlaceFirstMember.
	PlaceEndAnchor

	// PlaceTop inserts the wrapper after any wrappers already at the
	// top of the list.
	PlaceTop
)

var placementNames = map[Placement]string{
	PlaceFirstMember: "first-member",
	PlaceEndAnchor:   "end-anchor",
	PlaceTop:         "top",
}

func (placement Placement) String() string {
	if name, ok := placementNames[placement]; ok {
		return name
	}
	return "unknown"
}

// ParsePlacement converts a configuration string into a Placement.
func ParsePlacement(name string) (Placement, error) {
	for placement, candidate := range placementNames {
		if candidate == name {
			return placement, nil
		}
	}
	return PlaceFirstMember, fmt.Errorf("livelist: unknown placement %q", name)
}

// Entry is one top-level position in a List. Exactly one of Item and
// Wrapper is set.
type Entry struct {
	Item    Item
	Wrapper Wrapper
}

// List is an ordered host list.
type List interface {
	// Entries returns the top-level positions in order. Items inside a
	// wrapper are reached through Wrapper.Members.
	Entries() []Entry

	// Unwrap moves every member of wrapper back into the list at the
	// wrapper's position, keeping their order, and removes the wrapper.
	// Labels are left alone; restoring them is the caller's job.
	Unwrap(wrapper Wrapper) error

	// Mount inserts an empty wrapper. anchor is the top-level item the
	// wrapper's first member currently is; it positions the wrapper
	// for PlaceFirstMember and for the PlaceEndAnchor fallback.
	Mount(header Header, expanded bool, placement Placement, anchor Item) (Wrapper, error)

	// Adopt moves item to the end of wrapper's members.
	Adopt(wrapper Wrapper, item Item) error
}

// ErrForeignHandle is returned when a List is given an Item or Wrapper
// that it did not produce, or that has since left the list.
var ErrForeignHandle = errors.New("livelist: handle does not belong to this list")

// Items returns the top-level items of list in order.
func Items(list List) []Item {
	var items []Item
	for _, entry := range list.Entries() {
		if entry.Item != nil {
			items = append(items, entry.Item)
		}
	}
	return items
}

// Wrappers returns the wrappers currently mounted in list, in order.
func Wrappers(list List) []Wrapper {
	var wrappers []Wrapper
	for _, entry := range list.Entries() {
		if entry.Wrapper != nil {
			wrappers = append(wrappers, entry.Wrapper)
		}
	}
	return wrappers
}

// Mutation describes a change to a host list. Added holds the items
// that were inserted or moved by the change.
type Mutation struct {
	Added []Item
}

// AddsItems reports whether the mutation placed any item rows. Hosts
// use it to ignore purely cosmetic changes.
func (mutation Mutation) AddsItems() bool { return len(mutation.Added) > 0 }

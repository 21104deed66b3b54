// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/folderize/lib/grouping"
	"github.com/bureau-foundation/folderize/lib/livelist"
)

// Config configures a Reconciler.
type Config struct {
	// Delimiter splits names into folder and display parts. Defaults
	// to grouping.DefaultDelimiter.
	Delimiter string

	// Placement decides where wrappers are inserted.
	Placement livelist.Placement

	// PreserveExpansion keeps a folder expanded across passes when the
	// wrapper removed during cleanup was expanded. Off by default: a
	// pass then depends only on the list contents.
	PreserveExpansion bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Reconciler runs reconciliation passes. It holds no per-list state
// and may be shared between lists, though not by concurrent passes on
// the same list.
type Reconciler struct {
	delimiter         string
	placement         livelist.Placement
	preserveExpansion bool
	logger            *slog.Logger
}

// Result summarizes one pass.
type Result struct {
	// Restored counts items whose labels were restored during cleanup.
	Restored int `json:"restored" yaml:"restored" cbor:"restored"`

	// Folders, Grouped and Ungrouped describe the projected tree.
	Folders   int `json:"folders" yaml:"folders" cbor:"folders"`
	Grouped   int `json:"grouped" yaml:"grouped" cbor:"grouped"`
	Ungrouped int `json:"ungrouped" yaml:"ungrouped" cbor:"ungrouped"`

	// Skipped is true when the tree had no folders and nothing was
	// projected.
	Skipped bool `json:"skipped" yaml:"skipped" cbor:"skipped"`
}

// New returns a Reconciler.
func New(config Config) *Reconciler {
	delimiter := config.Delimiter
	if delimiter == "" {
		delimiter = grouping.DefaultDelimiter
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		delimiter:         delimiter,
		placement:         config.Placement,
		preserveExpansion: config.PreserveExpansion,
		logger:            logger,
	}
}

// Reconcile runs cleanup, recompute and project against list. An error
// means the host rejected a move partway through; the list is left in
// a state the next pass's cleanup can recover from.
func (reconciler *Reconciler) Reconcile(list livelist.List) (Result, error) {
	var result Result

	restored, expanded, err := reconciler.Cleanup(list)
	result.Restored = restored
	if err != nil {
		return result, err
	}

	items := livelist.Items(list)
	tree := grouping.Build(items, fullName, reconciler.delimiter)
	result.Ungrouped = len(tree.Ungrouped)
	result.Grouped = tree.Grouped()
	if tree.Empty() {
		result.Skipped = true
		reconciler.logger.Debug("no folders to project", "items", len(items))
		return result, nil
	}

	for _, folder := range tree.Folders {
		folder.Expanded = hasActiveMember(folder) ||
			(reconciler.preserveExpansion && expanded[folder.Name])
		if err := reconciler.project(list, folder); err != nil {
			return result, fmt.Errorf("projecting folder %q: %w", folder.Name, err)
		}
		result.Folders++
	}

	reconciler.logger.Debug("projected folders",
		"folders", result.Folders,
		"grouped", result.Grouped,
		"ungrouped", result.Ungrouped,
	)
	return result, nil
}

// Cleanup dissolves every wrapper in list and restores the labels of
// their members, plus any top-level item still carrying a recorded
// name. It returns the number of labels restored and the expanded
// state each removed wrapper had, keyed by folder name.
func (reconciler *Reconciler) Cleanup(list livelist.List) (int, map[string]bool, error) {
	restored := 0
	expanded := make(map[string]bool)

	for _, entry := range list.Entries() {
		if entry.Item != nil {
			if restoreLabel(entry.Item) {
				restored++
			}
			continue
		}

		wrapper := entry.Wrapper
		if wrapper.Expanded() {
			expanded[wrapper.Header().Folder] = true
		}
		for _, member := range wrapper.Members() {
			if restoreLabel(member) {
				restored++
			}
		}
		if err := list.Unwrap(wrapper); err != nil {
			return restored, expanded, fmt.Errorf("removing folder %q: %w", wrapper.Header().Folder, err)
		}
	}

	return restored, expanded, nil
}

func (reconciler *Reconciler) project(list livelist.List, folder *grouping.Folder[livelist.Item]) error {
	header := livelist.Header{Folder: folder.Name, Count: len(folder.Members)}
	wrapper, err := list.Mount(header, folder.Expanded, reconciler.placement, folder.Members[0].Item)
	if err != nil {
		return err
	}

	for _, member := range folder.Members {
		member.Item.SetOriginalLabel(member.FullName)
		member.Item.SetLabel(member.Display)
		if err := list.Adopt(wrapper, member.Item); err != nil {
			return err
		}
	}
	return nil
}

// restoreLabel puts back an item's recorded full name and clears the
// record. Returns false if nothing was recorded.
func restoreLabel(item livelist.Item) bool {
	original, ok := item.OriginalLabel()
	if !ok {
		return false
	}
	item.SetLabel(original)
	item.ClearOriginalLabel()
	return true
}

// fullName is the name an item is grouped by: its recorded original if
// one survived, otherwise its visible label.
func fullName(item livelist.Item) string {
	if original, ok := item.OriginalLabel(); ok {
		return original
	}
	return item.Label()
}

func hasActiveMember(folder *grouping.Folder[livelist.Item]) bool {
	for _, member := range folder.Members {
		if member.Item.Active() {
			return true
		}
	}
	return false
}

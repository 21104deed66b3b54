// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "github.com/bureau-foundation/folderize/lib/livelist"

// EntryKind distinguishes rows from folders in a Snapshot.
type EntryKind string

const (
	KindItem   EntryKind = "item"
	KindFolder EntryKind = "folder"
)

// Entry is one position in a Snapshot. For folders, Label is the
// folder name and Members lists the rows inside.
type Entry struct {
	Kind     EntryKind `json:"kind" yaml:"kind" cbor:"kind"`
	Label    string    `json:"label" yaml:"label" cbor:"label"`
	Original string    `json:"original,omitempty" yaml:"original,omitempty" cbor:"original,omitempty"`
	Active   bool      `json:"active,omitempty" yaml:"active,omitempty" cbor:"active,omitempty"`
	Expanded bool      `json:"expanded,omitempty" yaml:"expanded,omitempty" cbor:"expanded,omitempty"`
	Count    int       `json:"count,omitempty" yaml:"count,omitempty" cbor:"count,omitempty"`
	Members  []Entry   `json:"members,omitempty" yaml:"members,omitempty" cbor:"members,omitempty"`
}

// Snapshot captures the structure and labels of list. Two snapshots of
// the same list compare equal with reflect.DeepEqual exactly when the
// list looks the same.
func Snapshot(list livelist.List) []Entry {
	var entries []Entry
	for _, entry := range list.Entries() {
		if entry.Item != nil {
			entries = append(entries, itemEntry(entry.Item))
			continue
		}
		header := entry.Wrapper.Header()
		folder := Entry{
			Kind:     KindFolder,
			Label:    header.Folder,
			Expanded: entry.Wrapper.Expanded(),
			Count:    header.Count,
		}
		for _, member := range entry.Wrapper.Members() {
			folder.Members = append(folder.Members, itemEntry(member))
		}
		entries = append(entries, folder)
	}
	return entries
}

func itemEntry(item livelist.Item) Entry {
	original, _ := item.OriginalLabel()
	return Entry{
		Kind:     KindItem,
		Label:    item.Label(),
		Original: original,
		Active:   item.Active(),
	}
}

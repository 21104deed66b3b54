// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grouping

// Member is one item placed in a folder.
type Member[T any] struct {
	Item T

	// FullName is the name the item was grouped by.
	FullName string

	// Display is FullName with the folder segment and the first
	// delimiter removed.
	Display string
}

// Folder is a group of items sharing the same first name segment.
// Folders are rebuilt on every pass and never outlive it.
type Folder[T any] struct {
	Name    string
	Members []Member[T]

	// Expanded is decided by the caller projecting the tree. Build
	// always leaves it false.
	Expanded bool
}

// Tree is the grouping of one ordered item sequence.
type Tree[T any] struct {
	// Ungrouped holds the items whose names are not groupable, in
	// input order.
	Ungrouped []T

	// Folders are ordered by the first appearance of their name in the
	// input sequence.
	Folders []*Folder[T]

	index map[string]*Folder[T]
}

// Build groups items by the first segment of the name reported for
// each. name is called exactly once per item.
func Build[T any](items []T, name func(T) string, delimiter string) Tree[T] {
	tree := Tree[T]{index: make(map[string]*Folder[T])}

	for _, item := range items {
		fullName := name(item)
		split := ParseName(fullName, delimiter)
		if !split.Groupable {
			tree.Ungrouped = append(tree.Ungrouped, item)
			continue
		}

		folder, exists := tree.index[split.Folder]
		if !exists {
			folder = &Folder[T]{Name: split.Folder}
			tree.index[split.Folder] = folder
			tree.Folders = append(tree.Folders, folder)
		}
		folder.Members = append(folder.Members, Member[T]{
			Item:     item,
			FullName: fullName,
			Display:  split.Display,
		})
	}

	return tree
}

// Empty reports whether the tree has no folders, in which case there
// is nothing to project.
func (tree Tree[T]) Empty() bool { return len(tree.Folders) == 0 }

// Folder returns the folder with the given name.
func (tree Tree[T]) Folder(name string) (*Folder[T], bool) {
	folder, ok := tree.index[name]
	return folder, ok
}

// Len returns the number of items in the tree, grouped or not.
func (tree Tree[T]) Len() int {
	count := len(tree.Ungrouped)
	for _, folder := range tree.Folders {
		count += len(folder.Members)
	}
	return count
}

// Grouped returns the number of items placed in folders.
func (tree Tree[T]) Grouped() int {
	return tree.Len() - len(tree.Ungrouped)
}

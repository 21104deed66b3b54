// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package livelist

import (
	"slices"
	"sync"
)

// Memory is an in-process List. All methods are safe for concurrent
// use; observers are called after the list lock is released.
type Memory struct {
	mu        sync.Mutex
	nodes     []*memoryNode
	moreRow   bool
	observers map[int]func(Mutation)
	nextID    int
}

// memoryNode is a top-level position: an item or a wrapper.
type memoryNode struct {
	item    *MemoryItem
	wrapper *MemoryWrapper
}

// MemoryEntry describes a row to add to a Memory list.
type MemoryEntry struct {
	// Key is host data carried with the row (a URL, an ID). The
	// engine never reads it.
	Key    string
	Label  string
	Active bool
}

// MemoryItem is the Item handle for a Memory row.
type MemoryItem struct {
	list        *Memory
	key         string
	label       string
	original    string
	hasOriginal bool
	active      bool
	wrapper     *MemoryWrapper
}

// MemoryWrapper is the Wrapper handle for a Memory folder.
type MemoryWrapper struct {
	list     *Memory
	header   Header
	expanded bool
	members  []*MemoryItem
	mounted  bool
}

// NewMemory returns an empty list.
func NewMemory() *Memory {
	return &Memory{observers: make(map[int]func(Mutation))}
}

// Append adds rows at the end of the list (before the "more" row when
// it is shown) and returns their handles.
func (list *Memory) Append(entries ...MemoryEntry) []*MemoryItem {
	list.mu.Lock()
	items := make([]*MemoryItem, 0, len(entries))
	for _, entry := range entries {
		item := &MemoryItem{list: list, key: entry.Key, label: entry.Label, active: entry.Active}
		list.nodes = append(list.nodes, &memoryNode{item: item})
		items = append(items, item)
	}
	list.mu.Unlock()

	list.notify(items)
	return items
}

// Reset replaces the entire contents, as a host does when it renders a
// different page. Any mounted wrappers are discarded with their
// members.
func (list *Memory) Reset(entries ...MemoryEntry) []*MemoryItem {
	list.mu.Lock()
	for _, node := range list.nodes {
		if node.wrapper != nil {
			node.wrapper.mounted = false
		}
	}
	list.nodes = nil
	list.mu.Unlock()

	return list.Append(entries...)
}

// SetMoreRow shows or hides the "load more" row that ends the list.
// It is the end anchor for PlaceEndAnchor.
func (list *Memory) SetMoreRow(visible bool) {
	list.mu.Lock()
	defer list.mu.Unlock()
	list.moreRow = visible
}

// MoreRow reports whether the "load more" row is shown.
func (list *Memory) MoreRow() bool {
	list.mu.Lock()
	defer list.mu.Unlock()
	return list.moreRow
}

// Observe registers fn to be called after every change that inserts or
// moves rows. The returned function removes the observer.
func (list *Memory) Observe(fn func(Mutation)) (cancel func()) {
	list.mu.Lock()
	defer list.mu.Unlock()
	id := list.nextID
	list.nextID++
	list.observers[id] = fn
	return func() {
		list.mu.Lock()
		defer list.mu.Unlock()
		delete(list.observers, id)
	}
}

func (list *Memory) notify(added []*MemoryItem) {
	if len(added) == 0 {
		return
	}
	mutation := Mutation{Added: make([]Item, len(added))}
	for index, item := range added {
		mutation.Added[index] = item
	}

	list.mu.Lock()
	observers := make([]func(Mutation), 0, len(list.observers))
	ids := make([]int, 0, len(list.observers))
	for id := range list.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		observers = append(observers, list.observers[id])
	}
	list.mu.Unlock()

	for _, observer := range observers {
		observer(mutation)
	}
}

// Entries implements List.
func (list *Memory) Entries() []Entry {
	list.mu.Lock()
	defer list.mu.Unlock()
	entries := make([]Entry, 0, len(list.nodes))
	for _, node := range list.nodes {
		if node.item != nil {
			entries = append(entries, Entry{Item: node.item})
		} else {
			entries = append(entries, Entry{Wrapper: node.wrapper})
		}
	}
	return entries
}

// Len returns the number of items in the list, including those inside
// wrappers.
func (list *Memory) Len() int {
	list.mu.Lock()
	defer list.mu.Unlock()
	count := 0
	for _, node := range list.nodes {
		if node.item != nil {
			count++
		} else {
			count += len(node.wrapper.members)
		}
	}
	return count
}

// Unwrap implements List.
func (list *Memory) Unwrap(wrapper Wrapper) error {
	target, ok := wrapper.(*MemoryWrapper)
	if !ok || target.list != list {
		return ErrForeignHandle
	}

	list.mu.Lock()
	position := list.wrapperIndexLocked(target)
	if position < 0 {
		list.mu.Unlock()
		return ErrForeignHandle
	}
	restored := make([]*memoryNode, 0, len(target.members))
	for _, member := range target.members {
		member.wrapper = nil
		restored = append(restored, &memoryNode{item: member})
	}
	moved := target.members
	target.members = nil
	target.mounted = false
	list.nodes = slices.Replace(list.nodes, position, position+1, restored...)
	list.mu.Unlock()

	list.notify(moved)
	return nil
}

// Mount implements List.
func (list *Memory) Mount(header Header, expanded bool, placement Placement, anchor Item) (Wrapper, error) {
	list.mu.Lock()
	defer list.mu.Unlock()

	wrapper := &MemoryWrapper{list: list, header: header, expanded: expanded, mounted: true}
	node := &memoryNode{wrapper: wrapper}

	position := -1
	switch placement {
	case PlaceEndAnchor:
		if list.moreRow {
			position = len(list.nodes)
		}
	case PlaceTop:
		position = 0
		for position < len(list.nodes) && list.nodes[position].wrapper != nil {
			position++
		}
	}
	if position < 0 {
		anchorItem, ok := anchor.(*MemoryItem)
		if !ok || anchorItem.list != list {
			return nil, ErrForeignHandle
		}
		position = list.itemIndexLocked(anchorItem)
		if position < 0 {
			return nil, ErrForeignHandle
		}
	}

	list.nodes = slices.Insert(list.nodes, position, node)
	return wrapper, nil
}

// Adopt implements List.
func (list *Memory) Adopt(wrapper Wrapper, item Item) error {
	target, ok := wrapper.(*MemoryWrapper)
	if !ok || target.list != list {
		return ErrForeignHandle
	}
	member, ok := item.(*MemoryItem)
	if !ok || member.list != list {
		return ErrForeignHandle
	}

	list.mu.Lock()
	if !target.mounted {
		list.mu.Unlock()
		return ErrForeignHandle
	}
	if member.wrapper != nil {
		member.wrapper.members = slices.DeleteFunc(member.wrapper.members, func(candidate *MemoryItem) bool {
			return candidate == member
		})
	} else {
		position := list.itemIndexLocked(member)
		if position < 0 {
			list.mu.Unlock()
			return ErrForeignHandle
		}
		list.nodes = slices.Delete(list.nodes, position, position+1)
	}
	member.wrapper = target
	target.members = append(target.members, member)
	list.mu.Unlock()

	list.notify([]*MemoryItem{member})
	return nil
}

func (list *Memory) itemIndexLocked(item *MemoryItem) int {
	return slices.IndexFunc(list.nodes, func(node *memoryNode) bool { return node.item == item })
}

func (list *Memory) wrapperIndexLocked(wrapper *MemoryWrapper) int {
	return slices.IndexFunc(list.nodes, func(node *memoryNode) bool { return node.wrapper == wrapper })
}

// Key returns the host data the row was created with.
func (item *MemoryItem) Key() string { return item.key }

// Label implements Item.
func (item *MemoryItem) Label() string {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	return item.label
}

// SetLabel implements Item.
func (item *MemoryItem) SetLabel(label string) {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	item.label = label
}

// OriginalLabel implements Item.
func (item *MemoryItem) OriginalLabel() (string, bool) {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	return item.original, item.hasOriginal
}

// SetOriginalLabel implements Item.
func (item *MemoryItem) SetOriginalLabel(label string) {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	item.original = label
	item.hasOriginal = true
}

// ClearOriginalLabel implements Item.
func (item *MemoryItem) ClearOriginalLabel() {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	item.original = ""
	item.hasOriginal = false
}

// Active implements Item.
func (item *MemoryItem) Active() bool {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	return item.active
}

// SetActive marks the row as the host's current selection.
func (item *MemoryItem) SetActive(active bool) {
	item.list.mu.Lock()
	defer item.list.mu.Unlock()
	item.active = active
}

// Header implements Wrapper.
func (wrapper *MemoryWrapper) Header() Header { return wrapper.header }

// Members implements Wrapper.
func (wrapper *MemoryWrapper) Members() []Item {
	wrapper.list.mu.Lock()
	defer wrapper.list.mu.Unlock()
	members := make([]Item, len(wrapper.members))
	for index, member := range wrapper.members {
		members[index] = member
	}
	return members
}

// Expanded implements Wrapper.
func (wrapper *MemoryWrapper) Expanded() bool {
	wrapper.list.mu.Lock()
	defer wrapper.list.mu.Unlock()
	return wrapper.expanded
}

// SetExpanded implements Wrapper.
func (wrapper *MemoryWrapper) SetExpanded(expanded bool) {
	wrapper.list.mu.Lock()
	defer wrapper.list.mu.Unlock()
	wrapper.expanded = expanded
}

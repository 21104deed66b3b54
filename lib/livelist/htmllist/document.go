// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bureau-foundation/folderize/lib/livelist"
)

// Default selectors and attribute names.
const (
	DefaultItemSelector       = `a[href*="/actions/workflows/"]`
	DefaultActiveSelector     = `[aria-current="page"], .selected`
	DefaultPaginationSelector = `[data-total-pages]`
	DefaultOriginalAttribute  = "data-folderize-original"
	DefaultFolderClass        = "folderize-folder"

	listSelector     = `ul, ol, [role="list"]`
	folderNameAttr   = "data-folderize-folder"
	folderCountAttr  = "data-folderize-count"
	summaryClassTail = "-summary"
	childrenTail     = "-children"
)

// ErrNoList is returned by List operations on a document that has no
// item list.
var ErrNoList = errors.New("htmllist: document has no item list")

// Config configures a Document. Zero values select the defaults.
type Config struct {
	ItemSelector       string
	ActiveSelector     string
	PaginationSelector string
	OriginalAttribute  string
	FolderClass        string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type matchers struct {
	item       cascadia.Selector
	active     cascadia.Selector
	pagination cascadia.Selector
	list       cascadia.Selector
	folder     cascadia.Selector
}

func compile(config Config) (matchers, error) {
	var result matchers
	var err error
	compileOne := func(name, selector string) cascadia.Selector {
		if err != nil {
			return nil
		}
		compiled, compileErr := cascadia.Compile(selector)
		if compileErr != nil {
			err = fmt.Errorf("compiling %s selector %q: %w", name, selector, compileErr)
		}
		return compiled
	}
	result.item = compileOne("item", config.ItemSelector)
	result.active = compileOne("active", config.ActiveSelector)
	result.pagination = compileOne("pagination", config.PaginationSelector)
	result.list = compileOne("list", listSelector)
	result.folder = compileOne("folder", "li."+config.FolderClass)
	return result, err
}

// Document is a parsed HTML page that implements livelist.List.
type Document struct {
	itemSelector      string
	originalAttribute string
	folderClass       string
	match             matchers
	logger            *slog.Logger

	mu        sync.Mutex
	document  *goquery.Document
	observers map[int]func(livelist.Mutation)
	nextID    int
}

// Parse reads an HTML page.
func Parse(reader io.Reader, config Config) (*Document, error) {
	if config.ItemSelector == "" {
		config.ItemSelector = DefaultItemSelector
	}
	if config.ActiveSelector == "" {
		config.ActiveSelector = DefaultActiveSelector
	}
	if config.PaginationSelector == "" {
		config.PaginationSelector = DefaultPaginationSelector
	}
	if config.OriginalAttribute == "" {
		config.OriginalAttribute = DefaultOriginalAttribute
	}
	if config.FolderClass == "" {
		config.FolderClass = DefaultFolderClass
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	compiled, err := compile(config)
	if err != nil {
		return nil, err
	}
	parsed, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return &Document{
		itemSelector:      config.ItemSelector,
		originalAttribute: config.OriginalAttribute,
		folderClass:       config.FolderClass,
		match:             compiled,
		logger:            logger,
		document:          parsed,
		observers:         make(map[int]func(livelist.Mutation)),
	}, nil
}

// Replace swaps in a new page, as a host does on navigation. Handles
// from the old page become foreign. Observers are not notified:
// navigation is reported to the scheduler separately.
func (document *Document) Replace(reader io.Reader) error {
	parsed, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	document.mu.Lock()
	defer document.mu.Unlock()
	document.document = parsed
	return nil
}

// Render writes the current page.
func (document *Document) Render(writer io.Writer) error {
	document.mu.Lock()
	defer document.mu.Unlock()
	return html.Render(writer, document.document.Get(0))
}

// HasList reports whether the page contains an item list.
func (document *Document) HasList() bool {
	document.mu.Lock()
	defer document.mu.Unlock()
	return document.containerLocked() != nil
}

// Observe registers fn to be called after every change that inserts or
// moves item rows. The returned function removes the observer.
func (document *Document) Observe(fn func(livelist.Mutation)) (cancel func()) {
	document.mu.Lock()
	defer document.mu.Unlock()
	id := document.nextID
	document.nextID++
	document.observers[id] = fn
	return func() {
		document.mu.Lock()
		defer document.mu.Unlock()
		delete(document.observers, id)
	}
}

// notify reports added item rows. Mutations that add no item rows are
// not relevant and are not reported. Must be called without the lock.
func (document *Document) notify(added []livelist.Item) {
	if len(added) == 0 {
		return
	}
	document.mu.Lock()
	ids := make([]int, 0, len(document.observers))
	for id := range document.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]func(livelist.Mutation), 0, len(ids))
	for _, id := range ids {
		observers = append(observers, document.observers[id])
	}
	document.mu.Unlock()

	mutation := livelist.Mutation{Added: added}
	for _, observer := range observers {
		observer(mutation)
	}
}

// containerLocked finds the item list: the closest list element of the
// first item link, or, when that link already sits in a folder, the
// list holding the folder.
func (document *Document) containerLocked() *html.Node {
	first := document.document.FindMatcher(document.match.item).First()
	if first.Length() == 0 {
		return nil
	}
	if folder := first.ClosestMatcher(document.match.folder); folder.Length() > 0 {
		return folder.Get(0).Parent
	}
	list := first.ClosestMatcher(document.match.list)
	if list.Length() == 0 {
		return nil
	}
	return list.Get(0)
}

// rowLink returns the first item link in row, or nil.
func (document *Document) rowLink(row *html.Node) *html.Node {
	if document.match.item.Match(row) {
		return row
	}
	return cascadia.Query(row, document.match.item)
}

func (document *Document) isFolder(node *html.Node) bool {
	return node.Type == html.ElementNode && document.match.folder.Match(node)
}

func (document *Document) newRow(row, link *html.Node) *Row {
	return &Row{document: document, node: row, link: link}
}

// Entries implements livelist.List.
func (document *Document) Entries() []livelist.Entry {
	document.mu.Lock()
	defer document.mu.Unlock()

	container := document.containerLocked()
	if container == nil {
		return nil
	}
	var entries []livelist.Entry
	for _, child := range elementChildren(container) {
		if document.isFolder(child) {
			entries = append(entries, livelist.Entry{Wrapper: &Folder{document: document, node: child}})
			continue
		}
		if link := document.rowLink(child); link != nil {
			entries = append(entries, livelist.Entry{Item: document.newRow(child, link)})
		}
	}
	return entries
}

// endAnchorLocked returns the container child holding the pagination
// control, or nil when the list has none.
func (document *Document) endAnchorLocked(container *html.Node) *html.Node {
	control := cascadia.Query(container, document.match.pagination)
	if control == nil {
		return nil
	}
	return childOf(container, control)
}

// Mount implements livelist.List.
func (document *Document) Mount(header livelist.Header, expanded bool, placement livelist.Placement, anchor livelist.Item) (livelist.Wrapper, error) {
	document.mu.Lock()
	defer document.mu.Unlock()

	container := document.containerLocked()
	if container == nil {
		return nil, ErrNoList
	}

	var before *html.Node
	positioned := false
	switch placement {
	case livelist.PlaceEndAnchor:
		if endAnchor := document.endAnchorLocked(container); endAnchor != nil {
			before, positioned = endAnchor, true
		}
	case livelist.PlaceTop:
		positioned = true
		for _, child := range elementChildren(container) {
			if !document.isFolder(child) {
				before = child
				break
			}
		}
	}
	if !positioned {
		row, ok := anchor.(*Row)
		if !ok || row.document != document || row.node.Parent != container {
			return nil, livelist.ErrForeignHandle
		}
		before = row.node
	}

	node := document.newFolderNode(header, expanded)
	container.InsertBefore(node, before)
	return &Folder{document: document, node: node}, nil
}

// Adopt implements livelist.List.
func (document *Document) Adopt(wrapper livelist.Wrapper, item livelist.Item) error {
	folder, ok := wrapper.(*Folder)
	if !ok || folder.document != document {
		return livelist.ErrForeignHandle
	}
	row, ok := item.(*Row)
	if !ok || row.document != document {
		return livelist.ErrForeignHandle
	}

	document.mu.Lock()
	container := document.containerLocked()
	if container == nil || folder.node.Parent != container || !isAncestor(container, row.node) {
		document.mu.Unlock()
		return livelist.ErrForeignHandle
	}
	children := folder.childrenLocked()
	if children == nil {
		document.mu.Unlock()
		return fmt.Errorf("folder %q has no children list", folder.nameLocked())
	}
	detach(row.node)
	children.AppendChild(row.node)
	document.mu.Unlock()

	document.notify([]livelist.Item{row})
	return nil
}

// Unwrap implements livelist.List.
func (document *Document) Unwrap(wrapper livelist.Wrapper) error {
	folder, ok := wrapper.(*Folder)
	if !ok || folder.document != document {
		return livelist.ErrForeignHandle
	}

	document.mu.Lock()
	container := document.containerLocked()
	if container == nil || folder.node.Parent != container {
		document.mu.Unlock()
		return livelist.ErrForeignHandle
	}
	var moved []livelist.Item
	if children := folder.childrenLocked(); children != nil {
		for _, child := range elementChildren(children) {
			detach(child)
			container.InsertBefore(child, folder.node)
			if link := document.rowLink(child); link != nil {
				moved = append(moved, document.newRow(child, link))
			}
		}
	}
	container.RemoveChild(folder.node)
	document.mu.Unlock()

	document.notify(moved)
	return nil
}

// InsertRows adds rows to the item list before its pagination control,
// or at its end when there is none. It returns the number of item rows
// inserted. Rows without an item link are inserted but not counted.
func (document *Document) InsertRows(rows []*html.Node) (int, error) {
	document.mu.Lock()
	container := document.containerLocked()
	if container == nil {
		document.mu.Unlock()
		return 0, ErrNoList
	}
	before := document.endAnchorLocked(container)
	var added []livelist.Item
	for _, row := range rows {
		detach(row)
		container.InsertBefore(row, before)
		if link := document.rowLink(row); link != nil {
			added = append(added, document.newRow(row, link))
		}
	}
	document.mu.Unlock()

	document.notify(added)
	return len(added), nil
}

func (document *Document) newFolderNode(header livelist.Header, expanded bool) *html.Node {
	count := strconv.Itoa(header.Count)
	item := element(atom.Li,
		html.Attribute{Key: "class", Val: document.folderClass},
		html.Attribute{Key: folderNameAttr, Val: header.Folder},
		html.Attribute{Key: folderCountAttr, Val: count},
	)
	details := element(atom.Details)
	if expanded {
		setAttr(details, "open", "")
	}
	summary := element(atom.Summary, html.Attribute{Key: "class", Val: document.folderClass + summaryClassTail})
	summary.AppendChild(text(header.Folder + " "))
	counter := element(atom.Span, html.Attribute{Key: "class", Val: "Counter"})
	counter.AppendChild(text(count))
	summary.AppendChild(counter)
	children := element(atom.Ul, html.Attribute{Key: "class", Val: document.folderClass + childrenTail})

	details.AppendChild(summary)
	details.AppendChild(children)
	item.AppendChild(details)
	return item
}

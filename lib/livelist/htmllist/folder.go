// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bureau-foundation/folderize/lib/livelist"
)

// Folder is the livelist.Wrapper handle for a folder element.
type Folder struct {
	document *Document
	node     *html.Node
}

func (folder *Folder) nameLocked() string {
	name, _ := getAttr(folder.node, folderNameAttr)
	return name
}

func (folder *Folder) detailsLocked() *html.Node {
	for _, child := range elementChildren(folder.node) {
		if child.DataAtom == atom.Details {
			return child
		}
	}
	return nil
}

func (folder *Folder) childrenLocked() *html.Node {
	details := folder.detailsLocked()
	if details == nil {
		return nil
	}
	for _, child := range elementChildren(details) {
		if child.DataAtom == atom.Ul || child.DataAtom == atom.Ol {
			return child
		}
	}
	return nil
}

// Header implements livelist.Wrapper.
func (folder *Folder) Header() livelist.Header {
	folder.document.mu.Lock()
	defer folder.document.mu.Unlock()
	countText, _ := getAttr(folder.node, folderCountAttr)
	count, _ := strconv.Atoi(countText)
	return livelist.Header{Folder: folder.nameLocked(), Count: count}
}

// Members implements livelist.Wrapper.
func (folder *Folder) Members() []livelist.Item {
	folder.document.mu.Lock()
	defer folder.document.mu.Unlock()
	children := folder.childrenLocked()
	if children == nil {
		return nil
	}
	var members []livelist.Item
	for _, child := range elementChildren(children) {
		if link := folder.document.rowLink(child); link != nil {
			members = append(members, folder.document.newRow(child, link))
		}
	}
	return members
}

// Expanded implements livelist.Wrapper: the <details> element is open.
func (folder *Folder) Expanded() bool {
	folder.document.mu.Lock()
	defer folder.document.mu.Unlock()
	details := folder.detailsLocked()
	if details == nil {
		return false
	}
	_, open := getAttr(details, "open")
	return open
}

// SetExpanded implements livelist.Wrapper.
func (folder *Folder) SetExpanded(expanded bool) {
	folder.document.mu.Lock()
	defer folder.document.mu.Unlock()
	details := folder.detailsLocked()
	if details == nil {
		return
	}
	if expanded {
		setAttr(details, "open", "")
	} else {
		removeAttr(details, "open")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"strings"

	"golang.org/x/net/html"
)

// Row is the livelist.Item handle for one list row. The label is the
// text of the row's item link.
type Row struct {
	document *Document
	node     *html.Node
	link     *html.Node
}

// Href returns the row link's href.
func (row *Row) Href() string {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	href, _ := getAttr(row.link, "href")
	return href
}

// Label implements livelist.Item.
func (row *Row) Label() string {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	return strings.TrimSpace(textContent(row.link))
}

// SetLabel implements livelist.Item. Only the text carrying the
// current label is rewritten; icons and other markup in the link stay.
func (row *Row) SetLabel(label string) {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	current := strings.TrimSpace(textContent(row.link))
	if current == label {
		return
	}
	if !replaceLinkText(row.link, current, label) {
		row.document.logger.Debug("row text split across elements, label unchanged",
			"label", current,
		)
	}
}

// OriginalLabel implements livelist.Item.
func (row *Row) OriginalLabel() (string, bool) {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	return getAttr(row.link, row.document.originalAttribute)
}

// SetOriginalLabel implements livelist.Item.
func (row *Row) SetOriginalLabel(label string) {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	setAttr(row.link, row.document.originalAttribute, label)
}

// ClearOriginalLabel implements livelist.Item.
func (row *Row) ClearOriginalLabel() {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	removeAttr(row.link, row.document.originalAttribute)
}

// Active implements livelist.Item: the row, its link, or anything in
// the row matches the active selector.
func (row *Row) Active() bool {
	row.document.mu.Lock()
	defer row.document.mu.Unlock()
	active := row.document.match.active
	return active.Match(row.node) || active.MatchFirst(row.node) != nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/webfetch"
)

// Attributes read from the pagination control.
const (
	CurrentPageAttribute = "data-current-page"
	TotalPagesAttribute  = "data-total-pages"
	PageURLAttribute     = "data-url"

	// PagePlaceholder in a data-url template is replaced by the page
	// number. Templates without it get a page query parameter.
	PagePlaceholder = "{page}"
)

// Fetcher loads one page body. *webfetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*webfetch.Result, error)
}

// PageSource implements pagination.Source[[]*html.Node] for a Document.
type PageSource struct {
	document *Document
	fetcher  Fetcher
	base     *url.URL
}

// NewPageSource returns a source that fetches pages with fetcher.
// Relative data-url values are resolved against base, which may be
// empty when the page uses absolute URLs.
func NewPageSource(document *Document, fetcher Fetcher, base string) (*PageSource, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	return &PageSource{document: document, fetcher: fetcher, base: parsed}, nil
}

var _ pagination.Source[[]*html.Node] = (*PageSource)(nil)

// Control implements pagination.Source. A missing control, or one with
// unparseable page numbers or no pages, means there is nothing to load.
// The Loader bounds how many of the claimed pages it fetches.
func (source *PageSource) Control(ctx context.Context) (pagination.Control, bool) {
	document := source.document
	document.mu.Lock()
	defer document.mu.Unlock()

	node := document.document.FindMatcher(document.match.pagination).First()
	if node.Length() == 0 {
		return pagination.Control{}, false
	}
	total, err := strconv.Atoi(strings.TrimSpace(node.AttrOr(TotalPagesAttribute, "")))
	if err != nil {
		document.logger.Debug("ignoring pagination control", "error", err)
		return pagination.Control{}, false
	}
	if total < 1 {
		document.logger.Debug("ignoring pagination control", "total_pages", total)
		return pagination.Control{}, false
	}
	current := 1
	if value, ok := node.Attr(CurrentPageAttribute); ok {
		current, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			document.logger.Debug("ignoring pagination control", "error", err)
			return pagination.Control{}, false
		}
	}
	template, ok := node.Attr(PageURLAttribute)
	if !ok || template == "" {
		return pagination.Control{}, false
	}
	return pagination.Control{Current: current, Total: total, URL: template}, true
}

// PageURL expands a data-url template for page and resolves it against
// base.
func PageURL(base *url.URL, template string, page int) (string, error) {
	number := strconv.Itoa(page)
	if strings.Contains(template, PagePlaceholder) {
		template = strings.ReplaceAll(template, PagePlaceholder, number)
		reference, err := url.Parse(template)
		if err != nil {
			return "", fmt.Errorf("parsing page URL %q: %w", template, err)
		}
		return base.ResolveReference(reference).String(), nil
	}
	reference, err := url.Parse(template)
	if err != nil {
		return "", fmt.Errorf("parsing page URL %q: %w", template, err)
	}
	query := reference.Query()
	query.Set("page", number)
	reference.RawQuery = query.Encode()
	return base.ResolveReference(reference).String(), nil
}

// Fetch implements pagination.Source. The body may be a fragment of
// rows or a whole page; either way the rows holding item links are
// returned, detached and in document order.
func (source *PageSource) Fetch(ctx context.Context, control pagination.Control, page int) ([]*html.Node, error) {
	target, err := PageURL(source.base, control.URL, page)
	if err != nil {
		return nil, err
	}
	result, err := source.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	rows, err := source.document.extractRows(result.Body)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return rows, nil
}

// extractRows parses body and returns the row of every item link: the
// closest <li>, or the link itself when it is not in one.
func (document *Document) extractRows(body []byte) ([]*html.Node, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	var rows []*html.Node
	seen := make(map[*html.Node]bool)
	parsed.FindMatcher(document.match.item).Each(func(_ int, link *goquery.Selection) {
		row := link.Closest("li")
		node := link.Get(0)
		if row.Length() > 0 {
			node = row.Get(0)
		}
		if seen[node] {
			return
		}
		seen[node] = true
		rows = append(rows, node)
	})
	for _, row := range rows {
		detach(row)
	}
	return rows, nil
}

// Merge implements pagination.Source.
func (source *PageSource) Merge(page int, rows []*html.Node) (int, error) {
	return source.document.InsertRows(rows)
}

// Suppress implements pagination.Source: the control is hidden and
// marked as fully loaded, so the next pass finds nothing to load.
func (source *PageSource) Suppress(control pagination.Control) {
	document := source.document
	document.mu.Lock()
	defer document.mu.Unlock()

	node := document.document.FindMatcher(document.match.pagination).First()
	if node.Length() == 0 {
		return
	}
	node.SetAttr("hidden", "")
	node.SetAttr(CurrentPageAttribute, strconv.Itoa(control.Total))
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmllist adapts an HTML page to the livelist.List interface.
//
// The page is parsed with golang.org/x/net/html and queried with
// goquery. Items are the rows of the first list that holds a link
// matching the item selector (by default, GitHub Actions workflow
// links): the row is the list's direct child element, the label is the
// link text. Folders are rendered as
//
//	<li class="folderize-folder" data-folderize-folder="ci" data-folderize-count="2">
//	  <details open>
//	    <summary class="folderize-folder-summary">ci <span class="Counter">2</span></summary>
//	    <ul class="folderize-folder-children">…rows…</ul>
//	  </details>
//	</li>
//
// and a row's full name is kept in its link's data-folderize-original
// attribute while it sits inside a folder.
//
// [PageSource] implements pagination.Source for pages whose list ends
// with a "load more" control carrying data-current-page,
// data-total-pages and data-url attributes.
//
// A [Document] serializes all tree access behind one mutex, so Render
// never observes a half-applied move.
package htmllist

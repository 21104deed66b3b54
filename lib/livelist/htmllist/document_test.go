// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/reconcile"
)

const workflowsPage = `<!DOCTYPE html>
<html><head><title>Actions</title></head><body><nav><ul class="workflows">` +
	`<li><a href="/o/r/actions">All workflows</a></li>` +
	`<li><a href="/o/r/actions/workflows/build.yml"><span>ci/build</span></a></li>` +
	`<li><a href="/o/r/actions/workflows/deploy.yml">deploy</a></li>` +
	`<li class="selected"><a href="/o/r/actions/workflows/test.yml" aria-current="page"><svg></svg> <span>ci/test</span></a></li>` +
	`<li><a href="/o/r/actions/workflows/release.yml">  .github/release  </a></li>` +
	`<li data-total-pages="3" data-current-page="1" data-url="/o/r/actions/workflows-partial?page={page}"><button>Show more workflows</button></li>` +
	`</ul></nav></body></html>`

func parse(t *testing.T, page string) *Document {
	t.Helper()
	document, err := Parse(strings.NewReader(page), Config{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return document
}

func render(t *testing.T, document *Document) string {
	t.Helper()
	var buffer bytes.Buffer
	if err := document.Render(&buffer); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buffer.String()
}

func query(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parsing rendered markup: %v", err)
	}
	return parsed
}

func labels(items []livelist.Item) []string {
	result := make([]string, len(items))
	for index, item := range items {
		result[index] = item.Label()
	}
	return result
}

func TestEntriesReadsItemRows(t *testing.T) {
	document := parse(t, workflowsPage)
	if !document.HasList() {
		t.Fatal("HasList() = false")
	}

	items := livelist.Items(document)
	if got, want := labels(items), []string{"ci/build", "deploy", "ci/test", ".github/release"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for index, item := range items {
		if want := index == 2; item.Active() != want {
			t.Errorf("%s: Active() = %v, want %v", item.Label(), item.Active(), want)
		}
	}
	if href := items[0].(*Row).Href(); href != "/o/r/actions/workflows/build.yml" {
		t.Errorf("Href() = %q", href)
	}
}

func TestReconcileProjectsIntoMarkup(t *testing.T) {
	document := parse(t, workflowsPage)

	result, err := reconcile.New(reconcile.Config{}).Reconcile(document)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Folders != 2 {
		t.Fatalf("Folders = %d, want 2", result.Folders)
	}

	rendered := query(t, render(t, document))
	ci := rendered.Find(`li.folderize-folder[data-folderize-folder="ci"]`)
	if ci.Length() != 1 {
		t.Fatalf("found %d ci folders", ci.Length())
	}
	if _, open := ci.Find("details").Attr("open"); !open {
		t.Error("ci folder holds the active row but is collapsed")
	}
	if got := strings.TrimSpace(ci.Find("summary").Text()); got != "ci 2" {
		t.Errorf("summary text = %q, want %q", got, "ci 2")
	}
	var children []string
	ci.Find("ul.folderize-folder-children > li a").Each(func(_ int, link *goquery.Selection) {
		children = append(children, strings.TrimSpace(link.Text()))
		if original, _ := link.Attr(DefaultOriginalAttribute); !strings.HasPrefix(original, "ci/") {
			t.Errorf("link %q records original %q", link.Text(), original)
		}
	})
	if want := []string{"build", "test"}; !reflect.DeepEqual(children, want) {
		t.Errorf("ci children = %v, want %v", children, want)
	}
	if svg := ci.Find(`a[aria-current="page"] svg`).Length(); svg != 1 {
		t.Error("relabelling removed the icon from the active link")
	}

	github := rendered.Find(`li.folderize-folder[data-folderize-folder=".github"]`)
	if _, open := github.Find("details").Attr("open"); open {
		t.Error(".github folder expanded without an active member")
	}
	if got := github.Find("a").Text(); got != "  release  " {
		t.Errorf(".github member text = %q, want surrounding whitespace kept", got)
	}

	var order []string
	rendered.Find("ul.workflows").Children().Each(func(_ int, child *goquery.Selection) {
		if name, ok := child.Attr(folderNameAttr); ok {
			order = append(order, "["+name+"]")
			return
		}
		order = append(order, strings.TrimSpace(child.Text()))
	})
	want := []string{"All workflows", "[ci]", "deploy", "[.github]", "Show more workflows"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("top-level order = %v, want %v", order, want)
	}
}

func TestReconcileRenderIsIdempotent(t *testing.T) {
	document := parse(t, workflowsPage)
	reconciler := reconcile.New(reconcile.Config{})

	if _, err := reconciler.Reconcile(document); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	first := render(t, document)
	if _, err := reconciler.Reconcile(document); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if second := render(t, document); second != first {
		t.Errorf("second pass changed the markup:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestReconcileWithoutFoldersLeavesMarkup(t *testing.T) {
	page := `<html><head></head><body><ul>` +
		`<li><a href="/o/r/actions/workflows/a.yml">build</a></li>` +
		`<li><a href="/o/r/actions/workflows/b.yml">/leading</a></li>` +
		`</ul></body></html>`
	document := parse(t, page)
	before := render(t, document)

	result, err := reconcile.New(reconcile.Config{}).Reconcile(document)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.Skipped {
		t.Errorf("result = %+v, want skipped", result)
	}
	if after := render(t, document); after != before {
		t.Errorf("markup changed:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestCleanupRestoresRowText(t *testing.T) {
	document := parse(t, workflowsPage)
	before := query(t, render(t, document))

	if _, err := reconcile.New(reconcile.Config{}).Reconcile(document); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	// No name contains a colon, so this pass only cleans up.
	if _, err := reconcile.New(reconcile.Config{Delimiter: ":"}).Reconcile(document); err != nil {
		t.Fatalf("cleanup Reconcile: %v", err)
	}
	after := query(t, render(t, document))

	if got, want := rowMarkup(t, after), rowMarkup(t, before); !reflect.DeepEqual(got, want) {
		t.Errorf("row markup after cleanup:\n got %v\nwant %v", got, want)
	}
	if folders := after.Find("li." + DefaultFolderClass).Length(); folders != 0 {
		t.Errorf("%d folders left after cleanup", folders)
	}
}

// rowMarkup maps each item link's href to its outer HTML.
func rowMarkup(t *testing.T, parsed *goquery.Document) map[string]string {
	t.Helper()
	rows := make(map[string]string)
	parsed.Find(`a[href*="/actions/workflows/"]`).Each(func(_ int, link *goquery.Selection) {
		markup, err := goquery.OuterHtml(link)
		if err != nil {
			t.Fatalf("OuterHtml: %v", err)
		}
		rows[link.AttrOr("href", "")] = markup
	})
	return rows
}

func TestRelabelKeepsLinkMarkup(t *testing.T) {
	tests := []struct {
		name string
		// link is the inner HTML of the build.yml row's link.
		link string
		// grouped is the build.yml link's text inside the ci folder.
		grouped string
	}{
		{"text split across elements", `<svg class="octicon"></svg>ci/<b>build</b>`, "ci/build"},
		{"nested split text", `<span class="name">ci/<em>build</em></span>`, "ci/build"},
		{"padded span", `<span> ci/build </span>`, " build "},
		{"padded span after icon", `<svg class="octicon"></svg><span>` + "\n  ci/build\n" + `</span>`, "\n  build\n"},
		{"padded text", `<svg class="octicon"></svg>  ci/build `, "  build "},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			page := `<html><head></head><body><ul>` +
				`<li><a href="/o/r/actions/workflows/build.yml">` + test.link + `</a></li>` +
				`<li><a href="/o/r/actions/workflows/lint.yml">ci/lint</a></li>` +
				`</ul></body></html>`
			document := parse(t, page)
			before := query(t, render(t, document))

			result, err := reconcile.New(reconcile.Config{}).Reconcile(document)
			if err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if result.Folders != 1 {
				t.Fatalf("Folders = %d, want 1", result.Folders)
			}

			grouped := query(t, render(t, document))
			build := grouped.Find(`li.folderize-folder a[href$="build.yml"]`)
			if build.Length() != 1 {
				t.Fatalf("build.yml row not inside the ci folder")
			}
			if got := build.Text(); got != test.grouped {
				t.Errorf("grouped link text = %q, want %q", got, test.grouped)
			}
			if wantIcons, got := strings.Count(test.link, "<svg"), build.Find("svg.octicon").Length(); got != wantIcons {
				t.Errorf("grouped link has %d icons, want %d", got, wantIcons)
			}
			if got := strings.TrimSpace(grouped.Find(`a[href$="lint.yml"]`).Text()); got != "lint" {
				t.Errorf("lint.yml link text = %q, want %q", got, "lint")
			}

			// No name contains a colon, so this pass only cleans up.
			if _, err := reconcile.New(reconcile.Config{Delimiter: ":"}).Reconcile(document); err != nil {
				t.Fatalf("cleanup Reconcile: %v", err)
			}
			after := query(t, render(t, document))
			if got, want := rowMarkup(t, after), rowMarkup(t, before); !reflect.DeepEqual(got, want) {
				t.Errorf("row markup after cleanup:\n got %v\nwant %v", got, want)
			}
		})
	}
}

func TestMountPlacements(t *testing.T) {
	tests := []struct {
		name      string
		placement livelist.Placement
		want      []string
	}{
		{"first member", livelist.PlaceFirstMember, []string{"All workflows", "[ci]", "deploy", "[.github]", "Show more workflows"}},
		{"end anchor", livelist.PlaceEndAnchor, []string{"All workflows", "deploy", "[ci]", "[.github]", "Show more workflows"}},
		{"top", livelist.PlaceTop, []string{"[ci]", "[.github]", "All workflows", "deploy", "Show more workflows"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			document := parse(t, workflowsPage)
			if _, err := reconcile.New(reconcile.Config{Placement: test.placement}).Reconcile(document); err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			var order []string
			query(t, render(t, document)).Find("ul.workflows").Children().Each(func(_ int, child *goquery.Selection) {
				if name, ok := child.Attr(folderNameAttr); ok {
					order = append(order, "["+name+"]")
					return
				}
				order = append(order, strings.TrimSpace(child.Text()))
			})
			if !reflect.DeepEqual(order, test.want) {
				t.Errorf("order = %v, want %v", order, test.want)
			}
		})
	}
}

func TestInsertRowsNotifiesOnlyForItemRows(t *testing.T) {
	document := parse(t, workflowsPage)
	var mutations []livelist.Mutation
	defer document.Observe(func(mutation livelist.Mutation) { mutations = append(mutations, mutation) })()

	rows, err := document.extractRows([]byte(`<ul><li><a href="/o/r/actions/workflows/lint.yml">ci/lint</a></li></ul>`))
	if err != nil {
		t.Fatalf("extractRows: %v", err)
	}
	added, err := document.InsertRows(rows)
	if err != nil || added != 1 {
		t.Fatalf("InsertRows = %d, %v", added, err)
	}

	decorative, err := document.extractRows([]byte(`<p>no rows here</p>`))
	if err != nil {
		t.Fatalf("extractRows: %v", err)
	}
	if _, err := document.InsertRows(decorative); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}

	if len(mutations) != 1 || len(mutations[0].Added) != 1 || mutations[0].Added[0].Label() != "ci/lint" {
		t.Fatalf("mutations = %+v, want one adding ci/lint", mutations)
	}
	items := livelist.Items(document)
	if last := items[len(items)-1].Label(); last != "ci/lint" {
		t.Errorf("last item = %q, want the inserted row before the load-more control", last)
	}
}

func TestDocumentWithoutList(t *testing.T) {
	document := parse(t, `<html><body><p>No workflows</p></body></html>`)
	if document.HasList() {
		t.Error("HasList() = true")
	}
	if entries := document.Entries(); entries != nil {
		t.Errorf("Entries() = %v, want nil", entries)
	}
	if _, err := document.InsertRows(nil); !errors.Is(err, ErrNoList) {
		t.Errorf("InsertRows error = %v, want ErrNoList", err)
	}
	result, err := reconcile.New(reconcile.Config{}).Reconcile(document)
	if err != nil || !result.Skipped {
		t.Errorf("Reconcile = %+v, %v, want a skipped pass", result, err)
	}
}

func TestReplaceInvalidatesHandles(t *testing.T) {
	document := parse(t, workflowsPage)
	stale := livelist.Items(document)[0]

	if err := document.Replace(strings.NewReader(workflowsPage)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	wrapper, err := document.Mount(livelist.Header{Folder: "ci"}, false, livelist.PlaceFirstMember, livelist.Items(document)[0])
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := document.Adopt(wrapper, stale); !errors.Is(err, livelist.ErrForeignHandle) {
		t.Errorf("Adopt with stale handle error = %v, want ErrForeignHandle", err)
	}
	if _, err := document.Mount(livelist.Header{Folder: "x"}, false, livelist.PlaceFirstMember, stale); !errors.Is(err, livelist.ErrForeignHandle) {
		t.Errorf("Mount with stale anchor error = %v, want ErrForeignHandle", err)
	}
}

func TestFolderToggle(t *testing.T) {
	document := parse(t, workflowsPage)
	if _, err := reconcile.New(reconcile.Config{}).Reconcile(document); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	folders := livelist.Wrappers(document)
	github := folders[1]
	if header := github.Header(); header.Folder != ".github" || header.Count != 1 {
		t.Fatalf("Header() = %+v", header)
	}
	github.SetExpanded(true)
	if !github.Expanded() {
		t.Error("Expanded() = false after SetExpanded(true)")
	}
	github.SetExpanded(false)
	if github.Expanded() {
		t.Error("Expanded() = true after SetExpanded(false)")
	}
}

func TestParseRejectsBadSelector(t *testing.T) {
	if _, err := Parse(strings.NewReader(workflowsPage), Config{ItemSelector: "a[href"}); err == nil {
		t.Error("Parse accepted an unterminated selector")
	}
}

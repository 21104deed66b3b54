// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/reconcile"
	"github.com/bureau-foundation/folderize/lib/webfetch"
)

func TestPageURL(t *testing.T) {
	base, err := url.Parse("https://github.com/o/r/actions")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		template string
		page     int
		want     string
	}{
		{"/o/r/actions/workflows-partial?page={page}", 2, "https://github.com/o/r/actions/workflows-partial?page=2"},
		{"/o/r/actions/workflows-partial", 3, "https://github.com/o/r/actions/workflows-partial?page=3"},
		{"/o/r/actions/workflows-partial?page=1&q=x", 4, "https://github.com/o/r/actions/workflows-partial?page=4&q=x"},
		{"https://example.com/list/{page}.html", 5, "https://example.com/list/5.html"},
		{"page-{page}.html", 2, "https://github.com/o/r/page-2.html"},
	}
	for _, test := range tests {
		got, err := PageURL(base, test.template, test.page)
		if err != nil {
			t.Errorf("PageURL(%q, %d): %v", test.template, test.page, err)
			continue
		}
		if got != test.want {
			t.Errorf("PageURL(%q, %d) = %q, want %q", test.template, test.page, got, test.want)
		}
	}
}

func TestControlParsing(t *testing.T) {
	tests := []struct {
		name    string
		control string
		want    pagination.Control
		ok      bool
	}{
		{"complete", `<li data-total-pages="3" data-current-page="1" data-url="/p?page={page}"></li>`, pagination.Control{Current: 1, Total: 3, URL: "/p?page={page}"}, true},
		{"current defaults to one", `<li data-total-pages="2" data-url="/p"></li>`, pagination.Control{Current: 1, Total: 2, URL: "/p"}, true},
		{"bad total", `<li data-total-pages="many" data-url="/p"></li>`, pagination.Control{}, false},
		{"no url", `<li data-total-pages="2"></li>`, pagination.Control{}, false},
		{"zero total", `<li data-total-pages="0" data-url="/p"></li>`, pagination.Control{}, false},
		{"negative total", `<li data-total-pages="-5" data-url="/p"></li>`, pagination.Control{}, false},
		{"overflowing total", `<li data-total-pages="99999999999999999999999" data-url="/p"></li>`, pagination.Control{}, false},
		{"huge total", `<li data-total-pages="` + strconv.Itoa(math.MaxInt) + `" data-url="/p"></li>`, pagination.Control{Current: 1, Total: math.MaxInt, URL: "/p"}, true},
		{"absent", ``, pagination.Control{}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			page := `<ul><li><a href="/o/r/actions/workflows/a.yml">a</a></li>` + test.control + `</ul>`
			source, err := NewPageSource(parse(t, page), webfetch.New(webfetch.Config{}), "")
			if err != nil {
				t.Fatalf("NewPageSource: %v", err)
			}
			control, ok := source.Control(context.Background())
			if ok != test.ok || !reflect.DeepEqual(control, test.want) {
				t.Errorf("Control() = %+v, %v, want %+v, %v", control, ok, test.want, test.ok)
			}
		})
	}
}

func TestPageSourceLoadsRemainingPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Query().Get("page") {
		case "2":
			// A fragment of rows, as the "show more" endpoint returns.
			writer.Write([]byte(`<li><a href="/o/r/actions/workflows/lint.yml"><span>ci/lint</span></a></li>` +
				`<li><a href="/o/r/actions/workflows/docs.yml">docs/site</a></li>`))
		case "3":
			// A whole page.
			writer.Write([]byte(`<html><body><ul><li><a href="/o/r/actions/workflows/nightly.yml">nightly</a></li></ul>` +
				`<li data-total-pages="3"><button>Show more</button></li></body></html>`))
		default:
			http.NotFound(writer, request)
		}
	}))
	defer server.Close()

	document := parse(t, workflowsPage)
	source, err := NewPageSource(document, webfetch.New(webfetch.Config{}), server.URL)
	if err != nil {
		t.Fatalf("NewPageSource: %v", err)
	}

	result := pagination.New[[]*html.Node](source, pagination.Config{}).Load(context.Background())
	if result.Fetched != 2 || result.Merged != 3 || result.Partial() {
		t.Fatalf("Load result = %+v", result)
	}

	want := []string{"ci/build", "deploy", "ci/test", ".github/release", "ci/lint", "docs/site", "nightly"}
	if got := labels(livelist.Items(document)); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if control, ok := source.Control(context.Background()); !ok || control.Current != 3 {
		t.Errorf("Control() after load = %+v, %v, want current page 3", control, ok)
	}
	rendered := query(t, render(t, document))
	if _, hidden := rendered.Find("[data-total-pages]").Attr("hidden"); !hidden {
		t.Error("load-more control still visible")
	}

	// A second load finds nothing left to fetch.
	if again := pagination.New[[]*html.Node](source, pagination.Config{}).Load(context.Background()); again.Requested != 0 {
		t.Errorf("second Load requested %d pages", again.Requested)
	}

	reconciled, err := reconcile.New(reconcile.Config{}).Reconcile(document)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if reconciled.Folders != 3 || reconciled.Grouped != 5 {
		t.Errorf("reconcile result = %+v, want 3 folders holding 5 rows", reconciled)
	}
}

func TestPageSourceHugeTotalStopsAtPageLimit(t *testing.T) {
	var mu sync.Mutex
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		page := request.URL.Query().Get("page")
		mu.Lock()
		requested = append(requested, page)
		mu.Unlock()
		writer.Write([]byte(`<li><a href="/o/r/actions/workflows/p` + page + `.yml">ci/p` + page + `</a></li>`))
	}))
	defer server.Close()

	page := strings.Replace(workflowsPage, `data-total-pages="3"`, `data-total-pages="`+strconv.Itoa(math.MaxInt)+`"`, 1)
	document := parse(t, page)
	source, err := NewPageSource(document, webfetch.New(webfetch.Config{}), server.URL)
	if err != nil {
		t.Fatalf("NewPageSource: %v", err)
	}

	result := pagination.New[[]*html.Node](source, pagination.Config{MaxPages: 3}).Load(context.Background())
	if result.Requested != 2 || result.Fetched != 2 || result.Partial() {
		t.Fatalf("Load result = %+v, want pages 2 and 3 only", result)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(requested) != 2 {
		t.Errorf("server saw %d requests (%v), want 2", len(requested), requested)
	}
	want := []string{"ci/build", "deploy", "ci/test", ".github/release", "ci/p2", "ci/p3"}
	if got := labels(livelist.Items(document)); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestPageSourceFailedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("page") == "2" {
			http.Error(writer, "unavailable", http.StatusServiceUnavailable)
			return
		}
		writer.Write([]byte(`<li><a href="/o/r/actions/workflows/late.yml">ci/late</a></li>`))
	}))
	defer server.Close()

	document := parse(t, workflowsPage)
	source, err := NewPageSource(document, webfetch.New(webfetch.Config{}), server.URL)
	if err != nil {
		t.Fatalf("NewPageSource: %v", err)
	}

	result := pagination.New[[]*html.Node](source, pagination.Config{}).Load(context.Background())
	if !reflect.DeepEqual(result.Failed, []int{2}) || result.Merged != 1 {
		t.Errorf("result = %+v, want page 2 failed and one row merged", result)
	}
	if items := livelist.Items(document); !strings.HasPrefix(items[len(items)-1].Label(), "ci/late") {
		t.Errorf("last row = %q, want page 3's row", items[len(items)-1].Label())
	}
}

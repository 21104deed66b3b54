// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflowsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/bureau-foundation/folderize/lib/clock"
	"github.com/bureau-foundation/folderize/lib/engine"
	"github.com/bureau-foundation/folderize/lib/github"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/reconcile"
	"github.com/bureau-foundation/folderize/lib/scheduler"
)

// repository serves the workflows endpoint for a fixed list of
// workflow names, failing the pages listed in failing.
type repository struct {
	mu       sync.Mutex
	names    []string
	failing  map[int]bool
	requests []int
}

func (repo *repository) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(request.URL.Query().Get("per_page"))

	repo.mu.Lock()
	repo.requests = append(repo.requests, page)
	names := slices.Clone(repo.names)
	failing := repo.failing[page]
	repo.mu.Unlock()

	if failing {
		writer.WriteHeader(http.StatusInternalServerError)
		writer.Write([]byte(`{"message":"Server Error"}`))
		return
	}

	result := github.WorkflowsPage{TotalCount: len(names)}
	start := (page - 1) * perPage
	for index := start; index < start+perPage && index < len(names); index++ {
		result.Workflows = append(result.Workflows, github.Workflow{
			ID:      int64(index + 1),
			Name:    names[index],
			Path:    fmt.Sprintf(".github/workflows/w%d.yml", index+1),
			HTMLURL: fmt.Sprintf("https://github.com/octo/hello/actions/workflows/w%d.yml", index+1),
		})
	}
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(result)
}

func (repo *repository) requested() []int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	pages := slices.Clone(repo.requests)
	slices.Sort(pages)
	return pages
}

func newClient(t *testing.T, repo *repository) *github.Client {
	t.Helper()
	server := httptest.NewTLSServer(repo)
	t.Cleanup(server.Close)
	client, err := github.NewClient(github.Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clock.Real(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func labels(list *livelist.Memory) []string {
	var result []string
	for _, item := range livelist.Items(list) {
		result = append(result, item.Label())
	}
	return result
}

var fiveWorkflows = []string{"ci/build", "deploy", "ci/test", "release/tag", "lint"}

func TestOpenLoadsFirstPage(t *testing.T) {
	repo := &repository{names: fiveWorkflows}
	list := livelist.NewMemory()
	source, err := Open(context.Background(), list, Config{
		Lister:  newClient(t, repo),
		Owner:   "octo",
		Repo:    "hello",
		PerPage: 2,
		Active:  ".github/workflows/w2.yml",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := labels(list); !slices.Equal(got, []string{"ci/build", "deploy"}) {
		t.Errorf("labels = %v", got)
	}
	if !list.MoreRow() {
		t.Error("more row hidden with pages remaining")
	}
	if source.Total() != 3 {
		t.Errorf("Total = %d, want 3", source.Total())
	}
	items := livelist.Items(list)
	if items[0].Active() || !items[1].Active() {
		t.Error("active row not marked from Config.Active")
	}

	control, ok := source.Control(context.Background())
	if !ok || control.Current != 1 || control.Total != 3 {
		t.Errorf("Control = %+v, %v", control, ok)
	}
}

func TestLoadCompletesList(t *testing.T) {
	repo := &repository{names: fiveWorkflows}
	list := livelist.NewMemory()
	source, err := Open(context.Background(), list, Config{
		Lister: newClient(t, repo), Owner: "octo", Repo: "hello", PerPage: 2,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result := pagination.New[[]github.Workflow](source, pagination.Config{}).Load(context.Background())
	if result.Requested != 2 || result.Fetched != 2 || result.Merged != 3 || result.Partial() {
		t.Errorf("result = %+v", result)
	}
	if got := labels(list); !slices.Equal(got, fiveWorkflows) {
		t.Errorf("labels = %v, want %v", got, fiveWorkflows)
	}
	if list.MoreRow() {
		t.Error("more row still shown after loading")
	}
	if _, ok := source.Control(context.Background()); ok {
		t.Error("control still reported after Suppress")
	}
	if got := repo.requested(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("requested pages = %v", got)
	}
}

func TestLoadSkipsFailedPage(t *testing.T) {
	repo := &repository{names: fiveWorkflows, failing: map[int]bool{2: true}}
	list := livelist.NewMemory()
	source, err := Open(context.Background(), list, Config{
		Lister: newClient(t, repo), Owner: "octo", Repo: "hello", PerPage: 2,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result := pagination.New[[]github.Workflow](source, pagination.Config{MaxConcurrency: 2}).Load(context.Background())
	if !slices.Equal(result.Failed, []int{2}) || result.Fetched != 1 {
		t.Errorf("result = %+v, want page 2 failed", result)
	}
	want := []string{"ci/build", "deploy", "lint"}
	if got := labels(list); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if list.MoreRow() {
		t.Error("more row shown after a partial load")
	}
}

func TestSinglePageHasNoControl(t *testing.T) {
	repo := &repository{names: []string{"ci/build"}}
	list := livelist.NewMemory()
	source, err := Open(context.Background(), list, Config{
		Lister: newClient(t, repo), Owner: "octo", Repo: "hello",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := source.Control(context.Background()); ok {
		t.Error("single page reported a pagination control")
	}
	if list.MoreRow() {
		t.Error("more row shown for a single page")
	}
}

func TestOpenErrors(t *testing.T) {
	failing := &repository{names: fiveWorkflows, failing: map[int]bool{1: true}}
	client := newClient(t, failing)

	tests := []struct {
		name   string
		list   *livelist.Memory
		config Config
	}{
		{"nil list", nil, Config{Lister: client, Owner: "o", Repo: "r"}},
		{"no lister", livelist.NewMemory(), Config{Owner: "o", Repo: "r"}},
		{"no repo", livelist.NewMemory(), Config{Lister: client, Owner: "o"}},
		{"page too large", livelist.NewMemory(), Config{Lister: client, Owner: "o", Repo: "r", PerPage: 500}},
		{"first page fails", livelist.NewMemory(), Config{Lister: client, Owner: "o", Repo: "r"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Open(context.Background(), test.list, test.config); err == nil {
				t.Error("Open succeeded")
			}
		})
	}
}

func TestNavigationPassReloads(t *testing.T) {
	repo := &repository{names: fiveWorkflows}
	list := livelist.NewMemory()
	source, err := Open(context.Background(), list, Config{
		Lister: newClient(t, repo), Owner: "octo", Repo: "hello", PerPage: 2,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	pipeline, err := engine.New(engine.Config{
		List:       list,
		Reconciler: reconcile.New(reconcile.Config{}),
		Loader:     pagination.New[[]github.Workflow](source, pagination.Config{}),
		Prepare:    source.Prepare,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	if _, err := pipeline.Pass(context.Background(), scheduler.TriggerMutation); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(livelist.Wrappers(list)) != 2 {
		t.Fatalf("wrappers = %d, want ci and release", len(livelist.Wrappers(list)))
	}

	repo.mu.Lock()
	repo.names = append(slices.Clone(fiveWorkflows), "ci/deploy")
	repo.mu.Unlock()

	report, err := pipeline.Pass(context.Background(), scheduler.TriggerNavigation)
	if err != nil {
		t.Fatalf("navigation pass: %v", err)
	}
	if report.Pages.Requested != 2 {
		t.Errorf("navigation pass requested %d pages, want 2", report.Pages.Requested)
	}
	if list.Len() != 6 {
		t.Errorf("Len = %d, want 6 after reload", list.Len())
	}

	snapshot := reconcile.Snapshot(list)
	var ci *reconcile.Entry
	for index := range snapshot {
		if snapshot[index].Kind == reconcile.KindFolder && snapshot[index].Label == "ci" {
			ci = &snapshot[index]
		}
	}
	if ci == nil || ci.Count != 3 {
		t.Fatalf("ci folder = %+v, want 3 members", ci)
	}
}

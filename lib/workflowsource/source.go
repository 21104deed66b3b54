// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflowsource presents a repository's GitHub Actions
// workflows as a paged livelist.Memory. Opening a source loads page 1
// into the list; the remaining pages are completed through a
// pagination.Loader, for which [Source] is the pagination.Source.
package workflowsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/folderize/lib/github"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/scheduler"
)

// DefaultPerPage is the REST API's default page size.
const DefaultPerPage = 30

// Lister fetches one page of workflows. *github.Client satisfies it.
type Lister interface {
	ListWorkflowsPage(ctx context.Context, owner, repo string, page, perPage int) (*github.WorkflowsPage, error)
}

// Config configures a Source.
type Config struct {
	// Lister is required.
	Lister Lister

	// Owner and Repo name the repository. Both required.
	Owner string
	Repo  string

	// PerPage defaults to DefaultPerPage.
	PerPage int

	// Active is the path of the workflow to mark as the current row
	// (for example ".github/workflows/ci.yml"). Optional.
	Active string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Source loads workflows into a livelist.Memory.
type Source struct {
	list    *livelist.Memory
	lister  Lister
	owner   string
	repo    string
	perPage int
	active  string
	logger  *slog.Logger

	mu         sync.Mutex
	total      int
	suppressed bool
}

// Open validates config, loads page 1 into list, and returns the
// source for the remaining pages. The list's "load more" row is shown
// when more than one page exists.
func Open(ctx context.Context, list *livelist.Memory, config Config) (*Source, error) {
	if list == nil {
		return nil, errors.New("workflowsource: list is required")
	}
	if config.Lister == nil {
		return nil, errors.New("workflowsource: lister is required")
	}
	if config.Owner == "" || config.Repo == "" {
		return nil, fmt.Errorf("workflowsource: owner and repo are required (got %q/%q)", config.Owner, config.Repo)
	}
	perPage := config.PerPage
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if perPage < 1 || perPage > github.MaxPerPage {
		return nil, fmt.Errorf("workflowsource: per page must be between 1 and %d (got %d)", github.MaxPerPage, perPage)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	source := &Source{
		list:    list,
		lister:  config.Lister,
		owner:   config.Owner,
		repo:    config.Repo,
		perPage: perPage,
		active:  config.Active,
		logger:  logger.With("repository", config.Owner+"/"+config.Repo),
	}
	if err := source.Reload(ctx); err != nil {
		return nil, err
	}
	return source, nil
}

// List returns the list the source populates.
func (source *Source) List() *livelist.Memory { return source.list }

// Total returns the page count reported by the last reload.
func (source *Source) Total() int {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.total
}

// Reload replaces the list contents with page 1, discarding any
// projection, and re-arms pagination. This is the navigation reset.
func (source *Source) Reload(ctx context.Context) error {
	first, err := source.lister.ListWorkflowsPage(ctx, source.owner, source.repo, 1, source.perPage)
	if err != nil {
		return fmt.Errorf("workflowsource: loading %s/%s: %w", source.owner, source.repo, err)
	}
	total := first.TotalPages(source.perPage)

	source.mu.Lock()
	source.total = total
	source.suppressed = false
	source.mu.Unlock()

	source.list.SetMoreRow(total > 1)
	source.list.Reset(source.entries(first.Workflows)...)
	source.logger.Debug("loaded first workflows page",
		"workflows", len(first.Workflows),
		"total_count", first.TotalCount,
		"pages", total,
	)
	return nil
}

// Prepare reloads page 1 on navigation passes. Its signature matches
// engine.Config.Prepare.
func (source *Source) Prepare(ctx context.Context, trigger scheduler.Trigger) error {
	if trigger != scheduler.TriggerNavigation {
		return nil
	}
	return source.Reload(ctx)
}

// Control reports pages 2..Total as remaining until Suppress is
// called. A single-page repository has no pagination control.
func (source *Source) Control(ctx context.Context) (pagination.Control, bool) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if source.suppressed || source.total <= 1 {
		return pagination.Control{}, false
	}
	return pagination.Control{
		Current: 1,
		Total:   source.total,
		URL:     source.owner + "/" + source.repo,
	}, true
}

// Fetch loads one page of workflows.
func (source *Source) Fetch(ctx context.Context, control pagination.Control, page int) ([]github.Workflow, error) {
	result, err := source.lister.ListWorkflowsPage(ctx, source.owner, source.repo, page, source.perPage)
	if err != nil {
		return nil, err
	}
	return result.Workflows, nil
}

// Merge appends a page's workflows to the list.
func (source *Source) Merge(page int, workflows []github.Workflow) (int, error) {
	added := source.list.Append(source.entries(workflows)...)
	return len(added), nil
}

// Suppress hides the "load more" row and stops reporting a control
// until the next Reload.
func (source *Source) Suppress(control pagination.Control) {
	source.mu.Lock()
	source.suppressed = true
	source.mu.Unlock()
	source.list.SetMoreRow(false)
}

func (source *Source) entries(workflows []github.Workflow) []livelist.MemoryEntry {
	entries := make([]livelist.MemoryEntry, 0, len(workflows))
	for _, workflow := range workflows {
		label := workflow.Name
		if label == "" {
			label = workflow.Path
		}
		entries = append(entries, livelist.MemoryEntry{
			Key:    workflow.HTMLURL,
			Label:  label,
			Active: source.active != "" && workflow.Path == source.active,
		})
	}
	return entries
}

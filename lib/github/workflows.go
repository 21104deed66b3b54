// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// MaxPerPage is the largest page size the workflows endpoint accepts.
const MaxPerPage = 100

// Workflow is a GitHub Actions workflow. Name is the display name from
// the workflow file's name: key, which is what folders group by.
type Workflow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	State     string    `json:"state"`
	HTMLURL   string    `json:"html_url"`
	BadgeURL  string    `json:"badge_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowsPage is one page of a repository's workflows.
type WorkflowsPage struct {
	// TotalCount is the number of workflows in the repository.
	TotalCount int `json:"total_count"`

	Workflows []Workflow `json:"workflows"`

	// LastPage is the page number of the rel="last" link, or zero when
	// the response carried none.
	LastPage int `json:"-"`
}

// TotalPages returns how many pages of perPage workflows exist,
// preferring the Link header and falling back to TotalCount.
func (page *WorkflowsPage) TotalPages(perPage int) int {
	if page.LastPage > 0 {
		return page.LastPage
	}
	if perPage <= 0 || page.TotalCount == 0 {
		return 1
	}
	return (page.TotalCount + perPage - 1) / perPage
}

// ListWorkflowsPage fetches one page (counting from 1) of the
// workflows in owner/repo.
func (client *Client) ListWorkflowsPage(ctx context.Context, owner, repo string, page, perPage int) (*WorkflowsPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("github: page must be at least 1 (got %d)", page)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, fmt.Errorf("github: per_page must be between 1 and %d (got %d)", MaxPerPage, perPage)
	}

	query := url.Values{}
	query.Set("per_page", fmt.Sprint(perPage))
	query.Set("page", fmt.Sprint(page))
	path := fmt.Sprintf("/repos/%s/%s/actions/workflows?%s",
		url.PathEscape(owner), url.PathEscape(repo), query.Encode())

	body, header, err := client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result WorkflowsPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("github: decoding workflows page %d: %w", page, err)
	}
	result.LastPage = lastPage(header.Get("Link"))
	return &result, nil
}

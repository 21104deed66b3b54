// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bureau-foundation/folderize/lib/clock"
	"github.com/bureau-foundation/folderize/lib/netutil"
	"github.com/bureau-foundation/folderize/lib/version"
)

// githubAPIVersion pins the REST API version header.
const githubAPIVersion = "2022-11-28"

// DefaultBaseURL is the base URL for the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// DefaultBaseURL. Must use HTTPS.
	BaseURL string

	// Token is a personal access token or fine-grained token. Empty
	// means anonymous requests, which only see public repositories and
	// have a much lower rate limit.
	Token string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time for rate limit waits. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a GitHub REST API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       authenticator
	rateLimit  *rateLimitTracker
	etagCache  *etagCache
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient creates a client. Returns an error for a non-HTTPS base
// URL.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var auth authenticator = anonymousAuth{}
	if config.Token != "" {
		auth = newTokenAuth(config.Token)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		auth:       auth,
		rateLimit:  newRateLimitTracker(clk),
		etagCache:  newETagCache(),
		clock:      clk,
		logger:     logger,
	}, nil
}

// get executes an authenticated GET and returns the body and headers.
// Handles rate limit waits, one backoff retry on a rate limit response,
// and ETag caching. Non-2xx responses return an *APIError.
func (client *Client) get(ctx context.Context, path string) ([]byte, http.Header, error) {
	return client.getWithRetry(ctx, path, false)
}

func (client *Client) getWithRetry(ctx context.Context, path string, isRetry bool) ([]byte, http.Header, error) {
	url := client.baseURL + path
	response, err := client.doRaw(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotModified {
		if cached := client.etagCache.body(url); cached != nil {
			return cached, response.Header, nil
		}
	}

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		// One retry only: persistent rate limiting is reported, not
		// waited out forever.
		if !isRetry && (response.StatusCode == http.StatusTooManyRequests ||
			(response.StatusCode == http.StatusForbidden && isRateLimitMessage(string(body)))) {
			if retryDuration := client.rateLimit.retryAfter(response.Header); retryDuration > 0 {
				client.logger.Info("rate limited, backing off",
					"duration", retryDuration,
					"path", path,
				)
				select {
				case <-client.clock.After(retryDuration):
				case <-ctx.Done():
					return nil, nil, ctx.Err()
				}
				return client.getWithRetry(ctx, path, true)
			}
		}
		return nil, nil, parseAPIError(response.StatusCode, body)
	}

	if etag := response.Header.Get("ETag"); etag != "" {
		client.etagCache.put(url, etag, body)
	}
	return body, response.Header, nil
}

// doRaw sends an authenticated GET after any preemptive rate limit
// wait. The caller closes the response body.
func (client *Client) doRaw(ctx context.Context, url string) (*http.Response, error) {
	if err := client.rateLimit.wait(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	if header := client.auth.AuthorizationHeader(); header != "" {
		request.Header.Set("Authorization", header)
	}
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	request.Header.Set("User-Agent", "folderize/"+version.Short())
	if etag := client.etagCache.get(url); etag != "" {
		request.Header.Set("If-None-Match", etag)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", url, err)
	}
	client.rateLimit.update(response.Header)
	return response, nil
}

// parseAPIError builds an *APIError from a status code and body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string            `json:"message"`
		DocumentationURL string            `json:"documentation_url"`
		Errors           []ValidationError `json:"errors"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
		apiError.Errors = wireError.Errors
	} else {
		apiError.Message = string(body)
	}
	return apiError
}

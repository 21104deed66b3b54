// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package webfetch fetches list pages over HTTP.
//
// A [Fetcher] wraps an http.Client with a request timeout, a fixed
// User-Agent, a redirect cap, and a bound on body size. Fetchers are
// safe for concurrent use; the pagination loader shares one across its
// page goroutines.
package webfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bureau-foundation/folderize/lib/netutil"
	"github.com/bureau-foundation/folderize/lib/version"
)

const (
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize bounds a page body: 8 MB.
	DefaultMaxBodySize int64 = 8 << 20

	maxRedirects = 5
)

// Config configures a Fetcher. Zero values select the defaults.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64

	// Headers are added to every request.
	Headers map[string]string

	// AllowFiles enables file:// URLs, resolved against the root
	// filesystem. Used when the document itself is a local file.
	AllowFiles bool

	// Transport overrides the HTTP transport. Tests use it to route
	// requests to an httptest server.
	Transport http.RoundTripper
}

// Result is one fetched page.
type Result struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d %s", err.URL, err.StatusCode, http.StatusText(err.StatusCode))
}

// Fetcher fetches pages.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
}

// New returns a Fetcher.
func New(config Config) *Fetcher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "folderize/" + version.Short()
	}
	maxBodySize := config.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	transport := config.Transport
	if transport == nil {
		base := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		}
		if config.AllowFiles {
			base.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		}
		transport = base
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(request *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		headers:     config.Headers,
	}
}

// Fetch retrieves url. Any status other than 200 is a *StatusError.
func (fetcher *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	request.Header.Set("User-Agent", fetcher.userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for key, value := range fetcher.headers {
		request.Header.Set(key, value)
	}

	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &StatusError{
			URL:        url,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}

	body, err := netutil.ReadLimited(response.Body, fetcher.maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return &Result{
		URL:         url,
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/net/html"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/config"
	"github.com/bureau-foundation/folderize/lib/engine"
	"github.com/bureau-foundation/folderize/lib/livelist/htmllist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/scheduler"
	"github.com/bureau-foundation/folderize/lib/webfetch"
)

// formatHTML writes the grouped document itself rather than a
// snapshot of it.
const formatHTML = "html"

// documentOptions are the flags shared by html and watch.
type documentOptions struct {
	commonOptions
	output  string
	format  string
	baseURL string
}

func (options *documentOptions) register(flagSet *pflag.FlagSet) {
	options.commonOptions.register(flagSet)
	flagSet.StringVarP(&options.output, "output", "o", "", "write output to this file instead of stdout")
	flagSet.StringVar(&options.format, "format", formatHTML, "output format: html, text, json, yaml or cbor")
	flagSet.StringVar(&options.baseURL, "base-url", "", "resolve relative page URLs against this URL (default: the document's own location)")
}

func htmlCommand(stdout io.Writer) *cli.Command {
	var options documentOptions
	const usage = "folderize html <file|url> [flags]"

	return &cli.Command{
		Name:    "html",
		Summary: "Group the item list of an HTML document",
		Description: `Load an HTML document, complete its paged item list, group the items
into folders, and write the result.

The document is a local file or an http(s) URL. Remaining pages
named by the pagination control are fetched concurrently and merged
into the list before grouping. With --format html (the default) the
grouped document is written; the other formats describe the grouped
list.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("html", pflag.ContinueOnError)
			options.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Group a saved page and write it back out",
				Command:     "folderize html actions.html -o grouped.html",
			},
			{
				Description: "Show the folders of a live page as a tree",
				Command:     "folderize html https://example.com/actions --format text",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, usage); err != nil {
				return err
			}
			return runHTML(ctx, args[0], &options, stdout)
		},
	}
}

func runHTML(ctx context.Context, location string, options *documentOptions, stdout io.Writer) error {
	cfg, level, err := options.load()
	if err != nil {
		return err
	}
	if err := validateDocumentFormat(options.format); err != nil {
		return err
	}
	logger := cli.NewCommandLogger(level).With("command", "html", "document", location)

	fetcher := newFetcher(cfg)
	body, base, err := readDocument(ctx, location, fetcher)
	if err != nil {
		return err
	}
	if options.baseURL != "" {
		base = options.baseURL
	}

	pipeline, err := newDocumentPipeline(cfg, bytes.NewReader(body), base, fetcher, nil, nil, logger)
	if err != nil {
		return err
	}
	report, err := pipeline.engine.Pass(ctx, scheduler.TriggerMutation)
	if err != nil {
		return cli.Internal("grouping %s: %w", location, err)
	}
	return pipeline.write(options, report, stdout)
}

// documentPipeline is a parsed document with the engine that groups it.
type documentPipeline struct {
	document *htmllist.Document
	engine   *engine.Engine
}

// newDocumentPipeline parses body and wires its page source, loader
// and reconciler into an engine. prepare and metrics may be nil.
func newDocumentPipeline(
	cfg *config.Config,
	body io.Reader,
	base string,
	fetcher htmllist.Fetcher,
	prepare func(context.Context, scheduler.Trigger) error,
	metrics *engine.Metrics,
	logger *slog.Logger,
) (*documentPipeline, error) {
	document, err := htmllist.Parse(body, htmlConfig(cfg, logger))
	if err != nil {
		return nil, cli.Validation("parsing document: %w", err)
	}
	if !document.HasList() {
		logger.Warn("document has no item list; output is unchanged",
			"item_selector", cfg.HTML.ItemSelector)
	}

	source, err := htmllist.NewPageSource(document, fetcher, base)
	if err != nil {
		return nil, cli.Validation("--base-url: %w", err)
	}
	loader := pagination.New[[]*html.Node](source, pagination.Config{
		MaxConcurrency: cfg.Fetch.MaxConcurrency,
		MaxPages:       cfg.Fetch.MaxPages,
		Logger:         logger,
	})

	groupingEngine, err := engine.New(engine.Config{
		List:       document,
		Reconciler: newReconciler(cfg, logger),
		Loader:     loader,
		Prepare:    prepare,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, cli.Internal("creating engine: %w", err)
	}
	return &documentPipeline{document: document, engine: groupingEngine}, nil
}

// write emits the document or its snapshot as options select.
func (pipeline *documentPipeline) write(options *documentOptions, report engine.Report, stdout io.Writer) error {
	err := writeOutput(options.output, stdout, func(w io.Writer) error {
		if options.format == formatHTML {
			return pipeline.document.Render(w)
		}
		format, err := parseSnapshotFormat(options.format)
		if err != nil {
			return err
		}
		return writeSnapshot(w, format, report, pipeline.document)
	})
	if err != nil {
		return cli.Internal("writing output: %w", err)
	}
	return nil
}

// validateDocumentFormat accepts html plus every snapshot format.
func validateDocumentFormat(name string) error {
	if name == formatHTML {
		return nil
	}
	_, err := parseSnapshotFormat(name)
	return err
}

func newFetcher(cfg *config.Config) *webfetch.Fetcher {
	return webfetch.New(webfetch.Config{
		Timeout:     cfg.FetchTimeout(),
		UserAgent:   cfg.Fetch.UserAgent,
		MaxBodySize: cfg.Fetch.MaxResponseBytes,
		AllowFiles:  cfg.Fetch.AllowFiles,
	})
}

// isRemote reports whether location names an http(s) document.
func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// readDocument loads a document from a file or URL. base is the
// location pages resolve against: the final URL after redirects, or a
// file:// URL for local files.
func readDocument(ctx context.Context, location string, fetcher *webfetch.Fetcher) (body []byte, base string, err error) {
	if isRemote(location) {
		result, err := fetcher.Fetch(ctx, location)
		if err != nil {
			return nil, "", fetchError(location, err)
		}
		return result.Body, result.URL, nil
	}

	body, err = os.ReadFile(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", cli.NotFound("document %s does not exist", location)
		}
		return nil, "", cli.Internal("reading document: %w", err)
	}
	return body, fileURL(location), nil
}

// fileURL returns the file:// URL of path, made absolute.
func fileURL(path string) string {
	absolute, err := filepath.Abs(path)
	if err != nil {
		absolute = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(absolute)}).String()
}

// fetchError categorizes a document fetch failure.
func fetchError(location string, err error) error {
	var statusError *webfetch.StatusError
	if errors.As(err, &statusError) {
		switch {
		case statusError.StatusCode == http.StatusNotFound || statusError.StatusCode == http.StatusGone:
			return cli.NotFound("fetching %s: %w", location, err)
		case statusError.StatusCode >= 500 || statusError.StatusCode == http.StatusTooManyRequests:
			return cli.Transient("fetching %s: %w", location, err)
		default:
			return cli.Validation("fetching %s: %w", location, err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return cli.Transient("fetching %s: %w", location, err).
		WithHint("Check the URL and the network connection, or raise fetch.timeout.")
}

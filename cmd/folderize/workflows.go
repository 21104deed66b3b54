// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/codec"
	"github.com/bureau-foundation/folderize/lib/config"
	"github.com/bureau-foundation/folderize/lib/engine"
	"github.com/bureau-foundation/folderize/lib/foldertui"
	"github.com/bureau-foundation/folderize/lib/github"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/pagination"
	"github.com/bureau-foundation/folderize/lib/scheduler"
	"github.com/bureau-foundation/folderize/lib/workflowsource"
)

type workflowsOptions struct {
	commonOptions
	perPage   int
	active    string
	format    string
	tui       bool
	logOutput string
}

func workflowsCommand(stdout io.Writer) *cli.Command {
	var options workflowsOptions
	const usage = "folderize workflows <owner>/<repo> [flags]"

	return &cli.Command{
		Name:    "workflows",
		Summary: "List a repository's GitHub Actions workflows in folders",
		Description: `List the GitHub Actions workflows of a repository, grouped into
folders by the text before the delimiter in each workflow name.

The first page is fetched, then the remaining pages concurrently. A
page that fails is logged and skipped. The token is read from the
environment variable named by github.token_env (GITHUB_TOKEN by
default); without one only public repositories are visible.

With --tui the folders are shown in an interactive viewer: arrows
move, enter toggles a folder, r reloads the list from page one.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("workflows", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.IntVar(&options.perPage, "per-page", 0, "workflows per API page, 1 to 100 (default: github.per_page)")
			flagSet.StringVar(&options.active, "active", "", "workflow path to mark as current (e.g. .github/workflows/ci.yml)")
			flagSet.StringVar(&options.format, "format", string(codec.Text), "output format: text, json, yaml or cbor")
			flagSet.BoolVar(&options.tui, "tui", false, "browse the folders interactively")
			flagSet.StringVar(&options.logOutput, "log-output", "", "with --tui, write JSON log records to this file")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Print the folders of a repository",
				Command:     "folderize workflows octo/hello",
			},
			{
				Description: "Browse interactively with the CI workflow highlighted",
				Command:     "folderize workflows octo/hello --tui --active .github/workflows/ci.yml",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, usage); err != nil {
				return err
			}
			return runWorkflows(ctx, args[0], &options, stdout)
		},
	}
}

// parseRepository splits "owner/repo".
func parseRepository(name string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(name, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", cli.Validation("repository must be owner/repo, got %q", name)
	}
	return owner, repo, nil
}

// workflowsSession is a repository's workflows loaded into a list with
// the engine that groups them.
type workflowsSession struct {
	list   *livelist.Memory
	source *workflowsource.Source
	engine *engine.Engine
}

func runWorkflows(ctx context.Context, repository string, options *workflowsOptions, stdout io.Writer) error {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return err
	}
	cfg, level, err := options.load()
	if err != nil {
		return err
	}
	format, err := parseSnapshotFormat(options.format)
	if err != nil {
		return err
	}
	perPage := cfg.GitHub.PerPage
	if options.perPage != 0 {
		if options.perPage < 1 || options.perPage > github.MaxPerPage {
			return cli.Validation("--per-page must be between 1 and %d, got %d", github.MaxPerPage, options.perPage)
		}
		perPage = options.perPage
	}

	logger, closeLog, err := workflowsLogger(level, options)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With("command", "workflows", "repository", repository)

	client, err := github.NewClient(github.Config{
		BaseURL: cfg.GitHub.BaseURL,
		Token:   cfg.GitHubToken(),
		Logger:  logger,
	})
	if err != nil {
		return cli.Validation("creating GitHub client: %w", err)
	}
	session, err := openWorkflows(ctx, cfg, client, workflowsource.Config{
		Owner:   owner,
		Repo:    repo,
		PerPage: perPage,
		Active:  options.active,
		Logger:  logger,
	})
	if err != nil {
		return repositoryError(repository, err)
	}

	// Page 1 is already in the list; this pass loads the rest.
	report, err := session.engine.Pass(ctx, scheduler.TriggerMutation)
	if err != nil {
		return cli.Internal("grouping workflows: %w", err)
	}

	if options.tui {
		return runWorkflowsViewer(ctx, session, cfg, repository, logger)
	}
	if err := writeSnapshot(stdout, format, report, session.list); err != nil {
		return cli.Internal("writing output: %w", err)
	}
	return nil
}

// openWorkflows loads page 1 through lister and wires the source, its
// loader and the reconciler into an engine. sourceConfig.Lister is
// set from lister.
func openWorkflows(ctx context.Context, cfg *config.Config, lister workflowsource.Lister, sourceConfig workflowsource.Config) (*workflowsSession, error) {
	logger := sourceConfig.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sourceConfig.Lister = lister

	list := livelist.NewMemory()
	source, err := workflowsource.Open(ctx, list, sourceConfig)
	if err != nil {
		return nil, err
	}

	loader := pagination.New[[]github.Workflow](source, pagination.Config{
		MaxConcurrency: cfg.Fetch.MaxConcurrency,
		MaxPages:       cfg.Fetch.MaxPages,
		Logger:         logger,
	})
	groupingEngine, err := engine.New(engine.Config{
		List:       list,
		Reconciler: newReconciler(cfg, logger),
		Loader:     loader,
		Prepare:    source.Prepare,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return &workflowsSession{list: list, source: source, engine: groupingEngine}, nil
}

// runWorkflowsViewer shows the grouped list in the terminal UI. The
// refresh key is a navigation: page 1 is reloaded and the list is
// regrouped from scratch.
func runWorkflowsViewer(ctx context.Context, session *workflowsSession, cfg *config.Config, repository string, logger *slog.Logger) error {
	passes := make(chan foldertui.PassMsg, 1)
	passScheduler, err := scheduler.New(ctx, scheduler.Config{
		Debounce: cfg.DebounceDuration(),
		Logger:   logger,
		Pass: func(ctx context.Context, trigger scheduler.Trigger) error {
			err := session.engine.Run(ctx, trigger)
			// The viewer rereads the whole list on any PassMsg, so a
			// message still waiting in the channel covers this pass.
			select {
			case passes <- foldertui.PassMsg{Err: err}:
			default:
			}
			return err
		},
	})
	if err != nil {
		return cli.Internal("creating scheduler: %w", err)
	}
	defer passScheduler.Close()

	cancelObserver := session.list.Observe(func(mutation livelist.Mutation) {
		if mutation.AddsItems() {
			passScheduler.Notify()
		}
	})
	defer cancelObserver()

	model := foldertui.NewModel(foldertui.Config{
		List:    session.list,
		Title:   repository,
		Refresh: passScheduler.Navigate,
		Passes:  passes,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// workflowsLogger returns the command logger. The viewer owns the
// terminal, so with --tui records go to --log-output or nowhere.
func workflowsLogger(level slog.Level, options *workflowsOptions) (*slog.Logger, func(), error) {
	if !options.tui {
		return cli.NewCommandLogger(level), func() {}, nil
	}
	if options.logOutput == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(options.logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, cli.Validation("cannot open log file %s: %w", options.logOutput, err)
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, func() { file.Close() }, nil
}

// repositoryError categorizes a failure to open a repository's
// workflows.
func repositoryError(repository string, err error) error {
	var networkError net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case github.IsNotFound(err):
		return cli.NotFound("repository %s: %w", repository, err).
			WithHint("Check the owner/repo spelling. Private repositories need a token in $GITHUB_TOKEN (see github.token_env).")
	case github.IsUnauthorized(err):
		return cli.Validation("repository %s: %w", repository, err).
			WithHint("The token was rejected. Check the variable named by github.token_env.")
	case github.IsRateLimited(err):
		return cli.Transient("repository %s: %w", repository, err).
			WithHint("The GitHub rate limit is exhausted. Wait for it to reset, or set a token for a higher limit.")
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &networkError):
		return cli.Transient("repository %s: %w", repository, err)
	default:
		return cli.Internal("repository %s: %w", repository, err)
	}
}

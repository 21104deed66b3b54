// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/config"
	"github.com/bureau-foundation/folderize/lib/livelist/htmllist"
	"github.com/bureau-foundation/folderize/lib/reconcile"
)

// rootCommand builds the folderize command tree. Command output goes
// to stdout; help and logs go to stderr.
func rootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "folderize",
		Description: `folderize: group flat lists of "folder/name" items into folders.

Items whose name contains the delimiter are gathered under a folder
named by the text before it and relabelled with the rest. Paged lists
are completed first, so a folder holds every member across pages.`,
		Subcommands: []*cli.Command{
			htmlCommand(stdout),
			watchCommand(stdout),
			workflowsCommand(stdout),
			versionCommand(stdout),
		},
		Examples: []cli.Example{
			{
				Description: "Group the workflow list of a saved Actions page",
				Command:     "folderize html actions.html -o grouped.html",
			},
			{
				Description: "Browse a repository's workflows in folders",
				Command:     "folderize workflows octo/hello --tui",
			},
		},
	}
}

// commonOptions are the flags every working subcommand accepts.
type commonOptions struct {
	configPath string
	logLevel   string
}

func (options *commonOptions) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&options.configPath, "config", "",
		"path to folderize.yaml (default: $"+config.EnvironmentVariable+", else built-in defaults)")
	flagSet.StringVar(&options.logLevel, "log-level", "",
		"override log_level: debug, info, warn or error")
}

// load resolves and validates the configuration and returns it with
// the parsed log level.
func (options *commonOptions) load() (*config.Config, slog.Level, error) {
	cfg, err := config.Resolve(options.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, slog.LevelInfo, cli.NotFound("%w", err).
				WithHint("Pass an existing file with --config, or unset " + config.EnvironmentVariable + " to use the defaults.")
		}
		return nil, slog.LevelInfo, cli.Validation("%w", err)
	}
	if options.logLevel != "" {
		cfg.LogLevel = options.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, slog.LevelInfo, cli.Validation("invalid configuration:\n%w", err)
	}
	level, err := cli.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, slog.LevelInfo, cli.Validation("%w", err)
	}
	return cfg, level, nil
}

// newReconciler builds the reconciler every command shares.
func newReconciler(cfg *config.Config, logger *slog.Logger) *reconcile.Reconciler {
	return reconcile.New(reconcile.Config{
		Delimiter:         cfg.Delimiter,
		Placement:         cfg.PlacementValue(),
		PreserveExpansion: cfg.PreserveExpansion,
		Logger:            logger,
	})
}

// htmlConfig maps the html section of the configuration onto the
// document adapter.
func htmlConfig(cfg *config.Config, logger *slog.Logger) htmllist.Config {
	return htmllist.Config{
		ItemSelector:       cfg.HTML.ItemSelector,
		ActiveSelector:     cfg.HTML.ActiveSelector,
		PaginationSelector: cfg.HTML.PaginationSelector,
		OriginalAttribute:  cfg.HTML.OriginalAttribute,
		FolderClass:        cfg.HTML.FolderClass,
		Logger:             logger,
	}
}

// requireArgs checks the positional argument count of a command.
func requireArgs(args []string, want int, usage string) error {
	if len(args) != want {
		return cli.Validation("expected %d argument(s), got %d", want, len(args)).
			WithHint(fmt.Sprintf("Usage: %s", usage))
	}
	return nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code; don't repeat it as "error:".
		if !cli.Silent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func run() error {
	// Handle --version before flag parsing so it works without a
	// subcommand and without a valid config.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Fprintln(os.Stdout, version.Info())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	return rootCommand(os.Stdout).Execute(ctx, os.Args[1:])
}

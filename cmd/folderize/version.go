// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/version"
)

func versionCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			_, err := fmt.Fprintf(stdout, "folderize %s\n", version.Full())
			return err
		},
	}
}

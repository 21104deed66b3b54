// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the folderize
// binary: a tree of [Command] values with pflag flag sets, help
// rendering, and "did you mean" suggestions for mistyped commands and
// flags.
//
// Errors returned by commands are classified with [ToolError]
// categories, which [ExitCode] maps to process exit codes so scripts
// can tell bad input (2) from a missing resource (3) or a transient
// failure worth retrying (4). [NewCommandLogger] picks a text or JSON
// slog handler depending on whether stderr is a terminal.
package cli

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for folderize.
//
// Configuration comes from at most one file, named by the --config
// flag or the FOLDERIZE_CONFIG environment variable (see [Resolve]).
// There is no ~/.config discovery and no automatic file search. When
// neither is set, [Default] supplies every value, so the tool runs
// without a file at all.
//
// Values in the file are merged over the defaults. After loading,
// ${VAR} and ${VAR:-default} patterns are expanded in the fields that
// name addresses or URLs (github.base_url, metrics.listen,
// fetch.user_agent). No other environment variables override config
// values; the GitHub token is read from the variable named by
// github.token_env rather than stored in the file.
//
// Key exports:
//
//   - [Config] -- grouping, html, fetch, github and metrics sections
//   - [Default] -- every value the tool needs
//   - [Load], [LoadFile] and [Resolve] -- the entry points for loading
//   - [Config.Validate] -- durations, placement names and limits
package config

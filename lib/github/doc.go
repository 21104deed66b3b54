// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package github is a small typed client for the GitHub REST API,
// covering what folderize reads: the workflows of a repository.
//
// The client authenticates with a personal access or fine-grained
// token, or anonymously for public repositories. It handles rate
// limiting (X-RateLimit-* headers with one backoff retry), conditional
// requests (ETags), page counts from RFC 5988 Link headers, and
// structured error mapping ([APIError], [IsNotFound], [IsRateLimited]).
//
// All requests are made over HTTPS. The client refuses non-HTTPS base
// URLs.
package github

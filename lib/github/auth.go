// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

// authenticator provides the Authorization header for API requests.
// An empty value means the request is sent without one.
type authenticator interface {
	AuthorizationHeader() string
}

// tokenAuth is a static Bearer token for personal access tokens and
// fine-grained tokens.
type tokenAuth struct {
	header string
}

func newTokenAuth(token string) *tokenAuth {
	return &tokenAuth{header: "Bearer " + token}
}

func (auth *tokenAuth) AuthorizationHeader() string { return auth.header }

// anonymousAuth sends no credentials.
type anonymousAuth struct{}

func (anonymousAuth) AuthorizationHeader() string { return "" }

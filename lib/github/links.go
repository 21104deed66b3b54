// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"net/url"
	"strconv"
	"strings"
)

// parseLink extracts the URL with the given rel from an RFC 5988 Link
// header, or "" if there is none.
//
// Format: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLink(header, rel string) string {
	if header == "" {
		return ""
	}
	want := `rel="` + rel + `"`
	for _, part := range strings.Split(header, ",") {
		segments := strings.SplitN(strings.TrimSpace(part), ";", 2)
		if len(segments) != 2 {
			continue
		}
		urlPart := strings.TrimSpace(segments[0])
		if !strings.Contains(segments[1], want) {
			continue
		}
		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}
	return ""
}

// lastPage returns the page number of the rel="last" link, or 0 when
// the header has none (the response is the last page) or it cannot be
// parsed.
func lastPage(header string) int {
	last := parseLink(header, "last")
	if last == "" {
		return 0
	}
	parsed, err := url.Parse(last)
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(parsed.Query().Get("page"))
	if err != nil || page < 1 {
		return 0
	}
	return page
}

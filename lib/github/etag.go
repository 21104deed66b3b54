// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "sync"

// etagEntry is the last response seen for a URL.
type etagEntry struct {
	etag string
	body []byte
}

// etagCache keeps the last body per URL so a refresh that sends
// If-None-Match and gets 304 Not Modified costs no rate limit quota.
// Entries are never evicted: a client only ever queries the pages of
// one workflow list.
type etagCache struct {
	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]etagEntry)}
}

// get returns the cached ETag for url, or "".
func (cache *etagCache) get(url string) string {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	if !ok {
		return ""
	}
	return entry.etag
}

// body returns the cached body for url, or nil.
func (cache *etagCache) body(url string) []byte {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	if !ok {
		return nil
	}
	return entry.body
}

// put records a response. Responses without an ETag are not cached.
func (cache *etagCache) put(url string, etag string, body []byte) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[url] = etagEntry{etag: etag, body: body}
}

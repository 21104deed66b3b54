// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package filewatch reports when a single file's content changes.
//
// The watch is placed on the file's directory rather than the file
// itself so that editors and generators that replace the file by
// renaming a temporary over it are still seen. Events that leave the
// content unchanged (touch, chmod, a rewrite with identical bytes)
// are filtered out by comparing BLAKE3 digests. Bursts of changes
// coalesce: [Watcher.Changes] holds at most one pending signal, and
// the consumer is expected to re-read the file when it fires.
package filewatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

// Config configures a Watcher.
type Config struct {
	// Path is the file to watch. It must exist when the watcher is
	// created.
	Path string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher watches one file.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	changes chan struct{}

	mu     sync.Mutex
	digest [32]byte
}

// New starts watching config.Path. Call [Watcher.Run] to process
// events and [Watcher.Close] to release the watch.
func New(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, errors.New("filewatch: path is required")
	}
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("filewatch: resolving %s: %w", config.Path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("filewatch: reading %s: %w", path, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filewatch: creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("filewatch: watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		watcher: fsw,
		logger:  logger.With("path", path),
		changes: make(chan struct{}, 1),
		digest:  blake3.Sum256(content),
	}, nil
}

// Path returns the absolute path being watched.
func (watcher *Watcher) Path() string { return watcher.path }

// Changes delivers one value per burst of content changes.
func (watcher *Watcher) Changes() <-chan struct{} { return watcher.changes }

// Run processes filesystem events until ctx is cancelled or the
// watcher is closed. It returns nil in both cases.
func (watcher *Watcher) Run(ctx context.Context) error {
	watcher.logger.Debug("file watcher started")
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return nil
			}
			watcher.handle(event)

		case err, ok := <-watcher.watcher.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the underlying watch. Run returns afterwards.
func (watcher *Watcher) Close() error {
	return watcher.watcher.Close()
}

func (watcher *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != watcher.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		// Remove and Rename leave nothing to read; the Create that
		// replaces the file follows.
		return
	}
	if !watcher.contentChanged() {
		return
	}

	watcher.logger.Debug("file content changed", "op", event.Op.String())
	select {
	case watcher.changes <- struct{}{}:
	default:
	}
}

// contentChanged re-reads the file and reports whether its digest
// differs from the last one seen.
func (watcher *Watcher) contentChanged() bool {
	content, err := os.ReadFile(watcher.path)
	if err != nil {
		// A writer may have truncated or moved the file mid-replace.
		watcher.logger.Debug("re-reading watched file", "error", err)
		return false
	}
	digest := blake3.Sum256(content)

	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if digest == watcher.digest {
		return false
	}
	watcher.digest = digest
	return true
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/folderize/cmd/folderize/cli"
	"github.com/bureau-foundation/folderize/lib/codec"
	"github.com/bureau-foundation/folderize/lib/engine"
	"github.com/bureau-foundation/folderize/lib/livelist"
	"github.com/bureau-foundation/folderize/lib/reconcile"
)

// snapshotOutput is the structured output of a command: the last pass
// report followed by the grouped list.
type snapshotOutput struct {
	Pass    engine.Report     `json:"pass" yaml:"pass" cbor:"pass"`
	Entries []reconcile.Entry `json:"entries" yaml:"entries" cbor:"entries"`
}

// parseSnapshotFormat parses a --format value for snapshot output.
func parseSnapshotFormat(name string) (codec.Format, error) {
	format, err := codec.ParseFormat(name)
	if err != nil {
		return "", cli.Validation("--format: %w", err)
	}
	return format, nil
}

// writeSnapshot writes list in format. Text is the indented tree;
// every other format encodes a snapshotOutput.
func writeSnapshot(w io.Writer, format codec.Format, report engine.Report, list livelist.List) error {
	entries := reconcile.Snapshot(list)
	if format == codec.Text {
		return writeTree(w, entries)
	}
	return format.Encode(w, snapshotOutput{Pass: report, Entries: entries})
}

// writeTree renders entries one per line. Folders show their member
// count and an open or closed marker; members are indented beneath
// their folder; the active item is marked with an asterisk.
func writeTree(w io.Writer, entries []reconcile.Entry) error {
	buffered := bufio.NewWriter(w)
	for _, entry := range entries {
		if entry.Kind == reconcile.KindFolder {
			marker := "▸"
			if entry.Expanded {
				marker = "▾"
			}
			fmt.Fprintf(buffered, "%s %s (%d)\n", marker, entry.Label, entry.Count)
			for _, member := range entry.Members {
				fmt.Fprintf(buffered, "    %s\n", treeLabel(member))
			}
			continue
		}
		fmt.Fprintf(buffered, "  %s\n", treeLabel(entry))
	}
	return buffered.Flush()
}

func treeLabel(entry reconcile.Entry) string {
	if entry.Active {
		return entry.Label + " *"
	}
	return entry.Label
}

// writeOutput calls write with the destination named by path: stdout
// for "" or "-", otherwise a temporary file in the same directory that
// is renamed over path once write succeeds. Readers of path never see
// a partial document.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	temporary := file.Name()
	defer os.Remove(temporary)

	if err := file.Chmod(0o644); err != nil {
		file.Close()
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

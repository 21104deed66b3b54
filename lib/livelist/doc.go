// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package livelist defines the boundary between the folder engine and
// a list it does not own.
//
// A host (an HTML document, a terminal UI's backing list) exposes its
// rows as [Item] handles through a [List]. The engine only relabels
// and relocates items; it never creates or destroys them. Folder
// wrappers ([Wrapper]) are the one thing the engine adds, and it
// removes them again at the start of every pass with [List.Unwrap].
//
// [Memory] is the in-process implementation used by the GitHub
// workflows source, the terminal UI, and engine tests. The HTML
// adapter lives in the htmllist subpackage.
package livelist

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package foldertui renders a grouped livelist.List as an interactive
// terminal tree. Built on bubbletea, the model shows folder wrappers as
// collapsible header rows with their members indented beneath, and
// ungrouped items in place.
//
// The model never groups anything itself. Folder structure comes from
// the reconciler; the model only reads the list and flips
// Wrapper.SetExpanded when the user toggles a folder. The refresh key
// runs the host's navigation signal (typically Scheduler.Navigate) in
// a command so the UI stays responsive while the pass runs, and
// [PassMsg] values delivered on Config.Passes make the model re-read
// the list after every pass, including passes the user did not start.
package foldertui

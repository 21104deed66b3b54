// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package foldertui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the folder viewer. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Folder header rows and their member counters.
	FolderForeground  lipgloss.Color
	CounterForeground lipgloss.Color

	// ActiveForeground marks the row the host reports as current.
	ActiveForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	ScrollThumb      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorForeground  lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	FolderForeground:  lipgloss.Color("75"),  // blue
	CounterForeground: lipgloss.Color("241"), // dim gray

	ActiveForeground: lipgloss.Color("114"), // green

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	ScrollThumb:      lipgloss.Color("220"), // amber
	HelpText:         lipgloss.Color("241"),
	ErrorForeground:  lipgloss.Color("196"),
}

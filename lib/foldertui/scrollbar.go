// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package foldertui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderScrollbar produces a single-column scrollbar of the given
// height. The thumb spans the whole height when every row fits.
func renderScrollbar(theme Theme, height, totalRows, visibleRows, offset int) string {
	if height <= 0 {
		return ""
	}

	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.ScrollThumb)

	thumbSize, thumbOffset := height, 0
	if totalRows > visibleRows && totalRows > 0 {
		thumbSize = max(height*visibleRows/totalRows, 1)
		scrollable := totalRows - visibleRows
		if track := height - thumbSize; track > 0 {
			thumbOffset = min(offset*track/scrollable, track)
		}
	}

	lines := make([]string, height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}

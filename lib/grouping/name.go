// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grouping

import "strings"

// DefaultDelimiter separates the folder segment from the rest of a name.
const DefaultDelimiter = "/"

// Split is the result of parsing one name.
type Split struct {
	// Folder is the segment before the first delimiter. Empty when the
	// name is not groupable.
	Folder string

	// Display is the label the item shows once grouped: everything
	// after the first delimiter, or the whole name when not groupable.
	Display string

	// Groupable reports whether the name belongs in a folder.
	Groupable bool
}

// ParseName splits name at the first occurrence of delimiter. It never
// fails: an empty name, an empty delimiter, a missing delimiter, a
// delimiter at index 0, or a delimiter that leaves nothing after it
// all produce an ungroupable Split whose Display is name unchanged.
func ParseName(name, delimiter string) Split {
	notGroupable := Split{Display: name}
	if delimiter == "" {
		return notGroupable
	}

	index := strings.Index(name, delimiter)
	if index <= 0 {
		return notGroupable
	}
	rest := name[index+len(delimiter):]
	if rest == "" {
		return notGroupable
	}

	return Split{
		Folder:    name[:index],
		Display:   rest,
		Groupable: true,
	}
}

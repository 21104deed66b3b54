// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package foldertui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/folderize/lib/livelist"
)

// chromeHeight is the number of rows outside the list: the title bar,
// the status line and the help line.
const chromeHeight = 3

// PassMsg reports that a pass over the list finished. Err is the pass
// error, if any.
type PassMsg struct {
	Err error
}

// refreshDoneMsg carries the result of the Refresh callback. ran is
// false when the host dropped the request because a pass was already
// running.
type refreshDoneMsg struct {
	ran bool
}

// Config configures a Model.
type Config struct {
	// List is the grouped list to display. Required.
	List livelist.List

	// Title is shown in the top bar, typically "owner/repo".
	Title string

	// Refresh runs the navigation signal and reports whether a pass
	// ran. It is called from a tea.Cmd goroutine and may block. Nil
	// disables the refresh key.
	Refresh func() bool

	// Passes delivers one value per finished pass. Optional.
	Passes <-chan PassMsg

	// Keys defaults to DefaultKeyMap; Theme to DefaultTheme.
	Keys  *KeyMap
	Theme *Theme
}

type rowKind int

const (
	rowItem rowKind = iota
	rowFolder
	rowMember
	rowMore
)

// row is one visible line of the tree.
type row struct {
	kind     rowKind
	label    string
	count    int
	expanded bool
	active   bool
	key      string
	wrapper  livelist.Wrapper
}

// identity names a row across rebuilds so the cursor can follow it.
func (current row) identity() string {
	switch current.kind {
	case rowFolder:
		return "folder:" + current.label
	case rowMore:
		return "more"
	}
	if current.key != "" {
		return "item:" + current.key
	}
	return "item:" + current.label
}

// Model is the bubbletea model for the folder viewer.
type Model struct {
	list    livelist.List
	title   string
	refresh func() bool
	passes  <-chan PassMsg
	keys    KeyMap
	theme   Theme

	rows   []row
	cursor int
	offset int

	width  int
	height int
	ready  bool

	refreshing bool
	status     string
	passError  string

	spinner spinner.Model
	help    help.Model
}

// NewModel builds a Model and reads the list once.
func NewModel(config Config) Model {
	keys := DefaultKeyMap
	if config.Keys != nil {
		keys = *config.Keys
	}
	theme := DefaultTheme
	if config.Theme != nil {
		theme = *config.Theme
	}

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(theme.ScrollThumb)

	helpModel := help.New()
	helpModel.Styles.ShortKey = lipgloss.NewStyle().Foreground(theme.FaintText)
	helpModel.Styles.ShortDesc = lipgloss.NewStyle().Foreground(theme.HelpText)
	helpModel.Styles.FullKey = helpModel.Styles.ShortKey
	helpModel.Styles.FullDesc = helpModel.Styles.ShortDesc

	model := Model{
		list:    config.List,
		title:   config.Title,
		refresh: config.Refresh,
		passes:  config.Passes,
		keys:    keys,
		theme:   theme,
		spinner: spin,
		help:    helpModel,
	}
	model.rebuildRows()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForPass(model.passes)
}

// listenForPass returns a tea.Cmd that blocks until a pass finishes.
func listenForPass(channel <-chan PassMsg) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		message, ok := <-channel
		if !ok {
			return nil
		}
		return message
	}
}

func runRefresh(refresh func() bool) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{ran: refresh()}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.Help):
			model.help.ShowAll = !model.help.ShowAll

		case key.Matches(message, model.keys.Refresh):
			if model.refresh == nil || model.refreshing {
				return model, nil
			}
			model.refreshing = true
			model.status = ""
			return model, tea.Batch(runRefresh(model.refresh), model.spinner.Tick)

		default:
			model.handleListKeys(message)
		}

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.help.Width = message.Width
		model.ready = true
		model.ensureCursorVisible()

	case refreshDoneMsg:
		model.refreshing = false
		if !message.ran {
			model.status = "a pass is already running; refresh skipped"
		}
		model.rebuildRows()

	case PassMsg:
		model.passError = ""
		if message.Err != nil {
			model.passError = message.Err.Error()
		}
		model.rebuildRows()
		return model, listenForPass(model.passes)

	case spinner.TickMsg:
		if !model.refreshing {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command
	}
	return model, nil
}

func (model *Model) handleListKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.rows)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Home):
		model.cursor = 0

	case key.Matches(message, model.keys.End):
		model.cursor = max(len(model.rows)-1, 0)

	case key.Matches(message, model.keys.Toggle):
		if folder, ok := model.currentFolder(); ok {
			folder.wrapper.SetExpanded(!folder.expanded)
			model.rebuildRows()
		}

	case key.Matches(message, model.keys.Left):
		model.collapseOrGoToParent()

	case key.Matches(message, model.keys.Right):
		model.expandOrEnterFirstChild()
	}
	model.ensureCursorVisible()
}

func (model *Model) currentFolder() (row, bool) {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return row{}, false
	}
	current := model.rows[model.cursor]
	return current, current.kind == rowFolder
}

// collapseOrGoToParent collapses the folder under the cursor, or the
// folder holding the member under the cursor, leaving the cursor on
// the folder row.
func (model *Model) collapseOrGoToParent() {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return
	}
	index := model.cursor
	if model.rows[index].kind == rowMember {
		for index > 0 && model.rows[index].kind != rowFolder {
			index--
		}
	}
	folder := model.rows[index]
	if folder.kind != rowFolder || !folder.expanded {
		return
	}
	folder.wrapper.SetExpanded(false)
	model.cursor = index
	model.rebuildRows()
}

// expandOrEnterFirstChild expands a collapsed folder, or moves into an
// expanded one.
func (model *Model) expandOrEnterFirstChild() {
	folder, ok := model.currentFolder()
	if !ok {
		return
	}
	if !folder.expanded {
		folder.wrapper.SetExpanded(true)
		model.rebuildRows()
		return
	}
	if model.cursor+1 < len(model.rows) && model.rows[model.cursor+1].kind == rowMember {
		model.cursor++
	}
}

// rebuildRows re-reads the list and keeps the cursor on the same row
// when it still exists.
func (model *Model) rebuildRows() {
	selected := ""
	if model.cursor >= 0 && model.cursor < len(model.rows) {
		selected = model.rows[model.cursor].identity()
	}

	// A fresh slice: earlier copies of the model share the old one.
	model.rows = make([]row, 0, len(model.rows))
	if model.list != nil {
		for _, entry := range model.list.Entries() {
			if entry.Item != nil {
				model.rows = append(model.rows, itemRow(rowItem, entry.Item))
				continue
			}
			header := entry.Wrapper.Header()
			expanded := entry.Wrapper.Expanded()
			model.rows = append(model.rows, row{
				kind:     rowFolder,
				label:    header.Folder,
				count:    header.Count,
				expanded: expanded,
				wrapper:  entry.Wrapper,
			})
			if !expanded {
				continue
			}
			for _, member := range entry.Wrapper.Members() {
				model.rows = append(model.rows, itemRow(rowMember, member))
			}
		}
		if more, ok := model.list.(interface{ MoreRow() bool }); ok && more.MoreRow() {
			model.rows = append(model.rows, row{kind: rowMore, label: "Show more workflows…"})
		}
	}

	for index, candidate := range model.rows {
		if candidate.identity() == selected {
			model.cursor = index
			model.ensureCursorVisible()
			return
		}
	}
	model.cursor = min(model.cursor, max(len(model.rows)-1, 0))
	model.ensureCursorVisible()
}

func itemRow(kind rowKind, item livelist.Item) row {
	result := row{kind: kind, label: item.Label(), active: item.Active()}
	if keyed, ok := item.(interface{ Key() string }); ok {
		result.key = keyed.Key()
	}
	return result
}

func (model Model) visibleHeight() int {
	return max(model.height-chromeHeight, 1)
}

func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+visible {
		model.offset = model.cursor - visible + 1
	}
	model.offset = max(min(model.offset, len(model.rows)-visible), 0)
}

// Selected returns the key (or label, for rows without one) of the
// item under the cursor. Folder and "more" rows report false.
func (model Model) Selected() (string, bool) {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return "", false
	}
	current := model.rows[model.cursor]
	if current.kind != rowItem && current.kind != rowMember {
		return "", false
	}
	if current.key != "" {
		return current.key, true
	}
	return current.label, true
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return ""
	}

	listWidth := max(model.width-1, 1)
	visible := model.visibleHeight()

	lines := make([]string, 0, visible)
	end := min(model.offset+visible, len(model.rows))
	for index := model.offset; index < end; index++ {
		lines = append(lines, model.renderRow(model.rows[index], index == model.cursor, listWidth))
	}
	if len(model.rows) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  (no items)"))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	body := lipgloss.NewStyle().Width(listWidth).Render(strings.Join(lines, "\n"))
	scrollbar := renderScrollbar(model.theme, visible, len(model.rows), visible, model.offset)

	return strings.Join([]string{
		model.renderTitle(),
		lipgloss.JoinHorizontal(lipgloss.Top, body, scrollbar),
		model.renderStatus(),
		model.help.View(model.keys),
	}, "\n")
}

func (model Model) renderTitle() string {
	folders, items := 0, 0
	for _, entry := range model.listEntries() {
		if entry.Wrapper != nil {
			folders++
			items += len(entry.Wrapper.Members())
		} else {
			items++
		}
	}
	title := model.title
	if title == "" {
		title = "folderize"
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	counts := lipgloss.NewStyle().Foreground(model.theme.FaintText).
		Render(fmt.Sprintf("  %d folders · %d items", folders, items))
	return style.Render(title) + counts
}

func (model Model) listEntries() []livelist.Entry {
	if model.list == nil {
		return nil
	}
	return model.list.Entries()
}

func (model Model) renderStatus() string {
	switch {
	case model.refreshing:
		return model.spinner.View() + " refreshing"
	case model.passError != "":
		return lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).Render("pass failed: " + model.passError)
	case model.status != "":
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(model.status)
	}
	if selected, ok := model.Selected(); ok {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(selected)
	}
	return ""
}

func (model Model) renderRow(current row, selected bool, width int) string {
	style := lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width).MaxWidth(width)
	if selected {
		style = style.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
	}

	var text string
	switch current.kind {
	case rowFolder:
		marker := "▸"
		if current.expanded {
			marker = "▾"
		}
		name := lipgloss.NewStyle().Foreground(model.theme.FolderForeground).Bold(true).Render(current.label)
		counter := lipgloss.NewStyle().Foreground(model.theme.CounterForeground).Render(fmt.Sprintf("(%d)", current.count))
		text = fmt.Sprintf("%s %s %s", marker, name, counter)
	case rowMember:
		text = "    " + model.renderLabel(current)
	case rowMore:
		text = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  " + current.label)
	default:
		text = "  " + model.renderLabel(current)
	}
	return style.Render(text)
}

func (model Model) renderLabel(current row) string {
	if !current.active {
		return current.label
	}
	return lipgloss.NewStyle().Foreground(model.theme.ActiveForeground).Render("• " + current.label)
}

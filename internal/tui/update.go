package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imkarma/backlog/internal/store"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.activePopup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case itemsLoadedMsg:
		m.rebuildColumns(msg.items)
		return m, nil

	case detailLoadedMsg:
		m.selected = msg.item
		m.itemEvents = msg.events
		m.currentScreen = screenDetail
		return m, nil

	case statusMsgMsg:
		m.statusMsg = string(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.currentScreen == screenBoard {
			m.quitting = true
			return m, tea.Quit
		}
		return m.goBack()

	case "esc":
		return m.goBack()
	}

	switch m.currentScreen {
	case screenBoard:
		return m.handleBoardKey(msg)
	case screenDetail:
		return m.handleDetailKey(msg)
	}

	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	if m.currentScreen == screenDetail {
		m.currentScreen = screenBoard
		m.selected = nil
		m.itemEvents = nil
		return m, m.refreshItems()
	}
	return m, nil
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	// Navigation.
	case "j", "down":
		m.cursorRow++
		m.clampCursor()
	case "k", "up":
		m.cursorRow--
		m.clampCursor()
	case "h", "left":
		m.cursorCol--
		m.clampCursor()
	case "l", "right":
		m.cursorCol++
		m.clampCursor()

	// Drill into item.
	case "enter", " ":
		if it := m.itemUnderCursor(); it != nil {
			return m, m.loadDetail(it.ID)
		}

	// Move along the workflow.
	case "]":
		if it := m.itemUnderCursor(); it != nil {
			return m, m.moveItem(it.ID, forwardOf(it.Status))
		}
	case "[":
		if it := m.itemUnderCursor(); it != nil {
			return m, m.moveItem(it.ID, backwardOf(it.Status))
		}

	// Park.
	case "p":
		if it := m.itemUnderCursor(); it != nil {
			return m, m.moveItem(it.ID, store.StatusParked)
		}

	// Assign.
	case "a":
		if it := m.itemUnderCursor(); it != nil {
			m.selected = it
			m.activePopup = popupAssign
			m.fieldInput.Reset()
			m.fieldInput.Placeholder = "Agent name (empty to unassign)..."
			m.fieldInput.Focus()
			return m, textinput.Blink
		}

	// Comment.
	case "n":
		if it := m.itemUnderCursor(); it != nil {
			m.selected = it
			m.activePopup = popupComment
			m.fieldInput.Reset()
			m.fieldInput.Placeholder = "Comment..."
			m.fieldInput.Focus()
			return m, textinput.Blink
		}

	// Delete.
	case "x":
		if it := m.itemUnderCursor(); it != nil {
			m.selected = it
			m.activePopup = popupConfirmDelete
			return m, nil
		}

	// Create new item.
	case "c", "ctrl+n":
		m.activePopup = popupCreate
		m.titleInput.Reset()
		m.titleInput.Focus()
		m.descInput.Reset()
		m.descInput.Blur()
		m.inputFocused = 0
		m.createType = store.TypeStory
		return m, textinput.Blink

	// Refresh.
	case "R":
		return m, m.refreshItems()
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "backspace":
		return m.goBack()

	case "]":
		if m.selected != nil {
			id := m.selected.ID
			target := forwardOf(m.selected.Status)
			return m, tea.Sequence(m.moveItem(id, target), m.loadDetail(id))
		}
	case "[":
		if m.selected != nil {
			id := m.selected.ID
			target := backwardOf(m.selected.Status)
			return m, tea.Sequence(m.moveItem(id, target), m.loadDetail(id))
		}

	case "n":
		if m.selected != nil {
			m.activePopup = popupComment
			m.fieldInput.Reset()
			m.fieldInput.Placeholder = "Comment..."
			m.fieldInput.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

// forwardOf returns the natural next workflow step for a status.
func forwardOf(s store.Status) store.Status {
	switch s {
	case store.StatusBacklog:
		return store.StatusReady
	case store.StatusReady:
		return store.StatusInProgress
	case store.StatusInProgress:
		return store.StatusReview
	case store.StatusReview:
		return store.StatusMerged
	case store.StatusMerged:
		return store.StatusDone
	case store.StatusParked:
		return store.StatusBacklog
	}
	return s
}

// backwardOf returns the natural retreat step for a status.
func backwardOf(s store.Status) store.Status {
	switch s {
	case store.StatusReady:
		return store.StatusBacklog
	case store.StatusInProgress:
		return store.StatusReady
	case store.StatusReview, store.StatusMerged:
		return store.StatusInProgress
	case store.StatusParked:
		return store.StatusBacklog
	}
	return s
}

func (m Model) moveItem(id int64, target store.Status) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.store.UpdateStatus(id, target, store.Omit[string]()); err != nil {
			return statusMsgMsg("Move failed: " + err.Error())
		}
		items, err := m.store.ListItems(store.ListFilter{})
		if err != nil {
			return statusMsgMsg("Error: " + err.Error())
		}
		return itemsLoadedMsg{items: items}
	}
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.activePopup {
	case popupCreate:
		return m.handleCreatePopup(msg)
	case popupAssign:
		return m.handleAssignPopup(msg)
	case popupComment:
		return m.handleCommentPopup(msg)
	case popupConfirmDelete:
		return m.handleConfirmDeletePopup(msg)
	}
	return m, nil
}

func (m Model) handleCreatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.activePopup = popupNone
		return m, nil
	case "tab":
		if m.inputFocused == 0 {
			m.titleInput.Blur()
			m.descInput.Focus()
			m.inputFocused = 1
		} else {
			m.descInput.Blur()
			m.titleInput.Focus()
			m.inputFocused = 0
		}
		return m, textinput.Blink
	case "ctrl+t":
		m.createType = nextType(m.createType)
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.statusMsg = "Title cannot be empty"
			return m, nil
		}
		n := store.NewItem{Title: title, Type: m.createType}
		if desc := m.descInput.Value(); desc != "" {
			n.Description = &desc
		}
		item, err := m.store.Add(n)
		if err != nil {
			m.statusMsg = "Error: " + err.Error()
			return m, nil
		}
		m.activePopup = popupNone
		m.statusMsg = fmt.Sprintf("Added #%d: %s", item.ID, item.Title)
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleAssignPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.activePopup = popupNone
		return m, nil
	case "enter":
		if m.selected == nil {
			m.activePopup = popupNone
			return m, nil
		}
		var assignee *string
		if v := strings.TrimSpace(m.fieldInput.Value()); v != "" {
			assignee = &v
		}
		if _, err := m.store.Assign(m.selected.ID, assignee); err != nil {
			m.statusMsg = "Error: " + err.Error()
			return m, nil
		}
		m.activePopup = popupNone
		m.statusMsg = fmt.Sprintf("Updated assignee on #%d", m.selected.ID)
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return m, cmd
}

func (m Model) handleCommentPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.activePopup = popupNone
		return m, nil
	case "enter":
		if m.selected == nil {
			m.activePopup = popupNone
			return m, nil
		}
		text := m.fieldInput.Value()
		if strings.TrimSpace(text) == "" {
			m.statusMsg = "Comment cannot be empty"
			return m, nil
		}
		if _, err := m.store.Comment(m.selected.ID, text); err != nil {
			m.statusMsg = "Error: " + err.Error()
			return m, nil
		}
		id := m.selected.ID
		m.activePopup = popupNone
		m.statusMsg = fmt.Sprintf("Commented on #%d", id)
		if m.currentScreen == screenDetail {
			return m, m.loadDetail(id)
		}
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmDeletePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.activePopup = popupNone
		if m.selected == nil {
			return m, nil
		}
		id := m.selected.ID
		m.selected = nil
		if err := m.store.Delete(id); err != nil {
			m.statusMsg = "Delete failed: " + err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted #%d", id)
		return m, m.refreshItems()
	case "n", "esc":
		m.activePopup = popupNone
		return m, nil
	}
	return m, nil
}

func nextType(t store.ItemType) store.ItemType {
	for i, v := range store.ItemTypes {
		if v == t {
			return store.ItemTypes[(i+1)%len(store.ItemTypes)]
		}
	}
	return store.TypeStory
}

package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imkarma/backlog/internal/store"
)

// screen represents which view the TUI is showing.
type screen int

const (
	screenBoard  screen = iota // column board (main)
	screenDetail               // item detail with history
)

// popup represents the active input dialog, if any.
type popup int

const (
	popupNone popup = iota
	popupCreate
	popupAssign
	popupComment
	popupConfirmDelete
)

const numColumns = 6

var columnStatuses = [numColumns]store.Status{
	store.StatusBacklog,
	store.StatusReady,
	store.StatusInProgress,
	store.StatusReview,
	store.StatusMerged,
	store.StatusDone,
}

var columnLabels = [numColumns]string{
	"BACKLOG",
	"READY",
	"IN PROGRESS",
	"REVIEW",
	"MERGED",
	"DONE",
}

// Model is the top-level bubbletea model.
type Model struct {
	store  *store.Store
	width  int
	height int

	currentScreen screen
	activePopup   popup

	// Board state.
	columns   [numColumns][]store.Item
	parked    []store.Item
	cursorCol int
	cursorRow int

	// Create dialog inputs.
	titleInput   textinput.Model
	descInput    textinput.Model
	fieldInput   textinput.Model // assign / comment popups
	inputFocused int             // 0=title, 1=desc in create mode
	createType   store.ItemType

	// Selected item for detail view and popups.
	selected   *store.Item
	itemEvents []store.Event

	// Status message at the bottom.
	statusMsg string

	quitting bool
}

// New creates a new TUI model.
func New(s *store.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Item title..."
	ti.CharLimit = 120
	ti.Width = 50

	di := textinput.New()
	di.Placeholder = "Description (optional)..."
	di.CharLimit = 500
	di.Width = 50

	fi := textinput.New()
	fi.CharLimit = 500
	fi.Width = 50

	return Model{
		store:      s,
		titleInput: ti,
		descInput:  di,
		fieldInput: fi,
		createType: store.TypeStory,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.refreshItems()
}

type itemsLoadedMsg struct {
	items []store.Item
}

type detailLoadedMsg struct {
	item   *store.Item
	events []store.Event
}

type statusMsgMsg string

func (m Model) refreshItems() tea.Cmd {
	return func() tea.Msg {
		items, err := m.store.ListItems(store.ListFilter{})
		if err != nil {
			return statusMsgMsg("Error: " + err.Error())
		}
		return itemsLoadedMsg{items: items}
	}
}

func (m Model) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		item, err := m.store.GetItem(id)
		if err != nil || item == nil {
			return statusMsgMsg("Error loading item")
		}
		events, _ := m.store.GetHistory(id)
		return detailLoadedMsg{item: item, events: events}
	}
}

func (m *Model) rebuildColumns(items []store.Item) {
	for i := range m.columns {
		m.columns[i] = nil
	}
	m.parked = nil
	for _, it := range items {
		if it.Status == store.StatusParked {
			m.parked = append(m.parked, it)
			continue
		}
		for i, status := range columnStatuses {
			if it.Status == status {
				m.columns[i] = append(m.columns[i], it)
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
	if m.cursorCol >= numColumns {
		m.cursorCol = numColumns - 1
	}
	col := m.columns[m.cursorCol]
	if m.cursorRow >= len(col) {
		m.cursorRow = len(col) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m *Model) itemUnderCursor() *store.Item {
	col := m.columns[m.cursorCol]
	if m.cursorRow < len(col) {
		it := col[m.cursorRow]
		return &it
	}
	return nil
}

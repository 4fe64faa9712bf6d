package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imkarma/backlog/internal/store"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	colHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(clrBlue)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1).
			Width(20)

	cardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrHighlight).
				Padding(0, 1).
				Width(20).
				Bold(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.currentScreen {
	case screenBoard:
		content = m.viewBoard()
	case screenDetail:
		content = m.viewDetail()
	}

	if m.activePopup != popupNone {
		content = m.viewPopup()
	}

	return content
}

func (m Model) viewBoard() string {
	var b strings.Builder

	total := 0
	for _, col := range m.columns {
		total += len(col)
	}
	total += len(m.parked)

	header := titleStyle.Render("backlog")
	header += dimStyle.Render(fmt.Sprintf(" — %d items", total))
	b.WriteString(header + "\n\n")

	// Render each column as a vertical stack of cards, then join.
	cols := make([]string, numColumns)
	for i := range columnStatuses {
		var cb strings.Builder
		cb.WriteString(colHeaderStyle.Render(fmt.Sprintf("%s (%d)", columnLabels[i], len(m.columns[i]))))
		cb.WriteString("\n")
		for row, it := range m.columns[i] {
			style := cardStyle
			if i == m.cursorCol && row == m.cursorRow {
				style = cardSelectedStyle
			}
			card := fmt.Sprintf("#%d %s", it.ID, it.Title)
			if it.Type == store.TypeBug {
				card = lipgloss.NewStyle().Foreground(clrRed).Render(fmt.Sprintf("#%d", it.ID)) + " " + it.Title
			}
			if it.AssignedTo != nil {
				card += "\n" + subtleStyle.Render("["+*it.AssignedTo+"]")
			}
			cb.WriteString(style.Render(card) + "\n")
		}
		cols[i] = cb.String()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))

	if len(m.parked) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(clrYellow).Render(
			fmt.Sprintf("⏸ %d parked", len(m.parked))) + "\n")
		for _, it := range m.parked {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  #%d %s", it.ID, it.Title)) + "\n")
		}
	}

	b.WriteString("\n\n" + m.footer())
	return b.String()
}

func (m Model) viewDetail() string {
	if m.selected == nil {
		return m.viewBoard()
	}
	it := m.selected

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s #%d", it.Type, it.ID)) + "  " + it.Title + "\n\n")
	b.WriteString(fmt.Sprintf("  Status:   %s\n", renderStatus(it.Status)))
	b.WriteString(fmt.Sprintf("  Priority: %d\n", it.Priority))
	if it.Description != nil {
		b.WriteString(fmt.Sprintf("  Desc:     %s\n", *it.Description))
	}
	if it.Sprint != nil {
		b.WriteString(fmt.Sprintf("  Sprint:   %s\n", *it.Sprint))
	}
	if it.AssignedTo != nil {
		b.WriteString(fmt.Sprintf("  Assignee: %s\n", *it.AssignedTo))
	}
	if it.Result != nil {
		b.WriteString(fmt.Sprintf("  Result:   %s\n", *it.Result))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Created %s  Updated %s", it.CreatedAt, it.UpdatedAt)) + "\n")

	if len(m.itemEvents) > 0 {
		b.WriteString("\n" + subtleStyle.Render("History:") + "\n")
		for _, e := range m.itemEvents {
			line := fmt.Sprintf("  %s  %-18s", e.CreatedAt, e.Type)
			if e.Type == store.EventComment && e.Comment != nil {
				line += *e.Comment
			} else if e.OldValue != nil || e.NewValue != nil {
				line += fmt.Sprintf("%s -> %s", strp(e.OldValue), strp(e.NewValue))
			}
			if e.AgentID != nil {
				line += dimStyle.Render("  " + *e.AgentID)
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

func (m Model) viewPopup() string {
	var body string
	switch m.activePopup {
	case popupCreate:
		body = titleStyle.Render("New item") + "\n\n" +
			m.titleInput.View() + "\n" +
			m.descInput.View() + "\n\n" +
			subtleStyle.Render("type: ") + string(m.createType) + "\n\n" +
			footerKeyStyle.Render("enter") + footerDescStyle.Render(" create  ") +
			footerKeyStyle.Render("tab") + footerDescStyle.Render(" next field  ") +
			footerKeyStyle.Render("ctrl+t") + footerDescStyle.Render(" type  ") +
			footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel")
	case popupAssign:
		body = titleStyle.Render("Assign") + "\n\n" + m.fieldInput.View() + "\n\n" +
			footerKeyStyle.Render("enter") + footerDescStyle.Render(" save  ") +
			footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel")
	case popupComment:
		body = titleStyle.Render("Comment") + "\n\n" + m.fieldInput.View() + "\n\n" +
			footerKeyStyle.Render("enter") + footerDescStyle.Render(" save  ") +
			footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel")
	case popupConfirmDelete:
		id := int64(0)
		if m.selected != nil {
			id = m.selected.ID
		}
		body = titleStyle.Render("Delete item") + "\n\n" +
			fmt.Sprintf("Delete #%d? History is kept.\n\n", id) +
			footerKeyStyle.Render("y") + footerDescStyle.Render(" delete  ") +
			footerKeyStyle.Render("n") + footerDescStyle.Render(" cancel")
	}
	return popupStyle.Render(body)
}

func (m Model) footer() string {
	var b strings.Builder
	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg) + "\n")
	}
	keys := [][2]string{
		{"hjkl", "move"}, {"enter", "open"}, {"]", "advance"}, {"[", "retreat"},
		{"p", "park"}, {"a", "assign"}, {"n", "comment"}, {"c", "new"},
		{"x", "delete"}, {"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = footerKeyStyle.Render(k[0]) + footerDescStyle.Render(" "+k[1])
	}
	b.WriteString(strings.Join(parts, "  "))
	return b.String()
}

func renderStatus(s store.Status) string {
	switch s {
	case store.StatusDone:
		return lipgloss.NewStyle().Foreground(clrGreen).Render(string(s))
	case store.StatusParked:
		return lipgloss.NewStyle().Foreground(clrYellow).Render(string(s))
	case store.StatusInProgress:
		return lipgloss.NewStyle().Foreground(clrBlue).Render(string(s))
	default:
		return string(s)
	}
}

func strp(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

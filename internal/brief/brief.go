// Package brief renders a backlog item into a markdown work brief an
// agent can read before picking the item up.
package brief

import (
	"fmt"
	"strings"

	"github.com/imkarma/backlog/internal/store"
)

// Builder constructs briefs from item data. Think of it as printing a
// "ticket" with everything an agent needs: the item, where it sits in
// the hierarchy, and the conversation so far.
type Builder struct {
	store *store.Store
}

// New creates a brief builder.
func New(s *store.Store) *Builder {
	return &Builder{store: s}
}

// Build renders the full brief for an item:
// 1. The item itself (title, type, priority, description)
// 2. Parent item context (if it is a child)
// 3. Open children (if it is a parent)
// 4. Comment history
func (b *Builder) Build(id int64) (string, error) {
	item, err := b.store.GetItem(id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("item #%d not found", id)
	}

	var parts []string
	parts = append(parts, b.itemSection(item))

	if item.Parent != nil {
		parentCtx, err := b.parentContext(*item.Parent)
		if err == nil && parentCtx != "" {
			parts = append(parts, parentCtx)
		}
	}

	childCtx, err := b.childContext(item.ID)
	if err == nil && childCtx != "" {
		parts = append(parts, childCtx)
	}

	commentCtx, err := b.commentHistory(item.ID)
	if err == nil && commentCtx != "" {
		parts = append(parts, commentCtx)
	}

	return strings.Join(parts, "\n\n"), nil
}

func (b *Builder) itemSection(item *store.Item) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s #%d: %s\n", item.Type, item.ID, item.Title))
	sb.WriteString(fmt.Sprintf("Status: %s\n", item.Status))
	sb.WriteString(fmt.Sprintf("Priority: %d\n", item.Priority))
	if item.Sprint != nil {
		sb.WriteString(fmt.Sprintf("Sprint: %s\n", *item.Sprint))
	}
	if item.AssignedTo != nil {
		sb.WriteString(fmt.Sprintf("Assignee: %s\n", *item.AssignedTo))
	}

	if item.Description != nil {
		sb.WriteString(fmt.Sprintf("\n## Description\n%s\n", *item.Description))
	}

	return sb.String()
}

func (b *Builder) parentContext(parentID int64) (string, error) {
	parent, err := b.store.GetItem(parentID)
	if err != nil || parent == nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("## Parent item (for context)\n")
	sb.WriteString(fmt.Sprintf("**#%d: %s** (%s)\n", parent.ID, parent.Title, parent.Status))
	if parent.Description != nil {
		sb.WriteString(fmt.Sprintf("%s\n", *parent.Description))
	}

	return sb.String(), nil
}

func (b *Builder) childContext(id int64) (string, error) {
	children, err := b.store.ListItems(store.ListFilter{Parent: store.Value(id)})
	if err != nil || len(children) == 0 {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("## Child items\n")
	for _, c := range children {
		assignee := ""
		if c.AssignedTo != nil {
			assignee = " — " + *c.AssignedTo
		}
		sb.WriteString(fmt.Sprintf("- #%d [%s] %s%s\n", c.ID, c.Status, c.Title, assignee))
	}

	return sb.String(), nil
}

func (b *Builder) commentHistory(id int64) (string, error) {
	comments, err := b.store.GetComments(id)
	if err != nil {
		return "", err
	}
	if len(comments) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Discussion\n")
	for _, e := range comments {
		who := "unknown"
		if e.AgentID != nil {
			who = *e.AgentID
		}
		text := ""
		if e.Comment != nil {
			text = *e.Comment
		}
		sb.WriteString(fmt.Sprintf("- **[%s]** %s: %s\n", who, e.CreatedAt, text))
	}

	return sb.String(), nil
}

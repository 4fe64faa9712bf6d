package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NewItem carries the fields for Add. Title is required; Type defaults
// to story; everything else is optional.
type NewItem struct {
	Title       string
	Description *string
	Type        ItemType
	Priority    int
	Sprint      *string
	Parent      *int64
}

// Add inserts a new backlog item in status backlog and records a created
// event. The parent, when given, must exist.
func (s *Store) Add(n NewItem) (*Item, error) {
	if strings.TrimSpace(n.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}
	itemType := n.Type
	if itemType == "" {
		itemType = TypeStory
	}
	if !itemType.Valid() {
		return nil, fmt.Errorf("%w: invalid item_type %q; must be one of %s",
			ErrInvalidArgument, itemType, typeList())
	}

	var createdBy any
	if s.agent != "" {
		createdBy = s.agent
	}

	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		if err := s.validateParent(tx, n.Parent, 0); err != nil {
			return err
		}
		row := tx.QueryRow(
			`INSERT INTO backlog_items (title, description, item_type, priority, sprint, created_by, parent)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 RETURNING `+itemColumns,
			n.Title, nullable(n.Description), string(itemType), n.Priority,
			nullable(n.Sprint), createdBy, nullable(n.Parent),
		)
		var err error
		item, err = s.scanItem(row)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return s.logEvent(tx, item.ID, EventCreated, nil, &item.Title, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Assign sets or clears (nil) the assignee and records an assigned event.
func (s *Store) Assign(id int64, assignee *string) (*Item, error) {
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET assigned_to = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			nullable(assignee), now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update assignee: %w", err)
		}
		return s.logEvent(tx, id, EventAssigned, cur.AssignedTo, assignee, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateStatus moves an item through the state machine. result is
// tri-state: omitted leaves the stored result unchanged, null clears it,
// a value replaces it. The loser of a racing transition observes the
// winner's committed status and fails the guard.
func (s *Store) UpdateStatus(id int64, newStatus Status, result Optional[string]) (*Item, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q; must be one of %s",
			ErrInvalidArgument, newStatus, statusList())
	}
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(cur.Status, newStatus) {
			return &TransitionError{From: cur.Status, To: newStatus, Allowed: AllowedTargets(cur.Status)}
		}

		query := `UPDATE backlog_items SET status = ?, updated_at = ?`
		args := []any{string(newStatus), now()}
		if result.Present() {
			query += `, result = ?`
			if v, ok := result.Get(); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		query += ` WHERE id = ? RETURNING ` + itemColumns
		args = append(args, id)

		if item, err = s.scanItem(tx.QueryRow(query, args...)); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		oldS, newS := string(cur.Status), string(newStatus)
		return s.logEvent(tx, id, EventStatusChange, &oldS, &newS, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdatePriority changes the sort priority (any sign; higher first).
func (s *Store) UpdatePriority(id int64, priority int) (*Item, error) {
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET priority = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			priority, now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update priority: %w", err)
		}
		oldP, newP := strconv.Itoa(cur.Priority), strconv.Itoa(priority)
		return s.logEvent(tx, id, EventPriorityChange, &oldP, &newP, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateSprint sets or clears (nil) the sprint label.
func (s *Store) UpdateSprint(id int64, sprint *string) (*Item, error) {
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET sprint = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			nullable(sprint), now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update sprint: %w", err)
		}
		return s.logEvent(tx, id, EventSprintChange, cur.Sprint, sprint, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateParent re-parents an item (nil detaches it). The new parent must
// exist and must not create a cycle.
func (s *Store) UpdateParent(id int64, parent *int64) (*Item, error) {
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		if err := s.validateParent(tx, parent, id); err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET parent = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			nullable(parent), now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update parent: %w", err)
		}
		return s.logEvent(tx, id, EventParentChange, idString(cur.Parent), idString(parent), nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateTitle renames an item. Empty or whitespace-only titles are rejected.
func (s *Store) UpdateTitle(id int64, title string) (*Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET title = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			title, now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		return s.logEvent(tx, id, EventTitleChange, &cur.Title, &title, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateDescription sets or clears (nil) the description.
func (s *Store) UpdateDescription(id int64, description *string) (*Item, error) {
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET description = ?, updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			nullable(description), now(), id,
		)
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("update description: %w", err)
		}
		return s.logEvent(tx, id, EventDescriptionChange, cur.Description, description, nil)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Comment appends a comment event. Item fields stay untouched except
// updated_at, which advances so the item surfaces as recently active.
func (s *Store) Comment(id int64, text string) (*Item, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text must not be empty", ErrInvalidArgument)
	}
	var item *Item
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := s.fetchItem(tx, id); err != nil {
			return err
		}
		row := tx.QueryRow(
			`UPDATE backlog_items SET updated_at = ? WHERE id = ?
			 RETURNING `+itemColumns,
			now(), id,
		)
		var err error
		if item, err = s.scanItem(row); err != nil {
			return fmt.Errorf("touch item: %w", err)
		}
		return s.logEvent(tx, id, EventComment, nil, nil, &text)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item permanently. Children are detached (parent set
// to null, with a parent_change event each); the item's audit trail is
// preserved and capped with a deleted event holding a JSON snapshot of
// its final state. The id is never reused.
func (s *Store) Delete(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		item, err := s.fetchItem(tx, id)
		if err != nil {
			return err
		}
		snapshot, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("snapshot item: %w", err)
		}

		// Detach children before the row goes away, recording why.
		rows, err := tx.Query(`SELECT id FROM backlog_items WHERE parent = ?`, id)
		if err != nil {
			return fmt.Errorf("find children: %w", err)
		}
		var children []int64
		for rows.Next() {
			var child int64
			if err := rows.Scan(&child); err != nil {
				rows.Close()
				return err
			}
			children = append(children, child)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		oldParent := strconv.FormatInt(id, 10)
		note := fmt.Sprintf("parent item %d was deleted", id)
		for _, child := range children {
			if err := s.logEvent(tx, child, EventParentChange, &oldParent, nil, &note); err != nil {
				return err
			}
		}
		if len(children) > 0 {
			if _, err := tx.Exec(
				`UPDATE backlog_items SET parent = NULL, updated_at = ? WHERE parent = ?`,
				now(), id,
			); err != nil {
				return fmt.Errorf("detach children: %w", err)
			}
		}

		snap := string(snapshot)
		if err := s.logEvent(tx, id, EventDeleted, &snap, nil, nil); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM backlog_items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// validateParent checks a candidate parent inside the caller's
// transaction. itemID is the item being re-parented, or 0 on Add when no
// cycle is possible yet. The ancestor walk is iterative so hierarchy
// depth is bounded by the table, not the stack.
func (s *Store) validateParent(tx *sql.Tx, parent *int64, itemID int64) error {
	if parent == nil {
		return nil
	}
	p := *parent
	if itemID != 0 && p == itemID {
		return fmt.Errorf("%w: item %d cannot be its own parent", ErrInvalidArgument, itemID)
	}

	var one int
	err := tx.QueryRow(`SELECT 1 FROM backlog_items WHERE id = ?`, p).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return parentNotFound(p)
	}
	if err != nil {
		return err
	}
	if itemID == 0 {
		return nil
	}

	for cur := p; ; {
		var next sql.NullInt64
		err := tx.QueryRow(`SELECT parent FROM backlog_items WHERE id = ?`, cur).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !next.Valid) {
			return nil
		}
		if err != nil {
			return err
		}
		if next.Int64 == itemID {
			return fmt.Errorf("%w: circular parent reference (item %d is an ancestor of %d)",
				ErrInvalidArgument, itemID, p)
		}
		cur = next.Int64
	}
}

func idString(p *int64) *string {
	if p == nil {
		return nil
	}
	s := strconv.FormatInt(*p, 10)
	return &s
}

func statusList() string {
	parts := make([]string, len(Statuses))
	for i, s := range Statuses {
		parts[i] = string(s)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func typeList() string {
	parts := make([]string, len(ItemTypes))
	for i, t := range ItemTypes {
		parts[i] = string(t)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

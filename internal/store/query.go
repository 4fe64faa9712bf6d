package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ListFilter narrows ListItems. Zero-valued fields are ignored; filters
// AND-combine. Parent is tri-state: omitted means no parent filter, null
// means top-level items only, a value means children of that item.
// TopLevelOnly is shorthand for a null Parent and conflicts with an
// explicit Parent filter.
type ListFilter struct {
	Status       Status
	AssignedTo   string
	Type         ItemType
	Sprint       string
	Parent       Optional[int64]
	TopLevelOnly bool
}

// GetItem returns one item, or nil (no error) when the id is absent.
func (s *Store) GetItem(id int64) (*Item, error) {
	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM backlog_items WHERE id = ?`, id)
	item, err := s.scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", mapBusy(err))
	}
	return item, nil
}

// ListItems returns items matching the filter, ordered by priority
// descending with ties broken by ascending id (insertion order).
func (s *Store) ListItems(f ListFilter) ([]Item, error) {
	if f.TopLevelOnly && f.Parent.Present() {
		return nil, fmt.Errorf("%w: cannot specify both top_level_only and a parent filter", ErrInvalidArgument)
	}

	query := `SELECT ` + itemColumns + ` FROM backlog_items WHERE 1=1`
	var args []any
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.AssignedTo != "" {
		query += ` AND assigned_to = ?`
		args = append(args, f.AssignedTo)
	}
	if f.Type != "" {
		query += ` AND item_type = ?`
		args = append(args, string(f.Type))
	}
	if f.Sprint != "" {
		query += ` AND sprint = ?`
		args = append(args, f.Sprint)
	}
	if f.TopLevelOnly || f.Parent.IsNull() {
		query += ` AND parent IS NULL`
	} else if p, ok := f.Parent.Get(); ok {
		query += ` AND parent = ?`
		args = append(args, p)
	}
	query += ` ORDER BY priority DESC, id`

	return s.queryItems(query, args...)
}

// GetSprint returns the items in a sprint, optionally narrowed by status.
func (s *Store) GetSprint(sprint string, status Status) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM backlog_items WHERE sprint = ?`
	args := []any{sprint}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY priority DESC, id`

	return s.queryItems(query, args...)
}

func (s *Store) queryItems(query string, args ...any) ([]Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", mapBusy(err))
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := s.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetHistory returns every audit event for an id in insertion order.
// Deleted items keep their history; ErrNotFound only when the id has
// neither a current row nor any events (never existed).
func (s *Store) GetHistory(id int64) ([]Event, error) {
	events, err := s.queryEvents(
		`SELECT id, item_id, event_type, old_value, new_value, agent_id, comment, created_at
		 FROM backlog_events WHERE item_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if known, err := s.itemKnown(id); err != nil {
			return nil, err
		} else if !known {
			return nil, itemNotFound(id)
		}
	}
	return events, nil
}

// GetComments returns only comment events, with GetHistory's existence
// semantics.
func (s *Store) GetComments(id int64) ([]Event, error) {
	events, err := s.queryEvents(
		`SELECT id, item_id, event_type, old_value, new_value, agent_id, comment, created_at
		 FROM backlog_events WHERE item_id = ? AND event_type = ? ORDER BY id`,
		id, string(EventComment))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if known, err := s.itemKnown(id); err != nil {
			return nil, err
		} else if !known {
			return nil, itemNotFound(id)
		}
	}
	return events, nil
}

func (s *Store) queryEvents(query string, args ...any) ([]Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", mapBusy(err))
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// itemKnown reports whether an id has a current row or any history at
// all — i.e. it existed at some point.
func (s *Store) itemKnown(id int64) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM backlog_items WHERE id = ?`, id).Scan(&one)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, mapBusy(err)
	}
	err = s.db.QueryRow(`SELECT 1 FROM backlog_events WHERE item_id = ? LIMIT 1`, id).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, mapBusy(err)
}

// Package store implements the shared product backlog: a SQLite-backed
// work-item tracker safe for concurrent access by many agent processes.
//
// Every mutation runs inside an immediate (exclusive-write) transaction
// and writes exactly one audit event; both persist or neither does.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides access to one backlog database. Connections are pooled
// by database/sql; each pooled connection carries the WAL, busy-timeout
// and foreign-key pragmas from the DSN.
type Store struct {
	db    *sql.DB
	path  string // absolute database path
	agent string // composite agent identity, "" when unconfigured

	// Set when the store was handed out by a Registry, so Close can
	// deregister it.
	reg *Registry
	key string
}

// New opens (or creates) the backlog database at dbPath. agent is a short
// label identifying the calling worker; pass "" for anonymous access.
// The recorded identity is the composite "label/pid=N/main" so
// concurrent writers sharing one label stay forensically separable.
func New(dbPath, agent string) (*Store, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	// WAL for concurrent readers, a bounded busy wait instead of
	// immediate lock failure, foreign keys on, and BEGIN IMMEDIATE
	// semantics for every transaction.
	dsn := abs + "?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: abs, agent: agentIdentity(agent)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Path returns the resolved absolute database path.
func (s *Store) Path() string { return s.path }

// AgentName returns the composite identity written to created_by/agent_id,
// or "" when the store was opened anonymously.
func (s *Store) AgentName() string { return s.agent }

// Close closes the connection pool and, when the store came from a
// Registry, removes it so a later acquisition builds a fresh instance.
func (s *Store) Close() error {
	if s.reg != nil {
		s.reg.remove(s.key)
	}
	return s.db.Close()
}

// agentIdentity builds the composite identity for an agent label.
// Goroutines are anonymous, so the final segment is the process's main
// worker name rather than a thread name.
func agentIdentity(label string) string {
	if label == "" {
		return ""
	}
	return fmt.Sprintf("%s/pid=%d/main", label, os.Getpid())
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS backlog_items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT,
		item_type   TEXT NOT NULL DEFAULT 'story',
		status      TEXT NOT NULL DEFAULT 'backlog',
		priority    INTEGER NOT NULL DEFAULT 0,
		sprint      TEXT,
		assigned_to TEXT,
		created_by  TEXT,
		result      TEXT,
		parent      INTEGER REFERENCES backlog_items(id),
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS backlog_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id     INTEGER NOT NULL,
		event_type  TEXT NOT NULL,
		old_value   TEXT,
		new_value   TEXT,
		agent_id    TEXT,
		comment     TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_items_status ON backlog_items(status);
	CREATE INDEX IF NOT EXISTS idx_items_sprint ON backlog_items(sprint);
	CREATE INDEX IF NOT EXISTS idx_items_assigned ON backlog_items(assigned_to);
	CREATE INDEX IF NOT EXISTS idx_items_parent ON backlog_items(parent);
	CREATE INDEX IF NOT EXISTS idx_events_item ON backlog_events(item_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn inside an exclusive-write transaction: commit on normal
// return, rollback and propagate on any error. Lock timeouts surface as
// ErrContention and are never retried here.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return mapBusy(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return mapBusy(err)
	}
	return mapBusy(tx.Commit())
}

// now returns the current UTC time in the stored timestamp format:
// millisecond precision, trailing Z, 24 bytes. Matches the schema's
// strftime('%Y-%m-%dT%H:%M:%fZ','now') defaults.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// itemColumns is the explicit field allowlist for item queries. Reading
// by this fixed projection keeps scans stable if the table grows columns.
const itemColumns = `id, title, description, item_type, status, priority, sprint, assigned_to, created_by, result, parent, created_at, updated_at`

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanItem reads one item row in itemColumns order.
func (s *Store) scanItem(row scanner) (*Item, error) {
	var it Item
	var desc, sprint, assigned, createdBy, result sql.NullString
	var parent sql.NullInt64
	err := row.Scan(
		&it.ID, &it.Title, &desc, &it.Type, &it.Status, &it.Priority,
		&sprint, &assigned, &createdBy, &result, &parent,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		it.Description = &desc.String
	}
	if sprint.Valid {
		it.Sprint = &sprint.String
	}
	if assigned.Valid {
		it.AssignedTo = &assigned.String
	}
	if createdBy.Valid {
		it.CreatedBy = &createdBy.String
	}
	if result.Valid {
		it.Result = &result.String
	}
	if parent.Valid {
		it.Parent = &parent.Int64
	}
	it.st = s
	return &it, nil
}

// scanEvent reads one event row.
func scanEvent(row scanner) (*Event, error) {
	var e Event
	var oldV, newV, agentID, comment sql.NullString
	err := row.Scan(&e.ID, &e.ItemID, &e.Type, &oldV, &newV, &agentID, &comment, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if oldV.Valid {
		e.OldValue = &oldV.String
	}
	if newV.Valid {
		e.NewValue = &newV.String
	}
	if agentID.Valid {
		e.AgentID = &agentID.String
	}
	if comment.Valid {
		e.Comment = &comment.String
	}
	return &e, nil
}

// logEvent appends one audit event inside the caller's transaction.
func (s *Store) logEvent(tx *sql.Tx, itemID int64, typ EventType, oldV, newV, comment *string) error {
	var agent any
	if s.agent != "" {
		agent = s.agent
	}
	_, err := tx.Exec(
		`INSERT INTO backlog_events (item_id, event_type, old_value, new_value, agent_id, comment)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, string(typ), nullable(oldV), nullable(newV), agent, nullable(comment),
	)
	return err
}

// nullable converts a pointer into a driver value, NULL for nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// fetchItem loads one item inside a transaction, or itemNotFound.
func (s *Store) fetchItem(tx *sql.Tx, id int64) (*Item, error) {
	row := tx.QueryRow(`SELECT `+itemColumns+` FROM backlog_items WHERE id = ?`, id)
	it, err := s.scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, itemNotFound(id)
	}
	return it, err
}

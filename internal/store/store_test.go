package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testStore creates a temporary backlog store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test_backlog.db")
	s, err := New(dbPath, "Test")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sp(s string) *string { return &s }
func ip(i int64) *int64   { return &i }

func TestNew_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := New(dbPath, "Test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file not created")
	}
}

func TestNew_ResolvesAbsolutePath(t *testing.T) {
	s := testStore(t)
	if !filepath.IsAbs(s.Path()) {
		t.Errorf("expected absolute path, got %q", s.Path())
	}
}

func TestAgentIdentity(t *testing.T) {
	s := testStore(t)
	name := s.AgentName()
	if !strings.HasPrefix(name, "Test/pid=") {
		t.Errorf("expected identity starting with Test/pid=, got %q", name)
	}
}

func TestAgentIdentity_Anonymous(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "anon.db"), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if s.AgentName() != "" {
		t.Errorf("expected empty identity, got %q", s.AgentName())
	}
	item, err := s.Add(NewItem{Title: "Story"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.CreatedBy != nil {
		t.Errorf("expected nil created_by, got %q", *item.CreatedBy)
	}
	events, _ := s.GetHistory(item.ID)
	if events[0].AgentID != nil {
		t.Errorf("expected nil agent_id, got %q", *events[0].AgentID)
	}
}

func TestTimestampFormat(t *testing.T) {
	s := testStore(t)
	item, err := s.Add(NewItem{Title: "Story"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// ISO-8601 UTC, millisecond precision, trailing Z, 24 bytes.
	for _, ts := range []string{item.CreatedAt, item.UpdatedAt} {
		if len(ts) != 24 {
			t.Errorf("expected 24-byte timestamp, got %d (%q)", len(ts), ts)
		}
		if !strings.HasSuffix(ts, "Z") {
			t.Errorf("expected trailing Z, got %q", ts)
		}
	}

	// Schema default (created_at) and now() (updated_at) must agree.
	if _, err := s.UpdateStatus(item.ID, StatusReady, Omit[string]()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	refreshed, _ := s.GetItem(item.ID)
	if len(refreshed.UpdatedAt) != 24 || !strings.HasSuffix(refreshed.UpdatedAt, "Z") {
		t.Errorf("bad updated_at format: %q", refreshed.UpdatedAt)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "twice.db")

	s1, err := New(dbPath, "Test")
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	s1.Add(NewItem{Title: "Survives reopen"})
	s1.Close()

	s2, err := New(dbPath, "Test")
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	defer s2.Close()

	items, err := s2.ListItems(ListFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after reopen, got %d", len(items))
	}
}

func TestSchemaEvolution_ExtraColumnIgnored(t *testing.T) {
	s := testStore(t)
	if _, err := s.db.Exec(`ALTER TABLE backlog_items ADD COLUMN extra TEXT DEFAULT 'hello'`); err != nil {
		t.Fatalf("alter table: %v", err)
	}

	item, err := s.Add(NewItem{Title: "Story"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	fetched, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if fetched.Title != "Story" {
		t.Errorf("expected title Story, got %q", fetched.Title)
	}
}

package store

import (
	"errors"
	"strings"
	"testing"
)

func seedItems(t *testing.T, s *Store) {
	t.Helper()
	// 1: top-level story, sprint-1, priority 10
	// 2: top-level bug, sprint-1, priority 30, assigned to Barry
	// 3: top-level task, sprint-2, priority 20
	// 4: child of 1, spike, no sprint, priority 30
	if _, err := s.Add(NewItem{Title: "Story A", Sprint: sp("sprint-1"), Priority: 10}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, err := s.Add(NewItem{Title: "Bug B", Type: TypeBug, Sprint: sp("sprint-1"), Priority: 30})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.Assign(b.ID, sp("Barry")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.Add(NewItem{Title: "Task C", Type: TypeTask, Sprint: sp("sprint-2"), Priority: 20}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.Add(NewItem{Title: "Spike D", Type: TypeSpike, Priority: 30, Parent: ip(1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

// --- GetItem ---

func TestGetItem(t *testing.T) {
	s := testStore(t)
	item, _ := s.Add(NewItem{Title: "Story"})

	got, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.ID != item.ID || got.Title != "Story" {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestGetItem_Absent(t *testing.T) {
	s := testStore(t)
	got, err := s.GetItem(999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

// --- ListItems ---

func TestListItems_All(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, err := s.ListItems(ListFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
}

func TestListItems_Order(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{})
	got := titles(items)
	// Priority descending, ties broken by id ascending.
	want := []string{"Bug B", "Spike D", "Task C", "Story A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestListItems_ByStatus(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)
	advance(t, s, 1, StatusReady)

	items, _ := s.ListItems(ListFilter{Status: "ready"})
	if len(items) != 1 || items[0].Title != "Story A" {
		t.Errorf("unexpected items %v", titles(items))
	}

	items, _ = s.ListItems(ListFilter{Status: "backlog"})
	if len(items) != 3 {
		t.Errorf("expected 3 backlog items, got %d", len(items))
	}
}

func TestListItems_ByAssignee(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{AssignedTo: "Barry"})
	if len(items) != 1 || items[0].Title != "Bug B" {
		t.Errorf("unexpected items %v", titles(items))
	}
}

func TestListItems_ByType(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{Type: TypeBug})
	if len(items) != 1 || items[0].Title != "Bug B" {
		t.Errorf("unexpected items %v", titles(items))
	}
}

func TestListItems_BySprint(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{Sprint: "sprint-1"})
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %v", titles(items))
	}
}

func TestListItems_ByParent(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{Parent: Value(int64(1))})
	if len(items) != 1 || items[0].Title != "Spike D" {
		t.Errorf("unexpected items %v", titles(items))
	}

	// Explicit null parent matches top-level items only.
	items, _ = s.ListItems(ListFilter{Parent: Null[int64]()})
	if len(items) != 3 {
		t.Errorf("expected 3 top-level items, got %v", titles(items))
	}
}

func TestListItems_TopLevelOnly(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{TopLevelOnly: true})
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %v", titles(items))
	}
	for _, it := range items {
		if it.Parent != nil {
			t.Errorf("item %d has a parent", it.ID)
		}
	}
}

func TestListItems_ConflictingParentFilters(t *testing.T) {
	s := testStore(t)
	_, err := s.ListItems(ListFilter{TopLevelOnly: true, Parent: Value(int64(1))})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// Even a null parent filter conflicts with top_level_only.
	_, err = s.ListItems(ListFilter{TopLevelOnly: true, Parent: Null[int64]()})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListItems_CombinedFilters(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, _ := s.ListItems(ListFilter{Sprint: "sprint-1", Type: TypeStory})
	if len(items) != 1 || items[0].Title != "Story A" {
		t.Errorf("unexpected items %v", titles(items))
	}

	items, _ = s.ListItems(ListFilter{Sprint: "sprint-2", AssignedTo: "Barry"})
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", titles(items))
	}
}

func TestListItems_Empty(t *testing.T) {
	s := testStore(t)
	items, err := s.ListItems(ListFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty, got %v", titles(items))
	}
}

// --- GetSprint ---

func TestGetSprint(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)

	items, err := s.GetSprint("sprint-1", "")
	if err != nil {
		t.Fatalf("GetSprint: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %v", titles(items))
	}
}

func TestGetSprint_StatusFilter(t *testing.T) {
	s := testStore(t)
	seedItems(t, s)
	advance(t, s, 1, StatusReady)

	items, err := s.GetSprint("sprint-1", "ready")
	if err != nil {
		t.Fatalf("GetSprint: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Story A" {
		t.Errorf("unexpected items %v", titles(items))
	}
}

func TestGetSprint_Unknown(t *testing.T) {
	s := testStore(t)
	items, err := s.GetSprint("sprint-99", "")
	if err != nil {
		t.Fatalf("GetSprint: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty, got %v", titles(items))
	}
}

// --- GetHistory / GetComments ---

func TestGetHistory_Chronological(t *testing.T) {
	s := testStore(t)
	item, _ := s.Add(NewItem{Title: "Story"})
	s.Assign(item.ID, sp("Barry"))
	advance(t, s, item.ID, StatusReady)
	s.Comment(item.ID, "note")

	events, err := s.GetHistory(item.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	want := []EventType{EventCreated, EventAssigned, EventStatusChange, EventComment}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e.Type != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.Type)
		}
		if e.ItemID != item.ID {
			t.Errorf("event %d: item_id %d", i, e.ItemID)
		}
	}
}

func TestGetHistory_NeverExisted(t *testing.T) {
	s := testStore(t)
	_, err := s.GetHistory(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "999") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestGetComments(t *testing.T) {
	s := testStore(t)
	item, _ := s.Add(NewItem{Title: "Story"})
	s.Comment(item.ID, "first")
	s.Assign(item.ID, sp("Barry"))
	s.Comment(item.ID, "second")

	comments, err := s.GetComments(item.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if *comments[0].Comment != "first" || *comments[1].Comment != "second" {
		t.Errorf("got %v, %v", comments[0].Comment, comments[1].Comment)
	}
}

func TestGetComments_ExcludesAnnotations(t *testing.T) {
	s := testStore(t)
	parent, _ := s.Add(NewItem{Title: "Epic"})
	child, _ := s.Add(NewItem{Title: "Child", Parent: ip(parent.ID)})
	s.Delete(parent.ID)

	// The severed-parent annotation rides on a parent_change event, not a
	// comment event.
	comments, err := s.GetComments(child.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("expected no comments, got %d", len(comments))
	}
}

func TestGetComments_NeverExisted(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetComments(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetComments_AfterDelete(t *testing.T) {
	s := testStore(t)
	item, _ := s.Add(NewItem{Title: "Story"})
	s.Comment(item.ID, "kept")
	s.Delete(item.ID)

	comments, err := s.GetComments(item.ID)
	if err != nil {
		t.Fatalf("GetComments after delete: %v", err)
	}
	if len(comments) != 1 || *comments[0].Comment != "kept" {
		t.Errorf("unexpected comments %+v", comments)
	}
}

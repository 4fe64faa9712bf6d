package store

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestRegistry_SameKeySharesStore(t *testing.T) {
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "backlog.db")

	a, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	b, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if a != b {
		t.Error("expected the same store instance")
	}
	if reg.len() != 1 {
		t.Errorf("expected 1 cached store, got %d", reg.len())
	}
}

func TestRegistry_DistinctAgents(t *testing.T) {
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "backlog.db")

	a, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := reg.Get(path, "Beta")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if a == b {
		t.Error("different agents should not share a store")
	}
	if reg.len() != 2 {
		t.Errorf("expected 2 cached stores, got %d", reg.len())
	}

	// Both handles see the same database.
	item, err := a.Add(NewItem{Title: "Shared"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := b.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.Title != "Shared" {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestRegistry_DistinctPaths(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()

	a, err := reg.Get(filepath.Join(dir, "one.db"), "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := reg.Get(filepath.Join(dir, "two.db"), "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if a == b {
		t.Error("different paths should not share a store")
	}
}

func TestRegistry_EquivalentPathsShare(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()
	path := filepath.Join(dir, "backlog.db")
	dotted := filepath.Join(dir, ".", "backlog.db")

	a, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := reg.Get(dotted, "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Error("equivalent paths should resolve to the same store")
	}
}

func TestRegistry_CloseEvicts(t *testing.T) {
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "backlog.db")

	a, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if reg.len() != 0 {
		t.Errorf("expected empty registry after close, got %d", reg.len())
	}

	b, err := reg.Get(path, "Alpha")
	if err != nil {
		t.Fatalf("Get after close: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	if a == b {
		t.Error("expected a fresh store after close")
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "backlog.db")

	const n = 8
	stores := make([]*Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := reg.Get(path, "Alpha")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			stores[i] = s
		}(i)
	}
	wg.Wait()

	t.Cleanup(func() { stores[0].Close() })
	for i := 1; i < n; i++ {
		if stores[i] != stores[0] {
			t.Fatal("concurrent Gets returned different stores")
		}
	}
	if reg.len() != 1 {
		t.Errorf("expected 1 cached store, got %d", reg.len())
	}
}

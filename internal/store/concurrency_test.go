package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

// concurrentStores opens n stores against one database file, each with
// its own agent label.
func concurrentStores(t *testing.T, n int) []*Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backlog.db")
	stores := make([]*Store, n)
	for i := range stores {
		s, err := New(path, fmt.Sprintf("Worker-%d", i))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		stores[i] = s
	}
	return stores
}

func TestConcurrentAdds(t *testing.T) {
	const workers = 8
	const perWorker = 10
	stores := concurrentStores(t, workers)

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := s.Add(NewItem{Title: fmt.Sprintf("w%d-%d", i, j)}); err != nil {
					errs <- err
				}
			}
		}(i, s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Add: %v", err)
	}

	items, err := stores[0].ListItems(ListFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != workers*perWorker {
		t.Fatalf("expected %d items, got %d", workers*perWorker, len(items))
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %d", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestConcurrentSameTransition(t *testing.T) {
	const workers = 6
	stores := concurrentStores(t, workers)
	item, err := stores[0].Add(NewItem{Title: "Contested"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// All workers race backlog -> ready. Exactly one can win; the rest
	// see the item already out of backlog.
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			_, err := s.UpdateStatus(item.ID, StatusReady, Omit[string]())
			results <- err
		}(s)
	}
	wg.Wait()
	close(results)

	var wins, rejections int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("unexpected error: %v", err)
			}
			rejections++
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
	if rejections != workers-1 {
		t.Errorf("expected %d rejections, got %d", workers-1, rejections)
	}

	got, _ := stores[0].GetItem(item.ID)
	if got.Status != StatusReady {
		t.Errorf("expected ready, got %s", got.Status)
	}
	events, _ := stores[0].GetHistory(item.ID)
	var changes int
	for _, e := range events {
		if e.Type == EventStatusChange {
			changes++
		}
	}
	if changes != 1 {
		t.Errorf("expected 1 status_change event, got %d", changes)
	}
}

func TestConcurrentComments(t *testing.T) {
	const workers = 6
	stores := concurrentStores(t, workers)
	item, err := stores[0].Add(NewItem{Title: "Discussed"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			if _, err := s.Comment(item.ID, fmt.Sprintf("note from %d", i)); err != nil {
				errs <- err
			}
		}(i, s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Comment: %v", err)
	}

	comments, err := stores[0].GetComments(item.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != workers {
		t.Errorf("expected %d comments, got %d", workers, len(comments))
	}
}

func TestConcurrentDelete(t *testing.T) {
	const workers = 4
	stores := concurrentStores(t, workers)
	item, err := stores[0].Add(NewItem{Title: "Doomed"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			results <- s.Delete(item.ID)
		}(s)
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNotFound):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 successful delete, got %d", wins)
	}

	got, _ := stores[0].GetItem(item.ID)
	if got != nil {
		t.Error("item survived delete")
	}
	events, err := stores[0].GetHistory(item.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	var deleted int
	for _, e := range events {
		if e.Type == EventDeleted {
			deleted++
		}
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted event, got %d", deleted)
	}
}

func TestConcurrentMixedWriters(t *testing.T) {
	const workers = 6
	stores := concurrentStores(t, workers)
	item, err := stores[0].Add(NewItem{Title: "Busy"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			var err error
			switch i % 3 {
			case 0:
				_, err = s.UpdatePriority(item.ID, i*10)
			case 1:
				_, err = s.Assign(item.ID, sp(fmt.Sprintf("Worker-%d", i)))
			default:
				_, err = s.Comment(item.ID, fmt.Sprintf("pass %d", i))
			}
			if err != nil {
				errs <- err
			}
		}(i, s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("writer: %v", err)
	}

	events, err := stores[0].GetHistory(item.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	// created + one event per writer.
	if len(events) != workers+1 {
		t.Errorf("expected %d events, got %d", workers+1, len(events))
	}
}

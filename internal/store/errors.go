package store

import (
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors for the store. Match with errors.Is.
var (
	// ErrInvalidArgument reports malformed input rejected before any write:
	// unknown item type or status, empty title or comment text,
	// self-parenting, circular parent references, conflicting filters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports a referenced item id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrContention reports a lock/busy timeout. The store never retries
	// internally; callers that want retry-on-contention loop explicitly.
	ErrContention = errors.New("database is locked")

	// ErrNotBound reports a method call on an Item that is not attached
	// to a Store (hand-built, or already deleted).
	ErrNotBound = errors.New("item is not bound to a store")
)

// TransitionError reports a status change not permitted by the state machine.
type TransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *TransitionError) Error() string {
	targets := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		targets[i] = string(s)
	}
	return fmt.Sprintf("cannot transition from %q to %q; allowed: {%s}",
		e.From, e.To, strings.Join(targets, ", "))
}

// Is makes a rejected transition match ErrInvalidArgument, since it is a
// refinement of malformed input rather than a separate failure class.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func itemNotFound(id int64) error {
	return fmt.Errorf("backlog item %d: %w", id, ErrNotFound)
}

func parentNotFound(id int64) error {
	return fmt.Errorf("parent item %d: %w", id, ErrNotFound)
}

// mapBusy converts SQLITE_BUSY/SQLITE_LOCKED driver errors into
// ErrContention so callers can match with errors.Is. Other errors pass
// through unchanged.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", ErrContention, err)
		}
	}
	return err
}

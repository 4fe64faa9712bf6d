package store

// Status represents the current state of an item in the workflow.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusMerged     Status = "merged"
	StatusDone       Status = "done" // terminal
	StatusParked     Status = "parked"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{
	StatusBacklog,
	StatusReady,
	StatusInProgress,
	StatusReview,
	StatusMerged,
	StatusDone,
	StatusParked,
}

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ItemType distinguishes the kinds of backlog items.
type ItemType string

const (
	TypeStory ItemType = "story"
	TypeBug   ItemType = "bug"
	TypeTask  ItemType = "task"
	TypeSpike ItemType = "spike"
)

// ItemTypes lists every valid item type.
var ItemTypes = []ItemType{TypeStory, TypeBug, TypeTask, TypeSpike}

// Valid reports whether t is a recognized item type.
func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// EventType classifies audit events.
type EventType string

const (
	EventCreated           EventType = "created"
	EventAssigned          EventType = "assigned"
	EventStatusChange      EventType = "status_change"
	EventPriorityChange    EventType = "priority_change"
	EventSprintChange      EventType = "sprint_change"
	EventParentChange      EventType = "parent_change"
	EventTitleChange       EventType = "title_change"
	EventDescriptionChange EventType = "description_change"
	EventComment           EventType = "comment"
	EventDeleted           EventType = "deleted"
)

// Item is a single backlog item. A returned Item is a detached snapshot;
// call Refresh to pick up changes made through other handles.
//
// Timestamps are stored and exposed as ISO-8601 UTC strings with
// millisecond precision and a trailing Z, so string comparison matches
// chronological order.
type Item struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Type        ItemType `json:"item_type"`
	Status      Status   `json:"status"`
	Priority    int      `json:"priority"` // higher sorts first
	Sprint      *string  `json:"sprint"`
	AssignedTo  *string  `json:"assigned_to"`
	CreatedBy   *string  `json:"created_by"`
	Result      *string  `json:"result"`
	Parent      *int64   `json:"parent"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`

	// Bound after construction by the store; nil for detached values.
	st *Store
}

// Event is one immutable audit record. Events are append-only and survive
// deletion of the item they describe.
type Event struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Type      EventType `json:"event_type"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	AgentID   *string   `json:"agent_id"`
	Comment   *string   `json:"comment"`
	CreatedAt string    `json:"created_at"`
}

// Optional is a tri-state parameter: omitted, explicit null, or a value.
// The zero value is Omitted.
type Optional[T any] struct {
	present bool
	null    bool
	value   T
}

// Omit returns an Optional that leaves the target unchanged.
func Omit[T any]() Optional[T] { return Optional[T]{} }

// Null returns an Optional that explicitly clears the target.
func Null[T any]() Optional[T] { return Optional[T]{present: true, null: true} }

// Value returns an Optional carrying v.
func Value[T any](v T) Optional[T] { return Optional[T]{present: true, value: v} }

// Present reports whether the parameter was provided at all.
func (o Optional[T]) Present() bool { return o.present }

// IsNull reports whether the parameter was provided as an explicit null.
func (o Optional[T]) IsNull() bool { return o.present && o.null }

// Get returns the carried value; ok is false when omitted or null.
func (o Optional[T]) Get() (v T, ok bool) {
	if !o.present || o.null {
		return v, false
	}
	return o.value, true
}

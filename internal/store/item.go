package store

// Bound convenience methods on Item. Each delegates to the owning store
// and syncs the local copy's mutable fields from the refreshed row, so a
// held Item tracks its own mutations without an explicit Refresh.
// Items built by hand (or already deleted) are unbound and fail with
// ErrNotBound.

// Refresh replaces every field from the current stored row.
func (it *Item) Refresh() error {
	if it.st == nil {
		return ErrNotBound
	}
	fresh, err := it.st.GetItem(it.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return itemNotFound(it.ID)
	}
	*it = *fresh
	return nil
}

// Assign sets or clears the assignee and syncs the local copy.
func (it *Item) Assign(assignee *string) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.Assign(it.ID, assignee)
	if err != nil {
		return err
	}
	it.AssignedTo = upd.AssignedTo
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdateStatus transitions the item and syncs status, result and
// updated_at.
func (it *Item) UpdateStatus(newStatus Status, result Optional[string]) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdateStatus(it.ID, newStatus, result)
	if err != nil {
		return err
	}
	it.Status = upd.Status
	it.Result = upd.Result
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdatePriority changes the priority and syncs the local copy.
func (it *Item) UpdatePriority(priority int) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdatePriority(it.ID, priority)
	if err != nil {
		return err
	}
	it.Priority = upd.Priority
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdateSprint sets or clears the sprint and syncs the local copy.
func (it *Item) UpdateSprint(sprint *string) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdateSprint(it.ID, sprint)
	if err != nil {
		return err
	}
	it.Sprint = upd.Sprint
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdateParent re-parents the item and syncs the local copy.
func (it *Item) UpdateParent(parent *int64) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdateParent(it.ID, parent)
	if err != nil {
		return err
	}
	it.Parent = upd.Parent
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdateTitle renames the item and syncs the local copy.
func (it *Item) UpdateTitle(title string) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdateTitle(it.ID, title)
	if err != nil {
		return err
	}
	it.Title = upd.Title
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// UpdateDescription sets or clears the description and syncs the local copy.
func (it *Item) UpdateDescription(description *string) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.UpdateDescription(it.ID, description)
	if err != nil {
		return err
	}
	it.Description = upd.Description
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// Comment appends a comment event and syncs updated_at.
func (it *Item) Comment(text string) error {
	if it.st == nil {
		return ErrNotBound
	}
	upd, err := it.st.Comment(it.ID, text)
	if err != nil {
		return err
	}
	it.UpdatedAt = upd.UpdatedAt
	return nil
}

// Delete removes the item and unbinds this copy; further calls fail with
// ErrNotBound.
func (it *Item) Delete() error {
	if it.st == nil {
		return ErrNotBound
	}
	if err := it.st.Delete(it.ID); err != nil {
		return err
	}
	it.st = nil
	return nil
}

// History returns the item's audit trail.
func (it *Item) History() ([]Event, error) {
	if it.st == nil {
		return nil, ErrNotBound
	}
	return it.st.GetHistory(it.ID)
}

// Comments returns the item's comment events.
func (it *Item) Comments() ([]Event, error) {
	if it.st == nil {
		return nil, ErrNotBound
	}
	return it.st.GetComments(it.ID)
}

package database

import (
	"fmt"
	"time"
)

// Lifecycle transitions for a task. A task is in exactly one of three states:
// active (on the board, in one of the four columns), deleted (in the recycle
// bin, last column and position retained), or purged (row gone). These methods
// are pure state changes; TaskService persists them.

// MoveTo places the task in the given column at the given position. Moving
// a deleted task is not allowed; it has no board position until restored.
func (t *Task) MoveTo(column Column, position int, now time.Time) error {
	if t.IsDeleted {
		return fmt.Errorf("%w: cannot move a deleted task", ErrInvalidState)
	}
	if !column.Valid() {
		return &ValidationError{Field: "column", Message: fmt.Sprintf("unknown column %q", column)}
	}
	t.Column = column
	t.Position = position
	t.UpdatedAt = now
	return nil
}

// MarkDeleted moves the task into the recycle bin. Column and position are
// left as-is so Restore knows where the task came from.
func (t *Task) MarkDeleted(now time.Time) error {
	if t.IsDeleted {
		return fmt.Errorf("%w: task is already deleted", ErrInvalidState)
	}
	t.IsDeleted = true
	t.DeletedAt = &now
	t.UpdatedAt = now
	return nil
}

// MarkRestored returns the task to its retained column at the given position
// (the caller appends it to the end of that column).
func (t *Task) MarkRestored(position int, now time.Time) error {
	if !t.IsDeleted {
		return fmt.Errorf("%w: task is not deleted", ErrInvalidState)
	}
	t.IsDeleted = false
	t.DeletedAt = nil
	t.Position = position
	t.UpdatedAt = now
	return nil
}

// CanPurge reports whether the task may be permanently removed. Purge is only
// reachable from the recycle bin; an active task must be soft-deleted first.
func (t *Task) CanPurge() error {
	if !t.IsDeleted {
		return fmt.Errorf("%w: task must be deleted before it can be purged", ErrInvalidState)
	}
	return nil
}

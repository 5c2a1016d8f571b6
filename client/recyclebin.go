package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/skhapre/dashboard-app/database"
)

// RecycleBin presents the owner's deleted tasks and dispatches restore and
// purge operations. After a successful restore it signals the board to
// reload, since the restored task must reappear in its retained column.
type RecycleBin struct {
	api TaskAPI

	// onRestored is invoked after a task leaves the bin and returns to the
	// board. Wired to Synchronizer.LoadBoard in the app.
	onRestored func(ctx context.Context) error

	mu      sync.Mutex
	deleted []database.Task
}

func NewRecycleBin(api TaskAPI, onRestored func(ctx context.Context) error) *RecycleBin {
	return &RecycleBin{
		api:        api,
		onRestored: onRestored,
	}
}

// Load refreshes the list of deleted tasks. The server returns them most
// recently deleted first.
func (b *RecycleBin) Load(ctx context.Context) error {
	tasks, err := b.api.ListDeleted(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recycle bin: %w", err)
	}

	b.mu.Lock()
	b.deleted = tasks
	b.mu.Unlock()
	return nil
}

// Items returns the current deleted-task list.
func (b *RecycleBin) Items() []database.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleted
}

func (b *RecycleBin) removeLocal(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Build a fresh slice; a list previously handed out by Items must not
	// see the shift.
	kept := make([]database.Task, 0, len(b.deleted))
	for _, t := range b.deleted {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	b.deleted = kept
}

// RestoreOne puts a deleted task back on the board and triggers a board
// reload so it shows up in its retained column.
func (b *RecycleBin) RestoreOne(ctx context.Context, id string) error {
	if _, err := b.api.RestoreTask(ctx, id); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}

	b.removeLocal(id)

	if b.onRestored != nil {
		if err := b.onRestored(ctx); err != nil {
			return fmt.Errorf("restored, but board reload failed: %w", err)
		}
	}
	return nil
}

// PurgeOne permanently removes a single task. The confirmation prompt lives
// at the UI boundary; by the time this is called the user has committed.
func (b *RecycleBin) PurgeOne(ctx context.Context, id string) error {
	if err := b.api.PurgeTask(ctx, id); err != nil {
		return fmt.Errorf("failed to purge task: %w", err)
	}
	b.removeLocal(id)
	return nil
}

// PurgeAll empties the recycle bin for good.
func (b *RecycleBin) PurgeAll(ctx context.Context) error {
	if err := b.api.PurgeAllTasks(ctx); err != nil {
		return fmt.Errorf("failed to clear recycle bin: %w", err)
	}

	b.mu.Lock()
	b.deleted = nil
	b.mu.Unlock()
	return nil
}

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/skhapre/dashboard-app/board"
	"github.com/skhapre/dashboard-app/database"
)

// Synchronizer keeps a local board snapshot consistent with the server under
// interactive drag-and-drop. Drops are applied optimistically as a single
// snapshot swap; when the persistence call fails the whole board is refetched
// rather than trying to patch the guess back out.
type Synchronizer struct {
	api TaskAPI

	mu       sync.Mutex
	snapshot database.Board
}

func NewSynchronizer(api TaskAPI) *Synchronizer {
	return &Synchronizer{
		api:      api,
		snapshot: database.NewBoard(),
	}
}

// LoadBoard replaces the local snapshot with the server's grouping. It is
// both the initial load and the error-recovery path.
func (s *Synchronizer) LoadBoard(ctx context.Context) error {
	fetched, err := s.api.FetchBoard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	// Normalize: every column key present, and each task's column field
	// matching the list it arrived in.
	snapshot := database.NewBoard()
	for _, column := range database.Columns {
		tasks := fetched[column]
		for i := range tasks {
			tasks[i].Column = column
		}
		if tasks == nil {
			tasks = []database.Task{}
		}
		snapshot[column] = tasks
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current board view. The caller must treat it as
// read-only; the synchronizer never mutates a snapshot in place.
func (s *Synchronizer) Snapshot() database.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// OnDragEnd handles the end of a drag gesture. A nil destination means the
// task was dropped outside any column; that and a drop on the exact starting
// position are no-ops with no network call.
//
// Otherwise the move is applied to the snapshot immediately, then persisted.
// If persistence fails, the optimistic snapshot is thrown away and the board
// reloaded from the server; the move error is returned after recovery.
func (s *Synchronizer) OnDragEnd(ctx context.Context, source board.DropTarget, destination *board.DropTarget) error {
	if destination == nil {
		return nil
	}
	dest := *destination
	// The server clamps out-of-range drop indexes; mirror the lower bound
	// here so a stray negative index from the UI lands at the top.
	if dest.Index < 0 {
		dest.Index = 0
	}

	s.mu.Lock()
	if source.Index < 0 || source.Index >= len(s.snapshot[source.Column]) {
		s.mu.Unlock()
		return nil
	}
	taskID := s.snapshot[source.Column][source.Index].ID
	next, moved := board.ApplySnapshotMove(s.snapshot, source, dest)
	if !moved {
		s.mu.Unlock()
		return nil
	}
	s.snapshot = next
	s.mu.Unlock()

	if _, err := s.api.MoveTask(ctx, taskID, dest.Column, dest.Index); err != nil {
		// The optimistic guess no longer matches the server. Reconcile by
		// refetching the authoritative board in full.
		if loadErr := s.LoadBoard(ctx); loadErr != nil {
			return fmt.Errorf("move failed (%v) and board reload failed: %w", err, loadErr)
		}
		return fmt.Errorf("move failed: %w", err)
	}

	return nil
}

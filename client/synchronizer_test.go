package client

import (
	"context"
	"errors"
	"testing"

	"github.com/skhapre/dashboard-app/board"
	"github.com/skhapre/dashboard-app/database"
)

type moveCall struct {
	ID     string
	Column database.Column
	Index  int
}

// fakeAPI plays the server: FetchBoard always answers with the authoritative
// board, MoveTask records calls and optionally fails.
type fakeAPI struct {
	board      database.Board
	deleted    []database.Task
	fetchCalls int
	moveCalls  []moveCall
	moveErr    error

	restoreErr  error
	purgeCalls  []string
	restored    []string
	purgedAll   int
	listDeleted int
}

func (f *fakeAPI) FetchBoard(ctx context.Context) (database.Board, error) {
	f.fetchCalls++
	copied := database.Board{}
	for column, tasks := range f.board {
		copied[column] = append([]database.Task(nil), tasks...)
	}
	return copied, nil
}

func (f *fakeAPI) MoveTask(ctx context.Context, id string, column database.Column, index int) (*database.Task, error) {
	f.moveCalls = append(f.moveCalls, moveCall{ID: id, Column: column, Index: index})
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	return &database.Task{ID: id, Column: column, Position: index}, nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, req database.CreateTaskRequest) (*database.Task, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, patch database.TaskPatch) (*database.Task, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (f *fakeAPI) ListDeleted(ctx context.Context) ([]database.Task, error) {
	f.listDeleted++
	return append([]database.Task(nil), f.deleted...), nil
}

func (f *fakeAPI) RestoreTask(ctx context.Context, id string) (*database.Task, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	f.restored = append(f.restored, id)
	return &database.Task{ID: id}, nil
}

func (f *fakeAPI) PurgeTask(ctx context.Context, id string) error {
	f.purgeCalls = append(f.purgeCalls, id)
	return nil
}

func (f *fakeAPI) PurgeAllTasks(ctx context.Context) error {
	f.purgedAll++
	f.deleted = nil
	return nil
}

func serverBoard() database.Board {
	b := database.NewBoard()
	b[database.ColumnBacklog] = []database.Task{
		{ID: "a", Column: database.ColumnBacklog, Position: 0},
		{ID: "b", Column: database.ColumnBacklog, Position: 1},
	}
	b[database.ColumnInProgress] = []database.Task{
		{ID: "x", Column: database.ColumnInProgress, Position: 0},
	}
	return b
}

func snapshotIDs(t *testing.T, s *Synchronizer, column database.Column) []string {
	t.Helper()
	var ids []string
	for _, task := range s.Snapshot()[column] {
		ids = append(ids, task.ID)
	}
	return ids
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLoadBoardReplacesSnapshot(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)

	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	assertIDs(t, snapshotIDs(t, s, database.ColumnBacklog), "a", "b")
	assertIDs(t, snapshotIDs(t, s, database.ColumnInProgress), "x")
	if s.Snapshot()[database.ColumnDone] == nil {
		t.Fatal("normalized snapshot must carry every column")
	}
}

func TestDragOutsideAnyColumnIsNoOp(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	err := s.OnDragEnd(context.Background(),
		board.DropTarget{Column: database.ColumnBacklog, Index: 0}, nil)
	if err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}

	if len(api.moveCalls) != 0 {
		t.Fatal("dropping outside a column must not call the server")
	}
	assertIDs(t, snapshotIDs(t, s, database.ColumnBacklog), "a", "b")
}

func TestDragToSamePositionIsNoOp(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	target := board.DropTarget{Column: database.ColumnBacklog, Index: 1}
	if err := s.OnDragEnd(context.Background(), target, &target); err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}

	if len(api.moveCalls) != 0 {
		t.Fatal("same-position drop must not call the server")
	}
}

func TestDragAppliesOptimisticallyAndPersists(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	dest := board.DropTarget{Column: database.ColumnInProgress, Index: 0}
	err := s.OnDragEnd(context.Background(),
		board.DropTarget{Column: database.ColumnBacklog, Index: 1}, &dest)
	if err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}

	assertIDs(t, snapshotIDs(t, s, database.ColumnBacklog), "a")
	assertIDs(t, snapshotIDs(t, s, database.ColumnInProgress), "b", "x")

	if len(api.moveCalls) != 1 {
		t.Fatalf("move calls %d, want 1", len(api.moveCalls))
	}
	call := api.moveCalls[0]
	if call.ID != "b" || call.Column != database.ColumnInProgress || call.Index != 0 {
		t.Fatalf("unexpected move call %+v", call)
	}

	// No refetch happened: the optimistic snapshot stands until proven wrong.
	if api.fetchCalls != 1 {
		t.Fatalf("fetch calls %d, want 1", api.fetchCalls)
	}
}

func TestFailedMoveRollsBackByRefetch(t *testing.T) {
	api := &fakeAPI{board: serverBoard(), moveErr: errors.New("store unavailable")}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	dest := board.DropTarget{Column: database.ColumnInProgress, Index: 0}
	err := s.OnDragEnd(context.Background(),
		board.DropTarget{Column: database.ColumnBacklog, Index: 1}, &dest)
	if err == nil {
		t.Fatal("expected the move error to surface")
	}

	// The optimistic guess is gone; the snapshot matches the server again.
	assertIDs(t, snapshotIDs(t, s, database.ColumnBacklog), "a", "b")
	assertIDs(t, snapshotIDs(t, s, database.ColumnInProgress), "x")
	if api.fetchCalls != 2 {
		t.Fatalf("fetch calls %d, want initial load plus recovery refetch", api.fetchCalls)
	}
}

func TestDragWithNegativeDestinationIndex(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	dest := board.DropTarget{Column: database.ColumnInProgress, Index: -1}
	err := s.OnDragEnd(context.Background(),
		board.DropTarget{Column: database.ColumnBacklog, Index: 0}, &dest)
	if err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}

	// A negative drop index lands at the top of the target column.
	assertIDs(t, snapshotIDs(t, s, database.ColumnInProgress), "a", "x")
	if len(api.moveCalls) != 1 || api.moveCalls[0].Index != 0 {
		t.Fatalf("unexpected move calls %+v", api.moveCalls)
	}
}

func TestDragNeverLosesTask(t *testing.T) {
	api := &fakeAPI{board: serverBoard()}
	s := NewSynchronizer(api)
	if err := s.LoadBoard(context.Background()); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	dest := board.DropTarget{Column: database.ColumnDone, Index: 5}
	err := s.OnDragEnd(context.Background(),
		board.DropTarget{Column: database.ColumnBacklog, Index: 0}, &dest)
	if err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}

	count := 0
	for _, column := range database.Columns {
		for _, task := range s.Snapshot()[column] {
			if task.ID == "a" {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("task appears in %d columns, want exactly 1", count)
	}
}

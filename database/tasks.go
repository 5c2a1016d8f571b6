package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskService handles all task persistence. It is the only writer of
// authoritative task state; everything above it treats its answers as truth.
type TaskService struct {
	db *sql.DB
}

func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

// CreateTaskRequest carries the caller-settable fields for a new task. New
// tasks always start at the end of the backlog column.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

const taskColumns = `id, owner, title, description, priority, column_name, position,
	tags, due_date, comments, attachments, is_deleted, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var tags, comments, attachments string
	var dueDate, deletedAt sql.NullTime
	var isDeleted int

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Column,
		&t.Position,
		&tags,
		&dueDate,
		&comments,
		&attachments,
		&isDeleted,
		&deletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(comments), &t.Comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &t.Attachments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}

	t.IsDeleted = isDeleted != 0
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if deletedAt.Valid {
		d := deletedAt.Time
		t.DeletedAt = &d
	}

	return &t, nil
}

func marshalDocs(t *Task) (tags, comments, attachments string, err error) {
	b, err := json.Marshal(t.Tags)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	tags = string(b)

	b, err = json.Marshal(t.Comments)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal comments: %w", err)
	}
	comments = string(b)

	b, err = json.Marshal(t.Attachments)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal attachments: %w", err)
	}
	attachments = string(b)

	return tags, comments, attachments, nil
}

// Create validates the request and inserts a new task at the end of the
// owner's backlog column.
func (s *TaskService) Create(ctx context.Context, owner string, req CreateTaskRequest) (*Task, error) {
	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", req.Priority)}
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.NewString(),
		Owner:       owner,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Column:      ColumnBacklog,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		Comments:    []Comment{},
		Attachments: []Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Append to the backlog: the new position is one past the current maximum.
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks
		 WHERE owner = ? AND column_name = ? AND is_deleted = 0`,
		owner, ColumnBacklog,
	).Scan(&task.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	tags, comments, attachments, err := marshalDocs(task)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, owner, title, description, priority, column_name, position,
			tags, due_date, comments, attachments, is_deleted, deleted_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		task.ID, task.Owner, task.Title, task.Description, task.Priority, task.Column,
		task.Position, tags, task.DueDate, comments, attachments, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// FindByOwner lists the owner's tasks, either the active set (ordered by
// column and position, ready for board grouping) or the deleted set (most
// recently deleted first, for the recycle bin).
func (s *TaskService) FindByOwner(ctx context.Context, owner string, deleted bool) ([]Task, error) {
	order := "column_name, position"
	if deleted {
		order = "deleted_at DESC"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE owner = ? AND is_deleted = ?
		 ORDER BY `+order,
		owner, deleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetBoard returns the owner's active tasks grouped by column. Every column
// key is present even when empty.
func (s *TaskService) GetBoard(ctx context.Context, owner string) (Board, error) {
	tasks, err := s.FindByOwner(ctx, owner, false)
	if err != nil {
		return nil, err
	}

	board := NewBoard()
	for _, t := range tasks {
		board[t.Column] = append(board[t.Column], t)
	}
	return board, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx, so lookups can run
// inside or outside a transaction.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *TaskService) getForOwner(ctx context.Context, q queryRower, owner, id string) (*Task, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner = ?`, id, owner)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Get returns a single task owned by owner.
func (s *TaskService) Get(ctx context.Context, owner, id string) (*Task, error) {
	return s.getForOwner(ctx, s.db, owner, id)
}

// UpdateFields applies a partial edit to the task's content fields. Column
// and position cannot be changed here; moves go through ApplyMove.
func (s *TaskService) UpdateFields(ctx context.Context, owner, id string, patch TaskPatch) (*Task, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", *patch.Priority)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := s.getForOwner(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		task.Tags = *patch.Tags
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Comments != nil {
		task.Comments = *patch.Comments
	}
	if patch.Attachments != nil {
		task.Attachments = *patch.Attachments
	}
	task.UpdatedAt = time.Now().UTC()

	tags, comments, attachments, err := marshalDocs(task)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, tags = ?,
			due_date = ?, comments = ?, attachments = ?, updated_at = ?
		 WHERE id = ? AND owner = ?`,
		task.Title, task.Description, task.Priority, tags,
		task.DueDate, comments, attachments, task.UpdatedAt, id, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// ApplyMove moves a task to targetColumn at targetIndex and rewrites the
// positions of every task in the affected columns. The whole reorder runs in
// one transaction so two near-simultaneous moves on the same column cannot
// interleave their position writes; replaying the same move is harmless
// because positions are recomputed from the stored order each time.
func (s *TaskService) ApplyMove(ctx context.Context, owner, id string, targetColumn Column, targetIndex int) (*Task, error) {
	if !targetColumn.Valid() {
		return nil, &ValidationError{Field: "column", Message: fmt.Sprintf("unknown column %q", targetColumn)}
	}
	if targetIndex < 0 {
		return nil, &ValidationError{Field: "order", Message: "order cannot be negative"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := s.getForOwner(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sourceColumn := task.Column
	if err := task.MoveTo(targetColumn, targetIndex, now); err != nil {
		return nil, err
	}

	listIDs := func(column Column) ([]string, error) {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM tasks
			 WHERE owner = ? AND column_name = ? AND is_deleted = 0
			 ORDER BY position`,
			owner, column,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list column %s: %w", column, err)
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var taskID string
			if err := rows.Scan(&taskID); err != nil {
				return nil, fmt.Errorf("failed to scan task id: %w", err)
			}
			ids = append(ids, taskID)
		}
		return ids, rows.Err()
	}

	source, err := listIDs(sourceColumn)
	if err != nil {
		return nil, err
	}

	// Splice the task out of its source column and into the target slot.
	filtered := source[:0]
	for _, taskID := range source {
		if taskID != id {
			filtered = append(filtered, taskID)
		}
	}
	source = filtered

	dest := source
	if targetColumn != sourceColumn {
		dest, err = listIDs(targetColumn)
		if err != nil {
			return nil, err
		}
	}

	if targetIndex > len(dest) {
		targetIndex = len(dest)
	}
	dest = append(dest, "")
	copy(dest[targetIndex+1:], dest[targetIndex:])
	dest[targetIndex] = id

	reindex := func(column Column, ids []string) error {
		for i, taskID := range ids {
			_, err := tx.ExecContext(ctx,
				`UPDATE tasks SET column_name = ?, position = ? WHERE id = ?`,
				column, i, taskID,
			)
			if err != nil {
				return fmt.Errorf("failed to reindex column %s: %w", column, err)
			}
		}
		return nil
	}

	if targetColumn != sourceColumn {
		if err := reindex(sourceColumn, source); err != nil {
			return nil, err
		}
	}
	if err := reindex(targetColumn, dest); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE tasks SET updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to touch task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Report the position the task actually landed on.
	task.Position = targetIndex
	return task, nil
}

// SoftDelete moves a task into the recycle bin, keeping its column and
// position as the last known board location.
func (s *TaskService) SoftDelete(ctx context.Context, owner, id string) (*Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := s.getForOwner(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := task.MarkDeleted(time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = 1, deleted_at = ?, updated_at = ? WHERE id = ?`,
		task.DeletedAt, task.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to soft delete task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// Restore returns a deleted task to the board. It reappears at the end of its
// retained column, not at its old position.
func (s *TaskService) Restore(ctx context.Context, owner, id string) (*Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := s.getForOwner(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks
		 WHERE owner = ? AND column_name = ? AND is_deleted = 0`,
		owner, task.Column,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	if err := task.MarkRestored(position, time.Now().UTC()); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = 0, deleted_at = NULL, position = ?, updated_at = ? WHERE id = ?`,
		task.Position, task.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// Purge permanently removes a deleted task. Purging an active task is an
// invalid-state error; callers must soft-delete first.
func (s *TaskService) Purge(ctx context.Context, owner, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := s.getForOwner(ctx, tx, owner, id)
	if err != nil {
		return err
	}

	if err := task.CanPurge(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to purge task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PurgeAll empties the owner's recycle bin and returns how many tasks were
// removed. Calling it on an empty bin is a no-op returning 0.
func (s *TaskService) PurgeAll(ctx context.Context, owner string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE owner = ? AND is_deleted = 1`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tasks: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged tasks: %w", err)
	}

	return count, nil
}

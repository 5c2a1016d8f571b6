package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Todo is a quick-capture checklist item. It lives outside the board; a todo
// that grows into real work gets promoted by creating a task from its text
// and deleting the todo.
type Todo struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrTodoNotFound means the todo does not exist or belongs to another owner.
var ErrTodoNotFound = errors.New("todo not found")

// TodoService is the store behind the todo-list routes.
type TodoService struct {
	db *sql.DB
}

func NewTodoService(db *sql.DB) *TodoService {
	return &TodoService{db: db}
}

// Create appends a new open todo to the owner's list.
func (s *TodoService) Create(ctx context.Context, owner, text string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "text is required"}
	}

	now := time.Now().UTC()
	todo := &Todo{
		ID:        uuid.NewString(),
		Owner:     owner,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, owner, text, completed, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		todo.ID, todo.Owner, todo.Text, todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	return todo, nil
}

// List returns the owner's todos in the order they were added.
func (s *TodoService) List(ctx context.Context, owner string) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, text, completed, created_at, updated_at FROM todos
		 WHERE owner = ?
		 ORDER BY created_at, id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var todo Todo
		err := rows.Scan(&todo.ID, &todo.Owner, &todo.Text, &todo.Completed,
			&todo.CreatedAt, &todo.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// Update replaces a todo's text.
func (s *TodoService) Update(ctx context.Context, owner, id, text string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "text is required"}
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET text = ?, updated_at = ? WHERE id = ? AND owner = ?`,
		text, now, id, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return nil, ErrTodoNotFound
	}

	return s.get(ctx, owner, id)
}

// Toggle flips a todo between open and completed.
func (s *TodoService) Toggle(ctx context.Context, owner, id string) (*Todo, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET completed = 1 - completed, updated_at = ?
		 WHERE id = ? AND owner = ?`,
		now, id, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check toggle: %w", err)
	}
	if affected == 0 {
		return nil, ErrTodoNotFound
	}

	return s.get(ctx, owner, id)
}

// Delete removes a todo outright. Todos have no recycle bin; promotion to a
// task deletes the todo after the task is created.
func (s *TodoService) Delete(ctx context.Context, owner, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = ? AND owner = ?`,
		id, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// ClearCompleted removes every completed todo and reports how many went.
func (s *TodoService) ClearCompleted(ctx context.Context, owner string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE owner = ? AND completed = 1`,
		owner,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed todos: %w", err)
	}
	cleared, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared todos: %w", err)
	}
	return cleared, nil
}

func (s *TodoService) get(ctx context.Context, owner, id string) (*Todo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, text, completed, created_at, updated_at FROM todos
		 WHERE id = ? AND owner = ?`,
		id, owner,
	)

	var todo Todo
	err := row.Scan(&todo.ID, &todo.Owner, &todo.Text, &todo.Completed,
		&todo.CreatedAt, &todo.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load todo: %w", err)
	}
	return &todo, nil
}

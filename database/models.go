package database

import (
	"errors"
	"fmt"
	"time"
)

// Column is one of the four workflow stages a task occupies while active.
type Column string

const (
	ColumnBacklog    Column = "backlog"
	ColumnInProgress Column = "inProgress"
	ColumnInReview   Column = "inReview"
	ColumnDone       Column = "done"
)

// Columns lists the workflow stages in board order.
var Columns = []Column{ColumnBacklog, ColumnInProgress, ColumnInReview, ColumnDone}

// Valid reports whether c is one of the four known columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnBacklog, ColumnInProgress, ColumnInReview, ColumnDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Comment is a single comment on a task.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Attachment describes a file attached to a task. Only metadata is stored;
// the file contents live outside this service.
type Attachment struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Task is the central board entity. The ID is assigned on create and never
// changes, including while the task sits in the recycle bin. Column and
// Position are kept when a task is soft-deleted so Restore can put it back
// on the board where it was.
type Task struct {
	ID          string       `json:"id"`
	Owner       string       `json:"-"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	Column      Column       `json:"column"`
	Position    int          `json:"order"`
	Tags        []string     `json:"tags"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Comments    []Comment    `json:"comments"`
	Attachments []Attachment `json:"attachments"`
	IsDeleted   bool         `json:"isDeleted"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Board groups a user's active tasks by column, each list sorted by position.
type Board map[Column][]Task

// NewBoard returns a board with all four columns present and empty, so the
// JSON response always carries every column key.
func NewBoard() Board {
	b := make(Board, len(Columns))
	for _, c := range Columns {
		b[c] = []Task{}
	}
	return b
}

// TaskPatch is a partial update for the generic edit endpoint. Nil fields are
// left untouched. Column and position are deliberately absent: moves go
// through ApplyMove only.
type TaskPatch struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Priority    *Priority     `json:"priority"`
	Tags        *[]string     `json:"tags"`
	DueDate     *time.Time    `json:"dueDate"`
	Comments    *[]Comment    `json:"comments"`
	Attachments *[]Attachment `json:"attachments"`
}

var (
	// ErrTaskNotFound means the task does not exist or belongs to another owner.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidState means a lifecycle operation was applied to a task in the
	// wrong state, e.g. purging a task that was never soft-deleted.
	ErrInvalidState = errors.New("invalid task state")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Message)
}

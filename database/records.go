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

// Record is a schemaless personal-space document (note, bookmark, goal,
// journal entry, idea, resource). The task board does not look inside Data;
// these collections are plain per-owner CRUD.
type Record struct {
	ID         string          `json:"id"`
	Owner      string          `json:"-"`
	Collection string          `json:"-"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ErrRecordNotFound means the record does not exist or belongs to another owner.
var ErrRecordNotFound = errors.New("record not found")

// RecordCollections are the personal-space collections the API accepts.
var RecordCollections = map[string]bool{
	"notes":     true,
	"bookmarks": true,
	"goals":     true,
	"journal":   true,
	"ideas":     true,
	"resources": true,
}

// RecordService is the generic record store behind the personal-space routes.
type RecordService struct {
	db *sql.DB
}

func NewRecordService(db *sql.DB) *RecordService {
	return &RecordService{db: db}
}

// Create stores a new document in the given collection.
func (s *RecordService) Create(ctx context.Context, owner, collection string, data json.RawMessage) (*Record, error) {
	if !RecordCollections[collection] {
		return nil, &ValidationError{Field: "collection", Message: fmt.Sprintf("unknown collection %q", collection)}
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, &ValidationError{Field: "data", Message: "document body is required"}
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:         uuid.NewString(),
		Owner:      owner,
		Collection: collection,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, owner, collection, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Collection, string(rec.Data), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return rec, nil
}

// List returns the owner's documents in a collection, newest first.
func (s *RecordService) List(ctx context.Context, owner, collection string) ([]Record, error) {
	if !RecordCollections[collection] {
		return nil, &ValidationError{Field: "collection", Message: fmt.Sprintf("unknown collection %q", collection)}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, collection, data, created_at, updated_at FROM records
		 WHERE owner = ? AND collection = ?
		 ORDER BY created_at DESC`,
		owner, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var data string
		err := rows.Scan(&rec.ID, &rec.Owner, &rec.Collection, &data, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Data = json.RawMessage(data)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Update replaces a document's body.
func (s *RecordService) Update(ctx context.Context, owner, collection, id string, data json.RawMessage) (*Record, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, &ValidationError{Field: "data", Message: "document body is required"}
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ?
		 WHERE id = ? AND owner = ? AND collection = ?`,
		string(data), now, id, owner, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return nil, ErrRecordNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, collection, data, created_at, updated_at FROM records
		 WHERE id = ? AND owner = ? AND collection = ?`,
		id, owner, collection,
	)
	var rec Record
	var body string
	if err := row.Scan(&rec.ID, &rec.Owner, &rec.Collection, &body, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to reload record: %w", err)
	}
	rec.Data = json.RawMessage(body)

	return &rec, nil
}

// Delete removes a document. Personal-space documents have no recycle bin.
func (s *RecordService) Delete(ctx context.Context, owner, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND owner = ? AND collection = ?`,
		id, owner, collection,
	)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

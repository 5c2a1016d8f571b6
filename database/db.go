package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the sqlite database at path and creates the schema if needed.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Tasks table. Tags, comments and attachments are JSON documents; the
	// fields the board filters and sorts on get real columns.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		column_name TEXT NOT NULL DEFAULT 'backlog',
		position INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		due_date TIMESTAMP,
		comments TEXT NOT NULL DEFAULT '[]',
		attachments TEXT NOT NULL DEFAULT '[]',
		is_deleted INTEGER NOT NULL DEFAULT 0,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_tasks_board
		ON tasks (owner, is_deleted, column_name, position)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks index: %w", err)
	}

	// Personal-space records (notes, bookmarks, goals, journal, ideas,
	// resources). These are plain JSON documents grouped by collection.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS records (
		id TEXT NOT NULL,
		owner TEXT NOT NULL,
		collection TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner, collection, id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	// Quick-capture todo list. Separate from tasks; promotion creates a
	// task from the todo's text and deletes the todo.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		text TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create todos table: %w", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

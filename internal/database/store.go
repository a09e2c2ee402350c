package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"csync-go/internal/csync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Schema is the current run-log schema. Kept in sync with the migration
// files; applied directly for in-memory databases, where running the
// migration driver against a pooled :memory: connection is unreliable.
const Schema = `
CREATE TABLE IF NOT EXISTS sync_operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    operation TEXT NOT NULL,
    parameters TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'running',
    records_created INTEGER NOT NULL DEFAULT 0,
    records_updated INTEGER NOT NULL DEFAULT 0,
    records_filtered INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteRunLog implements csync.RunLog using SQLite.
type SQLiteRunLog struct {
	db *sql.DB
}

// NewSQLiteRunLogFromDB wraps an existing database connection. The caller
// is responsible for the schema being in place.
func NewSQLiteRunLogFromDB(db *sql.DB) *SQLiteRunLog {
	return &SQLiteRunLog{db: db}
}

// OpenConnection opens and configures a SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at one
	// so every statement sees the same database.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// CreateOperation records the start of a run.
func (s *SQLiteRunLog) CreateOperation(operation, parameters string) (*csync.SyncOperation, error) {
	startedAt := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO sync_operations (operation, parameters, started_at, status) VALUES (?, ?, ?, 'running')`,
		operation, parameters, startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting sync operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading sync operation id: %w", err)
	}
	return &csync.SyncOperation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt,
		Status:     "running",
	}, nil
}

// FinishOperation finalizes a run with its outcome and counts.
func (s *SQLiteRunLog) FinishOperation(id int64, status string, counts csync.Counts) error {
	_, err := s.db.Exec(
		`UPDATE sync_operations
		 SET finished_at = ?, status = ?, records_created = ?, records_updated = ?, records_filtered = ?
		 WHERE id = ?`,
		time.Now().UTC(), status, counts.Created, counts.Updated, counts.Filtered, id,
	)
	if err != nil {
		return fmt.Errorf("finishing sync operation %d: %w", id, err)
	}
	return nil
}

// ListOperations returns the most recent runs, newest first.
func (s *SQLiteRunLog) ListOperations(limit int) ([]*csync.SyncOperation, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, started_at, finished_at, status,
		        records_created, records_updated, records_filtered
		 FROM sync_operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sync operations: %w", err)
	}
	defer rows.Close()

	var ops []*csync.SyncOperation
	for rows.Next() {
		var op csync.SyncOperation
		var finished sql.NullTime
		if err := rows.Scan(
			&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &finished,
			&op.Status, &op.Created, &op.Updated, &op.Filtered,
		); err != nil {
			return nil, fmt.Errorf("scanning sync operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync operations: %w", err)
	}
	return ops, nil
}

// Close closes the database connection.
func (s *SQLiteRunLog) Close() error {
	return s.db.Close()
}

package database

import (
	"fmt"
	"os"
	"path/filepath"

	"csync-go/internal/config"
	"csync-go/internal/csync"
	"csync-go/internal/database/migrations"
)

// NewRunLogFromConfig creates a RunLog implementation based on the
// database config type.
func NewRunLogFromConfig(cfg config.DatabaseConfig) (csync.RunLog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		db, err := OpenConnection(filepath.Join(cfg.DataDir, "csync.db"))
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating run log: %w", err)
		}
		return NewSQLiteRunLogFromDB(db), nil
	case "memory":
		db, err := OpenConnection(":memory:")
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(Schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
		return NewSQLiteRunLogFromDB(db), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

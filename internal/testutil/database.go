package testutil

import (
	"testing"

	"csync-go/internal/csync"
	"csync-go/internal/database"
)

// NewTestRunLog creates a new in-memory SQLite run log with schema applied.
// The database is automatically closed when the test completes.
func NewTestRunLog(t *testing.T) csync.RunLog {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	rl := database.NewSQLiteRunLogFromDB(sqlDB)

	t.Cleanup(func() {
		rl.Close()
	})

	return rl
}

package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/samchencode/stroke-mgmt-sub000/shared/db/sqlite"
)

// setupTestDB opens a migrated SQLite database in a temporary directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB()
}

func ts(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

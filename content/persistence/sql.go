package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// isEmpty reports whether table has no rows. table is always a constant of this package.
func isEmpty(ctx context.Context, sqlDB *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.GetExecutor(ctx, sqlDB).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+`)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return !exists, nil
}

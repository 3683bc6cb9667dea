package db

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}

// IsAvailable reports whether db answers a ping within a short timeout
func IsAvailable(ctx context.Context, db *sql.DB) bool {
	if db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return db.PingContext(ctx) == nil
}

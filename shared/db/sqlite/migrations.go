package sqlite

import (
	"database/sql"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
// Each migration should be idempotent and safe to run multiple times
var migrations = []migration{
	{
		version: 1,
		name:    "create_articles_table",
		up: `
			CREATE TABLE IF NOT EXISTS articles (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				summary TEXT NOT NULL,
				body TEXT NOT NULL,
				thumbnail TEXT NOT NULL,
				show_on_home_screen INTEGER NOT NULL DEFAULT 0,
				last_updated TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS article_tags (
				article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
				tag_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (article_id, tag_id)
			);

			CREATE INDEX IF NOT EXISTS idx_article_tags_tag_id
			ON article_tags(tag_id);
		`,
	},
	{
		version: 2,
		name:    "create_algorithms_table",
		up: `
			CREATE TABLE IF NOT EXISTS algorithms (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				summary TEXT NOT NULL,
				body TEXT NOT NULL,
				thumbnail TEXT NOT NULL,
				kind TEXT NOT NULL,
				switches TEXT NOT NULL DEFAULT '[]',
				outcomes TEXT NOT NULL DEFAULT '[]',
				show_on_home_screen INTEGER NOT NULL DEFAULT 0,
				last_updated TEXT NOT NULL
			);
		`,
	},
	{
		version: 3,
		name:    "create_tags_table",
		up: `
			CREATE TABLE IF NOT EXISTS tags (
				id TEXT PRIMARY KEY,
				designation TEXT NOT NULL,
				description TEXT NOT NULL,
				last_updated TEXT NOT NULL
			);
		`,
	},
	{
		version: 4,
		name:    "create_intro_sequences_table",
		up: `
			CREATE TABLE IF NOT EXISTS intro_sequences (
				id TEXT PRIMARY KEY,
				items TEXT NOT NULL DEFAULT '[]',
				last_updated TEXT NOT NULL
			);
		`,
	},
	{
		version: 5,
		name:    "create_cached_images_table",
		up: `
			CREATE TABLE IF NOT EXISTS cached_images (
				source_url TEXT PRIMARY KEY,
				file_path TEXT NOT NULL,
				mime_type TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue // Already applied
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		_, err = tx.Exec(m.up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

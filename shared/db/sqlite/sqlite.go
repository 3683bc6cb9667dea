package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath is the default path for the SQLite database
	DefaultPath = "./strokeref.db"
)

type SQLiteConfig struct {
	Path string
}

// NewSQLiteConfig returns a config for path, falling back to DefaultPath when path is empty
func NewSQLiteConfig(path string) *SQLiteConfig {
	if path == "" {
		path = DefaultPath
	}

	return &SQLiteConfig{
		Path: path,
	}
}

// pragmas are applied to every pooled connection through the DSN, so concurrent
// reconciliation writes all see the same busy timeout and foreign key enforcement
var pragmas = []string{
	"journal_mode(WAL)",   // Write-Ahead Logging for better concurrency
	"synchronous(NORMAL)", // Balance between safety and performance
	"foreign_keys(1)",     // Enable foreign key constraints
	"busy_timeout(5000)",  // Wait up to 5 seconds if database is locked
	"cache_size(-64000)",  // Use 64MB cache (negative means KB)
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

var _ db.Database = (*SQLiteDB)(nil)

func (s *SQLiteDB) dsn() string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	// Writers take the lock up front instead of failing on a read-to-write upgrade
	q.Set("_txlock", "immediate")
	return "file:" + s.dbPath + "?" + q.Encode()
}

// Connect opens a connection to the SQLite database
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

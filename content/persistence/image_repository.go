package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
)

var _ domain.CachedImageMetadataRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository stores cached image metadata in the cached_images table
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

const upsertImageQuery = `
	INSERT INTO cached_images (source_url, file_path, mime_type, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(source_url) DO UPDATE SET
		file_path = excluded.file_path,
		mime_type = excluded.mime_type,
		updated_at = excluded.updated_at
`

// Save inserts or replaces the metadata of meta.SourceURL
func (r *SQLiteImageRepository) Save(ctx context.Context, meta domain.CachedImageMetadata) error {
	if meta.SourceURL == "" {
		return fmt.Errorf("image source URL cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, upsertImageQuery,
		meta.SourceURL,
		meta.FilePath,
		meta.MimeType,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert image record: %w", err)
	}

	return nil
}

const getImageQuery = `
	SELECT source_url, file_path, mime_type
	FROM cached_images
	WHERE source_url = ?
`

// Get retrieves the metadata of url. found is false when there is none.
func (r *SQLiteImageRepository) Get(ctx context.Context, url string) (domain.CachedImageMetadata, bool, error) {
	var meta domain.CachedImageMetadata
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getImageQuery, url).Scan(
		&meta.SourceURL,
		&meta.FilePath,
		&meta.MimeType,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.CachedImageMetadata{}, false, nil
	}

	if err != nil {
		return domain.CachedImageMetadata{}, false, fmt.Errorf("failed to get image: %w", err)
	}

	return meta, true, nil
}

// ClearCache removes every image record
func (r *SQLiteImageRepository) ClearCache(ctx context.Context) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM cached_images`); err != nil {
		return fmt.Errorf("failed to clear image records: %w", err)
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
)

var _ domain.TagCacheRepository = (*SQLiteTagRepository)(nil)

type SQLiteTagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *SQLiteTagRepository {
	return &SQLiteTagRepository{
		db: db,
	}
}

const upsertTagQuery = `
	INSERT INTO tags (id, designation, description, last_updated)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		designation = excluded.designation,
		description = excluded.description,
		last_updated = excluded.last_updated
`

const selectTagColumns = `SELECT id, designation, description, last_updated FROM tags`

func (r *SQLiteTagRepository) IsEmpty(ctx context.Context) (bool, error) {
	return isEmpty(ctx, r.db, "tags")
}

func (r *SQLiteTagRepository) IsAvailable(ctx context.Context) bool {
	return db.IsAvailable(ctx, r.db)
}

func (r *SQLiteTagRepository) GetAll(ctx context.Context) ([]domain.Tag, error) {
	tags, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (domain.Tag, error) {
		return scanTag(rows)
	}, selectTagColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *SQLiteTagRepository) GetByID(ctx context.Context, id string) (domain.Tag, error) {
	row := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, selectTagColumns+` WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, &domain.CachedNotFoundError{Kind: domain.KindTag, ID: id}
	}
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (r *SQLiteTagRepository) SaveAll(ctx context.Context, tags []domain.Tag) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, t := range tags {
			if err := r.Update(txCtx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteTagRepository) Update(ctx context.Context, tag domain.Tag) error {
	if tag.ID == "" {
		return fmt.Errorf("tag ID cannot be empty")
	}
	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, upsertTagQuery,
		tag.ID,
		tag.Designation,
		tag.Description,
		formatTime(tag.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tag %s: %w", tag.ID, err)
	}
	return nil
}

func (r *SQLiteTagRepository) Delete(ctx context.Context, id string) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (r *SQLiteTagRepository) ClearCache(ctx context.Context) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM tags`); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	return nil
}

func scanTag(s scanner) (domain.Tag, error) {
	var (
		tag     domain.Tag
		updated string
	)
	if err := s.Scan(&tag.ID, &tag.Designation, &tag.Description, &updated); err != nil {
		return domain.Tag{}, err
	}
	t, err := parseTime(updated)
	if err != nil {
		return domain.Tag{}, err
	}
	tag.LastUpdated = t
	return tag, nil
}

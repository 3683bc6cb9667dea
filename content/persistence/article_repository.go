package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
)

var _ domain.ArticleCacheRepository = (*SQLiteArticleRepository)(nil)

// SQLiteArticleRepository implements domain.ArticleCacheRepository using SQLite.
// Tag IDs live in the article_tags join table in their source order.
type SQLiteArticleRepository struct {
	db *sql.DB
}

// NewArticleRepository creates a new SQLiteArticleRepository from a standard sql.DB
func NewArticleRepository(db *sql.DB) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{
		db: db,
	}
}

const upsertArticleQuery = `
	INSERT INTO articles (id, title, summary, body, thumbnail, show_on_home_screen, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		body = excluded.body,
		thumbnail = excluded.thumbnail,
		show_on_home_screen = excluded.show_on_home_screen,
		last_updated = excluded.last_updated
`

const deleteArticleTagsQuery = `DELETE FROM article_tags WHERE article_id = ?`

const insertArticleTagQuery = `
	INSERT INTO article_tags (article_id, tag_id, position)
	VALUES (?, ?, ?)
	ON CONFLICT(article_id, tag_id) DO NOTHING
`

const selectArticleColumns = `
	SELECT id, title, summary, body, thumbnail, show_on_home_screen, last_updated
	FROM articles
`

func (r *SQLiteArticleRepository) IsEmpty(ctx context.Context) (bool, error) {
	return isEmpty(ctx, r.db, "articles")
}

func (r *SQLiteArticleRepository) IsAvailable(ctx context.Context) bool {
	return db.IsAvailable(ctx, r.db)
}

// GetAll returns every cached article ordered by ID
func (r *SQLiteArticleRepository) GetAll(ctx context.Context) ([]domain.Article, error) {
	return r.list(ctx, selectArticleColumns+` ORDER BY id`)
}

// GetAllShownOnHome returns the cached articles flagged for the home screen
func (r *SQLiteArticleRepository) GetAllShownOnHome(ctx context.Context) ([]domain.Article, error) {
	return r.list(ctx, selectArticleColumns+` WHERE show_on_home_screen = 1 ORDER BY id`)
}

// GetByTag returns the cached articles labelled with tagID
func (r *SQLiteArticleRepository) GetByTag(ctx context.Context, tagID string) ([]domain.Article, error) {
	return r.list(ctx, selectArticleColumns+`
		WHERE id IN (SELECT article_id FROM article_tags WHERE tag_id = ?)
		ORDER BY id`, tagID)
}

// GetByID returns a *domain.CachedNotFoundError when no article has the given id
func (r *SQLiteArticleRepository) GetByID(ctx context.Context, id string) (domain.Article, error) {
	if id == "" {
		return domain.Article{}, fmt.Errorf("article ID cannot be empty")
	}

	row := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, selectArticleColumns+` WHERE id = ?`, id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, &domain.CachedNotFoundError{Kind: domain.KindArticle, ID: id}
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("failed to get article: %w", err)
	}

	article.TagIDs, err = r.tagIDsOf(ctx, article.ID)
	if err != nil {
		return domain.Article{}, err
	}

	return article, nil
}

// SaveAll upserts every article in one transaction
func (r *SQLiteArticleRepository) SaveAll(ctx context.Context, articles []domain.Article) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, a := range articles {
			if err := r.upsert(txCtx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update upserts a single article
func (r *SQLiteArticleRepository) Update(ctx context.Context, article domain.Article) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		return r.upsert(txCtx, article)
	})
}

// Delete removes an article and its tag rows. Deleting a missing article is not an error.
func (r *SQLiteArticleRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("article ID cannot be empty")
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (r *SQLiteArticleRepository) ClearCache(ctx context.Context) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		if _, err := executor.ExecContext(txCtx, `DELETE FROM article_tags`); err != nil {
			return fmt.Errorf("failed to clear article tags: %w", err)
		}
		if _, err := executor.ExecContext(txCtx, `DELETE FROM articles`); err != nil {
			return fmt.Errorf("failed to clear articles: %w", err)
		}
		return nil
	})
}

func (r *SQLiteArticleRepository) upsert(ctx context.Context, a domain.Article) error {
	if a.ID == "" {
		return fmt.Errorf("article ID cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, upsertArticleQuery,
		a.ID,
		a.Title,
		a.Summary,
		a.Body,
		a.Thumbnail,
		a.ShowOnHomeScreen,
		formatTime(a.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", a.ID, err)
	}

	if _, err := executor.ExecContext(ctx, deleteArticleTagsQuery, a.ID); err != nil {
		return fmt.Errorf("failed to reset tags of article %s: %w", a.ID, err)
	}
	for i, tagID := range a.TagIDs {
		if _, err := executor.ExecContext(ctx, insertArticleTagQuery, a.ID, tagID, i); err != nil {
			return fmt.Errorf("failed to tag article %s: %w", a.ID, err)
		}
	}

	return nil
}

func (r *SQLiteArticleRepository) list(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	articles, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (domain.Article, error) {
		return scanArticle(rows)
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	if len(articles) == 0 {
		return articles, nil
	}

	tags, err := r.tagIDs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].TagIDs = tags[articles[i].ID]
	}

	return articles, nil
}

// tagIDs maps article IDs to their tag IDs in source order
func (r *SQLiteArticleRepository) tagIDs(ctx context.Context) (map[string][]string, error) {
	type pair struct{ articleID, tagID string }
	pairs, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (pair, error) {
		var p pair
		err := rows.Scan(&p.articleID, &p.tagID)
		return p, err
	}, `SELECT article_id, tag_id FROM article_tags ORDER BY article_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list article tags: %w", err)
	}

	out := make(map[string][]string)
	for _, p := range pairs {
		out[p.articleID] = append(out[p.articleID], p.tagID)
	}
	return out, nil
}

// tagIDsOf lists the tag IDs of one article in source order
func (r *SQLiteArticleRepository) tagIDsOf(ctx context.Context, articleID string) ([]string, error) {
	tags, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (string, error) {
		var tagID string
		err := rows.Scan(&tagID)
		return tagID, err
	}, `SELECT tag_id FROM article_tags WHERE article_id = ? ORDER BY position`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of article %s: %w", articleID, err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// articleRow is a private struct used to scan database rows
type articleRow struct {
	ID               string `db:"id"`
	Title            string `db:"title"`
	Summary          string `db:"summary"`
	Body             string `db:"body"`
	Thumbnail        string `db:"thumbnail"`
	ShowOnHomeScreen bool   `db:"show_on_home_screen"`
	LastUpdated      string `db:"last_updated"`
}

func scanArticle(s scanner) (domain.Article, error) {
	var row articleRow
	err := s.Scan(
		&row.ID,
		&row.Title,
		&row.Summary,
		&row.Body,
		&row.Thumbnail,
		&row.ShowOnHomeScreen,
		&row.LastUpdated,
	)
	if err != nil {
		return domain.Article{}, err
	}
	return row.toDomain()
}

// toDomain converts an articleRow to a domain.Article without its tags
func (ar *articleRow) toDomain() (domain.Article, error) {
	updated, err := parseTime(ar.LastUpdated)
	if err != nil {
		return domain.Article{}, err
	}
	return domain.Article{
		ID:               ar.ID,
		Title:            ar.Title,
		Summary:          ar.Summary,
		Body:             ar.Body,
		Thumbnail:        ar.Thumbnail,
		ShowOnHomeScreen: ar.ShowOnHomeScreen,
		LastUpdated:      updated,
	}, nil
}

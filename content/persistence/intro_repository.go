package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db"
)

var _ domain.IntroSequenceCacheRepository = (*SQLiteIntroSequenceRepository)(nil)

type SQLiteIntroSequenceRepository struct {
	db *sql.DB
}

func NewIntroSequenceRepository(db *sql.DB) *SQLiteIntroSequenceRepository {
	return &SQLiteIntroSequenceRepository{
		db: db,
	}
}

const upsertIntroSequenceQuery = `
	INSERT INTO intro_sequences (id, items, last_updated)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		items = excluded.items,
		last_updated = excluded.last_updated
`

const selectIntroSequenceColumns = `SELECT id, items, last_updated FROM intro_sequences`

type introItemRecord struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (r *SQLiteIntroSequenceRepository) IsEmpty(ctx context.Context) (bool, error) {
	return isEmpty(ctx, r.db, "intro_sequences")
}

func (r *SQLiteIntroSequenceRepository) IsAvailable(ctx context.Context) bool {
	return db.IsAvailable(ctx, r.db)
}

func (r *SQLiteIntroSequenceRepository) GetAll(ctx context.Context) ([]domain.IntroSequence, error) {
	sequences, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (domain.IntroSequence, error) {
		return scanIntroSequence(rows)
	}, selectIntroSequenceColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list intro sequences: %w", err)
	}
	return sequences, nil
}

func (r *SQLiteIntroSequenceRepository) GetByID(ctx context.Context, id string) (domain.IntroSequence, error) {
	row := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, selectIntroSequenceColumns+` WHERE id = ?`, id)
	seq, err := scanIntroSequence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IntroSequence{}, &domain.CachedNotFoundError{Kind: domain.KindIntroSequence, ID: id}
	}
	if err != nil {
		return domain.IntroSequence{}, fmt.Errorf("failed to get intro sequence: %w", err)
	}
	return seq, nil
}

func (r *SQLiteIntroSequenceRepository) SaveAll(ctx context.Context, sequences []domain.IntroSequence) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, s := range sequences {
			if err := r.Update(txCtx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteIntroSequenceRepository) Update(ctx context.Context, seq domain.IntroSequence) error {
	if seq.ID == "" {
		return fmt.Errorf("intro sequence ID cannot be empty")
	}

	records := make([]introItemRecord, len(seq.Items))
	for i, item := range seq.Items {
		records[i] = introItemRecord{Title: item.Title, Body: item.Body}
	}
	items, err := marshalList(records)
	if err != nil {
		return fmt.Errorf("failed to encode items of intro sequence %s: %w", seq.ID, err)
	}

	_, err = db.GetExecutor(ctx, r.db).ExecContext(ctx, upsertIntroSequenceQuery, seq.ID, items, formatTime(seq.LastUpdated))
	if err != nil {
		return fmt.Errorf("failed to upsert intro sequence %s: %w", seq.ID, err)
	}
	return nil
}

func (r *SQLiteIntroSequenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM intro_sequences WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete intro sequence: %w", err)
	}
	return nil
}

func (r *SQLiteIntroSequenceRepository) ClearCache(ctx context.Context) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM intro_sequences`); err != nil {
		return fmt.Errorf("failed to clear intro sequences: %w", err)
	}
	return nil
}

func scanIntroSequence(s scanner) (domain.IntroSequence, error) {
	var id, items, updated string
	if err := s.Scan(&id, &items, &updated); err != nil {
		return domain.IntroSequence{}, err
	}

	var records []introItemRecord
	if err := json.Unmarshal([]byte(items), &records); err != nil {
		return domain.IntroSequence{}, fmt.Errorf("invalid items of intro sequence %s: %w", id, err)
	}
	t, err := parseTime(updated)
	if err != nil {
		return domain.IntroSequence{}, err
	}

	seq := domain.IntroSequence{ID: id, LastUpdated: t}
	for _, r := range records {
		seq.Items = append(seq.Items, domain.IntroItem{Title: r.Title, Body: r.Body})
	}
	return seq, nil
}

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

var _ domain.AlgorithmCacheRepository = (*SQLiteAlgorithmRepository)(nil)

// SQLiteAlgorithmRepository implements domain.AlgorithmCacheRepository using SQLite.
// Outcomes and switches are stored as JSON columns.
type SQLiteAlgorithmRepository struct {
	db *sql.DB
}

func NewAlgorithmRepository(db *sql.DB) *SQLiteAlgorithmRepository {
	return &SQLiteAlgorithmRepository{
		db: db,
	}
}

const upsertAlgorithmQuery = `
	INSERT INTO algorithms (id, title, summary, body, thumbnail, kind, switches, outcomes, show_on_home_screen, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		body = excluded.body,
		thumbnail = excluded.thumbnail,
		kind = excluded.kind,
		switches = excluded.switches,
		outcomes = excluded.outcomes,
		show_on_home_screen = excluded.show_on_home_screen,
		last_updated = excluded.last_updated
`

const selectAlgorithmColumns = `
	SELECT id, title, summary, body, thumbnail, kind, switches, outcomes, show_on_home_screen, last_updated
	FROM algorithms
`

func (r *SQLiteAlgorithmRepository) IsEmpty(ctx context.Context) (bool, error) {
	return isEmpty(ctx, r.db, "algorithms")
}

func (r *SQLiteAlgorithmRepository) IsAvailable(ctx context.Context) bool {
	return db.IsAvailable(ctx, r.db)
}

func (r *SQLiteAlgorithmRepository) GetAll(ctx context.Context) ([]domain.Algorithm, error) {
	return r.list(ctx, selectAlgorithmColumns+` ORDER BY id`)
}

func (r *SQLiteAlgorithmRepository) GetAllShownOnHome(ctx context.Context) ([]domain.Algorithm, error) {
	return r.list(ctx, selectAlgorithmColumns+` WHERE show_on_home_screen = 1 ORDER BY id`)
}

// GetByID returns a *domain.CachedNotFoundError when no algorithm has the given id
func (r *SQLiteAlgorithmRepository) GetByID(ctx context.Context, id string) (domain.Algorithm, error) {
	if id == "" {
		return domain.Algorithm{}, fmt.Errorf("algorithm ID cannot be empty")
	}

	row := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, selectAlgorithmColumns+` WHERE id = ?`, id)
	algorithm, err := scanAlgorithm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Algorithm{}, &domain.CachedNotFoundError{Kind: domain.KindAlgorithm, ID: id}
	}
	if err != nil {
		return domain.Algorithm{}, fmt.Errorf("failed to get algorithm: %w", err)
	}
	return algorithm, nil
}

// SaveAll upserts every algorithm in one transaction
func (r *SQLiteAlgorithmRepository) SaveAll(ctx context.Context, algorithms []domain.Algorithm) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, a := range algorithms {
			if err := r.upsert(txCtx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteAlgorithmRepository) Update(ctx context.Context, algorithm domain.Algorithm) error {
	return r.upsert(ctx, algorithm)
}

func (r *SQLiteAlgorithmRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("algorithm ID cannot be empty")
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM algorithms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete algorithm: %w", err)
	}
	return nil
}

func (r *SQLiteAlgorithmRepository) ClearCache(ctx context.Context) error {
	if _, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM algorithms`); err != nil {
		return fmt.Errorf("failed to clear algorithms: %w", err)
	}
	return nil
}

func (r *SQLiteAlgorithmRepository) upsert(ctx context.Context, a domain.Algorithm) error {
	if a.ID == "" {
		return fmt.Errorf("algorithm ID cannot be empty")
	}

	var switches []domain.Switch
	if scored, ok := a.Info.(domain.ScoredInfo); ok {
		switches = scored.Switches
	}
	switchesJSON, err := marshalList(toSwitchRecords(switches))
	if err != nil {
		return fmt.Errorf("failed to encode switches of algorithm %s: %w", a.ID, err)
	}
	outcomesJSON, err := marshalList(toOutcomeRecords(a.Outcomes))
	if err != nil {
		return fmt.Errorf("failed to encode outcomes of algorithm %s: %w", a.ID, err)
	}

	_, err = db.GetExecutor(ctx, r.db).ExecContext(ctx, upsertAlgorithmQuery,
		a.ID,
		a.Title,
		a.Summary,
		a.Body,
		a.Thumbnail,
		string(a.Kind()),
		switchesJSON,
		outcomesJSON,
		a.ShowOnHomeScreen,
		formatTime(a.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert algorithm %s: %w", a.ID, err)
	}
	return nil
}

func (r *SQLiteAlgorithmRepository) list(ctx context.Context, query string, args ...any) ([]domain.Algorithm, error) {
	algorithms, err := db.QueryAll(ctx, r.db, func(rows *sql.Rows) (domain.Algorithm, error) {
		return scanAlgorithm(rows)
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list algorithms: %w", err)
	}
	return algorithms, nil
}

type algorithmRow struct {
	ID               string `db:"id"`
	Title            string `db:"title"`
	Summary          string `db:"summary"`
	Body             string `db:"body"`
	Thumbnail        string `db:"thumbnail"`
	Kind             string `db:"kind"`
	Switches         string `db:"switches"`
	Outcomes         string `db:"outcomes"`
	ShowOnHomeScreen bool   `db:"show_on_home_screen"`
	LastUpdated      string `db:"last_updated"`
}

type outcomeRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Threshold int    `json:"threshold"`
}

type switchRecord struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

func scanAlgorithm(s scanner) (domain.Algorithm, error) {
	var row algorithmRow
	err := s.Scan(
		&row.ID,
		&row.Title,
		&row.Summary,
		&row.Body,
		&row.Thumbnail,
		&row.Kind,
		&row.Switches,
		&row.Outcomes,
		&row.ShowOnHomeScreen,
		&row.LastUpdated,
	)
	if err != nil {
		return domain.Algorithm{}, err
	}
	return row.toDomain()
}

func (ar *algorithmRow) toDomain() (domain.Algorithm, error) {
	updated, err := parseTime(ar.LastUpdated)
	if err != nil {
		return domain.Algorithm{}, err
	}

	var outcomes []outcomeRecord
	if err := json.Unmarshal([]byte(ar.Outcomes), &outcomes); err != nil {
		return domain.Algorithm{}, fmt.Errorf("invalid outcomes of algorithm %s: %w", ar.ID, err)
	}

	var info domain.AlgorithmInfo
	switch domain.AlgorithmKind(ar.Kind) {
	case domain.AlgorithmKindScored:
		var switches []switchRecord
		if err := json.Unmarshal([]byte(ar.Switches), &switches); err != nil {
			return domain.Algorithm{}, fmt.Errorf("invalid switches of algorithm %s: %w", ar.ID, err)
		}
		info = domain.ScoredInfo{Switches: fromSwitchRecords(switches)}
	case domain.AlgorithmKindTextual:
		info = domain.TextualInfo{}
	default:
		return domain.Algorithm{}, fmt.Errorf("unknown kind %q of algorithm %s", ar.Kind, ar.ID)
	}

	return domain.Algorithm{
		ID:               ar.ID,
		Title:            ar.Title,
		Summary:          ar.Summary,
		Body:             ar.Body,
		Thumbnail:        ar.Thumbnail,
		Outcomes:         fromOutcomeRecords(outcomes),
		ShowOnHomeScreen: ar.ShowOnHomeScreen,
		LastUpdated:      updated,
		Info:             info,
	}, nil
}

// marshalList encodes a nil slice as [] to satisfy the NOT NULL JSON columns
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

func toOutcomeRecords(outcomes []domain.Outcome) []outcomeRecord {
	if outcomes == nil {
		return nil
	}
	out := make([]outcomeRecord, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeRecord{ID: o.ID, Title: o.Title, Body: o.Body, Threshold: o.Threshold}
	}
	return out
}

func fromOutcomeRecords(records []outcomeRecord) []domain.Outcome {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.Outcome, len(records))
	for i, o := range records {
		out[i] = domain.Outcome{ID: o.ID, Title: o.Title, Body: o.Body, Threshold: o.Threshold}
	}
	return out
}

func toSwitchRecords(switches []domain.Switch) []switchRecord {
	if switches == nil {
		return nil
	}
	out := make([]switchRecord, len(switches))
	for i, s := range switches {
		out[i] = switchRecord{ID: s.ID, Label: s.Label, Description: s.Description, Weight: s.Weight}
	}
	return out
}

func fromSwitchRecords(records []switchRecord) []domain.Switch {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.Switch, len(records))
	for i, s := range records {
		out[i] = domain.Switch{ID: s.ID, Label: s.Label, Description: s.Description, Weight: s.Weight}
	}
	return out
}

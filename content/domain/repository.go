package domain

import "context"

// SourceRepository defines the interface for reading authoritative content from the remote
// source. GetByID returns a *NotFoundError when the source has no such entity.
type SourceRepository[T any] interface {
	IsAvailable(ctx context.Context) bool
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
}

// CacheRepository defines the interface for the local persistent mirror of the source.
// Reads of a missing row return a *CachedNotFoundError. Every write is an idempotent,
// ID-keyed upsert or delete.
type CacheRepository[T any] interface {
	IsEmpty(ctx context.Context) (bool, error)
	IsAvailable(ctx context.Context) bool
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	SaveAll(ctx context.Context, entities []T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
	ClearCache(ctx context.Context) error
}

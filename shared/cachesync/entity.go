package cachesync

import (
	"context"
	"errors"
	"time"
)

// ErrSourceUnavailableEmptyCache is returned by reads made while the source is unreachable
// and the cache holds nothing for the query or cannot be read.
var ErrSourceUnavailableEmptyCache = errors.New("source unavailable and cache is empty")

// Entity is the capability the engine needs: a stable ID used for pairing source and cache
// copies, and the time the source last changed the entity.
type Entity interface {
	EntityID() string
	LastUpdatedAt() time.Time
}

// Lister reads a collection from one side (source or cache).
type Lister[T any] func(ctx context.Context) ([]T, error)

// Getter reads a single entity by ID from one side (source or cache).
type Getter[T any] func(ctx context.Context, id string) (T, error)

// Refresh is the result delivered to a staleness callback: either the refreshed value or
// the information that the entity no longer exists in the source.
type Refresh[V any] struct {
	value   V
	present bool
}

// Present wraps a refreshed value.
func Present[V any](value V) Refresh[V] {
	return Refresh[V]{value: value, present: true}
}

// Absent reports that the source no longer has the requested entity.
func Absent[V any]() Refresh[V] {
	return Refresh[V]{}
}

// Get returns the refreshed value and true, or the zero value and false when absent.
func (r Refresh[V]) Get() (V, bool) {
	return r.value, r.present
}

// IsAbsent reports whether the refresh carries no value.
func (r Refresh[V]) IsAbsent() bool {
	return !r.present
}

// OnStale is invoked at most once per read, after the read returned, when a background
// comparison found the served result out of date. A nil OnStale is allowed.
type OnStale[V any] func(Refresh[V])

func ids[T Entity](entities []T) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.EntityID())
	}
	return out
}

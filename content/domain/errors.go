package domain

import (
	"errors"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

// Entity kinds used in errors, logs and notifications.
const (
	KindArticle       = "article"
	KindAlgorithm     = "algorithm"
	KindTag           = "tag"
	KindIntroSequence = "intro_sequence"
)

// ErrSourceUnavailableEmptyCache is returned when the source cannot be reached and the
// local cache has nothing to serve. It is the only error callers must handle explicitly.
var ErrSourceUnavailableEmptyCache = cachesync.ErrSourceUnavailableEmptyCache

// NotFoundError reports that the source authoritatively has no entity with the given ID.
// It is never retried.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found in source", e.Kind)
	}
	return fmt.Sprintf("%s %q not found in source", e.Kind, e.ID)
}

// CachedNotFoundError reports that the local store has no row for the given ID.
type CachedNotFoundError struct {
	Kind string
	ID   string
}

func (e *CachedNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found in cache", e.Kind)
	}
	return fmt.Sprintf("%s %q not found in cache", e.Kind, e.ID)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsCachedNotFound reports whether err is, or wraps, a *CachedNotFoundError.
func IsCachedNotFound(err error) bool {
	var target *CachedNotFoundError
	return errors.As(err, &target)
}

package application

import (
	"github.com/rs/zerolog"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

// Options carries the collaborators shared by every entity cache. Every field is optional.
type Options struct {
	// Images resolves embedded and thumbnail images at read time.
	Images ImageResolver
	// Thumbnails prefetches thumbnails of entities written to the cache.
	Thumbnails cachesync.ThumbnailSaver
	// Publisher receives an event for every refresh delivered in the background.
	Publisher cachesync.Publisher
	Retry     cachesync.RetryPolicy
	Logger    *zerolog.Logger
}

func coordinatorConfig[T cachesync.Entity](kind string, source cachesync.Availability, cache cachesync.Writer[T], opts Options) cachesync.Config[T] {
	return cachesync.Config[T]{
		Kind:             kind,
		Source:           source,
		Cache:            cache,
		IsSourceNotFound: domain.IsNotFound,
		IsCacheNotFound:  domain.IsCachedNotFound,
		Retry:            opts.Retry,
		Publisher:        opts.Publisher,
		Logger:           opts.Logger,
	}
}

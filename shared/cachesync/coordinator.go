package cachesync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/samchencode/stroke-mgmt-sub000/shared/notify"
)

// EnrichMode selects how images are resolved while enriching a read.
type EnrichMode int

const (
	// EnrichOnline may start downloads and serves the remote URL on a miss.
	EnrichOnline EnrichMode = iota
	// EnrichOffline never downloads and serves a placeholder on a miss.
	EnrichOffline
)

func (m EnrichMode) String() string {
	if m == EnrichOffline {
		return "offline"
	}
	return "online"
}

// Enricher rewrites entities for presentation at read time. It must return new values
// and leave its input untouched, because the input may still be written to the cache.
type Enricher[T Entity] interface {
	Enrich(ctx context.Context, entities []T, mode EnrichMode) []T
}

// Availability reports whether the source can currently be reached.
type Availability interface {
	IsAvailable(ctx context.Context) bool
}

// Publisher receives a notification for every refresh delivered to a caller.
type Publisher interface {
	Publish(ctx context.Context, event notify.Event)
}

// Query is one collection read, expressed as the same read against source and cache.
type Query[T Entity] struct {
	// Name identifies the read in logs and notifications.
	Name   string
	Source Lister[T]
	Cache  Lister[T]
}

// Config wires a Coordinator.
type Config[T Entity] struct {
	// Kind names the entity type in logs and notifications.
	Kind   string
	Source Availability
	Cache  Writer[T]

	IsSourceNotFound func(error) bool
	IsCacheNotFound  func(error) bool

	// Retry bounds source reads. A zero MaxAttempts selects DefaultMaxAttempts and
	// IsSourceNotFound errors are always permanent.
	Retry RetryPolicy

	// Optional.
	Enricher  Enricher[T]
	Thumbnail func(T) string
	Images    ThumbnailSaver
	Publisher Publisher
	Logger    *zerolog.Logger
}

// Coordinator decides, for every read, whether to serve cached or source data, and keeps
// the cache in line with the source in the background.
//
// With the source available, the cache and the source are read concurrently. An empty
// cache is filled from the source before the read returns. A non-empty cache is returned
// immediately and compared with the source afterwards; when stale, the caller's OnStale
// receives the source result and the cache is reconciled in the background.
//
// With the source unavailable only the cache is read, and an empty or unreadable cache
// fails the read with ErrSourceUnavailableEmptyCache.
type Coordinator[T Entity] struct {
	kind             string
	source           Availability
	reconciler       *Reconciler[T]
	retry            RetryPolicy
	isSourceNotFound func(error) bool
	isCacheNotFound  func(error) bool
	enricher         Enricher[T]
	publisher        Publisher
	tasks            *Tasks
	logger           zerolog.Logger
}

// NewCoordinator creates a coordinator from cfg.
func NewCoordinator[T Entity](cfg Config[T]) *Coordinator[T] {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("entity", cfg.Kind).Logger()

	never := func(error) bool { return false }
	isSourceNotFound := cfg.IsSourceNotFound
	if isSourceNotFound == nil {
		isSourceNotFound = never
	}
	isCacheNotFound := cfg.IsCacheNotFound
	if isCacheNotFound == nil {
		isCacheNotFound = never
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry.MaxAttempts = DefaultMaxAttempts
	}
	permanent := retry.IsPermanent
	retry.IsPermanent = func(err error) bool {
		return isSourceNotFound(err) || (permanent != nil && permanent(err))
	}

	tasks := NewTasks(logger)
	return &Coordinator[T]{
		kind:             cfg.Kind,
		source:           cfg.Source,
		reconciler:       NewReconciler(cfg.Kind, cfg.Cache, cfg.Thumbnail, cfg.Images, tasks, logger),
		retry:            retry,
		isSourceNotFound: isSourceNotFound,
		isCacheNotFound:  isCacheNotFound,
		enricher:         cfg.Enricher,
		publisher:        cfg.Publisher,
		tasks:            tasks,
		logger:           logger,
	}
}

// Collection serves a collection read. onStale may be nil.
func (c *Coordinator[T]) Collection(ctx context.Context, q Query[T], onStale OnStale[[]T]) ([]T, error) {
	if c.source.IsAvailable(ctx) {
		return c.readOnline(ctx, q, onStale)
	}
	return c.readOffline(ctx, q)
}

// Single serves a read of one entity. It is the collection protocol applied to a
// one-element collection.
func (c *Coordinator[T]) Single(ctx context.Context, id string, source, cache Getter[T], onStale OnStale[T]) (T, error) {
	q := Query[T]{
		Name:   "id:" + id,
		Source: one(id, source),
		Cache:  one(id, cache),
	}

	var unwrap OnStale[[]T]
	if onStale != nil {
		unwrap = func(r Refresh[[]T]) {
			entities, ok := r.Get()
			if !ok || len(entities) == 0 {
				onStale(Absent[T]())
				return
			}
			onStale(Present(entities[0]))
		}
	}

	var zero T
	entities, err := c.Collection(ctx, q, unwrap)
	if err != nil {
		return zero, err
	}
	if len(entities) == 0 {
		return zero, fmt.Errorf("%s %q: empty result", c.kind, id)
	}
	return entities[0], nil
}

// Wait blocks until all background work started so far has finished.
func (c *Coordinator[T]) Wait() {
	c.tasks.Wait()
}

// Close stops background work and waits for it to return.
func (c *Coordinator[T]) Close() {
	c.tasks.Close()
}

func one[T Entity](id string, get Getter[T]) Lister[T] {
	return func(ctx context.Context) ([]T, error) {
		entity, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		return []T{entity}, nil
	}
}

func (c *Coordinator[T]) readOnline(ctx context.Context, q Query[T], onStale OnStale[[]T]) ([]T, error) {
	fetch := c.startFetch(q)

	cached, err := q.Cache(ctx)
	switch {
	case err != nil && !c.isCacheNotFound(err):
		c.logger.Warn().Err(err).Str("query", q.Name).Msg("Cache read failed, serving source directly")
		return fetch.await(ctx)

	case len(cached) == 0:
		source, err := fetch.await(ctx)
		if err != nil {
			return nil, err
		}
		// The cache must be durable before the caller sees the result.
		c.reconciler.Reconcile(context.WithoutCancel(ctx), source, nil)
		return source, nil

	default:
		served := c.enrich(ctx, cached, EnrichOnline)

		returned := make(chan struct{})
		defer close(returned)
		c.tasks.Go("refresh", func(bg context.Context) {
			select {
			case <-returned:
			case <-bg.Done():
				return
			}
			c.refresh(bg, q, cached, fetch, onStale)
		})

		return served, nil
	}
}

func (c *Coordinator[T]) readOffline(ctx context.Context, q Query[T]) ([]T, error) {
	cached, err := q.Cache(ctx)
	if err != nil && !c.isCacheNotFound(err) {
		return nil, fmt.Errorf("%w: read %s %s from cache: %w", ErrSourceUnavailableEmptyCache, c.kind, q.Name, err)
	}
	if len(cached) == 0 {
		return nil, ErrSourceUnavailableEmptyCache
	}
	return c.enrich(ctx, cached, EnrichOffline), nil
}

// startFetch reads the source on the lifecycle context so the read survives the caller
// returning early with cached data.
func (c *Coordinator[T]) startFetch(q Query[T]) *future[[]T] {
	fetch := newFuture[[]T]()
	c.tasks.Go("fetch", func(bg context.Context) {
		var (
			entities []T
			err      = fmt.Errorf("read %s %s from source: aborted", c.kind, q.Name)
		)
		defer func() { fetch.resolve(entities, err) }()
		entities, err = Retry(bg, c.retry, func(ctx context.Context) ([]T, error) {
			return q.Source(ctx)
		})
	})
	return fetch
}

func (c *Coordinator[T]) refresh(ctx context.Context, q Query[T], cached []T, fetch *future[[]T], onStale OnStale[[]T]) {
	source, err := fetch.await(ctx)
	if err != nil {
		if !c.isSourceNotFound(err) {
			c.logger.Debug().Err(err).Str("query", q.Name).Msg("Background refresh abandoned")
			return
		}
		c.reconciler.Forget(ctx, ids(cached))
		c.publish(ctx, notify.Event{Entity: c.kind, Query: q.Name, IDs: ids(cached), Absent: true})
		if onStale != nil {
			onStale(Absent[[]T]())
		}
		return
	}

	if !IsStale(source, cached) {
		return
	}

	c.logger.Debug().Str("query", q.Name).Int("count", len(source)).Msg("Cache is stale")
	c.publish(ctx, notify.Event{Entity: c.kind, Query: q.Name, IDs: ids(source)})
	if onStale != nil {
		onStale(Present(source))
	}
	c.tasks.Go("reconcile", func(bg context.Context) {
		c.reconciler.Reconcile(bg, source, cached)
	})
}

func (c *Coordinator[T]) enrich(ctx context.Context, entities []T, mode EnrichMode) []T {
	if c.enricher == nil {
		return entities
	}
	return c.enricher.Enrich(ctx, entities, mode)
}

func (c *Coordinator[T]) publish(ctx context.Context, event notify.Event) {
	if c.publisher != nil {
		c.publisher.Publish(ctx, event)
	}
}

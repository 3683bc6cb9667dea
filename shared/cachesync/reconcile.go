package cachesync

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Writer is the write side of a cache repository. Every method must be an idempotent,
// ID-keyed operation: overlapping reconciliations rely on it.
type Writer[T Entity] interface {
	SaveAll(ctx context.Context, entities []T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
}

// ThumbnailSaver stores a remote image locally unless a usable copy already exists.
type ThumbnailSaver interface {
	SaveIfNotExists(ctx context.Context, url string) error
}

// Report counts the writes a reconciliation attempted.
type Report struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// Writes returns the number of write operations attempted, failed ones included.
func (r Report) Writes() int {
	return r.Created + r.Updated + r.Deleted + r.Failed
}

// Reconciler applies a Diff to a cache. Writes are best-effort: every write runs
// regardless of whether its siblings fail, and failures are only logged and counted.
type Reconciler[T Entity] struct {
	kind      string
	writer    Writer[T]
	thumbnail func(T) string
	images    ThumbnailSaver
	tasks     *Tasks
	logger    zerolog.Logger
}

// NewReconciler creates a reconciler. thumbnail and images may be nil, in which case no
// thumbnail is prefetched.
func NewReconciler[T Entity](kind string, writer Writer[T], thumbnail func(T) string, images ThumbnailSaver, tasks *Tasks, logger zerolog.Logger) *Reconciler[T] {
	return &Reconciler[T]{
		kind:      kind,
		writer:    writer,
		thumbnail: thumbnail,
		images:    images,
		tasks:     tasks,
		logger:    logger,
	}
}

// Reconcile writes the difference between source and cache into the cache. The batch
// insert, the updates and the deletes run concurrently and Reconcile returns once all of
// them settled. Thumbnail prefetches for created and updated entities keep running in
// the background after Reconcile returns.
func (r *Reconciler[T]) Reconcile(ctx context.Context, source, cache []T) Report {
	diff := Diff(source, cache)
	if diff.Empty() {
		return Report{}
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)
	count := func(field *int, n int) {
		mu.Lock()
		*field += n
		mu.Unlock()
	}

	if len(diff.ToCreate) > 0 {
		wg.Go(func() {
			if err := r.writer.SaveAll(ctx, diff.ToCreate); err != nil {
				r.logger.Warn().Err(err).Str("entity", r.kind).Int("count", len(diff.ToCreate)).Msg("Failed to save new entities to cache")
				count(&report.Failed, 1)
				return
			}
			count(&report.Created, len(diff.ToCreate))
			for _, e := range diff.ToCreate {
				r.prefetchThumbnail(e)
			}
		})
	}

	for _, e := range diff.ToUpdate {
		wg.Go(func() {
			if err := r.writer.Update(ctx, e); err != nil {
				r.logger.Warn().Err(err).Str("entity", r.kind).Str("id", e.EntityID()).Msg("Failed to update cached entity")
				count(&report.Failed, 1)
				return
			}
			count(&report.Updated, 1)
			r.prefetchThumbnail(e)
		})
	}

	for _, id := range diff.ToDelete {
		wg.Go(func() {
			if err := r.writer.Delete(ctx, id); err != nil {
				r.logger.Warn().Err(err).Str("entity", r.kind).Str("id", id).Msg("Failed to delete cached entity")
				count(&report.Failed, 1)
				return
			}
			count(&report.Deleted, 1)
		})
	}

	wg.Wait()

	r.logger.Debug().
		Str("entity", r.kind).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Msg("Reconciled cache")

	return report
}

// Forget deletes every given ID from the cache, settling all deletes.
func (r *Reconciler[T]) Forget(ctx context.Context, ids []string) Report {
	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)
	for _, id := range ids {
		wg.Go(func() {
			err := r.writer.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn().Err(err).Str("entity", r.kind).Str("id", id).Msg("Failed to delete cached entity")
				report.Failed++
				return
			}
			report.Deleted++
		})
	}
	wg.Wait()
	return report
}

func (r *Reconciler[T]) prefetchThumbnail(e T) {
	if r.thumbnail == nil || r.images == nil || r.tasks == nil {
		return
	}
	url := r.thumbnail(e)
	if !IsRemoteURL(url) {
		return
	}
	r.tasks.Go("thumbnail", func(ctx context.Context) {
		if err := r.images.SaveIfNotExists(ctx, url); err != nil {
			r.logger.Warn().Err(err).Str("entity", r.kind).Str("id", e.EntityID()).Str("url", url).Msg("Failed to cache thumbnail")
		}
	})
}

// IsRemoteURL reports whether url is an http or https URL.
func IsRemoteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

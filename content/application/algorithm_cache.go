package application

import (
	"context"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

// AlgorithmCache serves algorithms from the local cache and keeps it in line with the source.
type AlgorithmCache struct {
	source      domain.AlgorithmSourceRepository
	cache       domain.AlgorithmCacheRepository
	coordinator *cachesync.Coordinator[domain.Algorithm]
}

func NewAlgorithmCache(source domain.AlgorithmSourceRepository, cache domain.AlgorithmCacheRepository, opts Options) *AlgorithmCache {
	cfg := coordinatorConfig[domain.Algorithm](domain.KindAlgorithm, source, cache, opts)
	cfg.Enricher = newAlgorithmEnricher(opts.Images)
	cfg.Thumbnail = func(a domain.Algorithm) string { return a.Thumbnail }
	cfg.Images = opts.Thumbnails

	return &AlgorithmCache{
		source:      source,
		cache:       cache,
		coordinator: cachesync.NewCoordinator(cfg),
	}
}

func (c *AlgorithmCache) GetAll(ctx context.Context, onStale cachesync.OnStale[[]domain.Algorithm]) ([]domain.Algorithm, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Algorithm]{
		Name:   "all",
		Source: c.source.GetAll,
		Cache:  c.cache.GetAll,
	}, onStale)
}

func (c *AlgorithmCache) GetByID(ctx context.Context, id string, onStale cachesync.OnStale[domain.Algorithm]) (domain.Algorithm, error) {
	return c.coordinator.Single(ctx, id, c.source.GetByID, c.cache.GetByID, onStale)
}

func (c *AlgorithmCache) GetAllShownOnHome(ctx context.Context, onStale cachesync.OnStale[[]domain.Algorithm]) ([]domain.Algorithm, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Algorithm]{
		Name:   "home",
		Source: c.source.GetAllShownOnHome,
		Cache:  c.cache.GetAllShownOnHome,
	}, onStale)
}

func (c *AlgorithmCache) ClearCache(ctx context.Context) error {
	if err := c.cache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear algorithm cache: %w", err)
	}
	return nil
}

func (c *AlgorithmCache) Wait()  { c.coordinator.Wait() }
func (c *AlgorithmCache) Close() { c.coordinator.Close() }

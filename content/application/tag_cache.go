package application

import (
	"context"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

type TagCache struct {
	source      domain.TagSourceRepository
	cache       domain.TagCacheRepository
	coordinator *cachesync.Coordinator[domain.Tag]
}

func NewTagCache(source domain.TagSourceRepository, cache domain.TagCacheRepository, opts Options) *TagCache {
	return &TagCache{
		source:      source,
		cache:       cache,
		coordinator: cachesync.NewCoordinator(coordinatorConfig[domain.Tag](domain.KindTag, source, cache, opts)),
	}
}

func (c *TagCache) GetAll(ctx context.Context, onStale cachesync.OnStale[[]domain.Tag]) ([]domain.Tag, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Tag]{
		Name:   "all",
		Source: c.source.GetAll,
		Cache:  c.cache.GetAll,
	}, onStale)
}

func (c *TagCache) GetByID(ctx context.Context, id string, onStale cachesync.OnStale[domain.Tag]) (domain.Tag, error) {
	return c.coordinator.Single(ctx, id, c.source.GetByID, c.cache.GetByID, onStale)
}

func (c *TagCache) ClearCache(ctx context.Context) error {
	if err := c.cache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear tag cache: %w", err)
	}
	return nil
}

func (c *TagCache) Wait()  { c.coordinator.Wait() }
func (c *TagCache) Close() { c.coordinator.Close() }

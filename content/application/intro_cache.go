package application

import (
	"context"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

type IntroSequenceCache struct {
	source      domain.IntroSequenceSourceRepository
	cache       domain.IntroSequenceCacheRepository
	coordinator *cachesync.Coordinator[domain.IntroSequence]
}

func NewIntroSequenceCache(source domain.IntroSequenceSourceRepository, cache domain.IntroSequenceCacheRepository, opts Options) *IntroSequenceCache {
	return &IntroSequenceCache{
		source:      source,
		cache:       cache,
		coordinator: cachesync.NewCoordinator(coordinatorConfig[domain.IntroSequence](domain.KindIntroSequence, source, cache, opts)),
	}
}

func (c *IntroSequenceCache) GetAll(ctx context.Context, onStale cachesync.OnStale[[]domain.IntroSequence]) ([]domain.IntroSequence, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.IntroSequence]{
		Name:   "all",
		Source: c.source.GetAll,
		Cache:  c.cache.GetAll,
	}, onStale)
}

func (c *IntroSequenceCache) GetByID(ctx context.Context, id string, onStale cachesync.OnStale[domain.IntroSequence]) (domain.IntroSequence, error) {
	return c.coordinator.Single(ctx, id, c.source.GetByID, c.cache.GetByID, onStale)
}

func (c *IntroSequenceCache) ClearCache(ctx context.Context) error {
	if err := c.cache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear intro sequence cache: %w", err)
	}
	return nil
}

func (c *IntroSequenceCache) Wait()  { c.coordinator.Wait() }
func (c *IntroSequenceCache) Close() { c.coordinator.Close() }

package application

import (
	"context"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

// ArticleCache serves articles from the local cache and keeps it in line with the source.
type ArticleCache struct {
	source      domain.ArticleSourceRepository
	cache       domain.ArticleCacheRepository
	coordinator *cachesync.Coordinator[domain.Article]
}

func NewArticleCache(source domain.ArticleSourceRepository, cache domain.ArticleCacheRepository, opts Options) *ArticleCache {
	cfg := coordinatorConfig[domain.Article](domain.KindArticle, source, cache, opts)
	cfg.Enricher = newArticleEnricher(opts.Images)
	cfg.Thumbnail = func(a domain.Article) string { return a.Thumbnail }
	cfg.Images = opts.Thumbnails

	return &ArticleCache{
		source:      source,
		cache:       cache,
		coordinator: cachesync.NewCoordinator(cfg),
	}
}

func (c *ArticleCache) GetAll(ctx context.Context, onStale cachesync.OnStale[[]domain.Article]) ([]domain.Article, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Article]{
		Name:   "all",
		Source: c.source.GetAll,
		Cache:  c.cache.GetAll,
	}, onStale)
}

func (c *ArticleCache) GetByID(ctx context.Context, id string, onStale cachesync.OnStale[domain.Article]) (domain.Article, error) {
	return c.coordinator.Single(ctx, id, c.source.GetByID, c.cache.GetByID, onStale)
}

func (c *ArticleCache) GetAllShownOnHome(ctx context.Context, onStale cachesync.OnStale[[]domain.Article]) ([]domain.Article, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Article]{
		Name:   "home",
		Source: c.source.GetAllShownOnHome,
		Cache:  c.cache.GetAllShownOnHome,
	}, onStale)
}

// GetByTag serves the articles labelled with tagID.
func (c *ArticleCache) GetByTag(ctx context.Context, tagID string, onStale cachesync.OnStale[[]domain.Article]) ([]domain.Article, error) {
	return c.coordinator.Collection(ctx, cachesync.Query[domain.Article]{
		Name: "tag:" + tagID,
		Source: func(ctx context.Context) ([]domain.Article, error) {
			return c.source.GetByTag(ctx, tagID)
		},
		Cache: func(ctx context.Context) ([]domain.Article, error) {
			return c.cache.GetByTag(ctx, tagID)
		},
	}, onStale)
}

func (c *ArticleCache) ClearCache(ctx context.Context) error {
	if err := c.cache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear article cache: %w", err)
	}
	return nil
}

// Wait blocks until background refreshes started so far have finished.
func (c *ArticleCache) Wait() { c.coordinator.Wait() }

// Close stops background refreshes.
func (c *ArticleCache) Close() { c.coordinator.Close() }

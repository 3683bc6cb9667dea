package imagecache

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

var _ cachesync.ThumbnailSaver = (*Cache)(nil)

// Cache maps remote image URLs to local copies.
//
// Saving a URL again downloads a new file and repoints the metadata at it. The previous
// file is left on disk until ClearCache.
type Cache struct {
	store    Store
	metadata MetadataRepository
	tasks    *cachesync.Tasks
	inflight singleflight.Group
	logger   zerolog.Logger
}

// New creates an image cache. Call Close to stop detached downloads.
func New(store Store, metadata MetadataRepository, logger zerolog.Logger) *Cache {
	logger = logger.With().Str("component", "image_cache").Logger()
	return &Cache{
		store:    store,
		metadata: metadata,
		tasks:    cachesync.NewTasks(logger),
		logger:   logger,
	}
}

// SaveImage downloads url and records where it was stored. Concurrent saves of the same
// url share one download, which runs on the cache's lifecycle context: ctx only bounds how
// long this caller waits for it.
func (c *Cache) SaveImage(ctx context.Context, url string) error {
	result := c.inflight.DoChan(url, func() (any, error) {
		ctx := c.tasks.Context()
		meta, err := c.store.SaveFileFromURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("download image %s: %w", url, err)
		}
		if err := c.metadata.Save(ctx, meta); err != nil {
			return nil, fmt.Errorf("save image metadata for %s: %w", url, err)
		}
		c.logger.Debug().Str("url", url).Str("path", meta.FilePath).Msg("Cached image")
		return nil, nil
	})
	select {
	case r := <-result:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetAsFileURI returns the local file for url, or the placeholder when there is none.
func (c *Cache) GetAsFileURI(ctx context.Context, url string) (Image, error) {
	meta, ok, err := c.lookup(ctx, url)
	if err != nil || !ok {
		return Placeholder(), err
	}
	return Image{Kind: KindFile, URI: meta.FilePath}, nil
}

// GetAsBase64 returns the local copy of url as a data URL, or the placeholder when there
// is none.
func (c *Cache) GetAsBase64(ctx context.Context, url string) (Image, error) {
	meta, ok, err := c.lookup(ctx, url)
	if err != nil || !ok {
		return Placeholder(), err
	}
	data, err := c.store.GetFileAsBase64URL(meta)
	if err != nil {
		return Placeholder(), fmt.Errorf("read cached image %s: %w", url, err)
	}
	return Image{Kind: KindDataURL, URI: data}, nil
}

// GetOrSaveAsFileURI behaves like GetAsFileURI, except that on a miss it starts a
// download in the background and returns the remote URL right away.
func (c *Cache) GetOrSaveAsFileURI(ctx context.Context, url string) Image {
	return c.getOrSave(ctx, url, c.GetAsFileURI)
}

// GetOrSaveAsBase64 behaves like GetAsBase64, except that on a miss it starts a download
// in the background and returns the remote URL right away.
func (c *Cache) GetOrSaveAsBase64(ctx context.Context, url string) Image {
	return c.getOrSave(ctx, url, c.GetAsBase64)
}

// SaveIfNotExists downloads url unless both its metadata and its file are present. A
// record whose file was evicted is downloaded again.
func (c *Cache) SaveIfNotExists(ctx context.Context, url string) error {
	_, ok, err := c.lookup(ctx, url)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.SaveImage(ctx, url)
}

// ClearCache removes every cached file and every metadata record.
func (c *Cache) ClearCache(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := c.store.DeleteAll(); err != nil {
			return fmt.Errorf("delete cached image files: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.metadata.ClearCache(ctx); err != nil {
			return fmt.Errorf("clear image metadata: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Wait blocks until detached downloads started so far have finished.
func (c *Cache) Wait() {
	c.tasks.Wait()
}

// Close cancels detached downloads and waits for them to return.
func (c *Cache) Close() {
	c.tasks.Close()
}

// lookup returns ok=false when there is no metadata for url or its file is gone.
func (c *Cache) lookup(ctx context.Context, url string) (Metadata, bool, error) {
	meta, found, err := c.metadata.Get(ctx, url)
	if err != nil {
		return Metadata{}, false, fmt.Errorf("get image metadata for %s: %w", url, err)
	}
	if !found {
		return Metadata{}, false, nil
	}
	exists, err := c.store.FileExists(meta.FilePath)
	if err != nil {
		return Metadata{}, false, fmt.Errorf("stat cached image %s: %w", meta.FilePath, err)
	}
	return meta, exists, nil
}

func (c *Cache) getOrSave(ctx context.Context, url string, get func(context.Context, string) (Image, error)) Image {
	img, err := get(ctx, url)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("Image lookup failed")
	}
	if err == nil && !img.IsPlaceholder() {
		return img
	}

	c.tasks.Go("save_image", func(bg context.Context) {
		if err := c.SaveImage(bg, url); err != nil {
			c.logger.Warn().Err(err).Str("url", url).Msg("Background image download failed")
		}
	})
	return Remote(url)
}

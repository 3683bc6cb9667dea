package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

var _ domain.CachedImageMetadataRepository = (*RedisImageRepository)(nil)

const (
	redisImageKeyPrefix = "strokeref:image:"
	redisImageIndexKey  = "strokeref:images"
)

// RedisImageRepository stores cached image metadata as one hash per source URL, plus a
// set indexing every stored URL so the cache can be cleared without KEYS.
type RedisImageRepository struct {
	client redis.UniversalClient
}

func NewRedisImageRepository(client redis.UniversalClient) *RedisImageRepository {
	return &RedisImageRepository{
		client: client,
	}
}

func redisImageKey(url string) string {
	return redisImageKeyPrefix + url
}

func (r *RedisImageRepository) Save(ctx context.Context, meta domain.CachedImageMetadata) error {
	if meta.SourceURL == "" {
		return fmt.Errorf("image source URL cannot be empty")
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisImageKey(meta.SourceURL),
			"file_path", meta.FilePath,
			"mime_type", meta.MimeType,
		)
		pipe.SAdd(ctx, redisImageIndexKey, meta.SourceURL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save image record: %w", err)
	}
	return nil
}

func (r *RedisImageRepository) Get(ctx context.Context, url string) (domain.CachedImageMetadata, bool, error) {
	fields, err := r.client.HGetAll(ctx, redisImageKey(url)).Result()
	if err != nil {
		return domain.CachedImageMetadata{}, false, fmt.Errorf("failed to get image: %w", err)
	}
	if len(fields) == 0 {
		return domain.CachedImageMetadata{}, false, nil
	}

	return domain.CachedImageMetadata{
		SourceURL: url,
		FilePath:  fields["file_path"],
		MimeType:  fields["mime_type"],
	}, true, nil
}

func (r *RedisImageRepository) ClearCache(ctx context.Context) error {
	urls, err := r.client.SMembers(ctx, redisImageIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list image records: %w", err)
	}

	keys := make([]string, 0, len(urls)+1)
	for _, url := range urls {
		keys = append(keys, redisImageKey(url))
	}
	keys = append(keys, redisImageIndexKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear image records: %w", err)
	}
	return nil
}

package application

import (
	"context"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
	"github.com/samchencode/stroke-mgmt-sub000/shared/htmlimg"
	"github.com/samchencode/stroke-mgmt-sub000/shared/imagecache"
)

// ImageResolver maps a remote image URL to the image to serve in its place.
type ImageResolver interface {
	Resolve(ctx context.Context, url string, mode cachesync.EnrichMode) imagecache.Image
}

var _ ImageResolver = (*imagecache.Resolver)(nil)

// imageFields exposes the image-bearing fields of an entity for in-place rewriting: every
// HTML field, plus the thumbnail URL.
type imageFields[T any] func(entity *T) (html []*string, thumbnail *string)

// imageEnricher substitutes cached images into clones of the entities it is given.
type imageEnricher[T any] struct {
	resolver ImageResolver
	clone    func(T) T
	fields   imageFields[T]
}

func (e imageEnricher[T]) Enrich(ctx context.Context, entities []T, mode cachesync.EnrichMode) []T {
	out := make([]T, len(entities))
	for i, entity := range entities {
		out[i] = e.enrichOne(ctx, e.clone(entity), mode)
	}
	return out
}

func (e imageEnricher[T]) enrichOne(ctx context.Context, entity T, mode cachesync.EnrichMode) T {
	html, thumbnail := e.fields(&entity)

	replacements := make(map[string]string)
	for _, field := range html {
		for _, url := range htmlimg.ExtractImageURLs(*field) {
			if _, seen := replacements[url]; !seen {
				replacements[url] = e.resolver.Resolve(ctx, url, mode).URI
			}
		}
	}
	if len(replacements) > 0 {
		for _, field := range html {
			*field = htmlimg.RewriteImageURLs(replacements, *field)
		}
	}

	if thumbnail != nil && cachesync.IsRemoteURL(*thumbnail) {
		*thumbnail = e.resolver.Resolve(ctx, *thumbnail, mode).URI
	}

	return entity
}

func articleImageFields(a *domain.Article) ([]*string, *string) {
	return []*string{&a.Body}, &a.Thumbnail
}

func algorithmImageFields(a *domain.Algorithm) ([]*string, *string) {
	html := []*string{&a.Body}
	for i := range a.Outcomes {
		html = append(html, &a.Outcomes[i].Body)
	}

	switch info := a.Info.(type) {
	case domain.ScoredInfo:
		// info is a copy sharing the clone's Switches backing array.
		for i := range info.Switches {
			html = append(html, &info.Switches[i].Description)
		}
	case domain.TextualInfo, nil:
	}

	return html, &a.Thumbnail
}

func newArticleEnricher(resolver ImageResolver) cachesync.Enricher[domain.Article] {
	if resolver == nil {
		return nil
	}
	return imageEnricher[domain.Article]{
		resolver: resolver,
		clone:    domain.Article.Clone,
		fields:   articleImageFields,
	}
}

func newAlgorithmEnricher(resolver ImageResolver) cachesync.Enricher[domain.Algorithm] {
	if resolver == nil {
		return nil
	}
	return imageEnricher[domain.Algorithm]{
		resolver: resolver,
		clone:    domain.Algorithm.Clone,
		fields:   algorithmImageFields,
	}
}

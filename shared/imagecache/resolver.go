package imagecache

import (
	"context"
	"fmt"

	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
)

// Representation selects how locally cached images are handed to clients.
type Representation string

const (
	RepresentationBase64 Representation = "base64"
	RepresentationFile   Representation = "file"
)

// ParseRepresentation validates a configured representation. Empty selects base64.
func ParseRepresentation(s string) (Representation, error) {
	switch r := Representation(s); r {
	case "":
		return RepresentationBase64, nil
	case RepresentationBase64, RepresentationFile:
		return r, nil
	default:
		return "", fmt.Errorf("unknown image representation %q", s)
	}
}

// Resolver picks the cache lookup matching a representation and an enrichment mode.
type Resolver struct {
	cache          *Cache
	representation Representation
}

func NewResolver(cache *Cache, representation Representation) *Resolver {
	return &Resolver{
		cache:          cache,
		representation: representation,
	}
}

// Resolve returns the image to serve for url. Online, a miss starts a download and
// serves the remote URL. Offline, a miss serves the placeholder.
func (r *Resolver) Resolve(ctx context.Context, url string, mode cachesync.EnrichMode) Image {
	if mode == cachesync.EnrichOnline {
		if r.representation == RepresentationFile {
			return r.cache.GetOrSaveAsFileURI(ctx, url)
		}
		return r.cache.GetOrSaveAsBase64(ctx, url)
	}

	get := r.cache.GetAsBase64
	if r.representation == RepresentationFile {
		get = r.cache.GetAsFileURI
	}
	img, err := get(ctx, url)
	if err != nil {
		r.cache.logger.Warn().Err(err).Str("url", url).Msg("Offline image lookup failed")
		return Placeholder()
	}
	return img
}

package imagecache

import (
	"context"
)

// Kind tells where an Image points.
type Kind int

const (
	// KindRemote points at the original remote URL.
	KindRemote Kind = iota
	// KindFile points at a locally cached file.
	KindFile
	// KindDataURL embeds the cached bytes as a base64 data URL.
	KindDataURL
	// KindPlaceholder embeds the built-in placeholder picture.
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindFile:
		return "file"
	case KindDataURL:
		return "data_url"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// PlaceholderDataURL is a transparent 1x1 PNG served when no local copy exists.
const PlaceholderDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// Image is a resolved reference to a picture.
type Image struct {
	Kind Kind
	URI  string
}

// Placeholder returns the placeholder image.
func Placeholder() Image {
	return Image{Kind: KindPlaceholder, URI: PlaceholderDataURL}
}

// Remote returns an image pointing at url.
func Remote(url string) Image {
	return Image{Kind: KindRemote, URI: url}
}

// IsPlaceholder reports whether no local copy backs the image.
func (i Image) IsPlaceholder() bool {
	return i.Kind == KindPlaceholder
}

// Metadata records where the local copy of a remote image lives. SourceURL is the key.
type Metadata struct {
	SourceURL string
	FilePath  string
	MimeType  string
}

// MetadataRepository persists Metadata, one record per distinct source URL.
type MetadataRepository interface {
	// Get returns found=false when no metadata exists for url.
	Get(ctx context.Context, url string) (meta Metadata, found bool, err error)
	// Save inserts or replaces the record keyed by meta.SourceURL.
	Save(ctx context.Context, meta Metadata) error
	ClearCache(ctx context.Context) error
}

// Store is the file side of the image cache.
type Store interface {
	SaveFileFromURL(ctx context.Context, url string) (Metadata, error)
	FileExists(path string) (bool, error)
	GetFileAsBase64URL(meta Metadata) (string, error)
	DeleteAll() error
}

package domain

import "github.com/samchencode/stroke-mgmt-sub000/shared/imagecache"

// CachedImageMetadata records where the local copy of a remote image lives.
type CachedImageMetadata = imagecache.Metadata

// CachedImageMetadataRepository stores one CachedImageMetadata per distinct source URL.
type CachedImageMetadataRepository = imagecache.MetadataRepository

package domain

import (
	"context"
	"slices"
	"time"
)

// Article is a clinical reference article. Body holds HTML; Thumbnail holds an image URL.
type Article struct {
	ID               string
	Title            string
	Summary          string
	Body             string
	Thumbnail        string
	TagIDs           []string
	ShowOnHomeScreen bool
	LastUpdated      time.Time
}

func (a Article) EntityID() string         { return a.ID }
func (a Article) LastUpdatedAt() time.Time { return a.LastUpdated }

// Clone returns a copy that shares no slices with a.
func (a Article) Clone() Article {
	a.TagIDs = slices.Clone(a.TagIDs)
	return a
}

// HasTag reports whether the article is labelled with tagID.
func (a Article) HasTag(tagID string) bool {
	return slices.Contains(a.TagIDs, tagID)
}

type ArticleSourceRepository interface {
	SourceRepository[Article]
	GetAllShownOnHome(ctx context.Context) ([]Article, error)
	GetByTag(ctx context.Context, tagID string) ([]Article, error)
}

type ArticleCacheRepository interface {
	CacheRepository[Article]
	GetAllShownOnHome(ctx context.Context) ([]Article, error)
	GetByTag(ctx context.Context, tagID string) ([]Article, error)
}

package domain

import "time"

// Tag labels articles by topic.
type Tag struct {
	ID          string
	Designation string
	Description string
	LastUpdated time.Time
}

func (t Tag) EntityID() string         { return t.ID }
func (t Tag) LastUpdatedAt() time.Time { return t.LastUpdated }
func (t Tag) Clone() Tag               { return t }

type TagSourceRepository interface {
	SourceRepository[Tag]
}

type TagCacheRepository interface {
	CacheRepository[Tag]
}

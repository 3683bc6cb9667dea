package domain

import (
	"slices"
	"time"
)

// IntroSequence is the onboarding sequence shown on first launch.
type IntroSequence struct {
	ID          string
	Items       []IntroItem
	LastUpdated time.Time
}

// IntroItem is one page of an intro sequence. Body holds HTML.
type IntroItem struct {
	Title string
	Body  string
}

func (s IntroSequence) EntityID() string         { return s.ID }
func (s IntroSequence) LastUpdatedAt() time.Time { return s.LastUpdated }

func (s IntroSequence) Clone() IntroSequence {
	s.Items = slices.Clone(s.Items)
	return s
}

type IntroSequenceSourceRepository interface {
	SourceRepository[IntroSequence]
}

type IntroSequenceCacheRepository interface {
	CacheRepository[IntroSequence]
}

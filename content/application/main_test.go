package application

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/content/persistence"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db/sqlite"
	"github.com/samchencode/stroke-mgmt-sub000/shared/imagecache"
)

// fakeSource serves a fixed set of entities.
type fakeSource[T cachesync.Entity] struct {
	mu        sync.Mutex
	kind      string
	available bool
	entities  []T
	err       error
}

func newFakeSource[T cachesync.Entity](kind string, entities ...T) *fakeSource[T] {
	return &fakeSource[T]{kind: kind, available: true, entities: entities}
}

func (s *fakeSource[T]) IsAvailable(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *fakeSource[T]) GetAll(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.entities), nil
}

func (s *fakeSource[T]) GetByID(_ context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.err != nil {
		return zero, s.err
	}
	for _, e := range s.entities {
		if e.EntityID() == id {
			return e, nil
		}
	}
	return zero, &domain.NotFoundError{Kind: s.kind, ID: id}
}

func (s *fakeSource[T]) filter(keep func(T) bool) ([]T, error) {
	all, err := s.GetAll(context.Background())
	if err != nil {
		return nil, err
	}
	var out []T
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeArticleSource struct {
	*fakeSource[domain.Article]
}

func (s fakeArticleSource) GetAllShownOnHome(context.Context) ([]domain.Article, error) {
	return s.filter(func(a domain.Article) bool { return a.ShowOnHomeScreen })
}

func (s fakeArticleSource) GetByTag(_ context.Context, tagID string) ([]domain.Article, error) {
	return s.filter(func(a domain.Article) bool { return a.HasTag(tagID) })
}

type fakeAlgorithmSource struct {
	*fakeSource[domain.Algorithm]
}

func (s fakeAlgorithmSource) GetAllShownOnHome(context.Context) ([]domain.Algorithm, error) {
	return s.filter(func(a domain.Algorithm) bool { return a.ShowOnHomeScreen })
}

// fakeResolver maps every URL to a recognizable local URI and records the calls.
type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	modes []cachesync.EnrichMode
}

func (r *fakeResolver) Resolve(_ context.Context, url string, mode cachesync.EnrichMode) imagecache.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, url)
	r.modes = append(r.modes, mode)
	if mode == cachesync.EnrichOffline {
		return imagecache.Placeholder()
	}
	return imagecache.Image{Kind: imagecache.KindDataURL, URI: "local:" + url}
}

func (r *fakeResolver) resolved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

type repositories struct {
	articles   *persistence.SQLiteArticleRepository
	algorithms *persistence.SQLiteAlgorithmRepository
	tags       *persistence.SQLiteTagRepository
	intro      *persistence.SQLiteIntroSequenceRepository
}

func setupRepositories(t *testing.T) repositories {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	sqlDB := database.DB()
	return repositories{
		articles:   persistence.NewArticleRepository(sqlDB),
		algorithms: persistence.NewAlgorithmRepository(sqlDB),
		tags:       persistence.NewTagRepository(sqlDB),
		intro:      persistence.NewIntroSequenceRepository(sqlDB),
	}
}

func ts(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

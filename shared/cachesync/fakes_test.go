package cachesync

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var (
	errSourceNotFound = errors.New("not found in source")
	errCacheMiss      = errors.New("not found in cache")
	errNetwork        = errors.New("network unreachable")
)

func isSourceNotFound(err error) bool { return errors.Is(err, errSourceNotFound) }
func isCacheMiss(err error) bool      { return errors.Is(err, errCacheMiss) }

type item struct {
	id        string
	title     string
	updated   time.Time
	thumbnail string
}

func (i item) EntityID() string         { return i.id }
func (i item) LastUpdatedAt() time.Time { return i.updated }

func at(seconds int) time.Time {
	return time.Unix(int64(seconds), 0).UTC()
}

// memoryCache is an in-memory Writer that records every call it receives.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]item
	readErr error

	saveAllCalls [][]item
	updates      []item
	deletes      []string

	failSaveAll bool
	failUpdate  map[string]bool
	failDelete  map[string]bool
}

func newMemoryCache(items ...item) *memoryCache {
	m := &memoryCache{items: make(map[string]item)}
	for _, i := range items {
		m.items[i.id] = i
	}
	return m
}

func (m *memoryCache) GetAll(context.Context) ([]item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]item, 0, len(m.items))
	for _, i := range m.items {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out, nil
}

func (m *memoryCache) GetByID(_ context.Context, id string) (item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return item{}, m.readErr
	}
	i, ok := m.items[id]
	if !ok {
		return item{}, errCacheMiss
	}
	return i, nil
}

func (m *memoryCache) SaveAll(_ context.Context, entities []item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveAllCalls = append(m.saveAllCalls, slices.Clone(entities))
	if m.failSaveAll {
		return errors.New("disk full")
	}
	for _, e := range entities {
		m.items[e.id] = e
	}
	return nil
}

func (m *memoryCache) Update(_ context.Context, entity item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, entity)
	if m.failUpdate[entity.id] {
		return errors.New("update rejected")
	}
	m.items[entity.id] = entity
	return nil
}

func (m *memoryCache) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.failDelete[id] {
		return errors.New("delete rejected")
	}
	delete(m.items, id)
	return nil
}

func (m *memoryCache) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saveAllCalls) + len(m.updates) + len(m.deletes)
}

// fakeSource serves a scripted sequence of results, repeating the last one.
type fakeSource struct {
	mu        sync.Mutex
	available bool
	results   []sourceResult
	calls     int
}

type sourceResult struct {
	items []item
	err   error
}

func newFakeSource(results ...sourceResult) *fakeSource {
	return &fakeSource{available: true, results: results}
}

func (s *fakeSource) IsAvailable(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *fakeSource) GetAll(context.Context) ([]item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := min(s.calls, len(s.results)-1)
	s.calls++
	r := s.results[idx]
	return slices.Clone(r.items), r.err
}

func (s *fakeSource) GetByID(ctx context.Context, id string) (item, error) {
	items, err := s.GetAll(ctx)
	if err != nil {
		return item{}, err
	}
	for _, i := range items {
		if i.id == id {
			return i, nil
		}
	}
	return item{}, errSourceNotFound
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingThumbnails struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (r *recordingThumbnails) SaveIfNotExists(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return r.err
}

func (r *recordingThumbnails) saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.urls)
}

// callbackRecorder collects every value an OnStale callback received.
type callbackRecorder[V any] struct {
	mu    sync.Mutex
	calls []Refresh[V]
}

func (r *callbackRecorder[V]) onStale(refresh Refresh[V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, refresh)
}

func (r *callbackRecorder[V]) received() []Refresh[V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func newTestCoordinator(t *testing.T, source *fakeSource, cache *memoryCache, thumbnails ThumbnailSaver) *Coordinator[item] {
	t.Helper()
	logger := zerolog.Nop()
	c := NewCoordinator(Config[item]{
		Kind:             "item",
		Source:           source,
		Cache:            cache,
		IsSourceNotFound: isSourceNotFound,
		IsCacheNotFound:  isCacheMiss,
		Thumbnail:        func(i item) string { return i.thumbnail },
		Images:           thumbnails,
		Logger:           &logger,
	})
	t.Cleanup(c.Close)
	return c
}

func allQuery(source *fakeSource, cache *memoryCache) Query[item] {
	return Query[item]{Name: "all", Source: source.GetAll, Cache: cache.GetAll}
}

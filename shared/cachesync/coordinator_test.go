package cachesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samchencode/stroke-mgmt-sub000/shared/notify"
)

func TestCollection_EmptyCacheIsFilledFromSource(t *testing.T) {
	x := item{id: "x", title: "X", updated: at(1)}
	source := newFakeSource(sourceResult{items: []item{x}})
	cache := newMemoryCache()
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[[]item]{}

	got, err := c.Collection(context.Background(), allQuery(source, cache), calls.onStale)
	require.NoError(t, err)

	assert.Equal(t, []item{x}, got)
	// The write-through happened before the read returned.
	assert.Equal(t, [][]item{{x}}, cache.saveAllCalls)

	c.Wait()
	assert.Empty(t, calls.received())
	assert.Equal(t, [][]item{{x}}, cache.saveAllCalls)
}

func TestCollection_RetriesSourceOnColdCache(t *testing.T) {
	y := item{id: "y", updated: at(1)}
	source := newFakeSource(
		sourceResult{err: errNetwork},
		sourceResult{err: errNetwork},
		sourceResult{items: []item{y}},
	)
	cache := newMemoryCache()
	c := newTestCoordinator(t, source, cache, nil)

	got, err := c.Collection(context.Background(), allQuery(source, cache), nil)
	require.NoError(t, err)

	assert.Equal(t, []item{y}, got)
	assert.Equal(t, 3, source.callCount())
}

func TestCollection_ColdCacheSourceFailurePropagates(t *testing.T) {
	source := newFakeSource(sourceResult{err: errNetwork})
	cache := newMemoryCache()
	c := newTestCoordinator(t, source, cache, nil)

	_, err := c.Collection(context.Background(), allQuery(source, cache), nil)

	require.ErrorIs(t, err, errNetwork)
	assert.Equal(t, DefaultMaxAttempts, source.callCount())
	assert.Zero(t, cache.writes())
}

func TestCollection_StaleCacheIsServedThenRefreshed(t *testing.T) {
	cached := item{id: "0", title: "Cache", updated: at(0)}
	fresh := item{id: "0", title: "Source", updated: at(1)}
	source := newFakeSource(sourceResult{items: []item{fresh}})
	cache := newMemoryCache(cached)
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[[]item]{}

	got, err := c.Collection(context.Background(), allQuery(source, cache), calls.onStale)
	require.NoError(t, err)
	assert.Equal(t, "Cache", got[0].title)

	c.Wait()

	received := calls.received()
	require.Len(t, received, 1)
	refreshed, ok := received[0].Get()
	require.True(t, ok)
	assert.Equal(t, "Source", refreshed[0].title)
	assert.Equal(t, []item{fresh}, cache.updates)
}

func TestCollection_FreshCacheDoesNotNotify(t *testing.T) {
	a := item{id: "a", updated: at(1)}
	source := newFakeSource(sourceResult{items: []item{a}})
	cache := newMemoryCache(a)
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[[]item]{}

	_, err := c.Collection(context.Background(), allQuery(source, cache), calls.onStale)
	require.NoError(t, err)
	c.Wait()

	assert.Empty(t, calls.received())
	assert.Zero(t, cache.writes())
}

func TestCollection_BackgroundFailureIsSilent(t *testing.T) {
	a := item{id: "a", updated: at(1)}
	source := newFakeSource(sourceResult{err: errNetwork})
	cache := newMemoryCache(a)
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[[]item]{}

	got, err := c.Collection(context.Background(), allQuery(source, cache), calls.onStale)
	require.NoError(t, err)
	assert.Equal(t, []item{a}, got)

	c.Wait()
	assert.Empty(t, calls.received())
	assert.Zero(t, cache.writes())
	assert.Equal(t, DefaultMaxAttempts, source.callCount())
}

func TestCollection_CacheErrorFallsBackToSource(t *testing.T) {
	a := item{id: "a", updated: at(1)}
	source := newFakeSource(sourceResult{items: []item{a}})
	cache := newMemoryCache()
	cache.readErr = errors.New("database is locked")
	c := newTestCoordinator(t, source, cache, nil)

	got, err := c.Collection(context.Background(), allQuery(source, cache), nil)
	require.NoError(t, err)

	assert.Equal(t, []item{a}, got)
	c.Wait()
	assert.Zero(t, cache.writes())
}

func TestCollection_SourceUnavailable(t *testing.T) {
	t.Run("empty cache fails", func(t *testing.T) {
		source := newFakeSource(sourceResult{items: []item{{id: "a"}}})
		source.available = false
		cache := newMemoryCache()
		c := newTestCoordinator(t, source, cache, nil)

		_, err := c.Collection(context.Background(), allQuery(source, cache), nil)

		require.ErrorIs(t, err, ErrSourceUnavailableEmptyCache)
		assert.Zero(t, source.callCount())
	})

	t.Run("cache is served without callback", func(t *testing.T) {
		a := item{id: "a", updated: at(0)}
		source := newFakeSource(sourceResult{items: []item{{id: "a", updated: at(5)}}})
		source.available = false
		cache := newMemoryCache(a)
		c := newTestCoordinator(t, source, cache, nil)
		calls := &callbackRecorder[[]item]{}

		got, err := c.Collection(context.Background(), allQuery(source, cache), calls.onStale)
		require.NoError(t, err)
		c.Wait()

		assert.Equal(t, []item{a}, got)
		assert.Empty(t, calls.received())
		assert.Zero(t, source.callCount())
	})

	t.Run("unusable cache fails", func(t *testing.T) {
		locked := errors.New("database is locked")
		source := newFakeSource(sourceResult{})
		source.available = false
		cache := newMemoryCache()
		cache.readErr = locked
		c := newTestCoordinator(t, source, cache, nil)

		_, err := c.Collection(context.Background(), allQuery(source, cache), nil)

		require.ErrorIs(t, err, ErrSourceUnavailableEmptyCache)
		assert.ErrorIs(t, err, locked)
		assert.Zero(t, source.callCount())
	})
}

func TestSingle_SourceNotFoundDeletesCachedEntity(t *testing.T) {
	e := item{id: "e", title: "Cached", updated: at(1)}
	source := newFakeSource(sourceResult{items: nil})
	cache := newMemoryCache(e)
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[item]{}

	got, err := c.Single(context.Background(), "e", source.GetByID, cache.GetByID, calls.onStale)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	c.Wait()

	assert.Equal(t, []string{"e"}, cache.deletes)
	received := calls.received()
	require.Len(t, received, 1)
	assert.True(t, received[0].IsAbsent())
	// NotFound is authoritative and must not be retried.
	assert.Equal(t, 1, source.callCount())
}

func TestSingle_ColdCacheNotFoundPropagates(t *testing.T) {
	source := newFakeSource(sourceResult{})
	cache := newMemoryCache()
	c := newTestCoordinator(t, source, cache, nil)

	_, err := c.Single(context.Background(), "missing", source.GetByID, cache.GetByID, nil)

	require.ErrorIs(t, err, errSourceNotFound)
	assert.Equal(t, 1, source.callCount())
}

func TestSingle_StaleEntityIsRefreshed(t *testing.T) {
	source := newFakeSource(sourceResult{items: []item{{id: "0", title: "Source", updated: at(1)}}})
	cache := newMemoryCache(item{id: "0", title: "Cache", updated: at(0)})
	c := newTestCoordinator(t, source, cache, nil)
	calls := &callbackRecorder[item]{}

	got, err := c.Single(context.Background(), "0", source.GetByID, cache.GetByID, calls.onStale)
	require.NoError(t, err)
	assert.Equal(t, "Cache", got.title)

	c.Wait()

	received := calls.received()
	require.Len(t, received, 1)
	refreshed, ok := received[0].Get()
	require.True(t, ok)
	assert.Equal(t, "Source", refreshed.title)
	require.Len(t, cache.updates, 1)
	assert.Equal(t, "Source", cache.updates[0].title)
}

func TestSingle_SourceUnavailableCacheMiss(t *testing.T) {
	source := newFakeSource(sourceResult{})
	source.available = false
	cache := newMemoryCache()
	c := newTestCoordinator(t, source, cache, nil)

	_, err := c.Single(context.Background(), "a", source.GetByID, cache.GetByID, nil)

	require.ErrorIs(t, err, ErrSourceUnavailableEmptyCache)
}

func TestCollection_PublishesRefreshes(t *testing.T) {
	bus := notify.NewBus(zerolog.Nop())
	defer bus.Close()
	sub, err := bus.Subscribe("test", 4)
	require.NoError(t, err)

	source := newFakeSource(sourceResult{items: []item{{id: "a", updated: at(2)}}})
	cache := newMemoryCache(item{id: "a", updated: at(1)})
	logger := zerolog.Nop()
	c := NewCoordinator(Config[item]{
		Kind:             "item",
		Source:           source,
		Cache:            cache,
		IsSourceNotFound: isSourceNotFound,
		IsCacheNotFound:  isCacheMiss,
		Publisher:        bus,
		Logger:           &logger,
	})
	t.Cleanup(c.Close)

	_, err = c.Collection(context.Background(), allQuery(source, cache), nil)
	require.NoError(t, err)
	c.Wait()

	select {
	case event := <-sub.C():
		assert.Equal(t, notify.Event{Entity: "item", Query: "all", IDs: []string{"a"}}, event)
	default:
		t.Fatal("expected a refresh notification")
	}
}

type prefixEnricher struct{}

func (prefixEnricher) Enrich(_ context.Context, entities []item, mode EnrichMode) []item {
	out := make([]item, len(entities))
	for i, e := range entities {
		e.title = mode.String() + ":" + e.title
		out[i] = e
	}
	return out
}

func TestCollection_EnrichesCachedReads(t *testing.T) {
	a := item{id: "a", title: "A", updated: at(1)}
	logger := zerolog.Nop()
	newCoordinator := func(source *fakeSource, cache *memoryCache) *Coordinator[item] {
		c := NewCoordinator(Config[item]{
			Kind:             "item",
			Source:           source,
			Cache:            cache,
			IsSourceNotFound: isSourceNotFound,
			IsCacheNotFound:  isCacheMiss,
			Enricher:         prefixEnricher{},
			Logger:           &logger,
		})
		t.Cleanup(c.Close)
		return c
	}

	t.Run("online", func(t *testing.T) {
		source := newFakeSource(sourceResult{items: []item{a}})
		cache := newMemoryCache(a)
		c := newCoordinator(source, cache)

		got, err := c.Collection(context.Background(), allQuery(source, cache), nil)
		require.NoError(t, err)
		c.Wait()

		assert.Equal(t, "online:A", got[0].title)
		stored, _ := cache.GetByID(context.Background(), "a")
		assert.Equal(t, "A", stored.title)
	})

	t.Run("offline", func(t *testing.T) {
		source := newFakeSource(sourceResult{})
		source.available = false
		cache := newMemoryCache(a)
		c := newCoordinator(source, cache)

		got, err := c.Collection(context.Background(), allQuery(source, cache), nil)
		require.NoError(t, err)

		assert.Equal(t, "offline:A", got[0].title)
	})

	t.Run("cold cache is not enriched", func(t *testing.T) {
		source := newFakeSource(sourceResult{items: []item{a}})
		cache := newMemoryCache()
		c := newCoordinator(source, cache)

		got, err := c.Collection(context.Background(), allQuery(source, cache), nil)
		require.NoError(t, err)

		assert.Equal(t, "A", got[0].title)
	})
}

// holdingEnricher keeps the foreground read busy until the source has answered, then
// records what had become observable by the time the read was about to return.
type holdingEnricher struct {
	sourced <-chan struct{}
	observe func()
}

func (h holdingEnricher) Enrich(_ context.Context, entities []item, _ EnrichMode) []item {
	<-h.sourced
	time.Sleep(50 * time.Millisecond)
	h.observe()
	return entities
}

func TestCollection_RefreshWaitsForForegroundReturn(t *testing.T) {
	cache := newMemoryCache(item{id: "a", title: "Cache", updated: at(1)})
	source := newFakeSource(sourceResult{items: []item{{id: "a", title: "Source", updated: at(2)}}})
	calls := &callbackRecorder[[]item]{}

	sourced := make(chan struct{})
	var once sync.Once
	var writesBeforeReturn, callbacksBeforeReturn int
	logger := zerolog.Nop()
	c := NewCoordinator(Config[item]{
		Kind:             "item",
		Source:           source,
		Cache:            cache,
		IsSourceNotFound: isSourceNotFound,
		IsCacheNotFound:  isCacheMiss,
		Enricher: holdingEnricher{
			sourced: sourced,
			observe: func() {
				writesBeforeReturn = cache.writes()
				callbacksBeforeReturn = len(calls.received())
			},
		},
		Logger: &logger,
	})
	t.Cleanup(c.Close)
	q := Query[item]{
		Name: "all",
		Source: func(ctx context.Context) ([]item, error) {
			defer once.Do(func() { close(sourced) })
			return source.GetAll(ctx)
		},
		Cache: cache.GetAll,
	}

	got, err := c.Collection(context.Background(), q, calls.onStale)
	require.NoError(t, err)
	assert.Equal(t, "Cache", got[0].title)
	assert.Zero(t, writesBeforeReturn)
	assert.Zero(t, callbacksBeforeReturn)

	c.Wait()

	assert.Len(t, calls.received(), 1)
	assert.Len(t, cache.updates, 1)
	assert.Equal(t, 1, cache.writes())
}

func TestCoordinator_CloseStopsPendingRefresh(t *testing.T) {
	block := make(chan struct{})
	cache := newMemoryCache(item{id: "a", updated: at(1)})
	source := newFakeSource(sourceResult{items: []item{{id: "a", updated: at(2)}}})
	logger := zerolog.Nop()
	c := NewCoordinator(Config[item]{
		Kind:   "item",
		Source: source,
		Cache:  cache,
		Logger: &logger,
	})
	q := Query[item]{
		Name: "all",
		Source: func(ctx context.Context) ([]item, error) {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return source.GetAll(ctx)
		},
		Cache: cache.GetAll,
	}
	calls := &callbackRecorder[[]item]{}

	_, err := c.Collection(context.Background(), q, calls.onStale)
	require.NoError(t, err)

	c.Close()
	close(block)

	assert.Empty(t, calls.received())
	assert.Zero(t, cache.writes())
}

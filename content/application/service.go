package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ImageCacheClearer wipes locally cached images.
type ImageCacheClearer interface {
	ClearCache(ctx context.Context) error
}

// Service groups the entity caches behind the operations that touch all of them.
type Service struct {
	Articles   *ArticleCache
	Algorithms *AlgorithmCache
	Tags       *TagCache
	Intro      *IntroSequenceCache

	images ImageCacheClearer

	// Service lifecycle context - cancelled when Close() is called
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	warming atomic.Bool
}

// NewService creates a service over the four entity caches. images may be nil.
func NewService(articles *ArticleCache, algorithms *AlgorithmCache, tags *TagCache, intro *IntroSequenceCache, images ImageCacheClearer) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		Articles:   articles,
		Algorithms: algorithms,
		Tags:       tags,
		Intro:      intro,
		images:     images,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close stops background warm-ups and every cache's background refreshes.
func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()

	s.Articles.Close()
	s.Algorithms.Close()
	s.Tags.Close()
	s.Intro.Close()

	return nil
}

// ClearAll wipes every entity cache and the image cache. All clears run even if one fails.
func (s *Service) ClearAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.Articles.ClearCache(ctx) })
	g.Go(func() error { return s.Algorithms.ClearCache(ctx) })
	g.Go(func() error { return s.Tags.ClearCache(ctx) })
	g.Go(func() error { return s.Intro.ClearCache(ctx) })
	if s.images != nil {
		g.Go(func() error {
			if err := s.images.ClearCache(ctx); err != nil {
				return fmt.Errorf("clear image cache: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Warm reads every collection and waits for the resulting reconciliations, so the cache
// matches the source when it returns.
func (s *Service) Warm(ctx context.Context) error {
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		if _, err := s.Articles.GetAll(ctx, nil); err != nil {
			return fmt.Errorf("warm articles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.Algorithms.GetAll(ctx, nil); err != nil {
			return fmt.Errorf("warm algorithms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.Tags.GetAll(ctx, nil); err != nil {
			return fmt.Errorf("warm tags: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.Intro.GetAll(ctx, nil); err != nil {
			return fmt.Errorf("warm intro sequences: %w", err)
		}
		return nil
	})
	err := g.Wait()

	s.Articles.Wait()
	s.Algorithms.Wait()
	s.Tags.Wait()
	s.Intro.Wait()

	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Cache warmed")
	return nil
}

// WarmInBackground starts a Warm on the service lifecycle context and returns at once.
// A request arriving while a warm-up is running is dropped.
func (s *Service) WarmInBackground() bool {
	if !s.warming.CompareAndSwap(false, true) {
		log.Debug().Msg("Warm-up already running, skipping")
		return false
	}

	s.wg.Go(func() {
		defer s.warming.Store(false)
		if err := s.Warm(s.ctx); err != nil {
			log.Error().Err(err).Msg("Background warm-up failed")
		}
	})
	return true
}

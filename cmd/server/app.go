package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/samchencode/stroke-mgmt-sub000/content/application"
	"github.com/samchencode/stroke-mgmt-sub000/content/persistence"
	"github.com/samchencode/stroke-mgmt-sub000/content/source"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
	"github.com/samchencode/stroke-mgmt-sub000/shared/config"
	"github.com/samchencode/stroke-mgmt-sub000/shared/db/sqlite"
	gh "github.com/samchencode/stroke-mgmt-sub000/shared/github"
	"github.com/samchencode/stroke-mgmt-sub000/shared/imagecache"
	"github.com/samchencode/stroke-mgmt-sub000/shared/notify"
)

const (
	sourceTimeout = 30 * time.Second
	imageTimeout  = 60 * time.Second
)

// app holds the wired components of one command run.
type app struct {
	cfg     *config.Config
	service *application.Service
	bus     *notify.Bus
	closers []func() error
}

func newApp(cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.SQLite.Path))
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.onClose(database.Close)
	sqlDB := database.DB()

	metadata, err := a.newMetadataRepository(sqlDB)
	if err != nil {
		return nil, err
	}

	store := imagecache.NewFileStore(afero.NewOsFs(), cfg.Images.Dir, &http.Client{Timeout: imageTimeout})
	images := imagecache.New(store, metadata, log.Logger.With().Str("component", "imagecache").Logger())
	a.onClose(func() error {
		images.Close()
		return nil
	})

	representation, err := imagecache.ParseRepresentation(cfg.Images.Representation)
	if err != nil {
		return nil, err
	}

	a.bus = notify.NewBus(log.Logger)
	a.onClose(func() error {
		a.bus.Close()
		return nil
	})

	ghClient, err := gh.NewClient(&http.Client{Timeout: sourceTimeout}, cfg.Source.Token, cfg.Source.BaseURL)
	if err != nil {
		return nil, err
	}
	content := gh.NewContentRepository(ghClient, cfg.Source.Owner, cfg.Source.Repo, cfg.Source.Ref)
	md := source.NewMarkdownRenderer(cfg.Source.RawBaseURL)

	logger := log.Logger.With().Str("component", "cachesync").Logger()
	opts := application.Options{
		Images:     imagecache.NewResolver(images, representation),
		Thumbnails: images,
		Publisher:  a.bus,
		Retry: cachesync.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Pause:       cfg.Retry.Backoff,
		},
		Logger: &logger,
	}

	a.service = application.NewService(
		application.NewArticleCache(source.NewArticleRepository(content, md), persistence.NewArticleRepository(sqlDB), opts),
		application.NewAlgorithmCache(source.NewAlgorithmRepository(content, md), persistence.NewAlgorithmRepository(sqlDB), opts),
		application.NewTagCache(source.NewTagRepository(content), persistence.NewTagRepository(sqlDB), opts),
		application.NewIntroSequenceCache(source.NewIntroSequenceRepository(content, md), persistence.NewIntroSequenceRepository(sqlDB), opts),
		images,
	)
	a.onClose(a.service.Close)

	return a, nil
}

func (a *app) newMetadataRepository(sqlDB *sql.DB) (imagecache.MetadataRepository, error) {
	if a.cfg.Images.MetadataBackend != "redis" {
		return persistence.NewImageRepository(sqlDB), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: a.cfg.Redis.Addr,
		DB:   a.cfg.Redis.DB,
	})
	a.onClose(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	return persistence.NewRedisImageRepository(client), nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases components in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

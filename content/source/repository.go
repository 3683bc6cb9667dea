// Package source reads content records from the GitHub content repository.
//
// Every entity kind lives in its own directory, one JSON file per entity named after its
// ID: articles/<id>.json, algorithms/<id>.json, tags/<id>.json and intro/<id>.json.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
	"github.com/samchencode/stroke-mgmt-sub000/shared/cachesync"
	"github.com/samchencode/stroke-mgmt-sub000/shared/github"
)

const (
	ArticlesDir   = "articles"
	AlgorithmsDir = "algorithms"
	TagsDir       = "tags"
	IntroDir      = "intro"

	fetchConcurrency = 8
)

// ContentClient is the part of github.ContentRepository the sources need.
type ContentClient interface {
	IsAvailable(ctx context.Context) bool
	ListDirectory(ctx context.Context, dir string) ([]string, error)
	GetFileContents(ctx context.Context, filePath string) ([]byte, error)
}

var _ ContentClient = (*github.ContentRepository)(nil)

// directory reads the records of one entity kind.
type directory[T cachesync.Entity] struct {
	client ContentClient
	dir    string
	kind   string
	decode func([]byte) (T, error)
}

func (d directory[T]) isAvailable(ctx context.Context) bool {
	return d.client.IsAvailable(ctx)
}

// getAll fetches every record of the directory. A missing directory holds no records.
func (d directory[T]) getAll(ctx context.Context) ([]T, error) {
	names, err := d.client.ListDirectory(ctx, d.dir)
	if errors.Is(err, github.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.kind, err)
	}

	var ids []string
	for _, name := range names {
		if id, ok := strings.CutSuffix(name, ".json"); ok && id != "" {
			ids = append(ids, id)
		}
	}

	out := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			entity, err := d.fetch(gctx, id)
			if err != nil {
				return err
			}
			out[i] = entity
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// getByID returns a *domain.NotFoundError when the source has no record for id.
func (d directory[T]) getByID(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return zero, &domain.NotFoundError{Kind: d.kind, ID: id}
	}
	return d.fetch(ctx, id)
}

func (d directory[T]) fetch(ctx context.Context, id string) (T, error) {
	var zero T
	data, err := d.client.GetFileContents(ctx, path.Join(d.dir, id+".json"))
	if errors.Is(err, github.ErrNotFound) {
		return zero, &domain.NotFoundError{Kind: d.kind, ID: id}
	}
	if err != nil {
		return zero, fmt.Errorf("fetch %s %s: %w", d.kind, id, err)
	}

	entity, err := d.decode(data)
	if err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", d.kind, id, err)
	}
	if entity.EntityID() != id {
		return zero, fmt.Errorf("decode %s %s: record has id %q", d.kind, id, entity.EntityID())
	}
	return entity, nil
}

func filter[T any](entities []T, keep func(T) bool) []T {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

var _ domain.ArticleSourceRepository = (*ArticleRepository)(nil)

// ArticleRepository reads articles from the content repository.
type ArticleRepository struct {
	dir directory[domain.Article]
}

func NewArticleRepository(client ContentClient, md MarkdownRenderer) *ArticleRepository {
	return &ArticleRepository{dir: directory[domain.Article]{
		client: client,
		dir:    ArticlesDir,
		kind:   domain.KindArticle,
		decode: decodeArticle(newTextRenderer(md)),
	}}
}

func (r *ArticleRepository) IsAvailable(ctx context.Context) bool {
	return r.dir.isAvailable(ctx)
}

func (r *ArticleRepository) GetAll(ctx context.Context) ([]domain.Article, error) {
	return r.dir.getAll(ctx)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (domain.Article, error) {
	return r.dir.getByID(ctx, id)
}

func (r *ArticleRepository) GetAllShownOnHome(ctx context.Context) ([]domain.Article, error) {
	all, err := r.dir.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(a domain.Article) bool { return a.ShowOnHomeScreen }), nil
}

func (r *ArticleRepository) GetByTag(ctx context.Context, tagID string) ([]domain.Article, error) {
	all, err := r.dir.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(a domain.Article) bool { return a.HasTag(tagID) }), nil
}

var _ domain.AlgorithmSourceRepository = (*AlgorithmRepository)(nil)

// AlgorithmRepository reads algorithms from the content repository.
type AlgorithmRepository struct {
	dir directory[domain.Algorithm]
}

func NewAlgorithmRepository(client ContentClient, md MarkdownRenderer) *AlgorithmRepository {
	return &AlgorithmRepository{dir: directory[domain.Algorithm]{
		client: client,
		dir:    AlgorithmsDir,
		kind:   domain.KindAlgorithm,
		decode: decodeAlgorithm(newTextRenderer(md)),
	}}
}

func (r *AlgorithmRepository) IsAvailable(ctx context.Context) bool {
	return r.dir.isAvailable(ctx)
}

func (r *AlgorithmRepository) GetAll(ctx context.Context) ([]domain.Algorithm, error) {
	return r.dir.getAll(ctx)
}

func (r *AlgorithmRepository) GetByID(ctx context.Context, id string) (domain.Algorithm, error) {
	return r.dir.getByID(ctx, id)
}

func (r *AlgorithmRepository) GetAllShownOnHome(ctx context.Context) ([]domain.Algorithm, error) {
	all, err := r.dir.getAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(a domain.Algorithm) bool { return a.ShowOnHomeScreen }), nil
}

var _ domain.TagSourceRepository = (*TagRepository)(nil)

// TagRepository reads tags from the content repository.
type TagRepository struct {
	dir directory[domain.Tag]
}

func NewTagRepository(client ContentClient) *TagRepository {
	return &TagRepository{dir: directory[domain.Tag]{
		client: client,
		dir:    TagsDir,
		kind:   domain.KindTag,
		decode: decodeTag,
	}}
}

func (r *TagRepository) IsAvailable(ctx context.Context) bool {
	return r.dir.isAvailable(ctx)
}

func (r *TagRepository) GetAll(ctx context.Context) ([]domain.Tag, error) {
	return r.dir.getAll(ctx)
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (domain.Tag, error) {
	return r.dir.getByID(ctx, id)
}

var _ domain.IntroSequenceSourceRepository = (*IntroSequenceRepository)(nil)

// IntroSequenceRepository reads intro sequences from the content repository.
type IntroSequenceRepository struct {
	dir directory[domain.IntroSequence]
}

func NewIntroSequenceRepository(client ContentClient, md MarkdownRenderer) *IntroSequenceRepository {
	return &IntroSequenceRepository{dir: directory[domain.IntroSequence]{
		client: client,
		dir:    IntroDir,
		kind:   domain.KindIntroSequence,
		decode: decodeIntroSequence(newTextRenderer(md)),
	}}
}

func (r *IntroSequenceRepository) IsAvailable(ctx context.Context) bool {
	return r.dir.isAvailable(ctx)
}

func (r *IntroSequenceRepository) GetAll(ctx context.Context) ([]domain.IntroSequence, error) {
	return r.dir.getAll(ctx)
}

func (r *IntroSequenceRepository) GetByID(ctx context.Context, id string) (domain.IntroSequence, error) {
	return r.dir.getByID(ctx, id)
}

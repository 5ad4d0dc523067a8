package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/cache"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/utils"
	"golang.org/x/sync/errgroup"
)

// ErrNotConfigured is returned when no provider API key is set.
var ErrNotConfigured = apperr.StorageUnavailable("news provider not configured", nil)

// Aggregator serves live provider news through a response cache and keeps
// every article it has produced addressable by slug for the life of the process.
type Aggregator struct {
	fetcher Fetcher
	cache   cache.Cache

	mu     sync.RWMutex
	bySlug map[string]models.Article

	now func() time.Time
}

func NewAggregator(fetcher Fetcher, c cache.Cache) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		cache:   c,
		bySlug:  make(map[string]models.Article),
		now:     time.Now,
	}
}

func (a *Aggregator) Configured() bool {
	return a.fetcher.Configured()
}

func (a *Aggregator) index(articles []models.Article) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, art := range articles {
		a.bySlug[art.Slug] = art
	}
}

// ArticleBySlug looks up an article produced by an earlier fetch.
func (a *Aggregator) ArticleBySlug(s string) (models.Article, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	art, ok := a.bySlug[s]
	return art, ok
}

func (a *Aggregator) cached(ctx context.Context, key string) ([]models.Article, bool) {
	data, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return articles, true
}

func (a *Aggregator) through(ctx context.Context, key, category string, fetch func() ([]RawArticle, error)) ([]models.Article, error) {
	if !a.fetcher.Configured() {
		return nil, ErrNotConfigured
	}
	if articles, ok := a.cached(ctx, key); ok {
		a.index(articles)
		return articles, nil
	}

	raw, err := fetch()
	if err != nil {
		return nil, err
	}
	articles := Transform(raw, category, a.now())
	a.index(articles)

	if data, err := json.Marshal(articles); err == nil {
		if err := a.cache.Set(ctx, key, data); err != nil {
			logger.Get().Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	logger.Get().Debug().Str("category", category).Int("count", len(articles)).Msg("Fetched live articles")
	return articles, nil
}

func (a *Aggregator) TopHeadlines(ctx context.Context, category string, limit int) ([]models.Article, error) {
	if category == "" {
		category = "general"
	}
	key := utils.CacheKey("headlines", category, strconv.Itoa(limit))
	return a.through(ctx, key, category, func() ([]RawArticle, error) {
		return a.fetcher.TopHeadlines(ctx, category, limit)
	})
}

func (a *Aggregator) Search(ctx context.Context, query string, limit int) ([]models.Article, error) {
	key := utils.CacheKey("search", query, strconv.Itoa(limit))
	return a.through(ctx, key, "general", func() ([]RawArticle, error) {
		return a.fetcher.Search(ctx, query, limit)
	})
}

func (a *Aggregator) Breaking(ctx context.Context, limit int) ([]models.Article, error) {
	return a.TopHeadlines(ctx, "breaking", limit)
}

type portion struct {
	category string
	limit    int
}

// mix fetches several categories concurrently and concatenates them in order.
func (a *Aggregator) mix(ctx context.Context, parts []portion) ([]models.Article, error) {
	results := make([][]models.Article, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		g.Go(func() error {
			articles, err := a.TopHeadlines(gctx, p.category, p.limit)
			if err != nil {
				return err
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.Article
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Featured mixes the top stories of three categories.
func (a *Aggregator) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	out, err := a.mix(ctx, []portion{{"india", 2}, {"sports", 2}, {"technology", 2}})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *Aggregator) Trending(ctx context.Context) ([]models.Article, error) {
	return a.mix(ctx, []portion{{"sports", 4}, {"entertainment", 3}, {"business", 3}})
}

// ClearCache drops cached provider responses. The slug index is kept.
func (a *Aggregator) ClearCache(ctx context.Context) error {
	return a.cache.Clear(ctx)
}

package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	key string

	mu    sync.Mutex
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{key: "k", calls: make(map[string]int)}
}

func (f *fakeFetcher) Configured() bool { return f.key != "" }

func (f *fakeFetcher) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFetcher) TopHeadlines(_ context.Context, category string, limit int) ([]RawArticle, error) {
	f.record(category)
	out := make([]RawArticle, limit)
	for i := range out {
		out[i] = RawArticle{Title: fmt.Sprintf("%s story %d", category, i), URL: "https://example.com"}
	}
	return out, nil
}

func (f *fakeFetcher) Search(_ context.Context, query string, limit int) ([]RawArticle, error) {
	f.record("search:" + query)
	return []RawArticle{{Title: "Result for " + query}}, nil
}

func newAggregator(f *fakeFetcher) *Aggregator {
	a := NewAggregator(f, cache.NewMemory(time.Minute))
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a
}

func TestAggregatorCachesResponses(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	a := newAggregator(f)

	first, err := a.TopHeadlines(ctx, "sports", 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := a.TopHeadlines(ctx, "sports", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.count("sports"))

	_, err = a.TopHeadlines(ctx, "sports", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("sports"), "limit is part of the cache key")

	require.NoError(t, a.ClearCache(ctx))
	_, err = a.TopHeadlines(ctx, "sports", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("sports"))
}

func TestAggregatorDefaultsCategory(t *testing.T) {
	f := newFakeFetcher()
	a := newAggregator(f)

	articles, err := a.TopHeadlines(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "general", articles[0].Category)
	assert.Equal(t, 1, f.count("general"))
}

func TestAggregatorNotConfigured(t *testing.T) {
	f := newFakeFetcher()
	f.key = ""
	a := newAggregator(f)

	assert.False(t, a.Configured())
	_, err := a.TopHeadlines(context.Background(), "sports", 1)
	assert.True(t, apperr.Is(err, apperr.KindStorageUnavailable))
	assert.Zero(t, f.count("sports"))
}

func TestAggregatorFeaturedMixesInOrder(t *testing.T) {
	a := newAggregator(newFakeFetcher())

	articles, err := a.Featured(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, articles, 5)
	assert.Equal(t, "india story 0", articles[0].Title)
	assert.Equal(t, "sports story 0", articles[2].Title)
	assert.Equal(t, "technology story 0", articles[4].Title)

	trending, err := a.Trending(context.Background())
	require.NoError(t, err)
	assert.Len(t, trending, 10)
	assert.Equal(t, "business story 2", trending[9].Title)
}

func TestAggregatorIndexesSlugs(t *testing.T) {
	ctx := context.Background()
	a := newAggregator(newFakeFetcher())

	results, err := a.Search(ctx, "storm", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got, ok := a.ArticleBySlug(results[0].Slug)
	require.True(t, ok)
	assert.Equal(t, "Result for storm", got.Title)

	require.NoError(t, a.ClearCache(ctx))
	_, ok = a.ArticleBySlug(results[0].Slug)
	assert.True(t, ok, "clearing the cache keeps the slug index")

	_, ok = a.ArticleBySlug("missing")
	assert.False(t, ok)
}

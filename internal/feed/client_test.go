package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	requests []*url.URL
}

func (r *recorder) add(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, u)
}

func serve(t *testing.T, handler func(r *http.Request) providerResponse) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(r))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestGNewsTopHeadlines(t *testing.T) {
	srv, rec := serve(t, func(*http.Request) providerResponse {
		return providerResponse{Articles: []RawArticle{{Title: "One"}}}
	})
	c := NewClient(ProviderGNews, "key").WithBaseURL(srv.URL)

	articles, err := c.TopHeadlines(context.Background(), "india", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	require.Len(t, rec.requests, 1)
	q := rec.requests[0].Query()
	assert.Equal(t, "/top-headlines", rec.requests[0].Path)
	assert.Equal(t, "nation", q.Get("category"))
	assert.Equal(t, "hi", q.Get("lang"))
	assert.Equal(t, "in", q.Get("country"))
	assert.Equal(t, "5", q.Get("max"))
	assert.Equal(t, "key", q.Get("apikey"))
}

func TestGNewsSearch(t *testing.T) {
	srv, rec := serve(t, func(*http.Request) providerResponse {
		return providerResponse{Articles: []RawArticle{}}
	})
	c := NewClient("", "key").WithBaseURL(srv.URL)

	articles, err := c.Search(context.Background(), "storm", 1)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Equal(t, "/search", rec.requests[0].Path)
	assert.Equal(t, "storm", rec.requests[0].Query().Get("q"))
}

func TestNewsAPIFallsBackWhenCategoryIsEmpty(t *testing.T) {
	srv, rec := serve(t, func(r *http.Request) providerResponse {
		if r.URL.Path == "/everything" {
			return providerResponse{Articles: []RawArticle{
				{Title: "Cricket world cup"},
				{Title: "Stock market rally"},
			}}
		}
		return providerResponse{Articles: []RawArticle{}}
	})
	c := NewClient(ProviderNewsAPI, "key").WithBaseURL(srv.URL)

	articles, err := c.TopHeadlines(context.Background(), "sports", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1, "fallback results are filtered by category keywords")
	assert.Equal(t, "Cricket world cup", articles[0].Title)

	require.Len(t, rec.requests, 3)
	assert.Equal(t, "sports", rec.requests[0].Query().Get("category"))
	assert.Equal(t, "india", rec.requests[1].Query().Get("q"))
	assert.Empty(t, rec.requests[1].Query().Get("category"))
	assert.Equal(t, "/everything", rec.requests[2].Path)
	assert.Equal(t, "india OR भारत", rec.requests[2].Query().Get("q"))
}

func TestNewsAPIIndiaUsesCountryOnly(t *testing.T) {
	srv, rec := serve(t, func(*http.Request) providerResponse {
		return providerResponse{Articles: []RawArticle{{Title: "Delhi news"}}}
	})
	c := NewClient(ProviderNewsAPI, "key").WithBaseURL(srv.URL)

	_, err := c.TopHeadlines(context.Background(), "india", 3)
	require.NoError(t, err)
	q := rec.requests[0].Query()
	assert.Equal(t, "in", q.Get("country"))
	assert.Empty(t, q.Get("category"))
	assert.Equal(t, "3", q.Get("pageSize"))
	assert.Equal(t, "key", q.Get("apiKey"))
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(ProviderGNews, "key").WithBaseURL(srv.URL)

	_, err := c.TopHeadlines(context.Background(), "sports", 1)
	assert.ErrorContains(t, err, "unexpected status code 403")

	_, err = c.Search(context.Background(), "x", 1)
	assert.ErrorContains(t, err, "no articles returned")

	assert.False(t, NewClient(ProviderGNews, "").Configured())
}

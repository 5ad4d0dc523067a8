package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/logger"
	"github.com/go-resty/resty/v2"
)

const (
	ProviderGNews   = "gnews"
	ProviderNewsAPI = "newsapi"

	gnewsBaseURL   = "https://gnews.io/api/v4"
	newsAPIBaseURL = "https://newsapi.org/v2"
)

// RawArticle is an article as returned by either provider.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	URLToImage  string `json:"urlToImage"`
	Author      string `json:"author"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type providerResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []RawArticle `json:"articles"`
}

// Fetcher is the provider surface the aggregator depends on.
type Fetcher interface {
	Configured() bool
	TopHeadlines(ctx context.Context, category string, limit int) ([]RawArticle, error)
	Search(ctx context.Context, query string, limit int) ([]RawArticle, error)
}

// Client talks to GNews or NewsAPI.org.
type Client struct {
	http     *resty.Client
	provider string
	apiKey   string
}

func NewClient(provider, apiKey string) *Client {
	provider = strings.ToLower(provider)
	base := gnewsBaseURL
	if provider == ProviderNewsAPI {
		base = newsAPIBaseURL
	} else {
		provider = ProviderGNews
	}
	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(1 * time.Second).
			SetRetryMaxWaitTime(5 * time.Second),
		provider: provider,
		apiKey:   apiKey,
	}
}

// WithBaseURL points the client at another host.
func (c *Client) WithBaseURL(u string) *Client {
	c.http.SetBaseURL(strings.TrimRight(u, "/"))
	return c
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]RawArticle, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s from %s: %w", path, c.provider, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s%s", resp.StatusCode(), c.provider, path)
	}

	var body providerResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", c.provider, err)
	}
	if body.Articles == nil {
		return nil, fmt.Errorf("no articles returned from %s", c.provider)
	}
	return body.Articles, nil
}

func (c *Client) TopHeadlines(ctx context.Context, category string, limit int) ([]RawArticle, error) {
	if c.provider == ProviderNewsAPI {
		return c.newsAPIHeadlines(ctx, category, limit)
	}
	return c.get(ctx, "/top-headlines", map[string]string{
		"category": MapCategory(category),
		"lang":     "hi",
		"country":  "in",
		"max":      strconv.Itoa(limit),
		"apikey":   c.apiKey,
	})
}

var newsAPICategories = map[string]bool{
	"business": true, "entertainment": true, "general": true, "health": true,
	"science": true, "sports": true, "technology": true,
}

// newsAPIHeadlines relaxes the query when a category comes back empty and
// then biases the results toward the category by keyword.
func (c *Client) newsAPIHeadlines(ctx context.Context, category string, limit int) ([]RawArticle, error) {
	log := logger.Get()
	params := map[string]string{
		"apiKey":   c.apiKey,
		"pageSize": strconv.Itoa(limit),
		"country":  "in",
	}
	if mapped := MapCategory(category); category != "india" && newsAPICategories[mapped] {
		params["category"] = mapped
	}

	articles, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		log.Warn().Str("category", category).Msg("Provider returned no articles, trying fallback query")
		relaxed := map[string]string{"apiKey": c.apiKey, "pageSize": params["pageSize"], "country": "in", "q": "india"}
		fallback, err := c.get(ctx, "/top-headlines", relaxed)
		if err != nil || len(fallback) == 0 {
			fallback, err = c.get(ctx, "/everything", map[string]string{
				"q":        "india OR भारत",
				"language": "en",
				"pageSize": params["pageSize"],
				"apiKey":   c.apiKey,
			})
		}
		if err != nil {
			log.Warn().Err(err).Str("category", category).Msg("Fallback query failed")
		} else if len(fallback) > 0 {
			articles = fallback
		}
	}

	if category != "" && category != "general" {
		if filtered := FilterByKeywords(articles, category); len(filtered) > 0 {
			articles = filtered
		}
	}
	return articles, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]RawArticle, error) {
	if c.provider == ProviderNewsAPI {
		return c.get(ctx, "/everything", map[string]string{
			"q":        query,
			"language": "en",
			"pageSize": strconv.Itoa(limit),
			"apiKey":   c.apiKey,
		})
	}
	return c.get(ctx, "/search", map[string]string{
		"q":       query,
		"lang":    "hi",
		"country": "in",
		"max":     strconv.Itoa(limit),
		"apikey":  c.apiKey,
	})
}

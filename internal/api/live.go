package api

import (
	"github.com/bilgisen/ujala/internal/feed"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/gofiber/fiber/v2"
)

const sourceLive = "live-api"

func live(c *fiber.Ctx, data any, extra fiber.Map) error {
	body := fiber.Map{"success": true, "data": data, "source": sourceLive}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// GetLiveNews handles GET /api/news
func (h *Handlers) GetLiveNews(c *fiber.Ctx) error {
	var q listQuery
	if err := middleware.ParseQuery(c, &q); err != nil {
		return err
	}
	q.normalize(20)

	var (
		articles []models.Article
		err      error
	)
	switch {
	case q.Search != "":
		articles, err = h.live.Search(c.UserContext(), q.Search, q.Limit)
	case q.Category != "" && q.Category != "all":
		articles, err = h.live.TopHeadlines(c.UserContext(), q.Category, q.Limit)
	default:
		articles, err = h.live.TopHeadlines(c.UserContext(), "india", q.Limit)
	}
	if err != nil {
		return err
	}

	total := len(articles)
	start := min(int(q.skip()), total)
	end := min(start+q.Limit, total)

	return live(c, articles[start:end], fiber.Map{
		"pagination": paginate(int64(total), q.Page, q.Limit),
	})
}

// GetBreaking handles GET /api/news/breaking
func (h *Handlers) GetBreaking(c *fiber.Ctx) error {
	articles, err := h.live.Breaking(c.UserContext(), 10)
	if err != nil {
		return err
	}
	return live(c, articles, nil)
}

// GetFeatured handles GET /api/news/featured. Without a provider key it
// returns an empty list instead of failing.
func (h *Handlers) GetFeatured(c *fiber.Ctx) error {
	if !h.live.Configured() {
		logger.Get().Warn().Msg("No news provider key configured, featured list is empty")
		return live(c, []models.Article{}, fiber.Map{"message": "No API key configured; returning empty featured list"})
	}
	articles, err := h.live.Featured(c.UserContext(), 6)
	if err != nil {
		return err
	}
	return live(c, articles, nil)
}

// GetTrending handles GET /api/news/trending
func (h *Handlers) GetTrending(c *fiber.Ctx) error {
	articles, err := h.live.Trending(c.UserContext())
	if err != nil {
		return err
	}
	return live(c, articles, nil)
}

// ClearCache handles POST /api/news/cache/clear
func (h *Handlers) ClearCache(c *fiber.Ctx) error {
	if err := h.live.ClearCache(c.UserContext()); err != nil {
		return err
	}
	return done(c, "Cache cleared successfully", nil)
}

// liveBySlug resolves a slug that is not in the database: first from
// articles already served, then by searching the provider with words
// taken from the slug.
func (h *Handlers) liveBySlug(c *fiber.Ctx, slug string) error {
	if art, ok := h.live.ArticleBySlug(slug); ok {
		return c.JSON(fiber.Map{"success": true, "data": art, "source": "live-cache"})
	}

	term := feed.SearchTermFromSlug(slug)
	if term == "" || !h.live.Configured() {
		return notFound(c)
	}
	results, err := h.live.Search(c.UserContext(), term, 1)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return notFound(c)
	}
	return live(c, results[0], nil)
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "News not found"})
}

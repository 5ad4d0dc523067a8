// Package api exposes the HTTP surface of the news backend.
package api

import (
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/config"
	"github.com/bilgisen/ujala/internal/feed"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/bilgisen/ujala/internal/reporters"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	news     *publishing.Service
	accounts *reporters.Service
	live     *feed.Aggregator
	local    *storage.Local

	categories repository.CategoryRepository
	contacts   repository.ContactRepository
	proxy      *media.Proxy

	adminApproved bool
	maxFileSize   int64
	serverURL     string
	frontendURL   string
	startedAt     time.Time
}

// Deps are the services the handlers sit on.
type Deps struct {
	News     *publishing.Service
	Accounts *reporters.Service
	Live     *feed.Aggregator
	Local    *storage.Local
	Config   *config.Config

	Categories repository.CategoryRepository
	Contacts   repository.ContactRepository
	Proxy      *media.Proxy
}

func NewHandlers(d Deps) *Handlers {
	h := &Handlers{
		news:      d.News,
		accounts:  d.Accounts,
		live:      d.Live,
		local:     d.Local,
		startedAt: time.Now(),

		categories: d.Categories,
		contacts:   d.Contacts,
		proxy:      d.Proxy,
	}
	if cfg := d.Config; cfg != nil {
		h.adminApproved = cfg.AdminUploadApproved
		h.maxFileSize = cfg.MaxFileSize
		h.serverURL = strings.TrimRight(cfg.ServerURL, "/")
		h.frontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	}
	return h
}

// absolute prefixes server-relative URLs with the configured origin.
func (h *Handlers) absolute(u string) string {
	if strings.HasPrefix(u, "/") && h.serverURL != "" {
		return h.serverURL + u
	}
	return u
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func done(c *fiber.Ctx, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"time":           time.Now().Format(time.RFC3339),
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
		"objectStorage":  h.news.StorageEnabled(),
		"liveConfigured": h.live.Configured(),
	})
}

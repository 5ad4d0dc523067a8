package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/gofiber/fiber/v2"
)

// ServeUpload handles GET /uploads/*. Files still on disk are served
// directly. A missing file is redirected to the media endpoint of the item
// that references it, or to object storage.
func (h *Handlers) ServeUpload(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil || name == "" || strings.Contains(name, "/") || strings.Contains(strings.ToLower(name), "undefined") {
		return apperr.NotFound("Not found")
	}

	if h.local != nil && h.local.Exists(name) {
		return c.SendFile(h.local.Path(name))
	}

	n, field, idx, err := h.news.FindByMedia(c.UserContext(), name)
	switch {
	case err == nil:
		target := fmt.Sprintf("/api/news/media/%s/%s", n.ID.Hex(), field)
		if field == publishing.FieldGallery {
			target = fmt.Sprintf("%s/%d", target, idx)
		}
		logger.Get().Info().Str("file", name).Str("id", n.ID.Hex()).Msg("Redirecting missing upload to media endpoint")
		return c.Redirect(target, fiber.StatusFound)
	case !apperr.Is(err, apperr.KindNotFound):
		logger.Get().Warn().Err(err).Str("file", name).Msg("Lookup of missing upload failed")
	}

	if u := h.news.Display(models.KeyRef(objectstore.UploadKey(name))); models.IsAbsoluteURL(u) {
		return c.Redirect(u, fiber.StatusFound)
	}
	return apperr.NotFound("Not found")
}

// ShortLink handles GET /r/:short and redirects to the article page.
func (h *Handlers) ShortLink(c *fiber.Ctx) error {
	n, err := h.news.FindByShortID(c.UserContext(), strings.TrimSpace(c.Params("short")))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return c.Redirect("/", fiber.StatusFound)
		}
		return err
	}

	slug := url.PathEscape(n.Slug)
	if h.frontendURL != "" {
		return c.Redirect(h.frontendURL+"/news/"+slug, fiber.StatusMovedPermanently)
	}
	return c.Redirect(h.absolute("/api/news/"+slug), fiber.StatusMovedPermanently)
}

package api

import (
	"strings"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/slug"
	"github.com/gofiber/fiber/v2"
)

type categoryInput struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Slug        string `json:"slug" form:"slug"`
	Description string `json:"description" form:"description"`
	Order       int    `json:"order" form:"order"`
}

type contactInput struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Mobile  string `json:"mobile" form:"mobile" validate:"required"`
	Address string `json:"address" form:"address"`
	Message string `json:"message" form:"message" validate:"required"`
}

type proxyQuery struct {
	Key string `query:"key"`
	URL string `query:"url"`
}

// ListCategories handles GET /api/categories
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	list, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, list)
}

// GetCategory handles GET /api/categories/:slug
func (h *Handlers) GetCategory(c *fiber.Ctx) error {
	cat, err := h.categories.FindBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return ok(c, cat)
}

// CreateCategory handles POST /api/categories. The slug is derived from the
// name unless one is given.
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var in categoryInput
	if err := middleware.ParseBody(c, &in); err != nil {
		return err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Invalid Name")
	}
	s := strings.TrimSpace(in.Slug)
	if s == "" {
		s = name
	}
	cat := &models.Category{
		Name:        name,
		Slug:        slug.Generate(s),
		Description: strings.TrimSpace(in.Description),
		Order:       in.Order,
	}
	if err := h.categories.Insert(c.UserContext(), cat); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("Category slug already exists", err)
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cat})
}

// SubmitContact handles POST /api/contact
func (h *Handlers) SubmitContact(c *fiber.Ctx) error {
	var in contactInput
	if err := middleware.ParseBody(c, &in); err != nil {
		return err
	}
	msg := &models.Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Mobile:  strings.TrimSpace(in.Mobile),
		Address: strings.TrimSpace(in.Address),
		Message: in.Message,
	}
	if msg.Name == "" || msg.Mobile == "" || strings.TrimSpace(msg.Message) == "" {
		return apperr.Validation("Missing required fields")
	}
	if err := h.contacts.Insert(c.UserContext(), msg); err != nil {
		return err
	}
	return done(c, "Thank you, your message has been received", msg)
}

// ListContacts handles GET /api/contact
func (h *Handlers) ListContacts(c *fiber.Ctx) error {
	list, err := h.contacts.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, list)
}

// ImageProxy handles GET /api/images/proxy?key=... or ?url=...
func (h *Handlers) ImageProxy(c *fiber.Ctx) error {
	var q proxyQuery
	if err := middleware.ParseQuery(c, &q); err != nil {
		return err
	}
	target, err := h.proxy.Target(q.Key, q.URL)
	if err != nil {
		return err
	}
	f, err := h.proxy.Fetch(c.UserContext(), target)
	if err != nil {
		logger.Get().Warn().Err(err).Str("target", target).Msg("Image proxy error")
		return err
	}

	if f.ContentType != "" {
		c.Set(fiber.HeaderContentType, f.ContentType)
	}
	if f.CacheControl != "" {
		c.Set(fiber.HeaderCacheControl, f.CacheControl)
	}
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlExposeHeaders, "Content-Type, Cache-Control")
	return c.SendStream(f.Body)
}

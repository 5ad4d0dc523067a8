package api

import (
	"strconv"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/gofiber/fiber/v2"
)

const sourceDB = "database"

var (
	ujalaOrder = []repository.SortField{
		{Field: "isBreaking", Desc: true},
		{Field: "createdAt", Desc: true},
	}
	featuredOrder = []repository.SortField{
		{Field: "featuredAt", Desc: true},
		{Field: "createdAt", Desc: true},
	}
)

func (h *Handlers) page(c *fiber.Ctx, f repository.Filter, order []repository.SortField) error {
	var q listQuery
	if err := middleware.ParseQuery(c, &q); err != nil {
		return err
	}
	q.normalize(20)

	items, total, err := h.news.List(c.UserContext(), f, repository.ListOptions{
		Sort:  order,
		Skip:  q.skip(),
		Limit: int64(q.Limit),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       h.views(items),
		"pagination": paginate(total, q.Page, q.Limit),
		"source":     sourceDB,
	})
}

// GetUjala handles GET /api/news/ujala: approved items, breaking first.
func (h *Handlers) GetUjala(c *fiber.Ctx) error {
	return h.page(c, repository.Filter{
		Ujala:    repository.Bool(true),
		Approved: repository.Bool(true),
	}, ujalaOrder)
}

// GetUjalaEvents handles GET /api/news/ujala-events
func (h *Handlers) GetUjalaEvents(c *fiber.Ctx) error {
	return h.page(c, repository.Filter{
		Ujala:    repository.Bool(true),
		Approved: repository.Bool(true),
		Kind:     repository.KindOf(models.KindEvent),
	}, repository.Newest())
}

// GetFeaturedDB handles GET /api/news/featured-db
func (h *Handlers) GetFeaturedDB(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = 6
	}
	items, _, err := h.news.List(c.UserContext(), repository.Filter{
		Ujala:    repository.Bool(true),
		Approved: repository.Bool(true),
		Featured: repository.Bool(true),
	}, repository.ListOptions{Sort: featuredOrder, Limit: int64(min(limit, maxPageSize))})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": h.views(items), "source": sourceDB})
}

// GetBySlug handles GET /api/news/:slug. Stored items win; unknown slugs
// fall through to the live provider. Unapproved items are never shown.
func (h *Handlers) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	n, err := h.news.FindBySlug(c.UserContext(), slug)
	switch {
	case err == nil:
		if !n.Approved {
			return notFound(c)
		}
		return c.JSON(fiber.Map{"success": true, "data": h.view(n), "source": sourceDB})
	case apperr.Is(err, apperr.KindNotFound):
	default:
		logger.Get().Warn().Err(err).Str("slug", slug).Msg("Database lookup failed, trying live sources")
	}
	return h.liveBySlug(c, slug)
}

// IncrementView handles POST /api/news/:id/view
func (h *Handlers) IncrementView(c *fiber.Ctx) error {
	views, err := h.news.IncrementView(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"views": views})
}

// submission is the text part of an upload form.
type submission struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Content     string `json:"content" form:"content"`
	Author      string `json:"author" form:"author"`
	Location    string `json:"location" form:"location"`
	Type        string `json:"type" form:"type"`
	Tags        string `json:"tags" form:"tags"`
	EventDate   string `json:"eventDate" form:"eventDate"`
	EventVenue  string `json:"eventVenue" form:"eventVenue"`
}

var mediaLimits = map[string]int{
	fieldImage:   1,
	fieldVideo:   1,
	fieldGallery: maxGalleryFiles,
}

func actor(c *fiber.Ctx) publishing.Actor {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return publishing.Actor{}
	}
	return publishing.Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role}
}

func (h *Handlers) submit(c *fiber.Ctx, flow publishing.Flow) error {
	var s submission
	if err := c.BodyParser(&s); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	up, err := h.readFiles(c, mediaLimits)
	if err != nil {
		return err
	}

	n, err := h.news.Create(c.UserContext(), publishing.CreateInput{
		Title:       s.Title,
		Description: s.Description,
		Content:     s.Content,
		Author:      s.Author,
		Location:    s.Location,
		Tags:        splitTags(s.Tags),
		Kind:        models.ParseKind(s.Type),
		EventDate:   parseDate(s.EventDate),
		EventVenue:  s.EventVenue,
		Image:       up.one(fieldImage),
		Video:       up.one(fieldVideo),
		Gallery:     up[fieldGallery],
	}, flow, actor(c))
	if err != nil {
		return err
	}

	message := "News uploaded and pending approval"
	if n.Approved {
		message = "News uploaded"
	}
	return done(c, message, h.view(n))
}

// AdminUpload handles POST /api/news/admin/upload
func (h *Handlers) AdminUpload(c *fiber.Ctx) error {
	return h.submit(c, publishing.AdminFlow(h.adminApproved))
}

// ReporterUpload handles POST /api/news/reporter/upload
func (h *Handlers) ReporterUpload(c *fiber.Ctx) error {
	return h.submit(c, publishing.ReporterFlow())
}

// UpdateNews handles PUT /api/news/:id
func (h *Handlers) UpdateNews(c *fiber.Ctx) error {
	var in publishing.EditInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	if v := c.FormValue("eventDate"); v != "" {
		in.EventDate = parseDate(v)
	}

	up, err := h.readFiles(c, mediaLimits)
	if err != nil {
		return err
	}
	n, err := h.news.Edit(c.UserContext(), c.Params("id"), in, publishing.MediaInput{
		Image:   up.one(fieldImage),
		Video:   up.one(fieldVideo),
		Gallery: up[fieldGallery],
	})
	if err != nil {
		return err
	}
	return done(c, "News updated", h.view(n))
}

// DeleteNews handles DELETE /api/news/:id
func (h *Handlers) DeleteNews(c *fiber.Ctx) error {
	if _, err := h.news.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return done(c, "News deleted", nil)
}

func serve(c *fiber.Ctx, t media.Target) error {
	if t.Redirect != "" {
		return c.Redirect(t.Redirect, fiber.StatusFound)
	}
	return c.SendFile(t.File)
}

// ServeMedia handles GET /api/news/media/:id/image and /video
func (h *Handlers) ServeMedia(field publishing.MediaField) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := h.news.ResolveMedia(c.UserContext(), c.Params("id"), field, 0)
		if err != nil {
			return err
		}
		return serve(c, t)
	}
}

// ServeGallery handles GET /api/news/media/:id/gallery/:idx
func (h *Handlers) ServeGallery(c *fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("idx", "0"))
	if err != nil {
		return apperr.Validation("Invalid gallery index")
	}
	t, err := h.news.ResolveMedia(c.UserContext(), c.Params("id"), publishing.FieldGallery, idx)
	if err != nil {
		return err
	}
	return serve(c, t)
}

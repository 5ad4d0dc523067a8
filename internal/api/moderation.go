package api

import (
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// section is one moderated slice of the ujala items.
type section struct {
	kind *models.ContentKind
	// label is used in response messages.
	label string
}

var (
	sectionAll     = section{label: "news"}
	sectionGallery = section{kind: repository.KindOf(models.KindGallery), label: "gallery"}
	sectionEvents  = section{kind: repository.KindOf(models.KindEvent), label: "event"}
)

func (s section) filter(approved bool) repository.Filter {
	return repository.Filter{
		Ujala:    repository.Bool(true),
		Approved: repository.Bool(approved),
		Kind:     s.kind,
	}
}

func (h *Handlers) listSection(c *fiber.Ctx, f repository.Filter) error {
	items, _, err := h.news.List(c.UserContext(), f, repository.ListOptions{Sort: repository.Newest()})
	if err != nil {
		return err
	}
	return ok(c, h.views(items))
}

// Pending lists items waiting for approval in a section.
func (h *Handlers) Pending(s section) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.listSection(c, s.filter(false))
	}
}

// Approved lists published items of a section for management.
func (h *Handlers) Approved(s section) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.listSection(c, s.filter(true))
	}
}

// ApproveNews handles PUT /api/news/superadmin/approval/:id/approve
func (h *Handlers) ApproveNews(c *fiber.Ctx) error {
	n, err := h.news.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return done(c, "News approved", h.view(n))
}

// ApproveAs approves an item as a gallery or an event.
func (h *Handlers) ApproveAs(kind models.ContentKind) fiber.Handler {
	message := "Gallery approved"
	if kind == models.KindEvent {
		message = "Event approved"
	}
	return func(c *fiber.Ctx) error {
		n, err := h.news.ApproveAs(c.UserContext(), c.Params("id"), kind)
		if err != nil {
			return err
		}
		return done(c, message, h.view(n))
	}
}

func (h *Handlers) Feature(c *fiber.Ctx) error {
	n, err := h.news.Feature(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return done(c, "Marked as featured", h.view(n))
}

func (h *Handlers) Unfeature(c *fiber.Ctx) error {
	n, err := h.news.Unfeature(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return done(c, "Removed from featured", h.view(n))
}

// DeleteApproved removes an item from the management views.
func (h *Handlers) DeleteApproved(s section) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := h.news.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return done(c, "Approved "+s.label+" deleted", nil)
	}
}

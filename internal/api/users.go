package api

import (
	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/reporters"
	"github.com/gofiber/fiber/v2"
)

// RegisterAdmin handles POST /api/auth/register
func (h *Handlers) RegisterAdmin(c *fiber.Ctx) error {
	var in reporters.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	if _, err := h.accounts.RegisterAdmin(c.UserContext(), in); err != nil {
		return err
	}
	return done(c, "Admin registered", nil)
}

// RegisterReporter handles POST /api/auth/register-reporter with an optional avatar file.
func (h *Handlers) RegisterReporter(c *fiber.Ctx) error {
	var in reporters.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	up, err := h.readFiles(c, map[string]int{fieldAvatar: 1})
	if err != nil {
		return err
	}
	if _, err := h.accounts.RegisterReporter(c.UserContext(), in, up.one(fieldAvatar)); err != nil {
		return err
	}
	return done(c, "Registered as reporter. Await superadmin approval.", nil)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var creds reporters.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	s, err := h.accounts.Login(c.UserContext(), creds)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"token":     s.Token,
		"expiresAt": s.ExpiresAt,
		"role":      s.Role,
		"name":      s.Name,
		"id":        s.ID,
	})
}

// SuperAdminLogin handles POST /api/auth/superadmin-login
func (h *Handlers) SuperAdminLogin(c *fiber.Ctx) error {
	var creds reporters.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	s, err := h.accounts.SuperAdminLogin(creds)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "token": s.Token, "expiresAt": s.ExpiresAt})
}

// TokenInfo handles GET /api/auth/me and returns the decoded token.
func (h *Handlers) TokenInfo(c *fiber.Ctx) error {
	return ok(c, middleware.ClaimsFrom(c))
}

// Me handles GET /api/users/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized("Unauthorized")
	}
	p, err := h.accounts.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return ok(c, p)
}

// ListReporters handles GET /api/users/reporters
func (h *Handlers) ListReporters(c *fiber.Ctx) error {
	list, err := h.accounts.ListReporters(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, list)
}

// ApproveReporter handles PUT /api/users/reporters/:id/approve
func (h *Handlers) ApproveReporter(c *fiber.Ctx) error {
	u, err := h.accounts.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return done(c, "Reporter approved", fiber.Map{
		"id":         u.ID,
		"isApproved": u.IsApproved,
		"reporterId": u.ReporterID,
		"approvedAt": u.ApprovedAt,
	})
}

// DeleteReporter handles DELETE /api/users/reporters/:id
func (h *Handlers) DeleteReporter(c *fiber.Ctx) error {
	if err := h.accounts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return done(c, "Reporter deleted", nil)
}

// PressCard handles GET /api/users/reporters/:id/card
func (h *Handlers) PressCard(c *fiber.Ctx) error {
	card, err := h.accounts.PressCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, card)
}

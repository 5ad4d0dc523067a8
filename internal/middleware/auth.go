package middleware

import (
	"slices"
	"strings"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/auth"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// AuthConfig defines the config for the bearer token middleware
type AuthConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Tokens verifies the bearer token. Required.
	Tokens auth.TokenService

	// ErrorHandler is called for a missing or invalid token.
	// Optional. Default: 401 {success:false, message}
	ErrorHandler fiber.ErrorHandler
}

func denied(c *fiber.Ctx, err error) error {
	logger.Get().Warn().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("ip", c.IP()).
		Err(err).
		Msg("Authentication failed")

	return c.Status(apperr.Status(apperr.KindOf(err))).JSON(fiber.Map{
		"success": false,
		"message": apperr.Message(err),
	})
}

// NewAuth verifies "Authorization: Bearer <token>" and stores the claims
// for ClaimsFrom.
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = denied
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return cfg.ErrorHandler(c, apperr.Unauthorized("No token provided"))
		}

		claims, err := cfg.Tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by NewAuth, or nil.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}

// RequireRoles admits callers whose role is listed. The superadmin is
// always admitted. It must run after NewAuth.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return denied(c, apperr.Unauthorized("Unauthorized: no user context"))
		}
		if claims.Role == models.RoleSuperAdmin || slices.Contains(roles, claims.Role) {
			return c.Next()
		}

		logger.Get().Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("role", claims.Role).
			Strs("required", roles).
			Msg("Insufficient role")

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":   false,
			"message":   "Forbidden: insufficient role",
			"foundRole": claims.Role,
			"required":  roles,
		})
	}
}

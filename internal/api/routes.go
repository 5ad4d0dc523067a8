package api

import (
	"strings"

	"github.com/bilgisen/ujala/internal/auth"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouteConfig carries what SetupRoutes needs besides the handlers.
type RouteConfig struct {
	Tokens      auth.TokenService
	CORSOrigins string
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, rc RouteConfig) {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(rc.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.NewLogger(middleware.LoggerConfig{SkipPaths: []string{"/api/health"}}))

	authed := middleware.NewAuth(middleware.AuthConfig{Tokens: rc.Tokens})
	superadmin := middleware.RequireRoles(models.RoleSuperAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin)
	adminOrReporter := middleware.RequireRoles(models.RoleAdmin, models.RoleReporter)

	app.Get("/uploads/*", h.ServeUpload)
	app.Get("/r/:short", h.ShortLink)

	api := app.Group("/api")
	api.Get("/health", h.HealthCheck)
	api.Get("/images/proxy", h.ImageProxy)

	categories := api.Group("/categories")
	{
		categories.Get("/", h.ListCategories)
		categories.Get("/:slug", h.GetCategory)
		categories.Post("/", authed, admin, h.CreateCategory)
	}

	contact := api.Group("/contact")
	{
		contact.Post("/", h.SubmitContact)
		contact.Get("/", authed, superadmin, h.ListContacts)
	}

	authRoutes := api.Group("/auth")
	{
		authRoutes.Post("/register", authed, superadmin, h.RegisterAdmin)
		authRoutes.Post("/register-reporter", h.RegisterReporter)
		authRoutes.Post("/login", h.Login)
		authRoutes.Post("/superadmin-login", h.SuperAdminLogin)
		authRoutes.Get("/me", authed, h.TokenInfo)
	}

	users := api.Group("/users")
	{
		users.Get("/me", authed, h.Me)
		users.Get("/reporters", authed, superadmin, h.ListReporters)
		users.Put("/reporters/:id/approve", authed, superadmin, h.ApproveReporter)
		users.Delete("/reporters/:id", authed, superadmin, h.DeleteReporter)
		users.Get("/reporters/:id/card", h.PressCard)
	}

	news := api.Group("/news")

	// Live provider news
	news.Get("/", h.GetLiveNews)
	news.Get("/breaking", h.GetBreaking)
	news.Get("/featured", h.GetFeatured)
	news.Get("/trending", h.GetTrending)
	news.Post("/cache/clear", h.ClearCache)

	// Stored news, public
	news.Get("/ujala", h.GetUjala)
	news.Get("/ujala-events", h.GetUjalaEvents)
	news.Get("/featured-db", h.GetFeaturedDB)
	news.Get("/media/:id/image", h.ServeMedia(publishing.FieldImage))
	news.Get("/media/:id/video", h.ServeMedia(publishing.FieldVideo))
	news.Get("/media/:id/gallery/:idx", h.ServeGallery)

	// Submissions
	news.Post("/admin/upload", authed, admin, h.AdminUpload)
	news.Post("/reporter/upload", authed, adminOrReporter, h.ReporterUpload)

	// Moderation
	approval := news.Group("/superadmin/approval", authed, superadmin)
	{
		approval.Get("/", h.Pending(sectionAll))
		approval.Get("/gallery", h.Pending(sectionGallery))
		approval.Get("/events", h.Pending(sectionEvents))
		approval.Put("/:id/approve", h.ApproveNews)
		approval.Put("/:id/approve/gallery", h.ApproveAs(models.KindGallery))
		approval.Put("/:id/approve/event", h.ApproveAs(models.KindEvent))
	}

	manage := news.Group("/admin", authed)
	{
		manage.Get("/approved-news", superadmin, h.Approved(sectionAll))
		manage.Put("/approved-news/:id/feature", superadmin, h.Feature)
		manage.Put("/approved-news/:id/unfeature", superadmin, h.Unfeature)
		manage.Delete("/approved-news/:id", superadmin, h.DeleteApproved(sectionAll))

		manage.Get("/approved-gallery", admin, h.Approved(sectionGallery))
		manage.Put("/approved-gallery/:id/feature", admin, h.Feature)
		manage.Put("/approved-gallery/:id/unfeature", admin, h.Unfeature)
		manage.Delete("/approved-gallery/:id", admin, h.DeleteApproved(sectionGallery))

		manage.Get("/approved-events", admin, h.Approved(sectionEvents))
		manage.Put("/approved-events/:id/feature", admin, h.Feature)
		manage.Put("/approved-events/:id/unfeature", admin, h.Unfeature)
		manage.Delete("/approved-events/:id", admin, h.DeleteApproved(sectionEvents))
	}

	// Single item routes come last so they do not shadow the fixed paths above.
	news.Put("/:id", authed, admin, h.UpdateNews)
	news.Delete("/:id", authed, superadmin, h.DeleteNews)
	news.Post("/:id/view", h.IncrementView)
	news.Get("/:slug", h.GetBySlug)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Endpoint not found",
		})
	})
}

func corsOrigins(raw string) string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}

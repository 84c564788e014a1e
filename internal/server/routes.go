package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"biolinks/internal/clicks"
	"biolinks/internal/handlers"
	"biolinks/internal/handlers/api"
	"biolinks/internal/middleware"
	"biolinks/internal/platforms"
)

// LinkService is everything the routes need from link management.
// *links.Service implements it.
type LinkService interface {
	api.LinkService
	handlers.DashboardService
	handlers.PublicViewer
}

// ProfileService is everything the routes need from profile management.
// *profiles.Service implements it.
type ProfileService interface {
	api.ProfileService
	handlers.Provisioner
}

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB        handlers.Pinger
	Users     middleware.UserStore
	Clicks    clicks.CountStore
	Recorder  api.ClickRecorder
	Links     LinkService
	Profiles  ProfileService
	Platforms *platforms.Catalog
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Sessions, deps.Users)
	clickLoader := middleware.ClickLoader(deps.Clicks)

	dashboardHandler := handlers.NewDashboardHandler(deps.Links, deps.Platforms, s.Cfg)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, s.Cfg)
	publicHandler := handlers.NewPublicHandler(deps.Links, deps.Recorder, s.Cfg)
	probeHandler := handlers.NewProbeHandler(deps.DB)

	apiLinks := api.NewLinkHandler(deps.Links)
	apiProfile := api.NewProfileHandler(deps.Profiles, deps.Links)
	apiClicks := api.NewClickHandler(deps.Recorder)

	if s.Cfg.OIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, deps.Profiles)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		slog.Warn("OIDC is not configured; owners cannot sign in. Set OIDC_ISSUER and OIDC_CLIENT_ID.")
	}

	s.App.Get("/login", func(c fiber.Ctx) error {
		return c.Render("login", handlers.MergeBranding(fiber.Map{
			"Title":       "Sign in",
			"OIDCEnabled": s.Cfg.OIDCEnabled(),
		}, s.Cfg))
	})
	s.App.Get("/", authMiddleware.OptionalAuth, func(c fiber.Ctx) error {
		if c.Locals("user") != nil {
			return c.Redirect().To("/dashboard")
		}
		return c.Redirect().To("/login")
	})

	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	if s.Cfg.MetricsEnabled {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Owner pages
	s.App.Get("/dashboard", authMiddleware.RequireAuth, clickLoader, dashboardHandler.Index)
	s.App.Get("/dashboard/preview", authMiddleware.RequireAuth, dashboardHandler.Preview)
	s.App.Get("/profile", authMiddleware.RequireAuth, profileHandler.Show)
	s.App.Post("/profile", authMiddleware.RequireAuth, profileHandler.Update)

	// JSON API
	v1 := s.App.Group("/api/v1")
	v1.Get("/profile/slug-available", apiProfile.SlugAvailable)
	v1.Get("/profile/:slug", apiProfile.Public)
	v1.Post("/click", apiClicks.Track)

	owner := v1.Group("", authMiddleware.RequireAPIAuth, clickLoader)
	owner.Get("/links", apiLinks.List)
	owner.Post("/links", apiLinks.Create)
	owner.Post("/links/reorder", apiLinks.Reorder)
	owner.Get("/links/:id", apiLinks.Get)
	owner.Put("/links/:id", apiLinks.Update)
	owner.Delete("/links/:id", apiLinks.Delete)
	owner.Patch("/links/:id/toggle", apiLinks.Toggle)
	owner.Post("/links/:id/move", apiLinks.Move)
	owner.Get("/profile", apiProfile.Get)
	owner.Put("/profile", apiProfile.Update)

	// Visitor routes - must be last (catch-all for slugs)
	s.App.Post("/click", apiClicks.Track)
	s.App.Get("/:slug", publicHandler.Show)
	s.App.Get("/:slug/go/:id", publicHandler.Follow)

	return nil
}

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/config"
	"biolinks/internal/links"
	"biolinks/internal/models"
	"biolinks/internal/platforms"
)

// DashboardService supplies the owner's links. *links.Service implements it.
type DashboardService interface {
	ManagementView(ctx context.Context, ownerID uuid.UUID) (*models.ManagementView, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error)
}

// DashboardHandler renders the owner's link management page and the live
// preview of their public page.
type DashboardHandler struct {
	links     DashboardService
	platforms *platforms.Catalog
	cfg       *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(links DashboardService, catalog *platforms.Catalog, cfg *config.Config) *DashboardHandler {
	if catalog == nil {
		catalog = platforms.Default()
	}
	return &DashboardHandler{links: links, platforms: catalog, cfg: cfg}
}

// Index renders the dashboard. The page embeds the collection version that
// the drag-and-drop script sends back with each reorder.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Redirect().To("/login")
	}

	view, err := h.links.ManagementView(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.Render("dashboard", MergeBranding(fiber.Map{
		"Title":     "Dashboard",
		"User":      user,
		"View":      view,
		"Platforms": h.platforms.All(),
		"PublicURL": h.cfg.BaseURL + "/" + user.Slug,
	}, h.cfg))
}

// Preview renders the public page as visitors currently see it, for the
// preview pane next to the editor.
func (h *DashboardHandler) Preview(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.links.List(c.Context(), user.ID)
	if err != nil {
		if isHTMX(c) {
			return htmxError(c, "Could not load preview")
		}
		return err
	}

	return c.Render("partials/preview", fiber.Map{
		"Profile": links.Project(user, list),
	}, "")
}

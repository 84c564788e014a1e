package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/config"
	"biolinks/internal/links"
	"biolinks/internal/models"
	"biolinks/internal/validation"
)

// PublicViewer builds the anonymous profile page. *links.Service implements it.
type PublicViewer interface {
	PublicView(ctx context.Context, slug string) (*models.PublicProfile, error)
}

// ClickRecorder queues click events. *clicks.Recorder implements it.
type ClickRecorder interface {
	Record(linkID uuid.UUID) error
}

// PublicHandler serves profile pages to visitors.
type PublicHandler struct {
	profiles PublicViewer
	clicks   ClickRecorder
	cfg      *config.Config
}

// NewPublicHandler creates a new public page handler.
func NewPublicHandler(profiles PublicViewer, clicks ClickRecorder, cfg *config.Config) *PublicHandler {
	return &PublicHandler{profiles: profiles, clicks: clicks, cfg: cfg}
}

// Show renders the profile page for a slug.
func (h *PublicHandler) Show(c fiber.Ctx) error {
	slug := validation.NormalizeSlug(c.Params("slug"))

	profile, err := h.profiles.PublicView(c.Context(), slug)
	if err != nil {
		if errors.Is(err, links.ErrProfileNotFound) {
			return h.notFound(c, "The page '"+slug+"' does not exist.")
		}
		return err
	}

	return c.Render("public", MergeBranding(fiber.Map{
		"Title":   profile.Name,
		"Profile": profile,
	}, h.cfg))
}

// Follow records a click on one of the profile's links and redirects to it.
// It serves visitors without JavaScript; hidden links are not followed.
func (h *PublicHandler) Follow(c fiber.Ctx) error {
	slug := validation.NormalizeSlug(c.Params("slug"))

	linkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.notFound(c, "This link does not exist.")
	}

	profile, err := h.profiles.PublicView(c.Context(), slug)
	if err != nil {
		if errors.Is(err, links.ErrProfileNotFound) {
			return h.notFound(c, "The page '"+slug+"' does not exist.")
		}
		return err
	}

	for _, l := range profile.Links {
		if l.ID != linkID {
			continue
		}
		if err := h.clicks.Record(l.ID); err != nil {
			slog.WarnContext(c.Context(), "click not recorded",
				slog.String("link_id", l.ID.String()),
				slog.Any("error", err),
			)
		}
		return c.Redirect().Status(fiber.StatusFound).To(l.URL)
	}

	return h.notFound(c, "This link does not exist.")
}

func (h *PublicHandler) notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("error", MergeBranding(fiber.Map{
		"Title":   "Not Found",
		"Message": msg,
	}, h.cfg))
}

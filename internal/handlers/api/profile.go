package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/models"
	"biolinks/internal/validation"
)

// ProfileService updates owner profiles. *profiles.Service implements it.
type ProfileService interface {
	Update(ctx context.Context, ownerID uuid.UUID, patch models.ProfilePatch) (*models.User, error)
	SlugAvailable(ctx context.Context, slug string) (bool, error)
}

// PublicViewer builds the anonymous profile page. *links.Service implements it.
type PublicViewer interface {
	PublicView(ctx context.Context, slug string) (*models.PublicProfile, error)
}

// ProfileHandler handles profile operations via JSON API.
type ProfileHandler struct {
	profiles ProfileService
	public   PublicViewer
}

// NewProfileHandler creates a new API profile handler.
func NewProfileHandler(profiles ProfileService, public PublicViewer) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, public: public}
}

// Get returns the authenticated owner's profile.
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return jsonSuccess(c, user)
}

// Update changes the profile fields present in the body.
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var patch models.ProfilePatch
	if err := c.Bind().JSON(&patch); err != nil {
		return bindError(c, err)
	}
	if patch.IsEmpty() {
		return jsonSuccess(c, user)
	}

	updated, err := h.profiles.Update(c.Context(), user.ID, patch)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, updated)
}

// SlugAvailable reports whether the slug in ?slug= can be claimed.
func (h *ProfileHandler) SlugAvailable(c fiber.Ctx) error {
	slug := validation.NormalizeSlug(c.Query("slug"))
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "slug is required")
	}

	available, err := h.profiles.SlugAvailable(c.Context(), slug)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, fiber.Map{"slug": slug, "available": available})
}

// Public returns the visitor view of a profile: active links only.
func (h *ProfileHandler) Public(c fiber.Ctx) error {
	profile, err := h.public.PublicView(c.Context(), validation.NormalizeSlug(c.Params("slug")))
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, profile)
}

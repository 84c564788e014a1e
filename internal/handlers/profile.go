package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/config"
	"biolinks/internal/models"
	"biolinks/internal/profiles"
	"biolinks/internal/validation"
)

// ProfileUpdater applies profile edits. *profiles.Service implements it.
type ProfileUpdater interface {
	Update(ctx context.Context, ownerID uuid.UUID, patch models.ProfilePatch) (*models.User, error)
}

// ProfileHandler handles the owner's profile settings page.
type ProfileHandler struct {
	profiles ProfileUpdater
	cfg      *config.Config
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles ProfileUpdater, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, cfg: cfg}
}

// Show renders the profile form.
func (h *ProfileHandler) Show(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Redirect().To("/login")
	}

	return c.Render("profile", MergeBranding(fiber.Map{
		"Title": "Profile",
		"User":  user,
	}, h.cfg))
}

// Update saves the submitted profile form. Errors are shown inline.
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Redirect().To("/login")
	}

	patch := profileFormPatch(c)
	if msg := validateProfileForm(patch); msg != "" {
		return h.formError(c, user, msg)
	}

	updated, err := h.profiles.Update(c.Context(), user.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrSlugTaken):
			return h.formError(c, user, "This slug is already taken")
		case errors.Is(err, profiles.ErrSlugReserved):
			return h.formError(c, user, "This slug is reserved")
		}
		return err
	}

	if isHTMX(c) {
		c.Set("HX-Redirect", "/profile")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Render("profile", MergeBranding(fiber.Map{
		"Title":   "Profile",
		"User":    updated,
		"Success": "Profile saved",
	}, h.cfg))
}

func (h *ProfileHandler) formError(c fiber.Ctx, user *models.User, msg string) error {
	if isHTMX(c) {
		return htmxError(c, msg)
	}
	return c.Status(fiber.StatusBadRequest).Render("profile", MergeBranding(fiber.Map{
		"Title": "Profile",
		"User":  user,
		"Error": msg,
	}, h.cfg))
}

// profileFormPatch reads the form. Every field is submitted, so each one
// becomes part of the patch; an empty avatar clears it.
func profileFormPatch(c fiber.Ctx) models.ProfilePatch {
	name := strings.TrimSpace(c.FormValue("name"))
	bio := strings.TrimSpace(c.FormValue("bio"))
	avatar := strings.TrimSpace(c.FormValue("avatar"))
	color := strings.ToLower(strings.TrimSpace(c.FormValue("theme_color")))
	slug := validation.NormalizeSlug(c.FormValue("slug"))

	return models.ProfilePatch{
		Name:       &name,
		Bio:        &bio,
		Avatar:     &avatar,
		ThemeColor: &color,
		Slug:       &slug,
	}
}

func validateProfileForm(p models.ProfilePatch) string {
	if ok, msg := validation.ValidateName(*p.Name); !ok {
		return msg
	}
	if ok, msg := validation.ValidateBio(*p.Bio); !ok {
		return msg
	}
	if *p.Avatar != "" {
		if ok, msg := validation.ValidateURL(*p.Avatar); !ok {
			return msg
		}
	}
	if !validation.ValidateThemeColor(*p.ThemeColor) {
		return "Theme color must look like #1a2b3c"
	}
	if !validation.SlugPattern.MatchString(*p.Slug) {
		return "Slug must be 3-20 characters of lowercase letters, numbers and hyphens"
	}
	return ""
}

package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/models"
	"biolinks/internal/ordering"
)

// LinkService is the link management the API exposes. *links.Service implements it.
type LinkService interface {
	ManagementView(ctx context.Context, ownerID uuid.UUID) (*models.ManagementView, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error)
	Create(ctx context.Context, ownerID uuid.UUID, input models.LinkInput) (*models.Link, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch models.LinkPatch) (*models.Link, error)
	Toggle(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Reorder(ctx context.Context, ownerID uuid.UUID, desired []uuid.UUID, expectedVersion *int64) (*models.ManagementView, error)
	ApplyAssignments(ctx context.Context, ownerID uuid.UUID, assignments []ordering.Assignment, expectedVersion *int64) (*models.ManagementView, error)
	Move(ctx context.Context, ownerID, id uuid.UUID, to int, expectedVersion *int64) (*models.ManagementView, error)
}

// LinkHandler handles link CRUD and ordering via JSON API.
type LinkHandler struct {
	links LinkService
}

// NewLinkHandler creates a new API link handler.
func NewLinkHandler(links LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// List returns the owner's links in display order with click counts and
// the collection version.
func (h *LinkHandler) List(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	view, err := h.links.ManagementView(c.Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, view)
}

// Get returns a single link by ID.
func (h *LinkHandler) Get(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	link, err := h.links.Get(c.Context(), user.ID, id)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, link)
}

// Create appends a new link to the end of the owner's list.
func (h *LinkHandler) Create(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input models.LinkInput
	if err := c.Bind().JSON(&input); err != nil {
		return bindError(c, err)
	}

	link, err := h.links.Create(c.Context(), user.ID, input)
	if err != nil {
		return writeError(c, err)
	}

	return jsonCreated(c, link)
}

// Update changes the fields present in the body. Order cannot be changed
// here; use the reorder or move endpoints.
func (h *LinkHandler) Update(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	var patch models.LinkPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return bindError(c, err)
	}

	link, err := h.links.Update(c.Context(), user.ID, id, patch)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, link)
}

// Toggle flips a link between active and hidden.
func (h *LinkHandler) Toggle(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	link, err := h.links.Toggle(c.Context(), user.ID, id)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, link)
}

// Delete removes a link; the links after it move up.
func (h *LinkHandler) Delete(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	if err := h.links.Delete(c.Context(), user.ID, id); err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, nil)
}

// Reorder applies a full ordering, given either as the desired id sequence
// or as explicit id/order pairs. On success it returns the confirmed list.
func (h *LinkHandler) Reorder(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req models.ReorderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	var (
		view *models.ManagementView
		err  error
	)
	switch {
	case req.IDs != nil && req.Links != nil:
		return jsonError(c, fiber.StatusBadRequest, "send either ids or links, not both")
	case req.Links != nil:
		assignments := make([]ordering.Assignment, len(req.Links))
		for i, l := range req.Links {
			assignments[i] = ordering.Assignment{ID: l.ID, Order: l.Order}
		}
		view, err = h.links.ApplyAssignments(c.Context(), user.ID, assignments, req.Version)
	case req.IDs != nil:
		view, err = h.links.Reorder(c.Context(), user.ID, req.IDs, req.Version)
	default:
		return jsonError(c, fiber.StatusBadRequest, "ids or links is required")
	}
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, view)
}

// Move relocates one link to a new position.
func (h *LinkHandler) Move(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid link id")
	}

	var req models.MoveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	view, err := h.links.Move(c.Context(), user.ID, id, req.To, req.Version)
	if err != nil {
		return writeError(c, err)
	}

	return jsonSuccess(c, view)
}

package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"biolinks/internal/clicks"
	"biolinks/internal/models"
)

// ClickRecorder queues click events. *clicks.Recorder implements it.
type ClickRecorder interface {
	Record(linkID uuid.UUID) error
}

// ClickHandler accepts click events from public pages.
type ClickHandler struct {
	recorder ClickRecorder
}

// NewClickHandler creates a new API click handler.
func NewClickHandler(recorder ClickRecorder) *ClickHandler {
	return &ClickHandler{recorder: recorder}
}

// Track queues a click and answers 202 without waiting for the write.
// Clicks on unknown or hidden links are dropped by the recorder.
func (h *ClickHandler) Track(c fiber.Ctx) error {
	var req models.ClickRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	if err := h.recorder.Record(req.LinkID); err != nil {
		switch {
		case errors.Is(err, clicks.ErrQueueFull):
			return jsonErrorWith(c, fiber.StatusServiceUnavailable, "click queue full", fiber.Map{"retryable": true})
		case errors.Is(err, clicks.ErrRecorderStopped):
			return jsonError(c, fiber.StatusServiceUnavailable, "click recording unavailable")
		}
		return writeError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "ok"})
}

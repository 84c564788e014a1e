package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"biolinks/internal/links"
	"biolinks/internal/platforms"
	"biolinks/internal/profiles"
	"biolinks/internal/validation"
)

// writeError maps a service error onto the JSON envelope. Conflicts carry
// refetch so the client reloads the confirmed list; transient store
// failures carry retryable.
func writeError(c fiber.Ctx, err error) error {
	var verr *validation.Error
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return jsonErrorWith(c, fiber.StatusBadRequest, "validation failed", fiber.Map{"fields": verr.Fields})
	case errors.As(err, &ferr):
		return jsonError(c, ferr.Code, ferr.Message)
	case errors.Is(err, links.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "link not found")
	case errors.Is(err, links.ErrProfileNotFound):
		return jsonError(c, fiber.StatusNotFound, "profile not found")
	case errors.Is(err, links.ErrInvalidReorderIntent):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, platforms.ErrInvalidPlatformURL), errors.Is(err, platforms.ErrUnknownPlatform):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, links.ErrStaleVersion):
		return jsonErrorWith(c, fiber.StatusConflict, "links changed since they were loaded", fiber.Map{"refetch": true})
	case errors.Is(err, links.ErrPartialBatchFailure):
		return jsonErrorWith(c, fiber.StatusConflict, "reorder was not applied", fiber.Map{"refetch": true})
	case errors.Is(err, profiles.ErrSlugReserved):
		return jsonError(c, fiber.StatusBadRequest, "this slug is reserved")
	case errors.Is(err, profiles.ErrSlugTaken):
		return jsonError(c, fiber.StatusConflict, "this slug is already taken")
	case errors.Is(err, links.ErrStoreUnavailable):
		return jsonErrorWith(c, fiber.StatusServiceUnavailable, "storage unavailable", fiber.Map{"retryable": true})
	}

	slog.ErrorContext(c.Context(), "request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return jsonError(c, fiber.StatusInternalServerError, "internal error")
}

// bindError turns a body binding failure into a 400.
func bindError(c fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return writeError(c, err)
	}
	return jsonError(c, fiber.StatusBadRequest, "invalid request body")
}

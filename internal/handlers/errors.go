package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/services"
)

// respondError writes the JSON error body for err. Internal details of
// upstream failures are logged, never returned.
func respondError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":  "validation_error",
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, services.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrConflict):
		return errorJSON(c, fiber.StatusConflict, "conflict", err.Error())
	case errors.Is(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", err.Error())
	}

	logger.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Interface("request_id", c.Locals("requestid")).
		Msg("request failed")
	return errorJSON(c, fiber.StatusInternalServerError, "upstream_failure", "Internal server error")
}

func errorJSON(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  kind,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, "bad_request", message)
}

// ErrorHandler handles errors that escape route handlers, such as unknown
// routes, oversized bodies and recovered panics.
func ErrorHandler(logger *zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := "error"
			switch fe.Code {
			case fiber.StatusNotFound:
				kind = "not_found"
			case fiber.StatusMethodNotAllowed:
				kind = "method_not_allowed"
			case fiber.StatusRequestEntityTooLarge:
				kind = "payload_too_large"
			case fiber.StatusBadRequest:
				kind = "bad_request"
			}
			if fe.Code < fiber.StatusInternalServerError {
				return errorJSON(c, fe.Code, kind, fe.Message)
			}
		}
		return respondError(c, logger, err)
	}
}

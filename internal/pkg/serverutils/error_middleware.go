package serverutils

import (
	"errors"

	"ops-assistant-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// ErrorHandlerMiddleware maps service errors to HTTP responses so
// controllers can simply bubble errors up.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperrors.AsAppError(err); ok {
			return ctx.Status(appErr.StatusCode).JSON(errorBody{
				Message: appErr.Message,
				Kind:    appErr.Kind,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(errorBody{Message: fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Message: "Internal server error",
			Kind:    apperrors.KindInternal,
		})
	}
}

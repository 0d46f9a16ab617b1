package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// NotFoundError marks lookups that should surface as 404 instead of 500.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) error {
	return &NotFoundError{Message: message}
}

// ErrorHandlerMiddleware converts service errors into JSON envelopes.
// Internal error details never reach the response body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorBody{Message: notFound.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{Message: fiberErr.Message})
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorBody{Message: validationErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{Message: "Internal server error"})
	}
}

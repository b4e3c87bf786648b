package serverutils

import (
	"errors"

	"ai-coaching-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON error envelope. AppError carries its own status; fiber errors keep
// theirs; anything else becomes a logged 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == KindNotConfigured || appErr.Kind == KindTransport {
				log.Error("HTTP", "Upstream failure", map[string]interface{}{
					"path":  ctx.Path(),
					"kind":  string(appErr.Kind),
					"error": appErr.Error(),
				})
			}
			return ctx.Status(appErr.HTTPStatus()).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}

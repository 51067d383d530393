// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-botbuilder-be/pkg/llm"
	"ai-botbuilder-be/pkg/llm/orchestrator"
)

// ErrorHandlerMiddleware converts errors that escaped the controllers into
// consistent JSON bodies. Generation-backend failures get dedicated statuses
// so callers can tell "wait and retry" from "fix your credentials".
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var rateErr *llm.RateLimitError
		if errors.As(err, &rateErr) {
			ctx.Set("Retry-After", rateErr.RetryAfter.String())
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"code":        fiber.StatusTooManyRequests,
				"message":     "generation backend is throttling requests",
				"retry_after": rateErr.RetryAfter.Seconds(),
			})
		}

		var authErr *llm.AuthError
		if errors.As(err, &authErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(
				ErrorResponse(fiber.StatusBadGateway, "generation backend rejected our credentials"))
		}

		var exhausted *orchestrator.ExhaustedError
		if errors.As(err, &exhausted) {
			return ctx.Status(fiber.StatusBadGateway).JSON(
				ErrorResponse(fiber.StatusBadGateway, exhausted.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}

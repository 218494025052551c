package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/middleware"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
)

// currentAccount loads the authenticated account with its subacquirer.
func currentAccount(c *fiber.Ctx, store services.Store) (*models.Account, error) {
	accountID, ok := middleware.GetCurrentAccountID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
	}

	account, err := store.FindAccount(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}
		return nil, err
	}
	return account, nil
}

// creationError maps orchestrator failures to HTTP responses. Gateway
// errors keep their classification visible to the API client.
func creationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrNoSubacquirer) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	var unsupported *gateway.UnsupportedGatewayError
	if errors.As(err, &unsupported) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, unsupported.Error())
	}

	if gerr, ok := gateway.AsError(err); ok {
		switch gerr.Kind {
		case gateway.KindValidation, gateway.KindInvalidPayload:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": gerr.Message,
				"errors":  gerr.ValidationErrors,
			})
		case gateway.KindRateLimit:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message":     gerr.Message,
				"retry_after": gerr.RetryAfter,
			})
		case gateway.KindTimeout:
			return fiber.NewError(fiber.StatusGatewayTimeout, gerr.Message)
		default:
			return fiber.NewError(fiber.StatusBadGateway, gerr.Message)
		}
	}

	return err
}

func isoTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

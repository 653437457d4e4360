package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"batterymart/provider"
	"batterymart/service"
)

const msgVerificationFailed = "verification failed, try again"

// errorStatus maps service and provider errors onto HTTP statuses.
func errorStatus(err error) (int, string) {
	var authErr *provider.AuthenticationError
	switch {
	case errors.As(err, &authErr):
		return fiber.StatusServiceUnavailable, "verification provider unavailable"
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNotAdmin),
		errors.Is(err, service.ErrNotStoreOwner):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrStoreAlreadyApproved),
		errors.Is(err, service.ErrStoreAlreadyRejected):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidSubject):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, msg := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

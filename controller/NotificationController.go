package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"batterymart/dto"
	"batterymart/model"
)

// NotificationAPI is implemented by *service.NotificationService.
type NotificationAPI interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationController struct {
	svc    NotificationAPI
	logger *zap.Logger
}

func NewNotificationController(svc NotificationAPI, logger *zap.Logger) *NotificationController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationController{svc: svc, logger: logger}
}

// List godoc
// @Summary      List a user's notifications
// @Tags         notifications
// @Produce      json
// @Param        id      path   string  true   "User UUID"
// @Param        unread  query  bool    false  "Only unread"
// @Param        limit   query  int     false  "Max items (default 50, max 200)"
// @Success      200  {array}   model.Notification
// @Failure      400  {object}  map[string]string
// @Router       /users/{id}/notifications [get]
func (nc *NotificationController) List(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	items, err := nc.svc.List(c.UserContext(), userID, c.QueryBool("unread"), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, nc.logger, err)
	}
	return c.JSON(items)
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "User UUID"
// @Success      200  {object}  dto.UnreadCountResponse
// @Failure      400  {object}  map[string]string
// @Router       /users/{id}/notifications/unread-count [get]
func (nc *NotificationController) UnreadCount(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	n, err := nc.svc.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, nc.logger, err)
	}
	return c.JSON(dto.UnreadCountResponse{Unread: n})
}

// MarkAllRead godoc
// @Summary      Mark all of a user's notifications read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "User UUID"
// @Success      200  {object}  dto.MarkAllReadResponse
// @Failure      400  {object}  map[string]string
// @Router       /users/{id}/notifications/read-all [post]
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	n, err := nc.svc.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, nc.logger, err)
	}
	return c.JSON(dto.MarkAllReadResponse{Updated: n})
}

// MarkRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Param        id   path  string  true  "Notification UUID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /notifications/{id}/read [post]
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := nc.svc.MarkRead(c.UserContext(), id); err != nil {
		return respondError(c, nc.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

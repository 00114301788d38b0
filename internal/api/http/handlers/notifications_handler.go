package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/service"
)

// NotificationsHandler serves the per-user inbox. Self-only routes are guarded by auth.RequireSelfParam.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// ListForUser GET /notifications/user/:userId.
func (h *NotificationsHandler) ListForUser(c *fiber.Ctx) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	rows, err := h.service.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationResponses(rows))
}

// UnreadCount GET /notifications/user/:userId/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UnreadCountResponse{Unread: count})
}

// MarkAllRead PUT /notifications/user/:userId/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MarkAllReadResponse{Updated: updated})
}

// MarkRead PUT /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "notification marked as read"})
}

// Broadcast POST /notifications/broadcast.
func (h *NotificationsHandler) Broadcast(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.BroadcastRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	row, err := h.service.Broadcast(c.UserContext(), user, req.TicketID, req.Message)
	if err != nil {
		return err
	}
	if row == nil {
		return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "ticket has no creator to notify"})
	}
	return c.Status(http.StatusCreated).JSON(dto.NewNotificationResponse(*row))
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/service"
)

// NotificationsHandler serves the staff notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications. Newest first.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	items, err := h.notifications.List(c.UserContext())
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.NotificationItem{}
	}
	unread := 0
	for _, item := range items {
		if !item.Read {
			unread++
		}
	}
	return c.JSON(fiber.Map{"data": items, "meta": fiber.Map{"unread": unread}})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

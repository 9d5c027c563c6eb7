package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/service"
)

// NotificationsHandler exposes the synchronous dispatch trigger.
type NotificationsHandler struct {
	dispatcher *service.DispatcherService
}

// NewNotificationsHandler returns a new handler instance.
func NewNotificationsHandler(dispatcher *service.DispatcherService) *NotificationsHandler {
	return &NotificationsHandler{dispatcher: dispatcher}
}

// Process runs one notification batch and returns its summary.
func (h *NotificationsHandler) Process(c *fiber.Ctx) error {
	summary, err := h.dispatcher.ProcessBatch(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/service"
	"github.com/spec-kit/helpdesk-core/pkg/util"
)

// AssistHandler exposes the pipeline trigger: "a comment event was created".
type AssistHandler struct {
	assist *service.AssistService
}

// NewAssistHandler returns a new handler instance.
func NewAssistHandler(assist *service.AssistService) *AssistHandler {
	return &AssistHandler{assist: assist}
}

// Trigger runs the pipeline for one comment event. Logical no-ops return
// 200 with skipped=true; a held lease returns 409; pipeline failures map
// through the error middleware.
func (h *AssistHandler) Trigger(c *fiber.Ctx) error {
	ticketID := c.Params("ticketID")
	eventID := c.Params("eventID")

	err := h.assist.HandleCommentEvent(c.UserContext(), ticketID, eventID)
	switch {
	case errors.Is(err, service.ErrAssistSkipped):
		return c.JSON(fiber.Map{"skipped": true})
	case errors.Is(err, service.ErrAssistBusy):
		return util.NewConflict("a pipeline run is already in progress for this ticket", map[string]any{
			"ticket_id": ticketID,
		})
	case err != nil:
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
}

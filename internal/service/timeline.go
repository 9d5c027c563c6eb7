package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// TurnRole tags a conversation turn for prompting.
type TurnRole string

const (
	TurnRoleCustomer  TurnRole = "customer"
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleSystem    TurnRole = "system"
)

// ConversationTurn is one prompt-ready entry of the reconstructed timeline.
type ConversationTurn struct {
	Role TurnRole
	Text string
}

// BuildTimeline maps a ticket's ordered event log to conversation turns,
// oldest first. Comments become customer or assistant turns depending on
// the author; status, priority, and assignment changes become synthesized
// system notes; every other event type is excluded. The result is a pure
// function of the input, so identical logs always reconstruct identically.
func BuildTimeline(events []domain.TicketEvent, customerID string) []ConversationTurn {
	turns := make([]ConversationTurn, 0, len(events))
	for _, event := range events {
		switch event.Type {
		case domain.EventTypeComment:
			role := TurnRoleAssistant
			if event.CreatedBy == customerID {
				role = TurnRoleCustomer
			}
			turns = append(turns, ConversationTurn{Role: role, Text: event.Payload.CommentText})
		case domain.EventTypeStatusChange:
			if event.Payload.NewStatus != nil {
				turns = append(turns, systemTurn(fmt.Sprintf("status changed to %s", strings.ToLower(string(*event.Payload.NewStatus)))))
			}
		case domain.EventTypeAssignmentChange:
			if event.Payload.NewAssignee != nil {
				turns = append(turns, systemTurn(fmt.Sprintf("assigned to %s", *event.Payload.NewAssignee)))
			}
		case domain.EventTypePriorityChange:
			if event.Payload.NewPriority != nil {
				turns = append(turns, systemTurn(fmt.Sprintf("priority set to %s", strings.ToLower(string(*event.Payload.NewPriority)))))
			}
		default:
			// notes, ratings, tag changes, and forward-incompatible event
			// types never reach the prompt
		}
	}
	return turns
}

func systemTurn(text string) ConversationTurn {
	return ConversationTurn{Role: TurnRoleSystem, Text: text}
}

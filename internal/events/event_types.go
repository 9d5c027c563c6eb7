package events

import (
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCommentAdded EventType = "ticket_comment_added"
	EventAssistHandoff      EventType = "assist_handoff"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	EventID     string          `json:"event_id"`
	AuthorID    string          `json:"author_id"`
	AuthorRole  domain.UserRole `json:"author_role"`
	BodyPreview string          `json:"body_preview"`
}

// AssistHandoffPayload payload.
type AssistHandoffPayload struct {
	EventID         string                `json:"event_id"`
	Reason          string                `json:"reason"`
	AnalysisFailure domain.RubricCategory `json:"analysis_failure"`
	Confidence      float64               `json:"confidence"`
}

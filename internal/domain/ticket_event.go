package domain

import "time"

// TicketEventType enumerates the kinds of entries in a ticket's event log.
type TicketEventType string

const (
	EventTypeComment          TicketEventType = "comment"
	EventTypeStatusChange     TicketEventType = "status_change"
	EventTypePriorityChange   TicketEventType = "priority_change"
	EventTypeAssignmentChange TicketEventType = "assignment_change"
	EventTypeTagChange        TicketEventType = "tag_change"
	EventTypeNote             TicketEventType = "note"
	EventTypeRating           TicketEventType = "rating"
)

// TicketEventPayload carries the type-specific fields of an event.
// Exactly the fields relevant to the event type are populated.
type TicketEventPayload struct {
	CommentText   string          `json:"comment_text,omitempty"`
	OldStatus     *TicketStatus   `json:"old_status,omitempty"`
	NewStatus     *TicketStatus   `json:"new_status,omitempty"`
	OldPriority   *TicketPriority `json:"old_priority,omitempty"`
	NewPriority   *TicketPriority `json:"new_priority,omitempty"`
	OldAssignee   *string         `json:"old_assignee,omitempty"`
	NewAssignee   *string         `json:"new_assignee,omitempty"`
	OldTag        *string         `json:"old_tag,omitempty"`
	NewTag        *string         `json:"new_tag,omitempty"`
	RatingValue   *int            `json:"rating_value,omitempty"`
	RatingComment string          `json:"rating_comment,omitempty"`
}

// TicketEvent is one immutable entry in a ticket's append-only log.
// Ordering by CreatedAt with Seq as the tie-break defines the canonical
// conversation history.
type TicketEvent struct {
	ID        string
	TicketID  string
	Seq       int64
	Type      TicketEventType
	CreatedBy string
	CreatedAt time.Time
	Payload   TicketEventPayload
}

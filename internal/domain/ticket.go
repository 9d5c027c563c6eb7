package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Ticket is the aggregate for support requests. AIEnabled transitions
// true to false exactly once, performed by the assist pipeline's handoff
// gate; re-enabling is a manual action outside this service.
type Ticket struct {
	ID                string
	OrganizationID    string
	Title             string
	Description       string
	Status            TicketStatus
	Priority          TicketPriority
	Tag               *string
	CreatedBy         string
	AssigneeID        *string
	AIEnabled         bool
	LastHandoffReason *EvaluationResult
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

package domain

import "time"

// UserRole distinguishes customers from support agents.
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleAgent    UserRole = "AGENT"
)

// User is a member of one organization, either a customer or an agent.
type User struct {
	ID             string
	OrganizationID string
	Email          string
	DisplayName    string
	Role           UserRole
	CreatedAt      time.Time
}

package domain

import "time"

// Organization is an isolated tenant. Every ticket, event, and KB article
// belongs to exactly one organization.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

package domain

import "time"

// ArticleStatus enumerates knowledge-base article lifecycle states.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
)

// KBArticle is a knowledge-base article scoped to one organization.
// The embedding is computed at publish time; only published articles
// participate in similarity search.
type KBArticle struct {
	ID             string
	OrganizationID string
	Title          string
	Content        string
	Status         ArticleStatus
	Embedding      []float32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArticleMatch is one ranked result from a similarity search.
type ArticleMatch struct {
	ArticleID  string
	Title      string
	Content    string
	URL        string
	Similarity float64
}

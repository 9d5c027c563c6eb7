// Package ai defines the model-provider interfaces consumed by the assist
// pipeline. Components take these interfaces, never a concrete provider.
package ai

import (
	"context"
	"errors"
)

// Role tags one message in a completion request.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in an ordered prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompleteOptions tunes a single completion call. Generation uses a fluent
// temperature; evaluation runs near zero for consistency.
type CompleteOptions struct {
	Temperature float64
}

// Completer produces text from an ordered, role-tagged message list.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
	Name() string
}

// Embedder computes a fixed-length vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrEmptyCompletion is returned when the provider responds without any
// generated content.
var ErrEmptyCompletion = errors.New("provider returned empty completion")

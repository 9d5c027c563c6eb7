package ai

import (
	"fmt"

	"github.com/spec-kit/helpdesk-core/internal/config"
)

// Provider bundles the completion and embedding capabilities one vendor
// exposes.
type Provider interface {
	Completer
	Embedder
}

// NewProvider constructs the configured provider. Called once at startup.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be openai", cfg.Provider)
	}
}

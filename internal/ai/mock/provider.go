// Package mock provides function-field fakes for the ai interfaces.
package mock

import (
	"context"

	"github.com/spec-kit/helpdesk-core/internal/ai"
)

// Provider satisfies ai.Provider for testing.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, messages []ai.Message, opts ai.CompleteOptions) (string, error)
	EmbedFunc    func(ctx context.Context, text string) ([]float32, error)
}

var _ ai.Provider = (*Provider)(nil)

func (m *Provider) Name() string {
	if m.Name_ == "" {
		return "mock"
	}
	return m.Name_
}

func (m *Provider) Complete(ctx context.Context, messages []ai.Message, opts ai.CompleteOptions) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, opts)
	}
	return "", nil
}

func (m *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{0, 0, 0}, nil
}

// NewFailingProvider returns a Provider whose every call fails with err.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(context.Context, []ai.Message, ai.CompleteOptions) (string, error) {
			return "", err
		},
		EmbedFunc: func(context.Context, string) ([]float32, error) {
			return nil, err
		},
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ai/mock"
	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/domain"
)

func assistConfig() config.AssistConfig {
	return config.AssistConfig{
		RetrievalK:       3,
		ExcerptChars:     200,
		KBArticleBaseURL: "/kb",
	}
}

func embedProvider() *mock.Provider {
	return &mock.Provider{
		EmbedFunc: func(context.Context, string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
}

func TestRetrieveBuildsArticleURLs(t *testing.T) {
	searcher := &mockSearcher{matches: []domain.ArticleMatch{
		{ArticleID: "a1", Title: "Reset your password", Similarity: 0.91},
		{ArticleID: "a2", Title: "Billing FAQ", Similarity: 0.73},
	}}
	orgs := &mockOrgRepo{org: &domain.Organization{ID: "org-1", Slug: "acme"}}
	retriever := NewKnowledgeRetriever(embedProvider(), searcher, orgs, zap.NewNop(), assistConfig())

	matches := retriever.Retrieve(context.Background(), "how do I reset my password?", "org-1")

	require.Len(t, matches, 2)
	assert.Equal(t, "/kb/acme/articles/a1", matches[0].URL)
	assert.Equal(t, "/kb/acme/articles/a2", matches[1].URL)
	assert.Equal(t, "org-1", searcher.gotOrg)
	assert.Equal(t, 3, searcher.gotK)
}

func TestRetrieveCapsAtK(t *testing.T) {
	searcher := &mockSearcher{matches: []domain.ArticleMatch{
		{ArticleID: "a1"}, {ArticleID: "a2"}, {ArticleID: "a3"}, {ArticleID: "a4"},
	}}
	orgs := &mockOrgRepo{org: &domain.Organization{Slug: "acme"}}
	retriever := NewKnowledgeRetriever(embedProvider(), searcher, orgs, zap.NewNop(), assistConfig())

	matches := retriever.Retrieve(context.Background(), "query", "org-1")

	assert.Len(t, matches, 3)
}

func TestRetrieveDegradesToEmpty(t *testing.T) {
	boom := errors.New("provider down")

	t.Run("embedding failure", func(t *testing.T) {
		retriever := NewKnowledgeRetriever(mock.NewFailingProvider(boom), &mockSearcher{}, &mockOrgRepo{}, zap.NewNop(), assistConfig())
		assert.Empty(t, retriever.Retrieve(context.Background(), "query", "org-1"))
	})

	t.Run("search failure", func(t *testing.T) {
		retriever := NewKnowledgeRetriever(embedProvider(), &mockSearcher{err: boom}, &mockOrgRepo{}, zap.NewNop(), assistConfig())
		assert.Empty(t, retriever.Retrieve(context.Background(), "query", "org-1"))
	})

	t.Run("organization lookup failure", func(t *testing.T) {
		searcher := &mockSearcher{matches: []domain.ArticleMatch{{ArticleID: "a1"}}}
		retriever := NewKnowledgeRetriever(embedProvider(), searcher, &mockOrgRepo{err: boom}, zap.NewNop(), assistConfig())
		assert.Empty(t, retriever.Retrieve(context.Background(), "query", "org-1"))
	})

	t.Run("no matches", func(t *testing.T) {
		retriever := NewKnowledgeRetriever(embedProvider(), &mockSearcher{}, &mockOrgRepo{}, zap.NewNop(), assistConfig())
		assert.Empty(t, retriever.Retrieve(context.Background(), "query", "org-1"))
	})
}

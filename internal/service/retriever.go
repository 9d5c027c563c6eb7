package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ai"
	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// KnowledgeRetriever embeds a query and returns the top-K most similar
// published articles for one organization, each with a navigable URL.
// KB context is an enhancement, not a dependency of generation: every
// failure degrades to an empty result instead of failing the pipeline.
type KnowledgeRetriever struct {
	embedder ai.Embedder
	searcher repository.ArticleSearcher
	orgs     repository.OrganizationRepository
	logger   *zap.Logger
	cfg      config.AssistConfig
}

// NewKnowledgeRetriever constructs the retriever.
func NewKnowledgeRetriever(embedder ai.Embedder, searcher repository.ArticleSearcher, orgs repository.OrganizationRepository, logger *zap.Logger, cfg config.AssistConfig) *KnowledgeRetriever {
	return &KnowledgeRetriever{
		embedder: embedder,
		searcher: searcher,
		orgs:     orgs,
		logger:   logger,
		cfg:      cfg,
	}
}

// Retrieve returns up to RetrievalK matches ordered by descending
// similarity. An embedding or search failure returns an empty slice.
func (r *KnowledgeRetriever) Retrieve(ctx context.Context, query, organizationID string) []domain.ArticleMatch {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("kb retrieval skipped: embedding failed",
			zap.String("organization_id", organizationID), zap.Error(err))
		return nil
	}

	k := r.cfg.RetrievalK
	if k <= 0 {
		k = 3
	}
	matches, err := r.searcher.Search(ctx, vector, organizationID, k)
	if err != nil {
		r.logger.Warn("kb retrieval skipped: search failed",
			zap.String("organization_id", organizationID), zap.Error(err))
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > k {
		matches = matches[:k]
	}

	org, err := r.orgs.GetByID(ctx, organizationID)
	if err != nil {
		r.logger.Warn("kb retrieval skipped: organization lookup failed",
			zap.String("organization_id", organizationID), zap.Error(err))
		return nil
	}
	for i := range matches {
		matches[i].URL = fmt.Sprintf("%s/%s/articles/%s", r.cfg.KBArticleBaseURL, org.Slug, matches[i].ArticleID)
	}
	return matches
}

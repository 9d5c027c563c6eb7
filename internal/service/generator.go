package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-core/internal/ai"
	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/domain"
)

const roleInstructions = `You are a support assistant replying to a customer on a help-desk ticket.
Your goals, in order:
- Resolve the customer's question clearly and correctly.
- Ground every factual claim in the knowledge-base articles you are given; never invent product behavior.
- Match the customer's tone and language.
- Be empathetic when the customer is frustrated.
- Be concise: answer the question, do not pad.`

const formattingRules = `Reply in plain text only. No markdown, no formatting characters.
Write URLs out literally. If you need a list, use simple numbered lines (1. 2. 3.).`

const kbContextHeader = `You have access to the following knowledge-base articles. When a reply relies on an article, cite it by its URL instead of reproducing the full content.`

// ResponseGenerator assembles the prompt and produces a candidate reply.
//
// Message order is load-bearing: role instructions first, KB grounding
// before the conversation so it is not displaced by recency, the
// conversation itself, and the formatting rules last because they are the
// most recency-sensitive instruction.
type ResponseGenerator struct {
	completer    ai.Completer
	temperature  float64
	excerptChars int
}

// NewResponseGenerator constructs the generator.
func NewResponseGenerator(completer ai.Completer, aiCfg config.AIConfig, assistCfg config.AssistConfig) *ResponseGenerator {
	excerpt := assistCfg.ExcerptChars
	if excerpt <= 0 {
		excerpt = 200
	}
	return &ResponseGenerator{
		completer:    completer,
		temperature:  aiCfg.GenTemperature,
		excerptChars: excerpt,
	}
}

// Generate returns the candidate reply text verbatim. A provider failure
// propagates: there is no fallback reply.
func (g *ResponseGenerator) Generate(ctx context.Context, turns []ConversationTurn, articles []domain.ArticleMatch) (string, error) {
	messages := make([]ai.Message, 0, len(turns)+3)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: roleInstructions})

	if len(articles) > 0 {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: g.kbContextMessage(articles)})
	}

	for _, turn := range turns {
		messages = append(messages, ai.Message{Role: promptRole(turn.Role), Content: turn.Text})
	}

	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: formattingRules})

	reply, err := g.completer.Complete(ctx, messages, ai.CompleteOptions{Temperature: g.temperature})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

func (g *ResponseGenerator) kbContextMessage(articles []domain.ArticleMatch) string {
	var b strings.Builder
	b.WriteString(kbContextHeader)
	for _, article := range articles {
		b.WriteString("\n\n")
		b.WriteString("Title: " + article.Title + "\n")
		b.WriteString("URL: " + article.URL + "\n")
		b.WriteString("Excerpt: " + truncateRunes(article.Content, g.excerptChars))
	}
	return b.String()
}

func promptRole(role TurnRole) string {
	switch role {
	case TurnRoleCustomer:
		return ai.RoleUser
	case TurnRoleAssistant:
		return ai.RoleAssistant
	default:
		return ai.RoleSystem
	}
}

// truncateRunes cuts s to at most max characters without splitting runes.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

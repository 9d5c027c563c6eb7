package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ai"
	"github.com/spec-kit/helpdesk-core/internal/domain"
)

const evaluatorInstructions = `You are an independent quality evaluator for AI-generated support replies.
You are NOT the assistant that wrote the reply. Score the candidate reply against five dimensions:
- technicalAccuracy: the reply must not claim facts absent from the provided knowledge-base content. A claim with no KB backing is a failure, not a gap.
- conversationFlow: no repetition of earlier replies, aware of the conversation so far.
- customerSentiment: detect frustration or escalation that a human should handle.
- responseQuality: actionable, at an appropriate technical level for the customer.
- kbUtilization: available articles are used well; note topics the KB is missing.

Respond with a single JSON object and nothing else:
{
  "needsHandoff": boolean,
  "reason": string (required when needsHandoff is true),
  "analysisFailure": one of "technicalAccuracy" | "conversationFlow" | "customerSentiment" | "responseQuality" | "kbUtilization" (required when needsHandoff is true),
  "confidence": number between 0 and 1,
  "kbGaps": array of missing-topic strings,
  "analysis": {
    "technicalAccuracy": string,
    "conversationFlow": string,
    "customerSentiment": string,
    "responseQuality": string,
    "kbUtilization": string
  }
}`

const failedToEvaluate = "failed to evaluate"

// ResponseEvaluator scores a candidate reply with a second, independent
// model call and renders a structured handoff decision. Output that cannot
// be parsed into an EvaluationResult falls back to a forced handoff: a
// broken evaluator must never silently approve a reply.
type ResponseEvaluator struct {
	completer   ai.Completer
	temperature float64
	logger      *zap.Logger
}

// NewResponseEvaluator constructs the evaluator.
func NewResponseEvaluator(completer ai.Completer, temperature float64, logger *zap.Logger) *ResponseEvaluator {
	return &ResponseEvaluator{completer: completer, temperature: temperature, logger: logger}
}

// Evaluate returns the structured verdict. A transport failure returns an
// error and is pipeline-fatal; a malformed verdict returns the fail-safe
// forced-handoff result instead.
func (e *ResponseEvaluator) Evaluate(ctx context.Context, priorTurns []ConversationTurn, latestMessage, candidateReply string, articles []domain.ArticleMatch) (domain.EvaluationResult, error) {
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: evaluatorInstructions},
		{Role: ai.RoleUser, Content: evaluationInput(priorTurns, latestMessage, candidateReply, articles)},
	}

	raw, err := e.completer.Complete(ctx, messages, ai.CompleteOptions{Temperature: e.temperature})
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("evaluate reply: %w", err)
	}

	result, err := parseEvaluation(raw)
	if err != nil {
		e.logger.Warn("evaluator output rejected, forcing handoff", zap.Error(err))
		return failSafeResult(), nil
	}
	return result, nil
}

func evaluationInput(priorTurns []ConversationTurn, latestMessage, candidateReply string, articles []domain.ArticleMatch) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	if len(priorTurns) == 0 {
		b.WriteString("(none)\n")
	}
	for _, turn := range priorTurns {
		b.WriteString(string(turn.Role) + ": " + turn.Text + "\n")
	}
	b.WriteString("\nLatest customer message:\n" + latestMessage + "\n")
	b.WriteString("\nCandidate reply under evaluation:\n" + candidateReply + "\n")
	b.WriteString("\nKnowledge-base articles available to the assistant:\n")
	if len(articles) == 0 {
		b.WriteString("(none)\n")
	}
	for _, article := range articles {
		b.WriteString("- " + article.Title + " (" + article.URL + ")\n")
	}
	return b.String()
}

// parseEvaluation decodes the evaluator's raw output into the result
// structure, rejecting anything that violates the schema.
func parseEvaluation(raw string) (domain.EvaluationResult, error) {
	var result domain.EvaluationResult
	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("decode evaluation: %w", err)
	}
	if err := validateEvaluation(&result); err != nil {
		return domain.EvaluationResult{}, err
	}
	return result, nil
}

func validateEvaluation(result *domain.EvaluationResult) error {
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.NeedsHandoff {
		if strings.TrimSpace(result.Reason) == "" {
			return fmt.Errorf("needsHandoff set without a reason")
		}
		if !validRubricCategory(result.AnalysisFailure) {
			return fmt.Errorf("invalid analysisFailure %q", result.AnalysisFailure)
		}
	}
	analysis := result.Analysis
	for _, assessment := range []string{
		analysis.TechnicalAccuracy,
		analysis.ConversationFlow,
		analysis.CustomerSentiment,
		analysis.ResponseQuality,
		analysis.KBUtilization,
	} {
		if strings.TrimSpace(assessment) == "" {
			return fmt.Errorf("analysis is missing a rubric assessment")
		}
	}
	return nil
}

func validRubricCategory(category domain.RubricCategory) bool {
	switch category {
	case domain.RubricTechnicalAccuracy,
		domain.RubricConversationFlow,
		domain.RubricCustomerSentiment,
		domain.RubricResponseQuality,
		domain.RubricKBUtilization:
		return true
	}
	return false
}

func failSafeResult() domain.EvaluationResult {
	return domain.EvaluationResult{
		NeedsHandoff: true,
		Reason:       "invalid evaluation response",
		Confidence:   0,
		Analysis: domain.RubricAnalysis{
			TechnicalAccuracy: failedToEvaluate,
			ConversationFlow:  failedToEvaluate,
			CustomerSentiment: failedToEvaluate,
			ResponseQuality:   failedToEvaluate,
			KBUtilization:     failedToEvaluate,
		},
	}
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models frequently wrap JSON in despite instructions.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ai"
	"github.com/spec-kit/helpdesk-core/internal/ai/mock"
	"github.com/spec-kit/helpdesk-core/internal/domain"
)

const validEvaluationJSON = `{
	"needsHandoff": false,
	"confidence": 0.87,
	"kbGaps": [],
	"analysis": {
		"technicalAccuracy": "grounded in the password reset article",
		"conversationFlow": "no repetition",
		"customerSentiment": "neutral",
		"responseQuality": "actionable steps",
		"kbUtilization": "cites the relevant article"
	}
}`

func evaluatorWith(raw string, err error) *ResponseEvaluator {
	provider := &mock.Provider{
		CompleteFunc: func(context.Context, []ai.Message, ai.CompleteOptions) (string, error) {
			return raw, err
		},
	}
	return NewResponseEvaluator(provider, 0, zap.NewNop())
}

func TestEvaluateParsesValidVerdict(t *testing.T) {
	result, err := evaluatorWith(validEvaluationJSON, nil).Evaluate(context.Background(), nil, "how?", "like this", nil)

	require.NoError(t, err)
	assert.False(t, result.NeedsHandoff)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
	assert.Equal(t, "grounded in the password reset article", result.Analysis.TechnicalAccuracy)
}

func TestEvaluateStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validEvaluationJSON + "\n```"
	result, err := evaluatorWith(fenced, nil).Evaluate(context.Background(), nil, "how?", "like this", nil)

	require.NoError(t, err)
	assert.False(t, result.NeedsHandoff)
}

func TestEvaluateFailSafeOnMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":            "I think the reply looks fine!",
		"empty":               "",
		"truncated":           `{"needsHandoff": false, "confidence"`,
		"handoff sans reason": `{"needsHandoff": true, "confidence": 0.5, "analysisFailure": "kbUtilization", "analysis": {"technicalAccuracy":"a","conversationFlow":"b","customerSentiment":"c","responseQuality":"d","kbUtilization":"e"}}`,
		"bad failure category": `{"needsHandoff": true, "reason": "because", "confidence": 0.5, "analysisFailure": "vibes", "analysis": {"technicalAccuracy":"a","conversationFlow":"b","customerSentiment":"c","responseQuality":"d","kbUtilization":"e"}}`,
		"missing analysis":     `{"needsHandoff": false, "confidence": 0.5, "analysis": {"technicalAccuracy":"a"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := evaluatorWith(raw, nil).Evaluate(context.Background(), nil, "q", "r", nil)

			require.NoError(t, err)
			assert.True(t, result.NeedsHandoff)
			assert.Zero(t, result.Confidence)
			assert.Equal(t, "invalid evaluation response", result.Reason)
			assert.Equal(t, failedToEvaluate, result.Analysis.TechnicalAccuracy)
			assert.Equal(t, failedToEvaluate, result.Analysis.KBUtilization)
		})
	}
}

func TestEvaluateClampsConfidence(t *testing.T) {
	raw := `{
		"needsHandoff": true,
		"reason": "no KB coverage for the billing question",
		"analysisFailure": "kbUtilization",
		"confidence": 1.7,
		"kbGaps": ["billing refunds"],
		"analysis": {
			"technicalAccuracy": "a", "conversationFlow": "b", "customerSentiment": "c",
			"responseQuality": "d", "kbUtilization": "no article covers refunds"
		}
	}`
	result, err := evaluatorWith(raw, nil).Evaluate(context.Background(), nil, "q", "r", nil)

	require.NoError(t, err)
	assert.True(t, result.NeedsHandoff)
	assert.Equal(t, domain.RubricKBUtilization, result.AnalysisFailure)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, []string{"billing refunds"}, result.KBGaps)
}

func TestEvaluateTransportFailureIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := evaluatorWith("", boom).Evaluate(context.Background(), nil, "q", "r", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-core/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAIClient(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		EmbeddingDim:   3,
		TimeoutSeconds: 5,
	})
}

func TestCompleteSendsMessagesAndReturnsText(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": RoleAssistant, "content": "hello there"}},
			},
		})
	})

	messages := []Message{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "hi"},
	}
	reply, err := client.Complete(context.Background(), messages, CompleteOptions{Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, messages, gotReq.Messages)
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-9)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Complete(context.Background(), nil, CompleteOptions{})

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompleteNonOKStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit"}`))
	})

	_, err := client.Complete(context.Background(), nil, CompleteOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limit")
}

func TestEmbedReturnsVector(t *testing.T) {
	var gotReq embeddingRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	})

	vector, err := client.Embed(context.Background(), "reset password")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "text-embedding-3-small", gotReq.Model)
	assert.Equal(t, "reset password", gotReq.Input)
}

func TestEmbedRejectsWrongDimensionality(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2}},
			},
		})
	})

	_, err := client.Embed(context.Background(), "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3")
}

func TestEmbedEmptyData(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	_, err := client.Embed(context.Background(), "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestNewProviderSelection(t *testing.T) {
	provider, err := NewProvider(config.AIConfig{Provider: "openai", BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	_, err = NewProvider(config.AIConfig{Provider: "clippy"})
	assert.Error(t, err)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/helpdesk-core/internal/config"
)

// OpenAIClient talks to an OpenAI-compatible HTTP API for both chat
// completions and embeddings. Any endpoint speaking the same wire format
// (vLLM, LiteLLM, Azure) works by pointing AI_BASE_URL at it.
type OpenAIClient struct {
	cfg  config.AIConfig
	http *http.Client
}

var _ Provider = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from config. The per-call timeout bounds
// every request; a timeout surfaces as a transport failure.
func NewOpenAIClient(cfg config.AIConfig) *OpenAIClient {
	return &OpenAIClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends the ordered message list and returns the generated text
// verbatim, stripped of wire metadata only.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error) {
	payload := chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: opts.Temperature,
	}

	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", payload, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return parsed.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed computes a fixed-length vector for the text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := embeddingRequest{
		Model: c.cfg.EmbeddingModel,
		Input: text,
	}

	var parsed embeddingResponse
	if err := c.post(ctx, "/embeddings", payload, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	vector := parsed.Data[0].Embedding
	// The kb_articles embedding column has a fixed dimensionality; a vector
	// of any other length would fail at insert or search time instead.
	if c.cfg.EmbeddingDim > 0 && len(vector) != c.cfg.EmbeddingDim {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vector), c.cfg.EmbeddingDim)
	}
	return vector, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("call %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

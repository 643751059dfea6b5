package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// OpenAIGenerator asks an OpenAI-compatible chat endpoint (Ollama,
// LM Studio, vLLM, etc.) for hints.
type OpenAIGenerator struct {
	url    string       // e.g. "http://localhost:1234"
	model  string       // e.g. "qwen3-8b"
	client *http.Client // reused across calls
	logger *slog.Logger
}

// Compile-time check: *OpenAIGenerator satisfies the Generator interface.
var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(url, model string, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ============================================================================
// Generator interface
// ============================================================================

const maxAttempts = 2

// GenerateHint retries once when the model answers with nothing usable;
// small local models occasionally return only a reasoning block.
func (g *OpenAIGenerator) GenerateHint(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := g.callLLM(ctx, "/no_think\n"+prompt)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		text, err := clean(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return text, nil
	}

	g.logger.Debug("llm hint failed", "model", g.model, "error", lastErr)
	return "", &GenerateError{
		Reason:  fmt.Sprintf("failed after %d attempts", maxAttempts),
		Wrapped: lastErr,
	}
}

// ============================================================================
// LLM communication
// ============================================================================

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callLLM sends a single request to the LLM and returns the raw text response.
func (g *OpenAIGenerator) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := llmRequest{
		Model: g.model,
		Messages: []llmMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM returned status %d", resp.StatusCode)
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return llmResp.Choices[0].Message.Content, nil
}

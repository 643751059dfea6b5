package hint

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicGenerator asks the Anthropic Messages API for hints.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

var _ Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator builds a client for apiKey. Extra options are
// appended after the key (base URL, retries).
func NewAnthropicGenerator(apiKey, model string, logger *slog.Logger, opts ...option.RequestOption) *AnthropicGenerator {
	if model == "" {
		model = DefaultAnthropicModel
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicGenerator{client: &client, model: model, logger: logger}
}

func (g *AnthropicGenerator) GenerateHint(ctx context.Context, prompt string) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 200,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		g.logger.Debug("anthropic hint failed", "model", g.model, "error", err)
		return "", &GenerateError{Reason: "anthropic request failed", Wrapped: err}
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	return clean(responseText)
}

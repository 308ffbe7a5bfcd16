// Package anthropic implements llm.Generator on top of the Anthropic Messages API
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropicAPI "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hellausefulsoftware/codescribe/internal/common/llm"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
)

// Default models per tier
const (
	DefaultFastModel  = "claude-3-5-haiku-20241022"
	DefaultLargeModel = "claude-3-7-sonnet-20250219"
)

const defaultMaxTokens = 1024

// Client generates text with the Anthropic API
type Client struct {
	client     *anthropicAPI.Client
	fastModel  string
	largeModel string
}

var _ llm.Generator = (*Client)(nil)

// NewClient creates a new client. Extra request options are mainly used by
// tests to point the SDK at a mock server.
func NewClient(token, fastModel, largeModel string, opts ...option.RequestOption) *Client {
	if !strings.HasPrefix(token, "sk-ant-") {
		logging.Warn("Anthropic token appears to be in incorrect format",
			"format_valid", false)
	}
	if fastModel == "" {
		fastModel = DefaultFastModel
	}
	if largeModel == "" {
		largeModel = DefaultLargeModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(token)}, opts...)

	logging.Info("Creating Anthropic client",
		"fast_model", fastModel,
		"large_model", largeModel)

	return &Client{
		client:     anthropicAPI.NewClient(opts...),
		fastModel:  fastModel,
		largeModel: largeModel,
	}
}

// Model returns the model name used for a tier
func (c *Client) Model(tier llm.Tier) string {
	if tier == llm.TierLarge {
		return c.largeModel
	}
	return c.fastModel
}

// Generate sends a single user turn and returns the concatenated text blocks
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := c.Model(req.Tier)

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicAPI.MessageNewParams{
		Model:     anthropicAPI.F(anthropicAPI.Model(model)),
		MaxTokens: anthropicAPI.F(int64(maxTokens)),
		Messages: anthropicAPI.F([]anthropicAPI.MessageParam{
			anthropicAPI.NewUserMessage(
				anthropicAPI.NewTextBlock(req.Prompt),
			),
		}),
	}
	if req.System != "" {
		params.System = anthropicAPI.F([]anthropicAPI.TextBlockParam{
			anthropicAPI.NewTextBlock(req.System),
		})
	}
	if req.Temperature > 0 {
		params.Temperature = anthropicAPI.F(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = anthropicAPI.F(req.TopP)
	}

	logging.Debug("Anthropic API request details",
		"model", model,
		"max_tokens", maxTokens,
		"prompt_length", len(req.Prompt),
		"system_length", len(req.System))

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logging.Error("Anthropic API error",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err))
		return "", fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}

	var text strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		logging.Warn("Empty response from Anthropic API", "content_items", len(message.Content))
		return "", fmt.Errorf("%w: empty response", llm.ErrGeneration)
	}

	logging.Info("Received response from Anthropic API",
		"model", model,
		"response_length", text.Len())

	return text.String(), nil
}

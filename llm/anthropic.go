package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
)

// AnthropicModel implements the LLM interface using Anthropic's API
type AnthropicModel struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int
	temperature float32
}

// NewAnthropic creates a new Anthropic client
func NewAnthropic(apiKey string, opts ...Option) (*AnthropicModel, error) {
	if err := requireAPIKey("Claude", apiKey); err != nil {
		logger.Error(err)
		return nil, err
	}

	cfg := newClientConfig(ProviderClaude.Info().DefaultModel, opts)

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = common.NewHTTPClient()
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	model := &AnthropicModel{
		client:      anthropic.NewClient(clientOpts...),
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}

	logger.Debugf("Anthropic client initialized with model: %s, max tokens: %d",
		model.modelName, model.maxTokens)

	return model, nil
}

// Prompt sends a request to Anthropic and returns the response
func (a *AnthropicModel) Prompt(ctx context.Context, req Request) Response {
	logger.Debugf("Sending prompt to Anthropic model: %s", a.modelName)

	messageParams := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   int64(a.maxTokens),
		Temperature: anthropic.Float(float64(a.temperature)),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	message, err := a.client.Messages.New(ctx, messageParams)
	if err != nil {
		return Response{
			Error: fmt.Errorf("Claude API error: %w", err),
		}
	}

	var content string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		}
	}

	if content == "" {
		return Response{
			Error: errors.New("Claude API error: response contained no text"),
		}
	}

	return Response{
		Content: content,
	}
}

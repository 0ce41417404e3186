package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIModel implements the LLM interface using OpenAI's API
type OpenAIModel struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
}

// NewOpenAI creates a new OpenAI client
func NewOpenAI(apiKey string, opts ...Option) (*OpenAIModel, error) {
	if err := requireAPIKey("OpenAI", apiKey); err != nil {
		logger.Error(err)
		return nil, err
	}

	cfg := newClientConfig(ProviderOpenAI.Info().DefaultModel, opts)

	config := openai.DefaultConfig(apiKey)
	if cfg.httpClient != nil {
		config.HTTPClient = cfg.httpClient
	} else {
		config.HTTPClient = common.NewHTTPClient()
	}
	if cfg.baseURL != "" {
		config.BaseURL = cfg.baseURL
	}

	model := &OpenAIModel{
		client:      openai.NewClientWithConfig(config),
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}

	logger.Debugf("OpenAI client initialized with model: %s, max tokens: %d",
		model.modelName, model.maxTokens)

	return model, nil
}

// Prompt sends a request to OpenAI and returns the response
func (o *OpenAIModel) Prompt(ctx context.Context, req Request) Response {
	logger.Debugf("Sending prompt to OpenAI model: %s", o.modelName)

	chatReq := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{
			Error: fmt.Errorf("OpenAI API error: %w", err),
		}
	}

	if len(resp.Choices) == 0 {
		return Response{
			Error: errors.New("OpenAI API error: response contained no choices"),
		}
	}

	return Response{
		Content: resp.Choices[0].Message.Content,
	}
}

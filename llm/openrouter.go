package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const (
	// OpenRouterBaseURL is the OpenRouter REST endpoint root
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	openRouterReferer = "https://github.com/bitrise-io/bitrise-plugins-ai-work-report"
	openRouterTitle   = "Git Work Reporter"
)

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float32             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

// OpenRouterModel implements the LLM interface with a plain REST call to OpenRouter
type OpenRouterModel struct {
	client      *retryablehttp.Client
	apiKey      string
	baseURL     string
	modelName   string
	maxTokens   int
	temperature float32
}

// NewOpenRouter creates a new OpenRouter client
func NewOpenRouter(apiKey string, opts ...Option) (*OpenRouterModel, error) {
	if err := requireAPIKey("OpenRouter", apiKey); err != nil {
		logger.Error(err)
		return nil, err
	}

	cfg := newClientConfig(ProviderOpenRouter.Info().DefaultModel, opts)

	client := common.NewRetryableClient(common.NoRetryConfig())
	if cfg.httpClient != nil {
		client.HTTPClient = cfg.httpClient
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = OpenRouterBaseURL
	}

	model := &OpenRouterModel{
		client:      client,
		apiKey:      apiKey,
		baseURL:     baseURL,
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}

	logger.Debugf("OpenRouter client initialized with model: %s, max tokens: %d",
		model.modelName, model.maxTokens)

	return model, nil
}

// Prompt posts a chat completion request to OpenRouter and returns the response
func (o *OpenRouterModel) Prompt(ctx context.Context, req Request) Response {
	logger.Debugf("Sending prompt to OpenRouter model: %s", o.modelName)

	content, err := o.complete(ctx, req)
	if err != nil {
		return Response{
			Error: fmt.Errorf("OpenRouter API error: %w", err),
		}
	}

	return Response{
		Content: content,
	}
}

func (o *OpenRouterModel) complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(openRouterRequest{
		Model: o.modelName,
		Messages: []openRouterMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", openRouterReferer)
	httpReq.Header.Set("X-Title", openRouterTitle)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := gjson.GetBytes(data, "error.message"); msg.Exists() {
			return "", fmt.Errorf("request failed with status %s: %s", resp.Status, msg.String())
		}
		return "", fmt.Errorf("request failed with status %s", resp.Status)
	}

	if msg := gjson.GetBytes(data, "error.message"); msg.Exists() {
		return "", errors.New(msg.String())
	}

	content := gjson.GetBytes(data, "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", errors.New("response contained no choices")
	}

	return content.String(), nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"google.golang.org/genai"
)

// GeminiModel implements the LLM interface using the Gemini API
type GeminiModel struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	modelName   string
	maxTokens   int
	temperature float32
}

// NewGemini creates a new Gemini client. The underlying SDK client is built
// per request because it needs a context.
func NewGemini(apiKey string, opts ...Option) (*GeminiModel, error) {
	if err := requireAPIKey("Gemini", apiKey); err != nil {
		logger.Error(err)
		return nil, err
	}

	cfg := newClientConfig(ProviderGemini.Info().DefaultModel, opts)

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = common.NewHTTPClient()
	}

	model := &GeminiModel{
		apiKey:      apiKey,
		baseURL:     cfg.baseURL,
		httpClient:  httpClient,
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}

	logger.Debugf("Gemini client initialized with model: %s, max tokens: %d",
		model.modelName, model.maxTokens)

	return model, nil
}

// Prompt sends a request to Gemini and returns the response
func (g *GeminiModel) Prompt(ctx context.Context, req Request) Response {
	logger.Debugf("Sending prompt to Gemini model: %s", g.modelName)

	clientConfig := &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL + "/"}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return Response{
			Error: fmt.Errorf("Gemini API error: %w", err),
		}
	}

	// The system instruction travels in the same turn as the commits.
	contents := genai.Text(req.SystemPrompt + "\n\n" + req.UserPrompt)

	resp, err := client.Models.GenerateContent(ctx, g.modelName, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		return Response{
			Error: fmt.Errorf("Gemini API error: %w", err),
		}
	}

	text := resp.Text()
	if text == "" {
		return Response{
			Error: errors.New("Gemini API error: response contained no text"),
		}
	}

	return Response{
		Content: text,
	}
}

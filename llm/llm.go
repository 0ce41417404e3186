package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
)

const (
	// DefaultMaxTokens caps the length of the generated report
	DefaultMaxTokens = 800
	// DefaultTemperature is the sampling temperature used for every provider
	DefaultTemperature = 0.7
)

// ErrUnsupportedProvider is returned for provider identifiers outside the supported set
var ErrUnsupportedProvider = errors.New("unsupported provider")

// OptionType defines the type of option
type OptionType string

// Available option types
const (
	ModelNameOption   OptionType = "model"
	MaxTokensOption   OptionType = "max_tokens"
	TemperatureOption OptionType = "temperature"
	BaseURLOption     OptionType = "base_url"
	HTTPClientOption  OptionType = "http_client"
)

// Option represents a generic configuration option for any LLM provider
type Option struct {
	Type  OptionType
	Value any
}

// WithModel creates an option to set the model name. An empty name keeps the provider default.
func WithModel(model string) Option {
	return Option{
		Type:  ModelNameOption,
		Value: model,
	}
}

// WithMaxTokens creates an option to set the max tokens
func WithMaxTokens(maxTokens int) Option {
	return Option{
		Type:  MaxTokensOption,
		Value: maxTokens,
	}
}

// WithTemperature creates an option to set the sampling temperature
func WithTemperature(temperature float32) Option {
	return Option{
		Type:  TemperatureOption,
		Value: temperature,
	}
}

// WithBaseURL creates an option to point the client at a different API endpoint
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithHTTPClient creates an option to set the HTTP client used for API calls
func WithHTTPClient(client *http.Client) Option {
	return Option{
		Type:  HTTPClientOption,
		Value: client,
	}
}

// Request represents the data needed to generate a prompt for the LLM
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Response represents the response from the LLM
type Response struct {
	Content string
	Error   error
}

// LLM defines the interface for language model prompting
type LLM interface {
	// Prompt sends a request to the language model and returns its response
	Prompt(ctx context.Context, req Request) Response
}

// clientConfig is the option set shared by every provider implementation.
type clientConfig struct {
	modelName   string
	maxTokens   int
	temperature float32
	baseURL     string
	httpClient  *http.Client
}

func newClientConfig(defaultModel string, opts []Option) clientConfig {
	cfg := clientConfig{
		modelName:   defaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}

	for _, opt := range opts {
		switch opt.Type {
		case ModelNameOption:
			if modelName, ok := opt.Value.(string); ok && modelName != "" {
				cfg.modelName = modelName
			}
		case MaxTokensOption:
			if maxTokens, ok := opt.Value.(int); ok {
				cfg.maxTokens = maxTokens
			}
		case TemperatureOption:
			if temperature, ok := opt.Value.(float32); ok {
				cfg.temperature = temperature
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok {
				cfg.baseURL = strings.TrimRight(baseURL, "/")
			}
		case HTTPClientOption:
			if client, ok := opt.Value.(*http.Client); ok {
				cfg.httpClient = client
			}
		}
	}

	return cfg
}

// NewLLM creates a client for the given provider identifier. Unknown
// identifiers fail with ErrUnsupportedProvider before anything is contacted.
func NewLLM(providerName, apiKey string, opts ...Option) (LLM, error) {
	provider, ok := ParseProvider(providerName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, providerName)
	}
	return NewForProvider(provider, apiKey, opts...)
}

// NewForProvider creates a client for an already parsed provider.
func NewForProvider(provider Provider, apiKey string, opts ...Option) (LLM, error) {
	var llmClient LLM
	var err error

	switch provider {
	case ProviderOpenAI:
		llmClient, err = NewOpenAI(apiKey, opts...)
	case ProviderClaude:
		llmClient, err = NewAnthropic(apiKey, opts...)
	case ProviderGemini:
		llmClient, err = NewGemini(apiKey, opts...)
	case ProviderOpenRouter:
		llmClient, err = NewOpenRouter(apiKey, opts...)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	if err == nil {
		logger.Debugf("Using LLM provider: %s", provider)
	}

	return llmClient, err
}

func requireAPIKey(providerName, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key cannot be empty", providerName)
	}
	return nil
}

package llm

import (
	"slices"
	"strings"
)

// Provider identifies a supported language model service.
type Provider int

const (
	ProviderOpenAI Provider = iota
	ProviderClaude
	ProviderGemini
	ProviderOpenRouter

	providerCount
)

// ProviderInfo describes a provider: how it is presented to the user, where
// its API key is looked up and which models can be selected.
type ProviderInfo struct {
	ID           string
	Name         string
	Label        string
	EnvKey       string
	DefaultModel string
	Description  string
	Models       []string
}

var providers = [providerCount]ProviderInfo{
	ProviderOpenAI: {
		ID:           "openai",
		Name:         "OpenAI",
		Label:        "OpenAI (GPT-3.5, GPT-4)",
		EnvKey:       "OPENAI_API_KEY",
		DefaultModel: "gpt-3.5-turbo",
		Description:  "OpenAI GPT models",
		Models: []string{
			"gpt-3.5-turbo",
			"gpt-3.5-turbo-16k",
			"gpt-4",
			"gpt-4-turbo-preview",
			"gpt-4-32k",
		},
	},
	ProviderClaude: {
		ID:           "claude",
		Name:         "Claude (Anthropic)",
		Label:        "Claude (Anthropic)",
		EnvKey:       "ANTHROPIC_API_KEY",
		DefaultModel: "claude-3-sonnet-20240229",
		Description:  "Anthropic Claude models",
		Models: []string{
			"claude-3-opus-20240229",
			"claude-3-sonnet-20240229",
			"claude-3-haiku-20240307",
			"claude-2.1",
			"claude-instant-1.2",
		},
	},
	ProviderGemini: {
		ID:           "gemini",
		Name:         "Google Gemini",
		Label:        "Google Gemini",
		EnvKey:       "GEMINI_API_KEY",
		DefaultModel: "gemini-pro",
		Description:  "Google Gemini models",
		Models: []string{
			"gemini-pro",
			"gemini-1.5-pro-latest",
			"gemini-1.5-flash-latest",
		},
	},
	ProviderOpenRouter: {
		ID:           "openrouter",
		Name:         "OpenRouter",
		Label:        "OpenRouter (Multiple LLMs)",
		EnvKey:       "OPENROUTER_API_KEY",
		DefaultModel: "openai/gpt-3.5-turbo",
		Description:  "Access multiple LLMs through OpenRouter",
		Models: []string{
			"openai/gpt-3.5-turbo",
			"openai/gpt-4",
			"anthropic/claude-3-opus",
			"anthropic/claude-3-sonnet",
			"google/gemini-pro",
			"meta-llama/llama-3-70b-instruct",
			"mistralai/mixtral-8x7b-instruct",
		},
	},
}

// aliases maps alternative identifiers onto providers.
var aliases = map[string]Provider{
	"anthropic": ProviderClaude,
	"google":    ProviderGemini,
}

// ParseProvider resolves a provider identifier, case-insensitively.
func ParseProvider(id string) (Provider, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for p := Provider(0); p < providerCount; p++ {
		if providers[p].ID == id {
			return p, true
		}
	}
	p, ok := aliases[id]
	return p, ok
}

// Providers returns every supported provider in presentation order.
func Providers() []Provider {
	all := make([]Provider, 0, providerCount)
	for p := Provider(0); p < providerCount; p++ {
		all = append(all, p)
	}
	return all
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	return p >= 0 && p < providerCount
}

// Info returns the provider's metadata.
func (p Provider) Info() ProviderInfo {
	if !p.Valid() {
		return ProviderInfo{}
	}
	info := providers[p]
	info.Models = slices.Clone(info.Models)
	return info
}

func (p Provider) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return providers[p].ID
}

// LookupProvider returns the metadata for a provider identifier.
func LookupProvider(id string) (ProviderInfo, bool) {
	p, ok := ParseProvider(id)
	if !ok {
		return ProviderInfo{}, false
	}
	return p.Info(), true
}

// Models returns the selectable models for a provider identifier, or an
// empty list when the identifier is unknown.
func Models(id string) []string {
	info, ok := LookupProvider(id)
	if !ok {
		return []string{}
	}
	return info.Models
}

// SupportedProviders returns the canonical identifiers, e.g. for help text.
func SupportedProviders() []string {
	ids := make([]string, 0, providerCount)
	for _, p := range Providers() {
		ids = append(ids, p.String())
	}
	return ids
}

// Package config reads and writes the KEY=value settings file that stores
// defaults between runs.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/imdario/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the settings file looked up in the working directory
	DefaultFile = ".env"

	KeyProvider        = "LLM_PROVIDER"
	KeyDefaultModel    = "DEFAULT_MODEL"
	KeySlackWebhookURL = "SLACK_WEBHOOK_URL"

	redacted = "********"
)

// Settings are the defaults collected by the config command.
type Settings struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	APIKey     string `yaml:"api_key"`
	WebhookURL string `yaml:"slack_webhook_url,omitempty"`
}

// Values returns the settings as settings file entries.
func (s Settings) Values() map[string]string {
	values := map[string]string{
		KeyProvider:     s.Provider,
		KeyDefaultModel: s.Model,
	}
	if s.APIKeyEnv != "" {
		values[s.APIKeyEnv] = s.APIKey
	}
	if s.WebhookURL != "" {
		values[KeySlackWebhookURL] = s.WebhookURL
	}
	return values
}

// orderedKeys lists the entries owned by Settings in the order they are written.
func (s Settings) orderedKeys() []string {
	keys := []string{KeyProvider}
	if s.APIKeyEnv != "" {
		keys = append(keys, s.APIKeyEnv)
	}
	keys = append(keys, KeyDefaultModel)
	if s.WebhookURL != "" {
		keys = append(keys, KeySlackWebhookURL)
	}
	return keys
}

// Redacted returns a copy safe to print.
func (s Settings) Redacted() Settings {
	if s.APIKey != "" {
		s.APIKey = redacted
	}
	return s
}

// Load exports the settings file into the process environment. Variables
// that are already set win. A missing file is not an error.
func Load(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("No settings file at %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load settings file %s: %w", path, err)
	}
	logger.Debugf("Loaded settings from %s", path)
	return nil
}

// Read parses the settings file. The API key is looked up under the
// environment key of the stored provider.
func Read(path string) (Settings, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	s := Settings{
		Provider:   values[KeyProvider],
		Model:      values[KeyDefaultModel],
		WebhookURL: values[KeySlackWebhookURL],
	}
	if info, ok := llm.LookupProvider(s.Provider); ok {
		s.APIKeyEnv = info.EnvKey
		s.APIKey = values[info.EnvKey]
	}
	return s, nil
}

// Write stores s in the settings file. Entries in an existing file that s
// does not own are kept.
func Write(path string, s Settings) error {
	values := s.Values()

	existing, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if existing != nil {
		// Keys owned by Settings but left empty are removed, not carried over.
		for _, k := range []string{KeyProvider, KeyDefaultModel, KeySlackWebhookURL} {
			if _, ok := values[k]; !ok {
				delete(existing, k)
			}
		}
		if err := mergo.Merge(&values, existing); err != nil {
			return fmt.Errorf("failed to merge settings: %w", err)
		}
	}

	keys := s.orderedKeys()
	owned := make(map[string]bool, len(keys))
	for _, k := range keys {
		owned[k] = true
	}
	var rest []string
	for k := range values {
		if !owned[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	var b strings.Builder
	for _, k := range append(keys, rest...) {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatValue(values[k]))
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// formatValue quotes values that the settings file parser would otherwise
// cut at a comment or expand. Single quotes keep the value literal; values
// that cannot be single-quoted are escaped the way godotenv marshals them.
func formatValue(v string) string {
	if !strings.ContainsAny(v, " \t#$\"'\n\r") {
		return v
	}
	if !strings.ContainsAny(v, "'\n\r") {
		return "'" + v + "'"
	}

	line, err := godotenv.Marshal(map[string]string{"v": v})
	if err != nil {
		return "'" + v + "'"
	}
	return strings.TrimPrefix(line, "v=")
}

// WriteYAML prints s as YAML with the API key redacted.
func WriteYAML(w io.Writer, s Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Redacted()); err != nil {
		return err
	}
	return enc.Close()
}

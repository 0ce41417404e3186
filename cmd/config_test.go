package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/input"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	prompter := &scriptedPrompter{
		selects:   []string{llm.ProviderClaude.Info().Label, "claude-3-haiku-20240307"},
		passwords: []string{"sk-ant-123"},
		confirms:  []bool{true},
		inputs:    []string{validWebhook},
	}
	var out bytes.Buffer

	require.NoError(t, runConfig(prompter, &stubNotifier{}, path, &out))

	assert.Equal(t, "✓ Configuration saved to "+path+" file\n", out.String())
	assert.Equal(t, []string{"OpenAI (GPT-3.5, GPT-4)", "claude-3-sonnet-20240229"}, prompter.selectDefaults)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LLM_PROVIDER=claude\n"+
		"ANTHROPIC_API_KEY=sk-ant-123\n"+
		"DEFAULT_MODEL=claude-3-haiku-20240307\n"+
		"SLACK_WEBHOOK_URL="+validWebhook+"\n", string(content))

	settings, err := config.Read(path)
	require.NoError(t, err)
	assert.Equal(t, config.Settings{
		Provider:   "claude",
		Model:      "claude-3-haiku-20240307",
		APIKeyEnv:  "ANTHROPIC_API_KEY",
		APIKey:     "sk-ant-123",
		WebhookURL: validWebhook,
	}, settings)
}

func TestRunConfig_WithoutSlack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	prompter := &scriptedPrompter{
		selects:   []string{llm.ProviderOpenAI.Info().Label, "gpt-4"},
		passwords: []string{"sk-openai"},
		confirms:  []bool{false},
	}

	require.NoError(t, runConfig(prompter, &stubNotifier{}, path, &bytes.Buffer{}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LLM_PROVIDER=openai\nOPENAI_API_KEY=sk-openai\nDEFAULT_MODEL=gpt-4\n", string(content))
}

func TestRunConfig_EmptyAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	prompter := &scriptedPrompter{
		selects:   []string{llm.ProviderGemini.Info().Label},
		passwords: []string{""},
	}

	err := runConfig(prompter, &stubNotifier{}, path, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.NoFileExists(t, path)
}

func TestRunConfig_NotInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	err := runConfig(&scriptedPrompter{}, &stubNotifier{}, path, &bytes.Buffer{})
	require.ErrorIs(t, err, input.ErrNotInteractive)
	assert.NoFileExists(t, path)
}

func TestPrintSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, config.Write(path, config.Settings{
		Provider:  "gemini",
		Model:     "gemini-pro",
		APIKeyEnv: "GEMINI_API_KEY",
		APIKey:    "secret",
	}))

	var out bytes.Buffer
	require.NoError(t, printSettings(&out, path))

	assert.Contains(t, out.String(), "provider: gemini")
	assert.Contains(t, out.String(), "model: gemini-pro")
	assert.NotContains(t, out.String(), "secret")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Contains(t, out.String(), "AI Work Report v")
}

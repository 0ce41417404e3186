package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/notify"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/prompt"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/report"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWebhook = "https://hooks.slack.com/services/T0000/B0000/abcDEF123"

type generateHarness struct {
	prompter *scriptedPrompter
	history  *stubHistory
	model    *stubLLM
	notifier *stubNotifier
	out      bytes.Buffer
	errOut   bytes.Buffer

	repoPath    string
	llmCalls    int
	llmProvider llm.Provider
	llmAPIKey   string
	llmModel    string
}

func newGenerateHarness() *generateHarness {
	now := time.Now()
	return &generateHarness{
		prompter: &scriptedPrompter{},
		history: &stubHistory{commits: []common.Commit{
			{Hash: "c3", AuthorDate: now.Add(-1 * time.Hour), Subject: "Add login page", Body: "With remember me"},
			{Hash: "c2", AuthorDate: now.Add(-2 * time.Hour), Subject: "Fix crash on logout"},
			{Hash: "c1", AuthorDate: now.Add(-3 * time.Hour), Subject: "Update dependencies"},
		}},
		model:    &stubLLM{response: llm.Response{Content: "## Summary\n- Shipped the login page"}},
		notifier: &stubNotifier{},
	}
}

func (h *generateHarness) deps() generateDeps {
	return generateDeps{
		out:      &h.out,
		errOut:   &h.errOut,
		prompter: h.prompter,
		history: func(repoPath string) report.HistoryReader {
			h.repoPath = repoPath
			return h.history
		},
		newLLM: func(provider llm.Provider, apiKey, model string) (llm.LLM, error) {
			h.llmCalls++
			h.llmProvider = provider
			h.llmAPIKey = apiKey
			h.llmModel = model
			return h.model, nil
		},
		notifier: h.notifier,
	}
}

func (h *generateHarness) run(t *testing.T, args ...string) error {
	t.Helper()
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	addGenerateFlags(flags)
	require.NoError(t, flags.Parse(args))
	return runGenerate(context.Background(), flags, h.deps())
}

func TestRunGenerate(t *testing.T) {
	clearSettingsEnv(t)
	h := newGenerateHarness()

	err := h.run(t, "--api-key", "sk-test", "--days", "3", "--author", "jane@example.com")
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderOpenAI, h.llmProvider)
	assert.Equal(t, "sk-test", h.llmAPIKey)
	assert.Equal(t, "gpt-3.5-turbo", h.llmModel)
	assert.Equal(t, ".", h.repoPath)
	assert.Equal(t, 3, h.history.days)
	assert.Equal(t, "jane@example.com", h.history.author)
	assert.Empty(t, h.prompter.asked, "openai should not ask for a model")

	require.Len(t, h.model.requests, 1)
	assert.Equal(t, prompt.GetSystemPrompt(), h.model.requests[0].SystemPrompt)
	assert.Contains(t, h.model.requests[0].UserPrompt, "- Add login page\n  Details: With remember me\n- Fix crash on logout\n- Update dependencies")

	expected := "\n📊 Work Report\n" + strings.Repeat("─", 50) + "\n## Summary\n- Shipped the login page\n"
	assert.Equal(t, expected, h.out.String())
	assert.Zero(t, h.notifier.posts)
}

func TestRunGenerate_NoCommits(t *testing.T) {
	clearSettingsEnv(t)
	h := newGenerateHarness()
	h.history.commits = nil

	require.NoError(t, h.run(t, "--api-key", "sk-test"))

	assert.Empty(t, h.model.requests)
	assert.Contains(t, h.out.String(), prompt.NoCommitsMessage)
}

func TestRunGenerate_HistoryError(t *testing.T) {
	clearSettingsEnv(t)
	h := newGenerateHarness()
	h.history.err = errors.New("failed to get git logs: not a git repository")

	err := h.run(t, "--api-key", "sk-test", "--repo", "/nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
	assert.Equal(t, "/nowhere", h.repoPath)
	assert.Empty(t, h.out.String())
}

func TestRunGenerate_ModelError(t *testing.T) {
	clearSettingsEnv(t)
	h := newGenerateHarness()
	h.model.response = llm.Response{Error: errors.New("OpenAI API error: 401 unauthorized")}

	err := h.run(t, "--api-key", "sk-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error")
}

func TestRunGenerate_UnsupportedProvider(t *testing.T) {
	clearSettingsEnv(t)
	h := newGenerateHarness()

	err := h.run(t, "--provider", "mistral", "--api-key", "k")
	require.ErrorIs(t, err, llm.ErrUnsupportedProvider)
	assert.Contains(t, err.Error(), "mistral")
	assert.Zero(t, h.llmCalls)
	assert.False(t, h.history.called)
}

func TestRunGenerate_ProviderResolution(t *testing.T) {
	t.Run("environment is used when the flag is unset", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(config.KeyProvider, "openrouter")
		t.Setenv("OPENROUTER_API_KEY", "or-key")
		h := newGenerateHarness()

		require.NoError(t, h.run(t))
		assert.Equal(t, llm.ProviderOpenRouter, h.llmProvider)
		assert.Equal(t, "or-key", h.llmAPIKey)
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(config.KeyProvider, "gemini")
		t.Setenv("ANTHROPIC_API_KEY", "claude-key")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "--provider", "anthropic", "--model", "claude-2.1"))
		assert.Equal(t, llm.ProviderClaude, h.llmProvider)
		assert.Equal(t, "claude-key", h.llmAPIKey)
		assert.Equal(t, "claude-2.1", h.llmModel)
	})

	t.Run("defaults to openai", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv("OPENAI_API_KEY", "env-key")
		h := newGenerateHarness()

		require.NoError(t, h.run(t))
		assert.Equal(t, llm.ProviderOpenAI, h.llmProvider)
		assert.Equal(t, "env-key", h.llmAPIKey)
	})
}

func TestRunGenerate_APIKeyResolution(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv("OPENAI_API_KEY", "env-key")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-k", "flag-key"))
		assert.Equal(t, "flag-key", h.llmAPIKey)
	})

	t.Run("asks when nothing is configured", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.passwords = []string{"typed-key"}

		require.NoError(t, h.run(t))
		assert.Equal(t, "typed-key", h.llmAPIKey)
		assert.Equal(t, []string{"Please enter your OpenAI API key:"}, h.prompter.asked)
	})

	t.Run("missing without a terminal", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()

		err := h.run(t, "--provider", "gemini")
		require.ErrorIs(t, err, ErrMissingCredential)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		assert.Zero(t, h.llmCalls)
	})

	t.Run("empty answer", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.passwords = []string{""}

		err := h.run(t)
		require.ErrorIs(t, err, ErrMissingCredential)
	})
}

func TestRunGenerate_ModelResolution(t *testing.T) {
	t.Run("non-default provider offers a selection", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")
		h := newGenerateHarness()
		h.prompter.selects = []string{"gemini-1.5-flash-latest"}

		require.NoError(t, h.run(t, "-p", "gemini"))
		assert.Equal(t, "gemini-1.5-flash-latest", h.llmModel)
		assert.Equal(t, []string{"gemini-pro"}, h.prompter.selectDefaults)
	})

	t.Run("configured model is preselected", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "c-key")
		t.Setenv(config.KeyDefaultModel, "claude-3-haiku-20240307")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-p", "claude"))
		assert.Equal(t, []string{"claude-3-haiku-20240307"}, h.prompter.selectDefaults)
		// no terminal keeps the resolved model
		assert.Equal(t, "claude-3-haiku-20240307", h.llmModel)
	})

	t.Run("unlisted configured model preselects the provider default", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv("OPENROUTER_API_KEY", "or-key")
		t.Setenv(config.KeyDefaultModel, "some/custom-model")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-p", "openrouter"))
		assert.Equal(t, []string{"openai/gpt-3.5-turbo"}, h.prompter.selectDefaults)
		assert.Equal(t, "some/custom-model", h.llmModel)
	})

	t.Run("openai uses the configured model without asking", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(config.KeyDefaultModel, "gpt-4")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-k", "sk"))
		assert.Equal(t, "gpt-4", h.llmModel)
		assert.Empty(t, h.prompter.selectDefaults)
	})

	t.Run("flag skips the selection", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(config.KeyDefaultModel, "claude-2.1")
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-p", "claude", "-k", "c", "-m", "claude-3-opus-20240229"))
		assert.Equal(t, "claude-3-opus-20240229", h.llmModel)
		assert.Empty(t, h.prompter.selectDefaults)
	})
}

func TestRunGenerate_Slack(t *testing.T) {
	t.Run("posts with metadata", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.confirms = []bool{true}

		err := h.run(t, "-k", "sk", "--slack", "--webhook", validWebhook,
			"--repo", "/work/projects/billing-service", "--author", "jane@example.com")
		require.NoError(t, err)

		require.Equal(t, 1, h.notifier.posts)
		assert.Equal(t, "## Summary\n- Shipped the login page", h.notifier.report)
		assert.Equal(t, validWebhook, h.notifier.webhookURL)
		assert.Equal(t, "jane@example.com", h.notifier.meta.Author)
		assert.Equal(t, "billing-service", h.notifier.meta.RepoName)
		assert.Contains(t, h.errOut.String(), "✓ Report sent to Slack successfully!")
	})

	t.Run("default repository is not reported", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(config.KeySlackWebhookURL, validWebhook)
		h := newGenerateHarness()

		// no terminal confirms by default
		require.NoError(t, h.run(t, "-k", "sk", "-s"))
		require.Equal(t, 1, h.notifier.posts)
		assert.Equal(t, validWebhook, h.notifier.webhookURL)
		assert.Empty(t, h.notifier.meta.RepoName)
	})

	t.Run("asks for the webhook", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.inputs = []string{validWebhook}
		h.prompter.confirms = []bool{true}

		require.NoError(t, h.run(t, "-k", "sk", "-s"))
		require.Equal(t, 1, h.notifier.posts)
		assert.Equal(t, validWebhook, h.notifier.webhookURL)
	})

	t.Run("typed webhook is checked by the notifier", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.inputs = []string{validWebhook}
		h.prompter.confirms = []bool{true}
		h.notifier.validateErr = errors.New("webhook rejected")

		require.NoError(t, h.run(t, "-k", "sk", "-s"))
		assert.Zero(t, h.notifier.posts)
		assert.Contains(t, h.errOut.String(), "Invalid Slack webhook URL format")
	})

	t.Run("declined", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.confirms = []bool{false}

		require.NoError(t, h.run(t, "-k", "sk", "-s", "-w", validWebhook))
		assert.Zero(t, h.notifier.posts)
		assert.Contains(t, h.errOut.String(), "Skipped sending to Slack")
	})

	t.Run("failure keeps the command successful", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()
		h.prompter.confirms = []bool{true}
		h.notifier.err = errors.New("Slack webhook error: slack server error: 500 Internal Server Error")

		require.NoError(t, h.run(t, "-k", "sk", "-s", "-w", validWebhook))
		assert.Equal(t, 1, h.notifier.posts)
		assert.Contains(t, h.errOut.String(), "✗ Failed to send to Slack: Slack webhook error")
		assert.Contains(t, h.out.String(), "## Summary")
	})

	t.Run("no webhook without a terminal", func(t *testing.T) {
		clearSettingsEnv(t)
		h := newGenerateHarness()

		require.NoError(t, h.run(t, "-k", "sk", "-s"))
		assert.Zero(t, h.notifier.posts)
		assert.Contains(t, h.errOut.String(), config.KeySlackWebhookURL)
	})
}

func TestRepoName(t *testing.T) {
	assert.Empty(t, repoName("."))
	assert.Empty(t, repoName(""))
	assert.Equal(t, "api", repoName("/src/api"))
	assert.Equal(t, "api", repoName("/src/api/"))
}

func TestDefaultGenerateDeps(t *testing.T) {
	deps := defaultGenerateDeps(&bytes.Buffer{}, &bytes.Buffer{})

	_, ok := deps.notifier.(*notify.Slack)
	assert.True(t, ok, "expected the Slack notifier")

	for _, p := range llm.Providers() {
		model, err := deps.newLLM(p, "test-key", p.Info().DefaultModel)
		require.NoError(t, err, p.String())
		assert.NotNil(t, model, p.String())
	}
}

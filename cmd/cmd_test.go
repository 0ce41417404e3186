package cmd

import (
	"context"
	"testing"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/input"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/notify"
)

// scriptedPrompter answers questions from queues. An empty queue behaves
// like a missing terminal.
type scriptedPrompter struct {
	passwords []string
	selects   []string
	inputs    []string
	confirms  []bool

	asked          []string
	selectDefaults []string
}

func (s *scriptedPrompter) Password(message string) (string, error) {
	s.asked = append(s.asked, message)
	if len(s.passwords) == 0 {
		return "", input.ErrNotInteractive
	}
	answer := s.passwords[0]
	s.passwords = s.passwords[1:]
	return answer, nil
}

func (s *scriptedPrompter) Select(message string, options []string, defaultOption string) (string, error) {
	s.asked = append(s.asked, message)
	s.selectDefaults = append(s.selectDefaults, defaultOption)
	if len(s.selects) == 0 {
		return "", input.ErrNotInteractive
	}
	answer := s.selects[0]
	s.selects = s.selects[1:]
	return answer, nil
}

func (s *scriptedPrompter) Input(message string, validate input.Validator) (string, error) {
	s.asked = append(s.asked, message)
	if len(s.inputs) == 0 {
		return "", input.ErrNotInteractive
	}
	answer := s.inputs[0]
	s.inputs = s.inputs[1:]
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	s.asked = append(s.asked, message)
	if len(s.confirms) == 0 {
		return false, input.ErrNotInteractive
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

type stubHistory struct {
	commits []common.Commit
	err     error

	called bool
	days   int
	author string
}

func (s *stubHistory) GetCommits(ctx context.Context, days int, authorEmail string) ([]common.Commit, error) {
	s.called = true
	s.days = days
	s.author = authorEmail
	return s.commits, s.err
}

type stubLLM struct {
	response llm.Response
	requests []llm.Request
}

func (s *stubLLM) Prompt(ctx context.Context, req llm.Request) llm.Response {
	s.requests = append(s.requests, req)
	return s.response
}

type stubNotifier struct {
	err         error
	validateErr error

	posts      int
	report     string
	webhookURL string
	meta       notify.Metadata
}

func (s *stubNotifier) ValidateWebhookURL(url string) error {
	if s.validateErr != nil {
		return s.validateErr
	}
	return notify.ValidateSlackWebhookURL(url)
}

func (s *stubNotifier) Post(ctx context.Context, report, webhookURL string, meta notify.Metadata) error {
	s.posts++
	s.report = report
	s.webhookURL = webhookURL
	s.meta = meta
	return s.err
}

// clearSettingsEnv unsets every variable the commands read so the host
// environment cannot leak into a test.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.KeyProvider, "")
	t.Setenv(config.KeyDefaultModel, "")
	t.Setenv(config.KeySlackWebhookURL, "")
	for _, p := range llm.Providers() {
		t.Setenv(p.Info().EnvKey, "")
	}
}

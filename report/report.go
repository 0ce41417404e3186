// Package report ties commit history, prompt formatting and the language
// model together into a single work report.
package report

import (
	"context"
	"fmt"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/prompt"
)

// HistoryReader provides the commits a report is generated from.
type HistoryReader interface {
	GetCommits(ctx context.Context, days int, authorEmail string) ([]common.Commit, error)
}

// Query selects the commits to report on.
type Query struct {
	Days        int
	AuthorEmail string
}

// Generate reads the commits matching q, formats them and asks model for a
// report. When there are no commits the model is not called and the
// no-commits message is returned as the report.
func Generate(ctx context.Context, history HistoryReader, model llm.LLM, q Query) (string, error) {
	commits, err := history.GetCommits(ctx, q.Days, q.AuthorEmail)
	if err != nil {
		return "", fmt.Errorf("failed to generate work report: %w", err)
	}

	if len(commits) == 0 {
		logger.Info("No commits found, skipping report generation")
		return prompt.NoCommitsMessage, nil
	}

	logger.Infof("Generating report from %d commits", len(commits))
	for _, c := range commits {
		logger.Debugf("  %s %s", c.ShortHash(), c.Subject)
	}

	resp := model.Prompt(ctx, llm.Request{
		SystemPrompt: prompt.GetSystemPrompt(),
		UserPrompt:   prompt.GetUserPrompt(prompt.FormatCommits(commits)),
	})
	if resp.Error != nil {
		return "", fmt.Errorf("failed to generate work report: %w", resp.Error)
	}

	logger.Debug("LLM Response:")
	logger.Debug(resp.Content)

	return resp.Content, nil
}

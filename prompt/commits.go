package prompt

import (
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
)

// NoCommitsMessage is returned instead of a prompt when the period has no commits.
const NoCommitsMessage = "No commits found for the specified period."

// FormatCommits renders one "- <subject>" line per commit, followed by an
// indented "Details: <body>" line when the commit has a body.
func FormatCommits(commits []common.Commit) string {
	if len(commits) == 0 {
		return NoCommitsMessage
	}

	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		line := "- " + c.Subject
		if c.Body != "" {
			line += "\n  Details: " + c.Body
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// GetUserPrompt wraps the formatted commits into the user message.
func GetUserPrompt(commitsText string) string {
	return `Please generate a work report based on these git commits:

Git commits from the specified period:

` + commitsText
}

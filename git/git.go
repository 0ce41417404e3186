package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
)

const (
	// ISO8601 is the layout of git's %ai placeholder, e.g. 2020-08-17 16:26:10 -0700
	ISO8601 = "2006-01-02 15:04:05 -0700"

	fieldSep  = "\x1f"
	recordSep = "\x1e"

	// %x1f and %x1e are expanded by git to the separators above.
	logFormat = "%H%x1f%ai%x1f%an%x1f%ae%x1f%s%x1f%b%x1e"

	logFields = 6
)

// Runner defines an interface for running git commands
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Ensure DefaultRunner implements Runner interface
var _ Runner = (*DefaultRunner)(nil)

// DefaultRunner implements the Runner interface using exec.CommandContext
type DefaultRunner struct {
	RepoPath string
}

// NewDefaultRunner creates a new instance of DefaultRunner
func NewDefaultRunner(repoPath string) *DefaultRunner {
	return &DefaultRunner{
		RepoPath: repoPath,
	}
}

// Run executes a command in the repository and returns its output
func (r *DefaultRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.RepoPath != "" {
		cmd.Dir = r.RepoPath
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("error running command: %s\nstderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Client reads commit history from a git repository
type Client struct {
	runner Runner
	now    func() time.Time
}

// NewClient creates a new Git client
func NewClient(runner Runner) *Client {
	return &Client{
		runner: runner,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to compute the lookback window.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// GetCommits returns the commits reachable from HEAD authored within the last
// days days, newest first. If authorEmail is set only commits whose author
// matches it are returned.
func (c *Client) GetCommits(ctx context.Context, days int, authorEmail string) ([]common.Commit, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be at least 1, got %d", days)
	}

	until := c.now()
	since := until.AddDate(0, 0, -days)

	args := []string{
		"log",
		"HEAD",
		"--no-color",
		"--since=" + since.Format(time.RFC3339),
		"--until=" + until.Format(time.RFC3339),
		"--pretty=tformat:" + logFormat,
	}
	if authorEmail != "" {
		args = append(args, "--author="+authorEmail)
	}

	logger.Debugf("Reading commits since %s", since.Format(time.RFC3339))

	output, err := c.runner.Run(ctx, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get git logs: %w", err)
	}

	commits, err := parseLog(output)
	if err != nil {
		return nil, fmt.Errorf("failed to get git logs: %w", err)
	}

	logger.Debugf("Found %d commits", len(commits))
	return commits, nil
}

func parseLog(output string) ([]common.Commit, error) {
	commits := []common.Commit{}

	for _, record := range strings.Split(output, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		parts := strings.SplitN(record, fieldSep, logFields)
		if len(parts) != logFields {
			return nil, fmt.Errorf("expected %d fields from git log, got %d", logFields, len(parts))
		}

		if parts[0] == "" {
			return nil, errors.New("git log record without commit hash")
		}

		authorDate, err := time.Parse(ISO8601, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid author date %q: %w", parts[1], err)
		}

		commits = append(commits, common.Commit{
			Hash:        parts[0],
			AuthorDate:  authorDate,
			Author:      parts[2],
			AuthorEmail: parts[3],
			Subject:     parts[4],
			Body:        strings.TrimRight(parts[5], "\n\r\t "),
		})
	}

	return commits, nil
}

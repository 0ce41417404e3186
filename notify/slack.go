package notify

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/common"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/slack-go/slack"
)

const (
	// slackSectionLimit is the maximum text length of a section block
	slackSectionLimit = 3000

	defaultTitle = "📊 Work Report"
	fallbackText = "Work Report"
)

var slackWebhookPattern = regexp.MustCompile(`^https://hooks\.slack\.com/services/[A-Z0-9]+/[A-Z0-9]+/[A-Za-z0-9]+$`)

// ValidateSlackWebhookURL checks that url looks like a Slack incoming webhook URL.
func ValidateSlackWebhookURL(url string) error {
	if !slackWebhookPattern.MatchString(strings.TrimSpace(url)) {
		return fmt.Errorf("%w: expected https://hooks.slack.com/services/...", ErrInvalidWebhookURL)
	}
	return nil
}

// Slack posts reports to Slack incoming webhooks
type Slack struct {
	httpClient *http.Client
	title      string
}

// NewSlack creates a new Slack notifier
func NewSlack(opts ...Option) *Slack {
	s := &Slack{
		title: defaultTitle,
	}

	for _, opt := range opts {
		switch opt.Type {
		case HTTPClientOption:
			if client, ok := opt.Value.(*http.Client); ok {
				s.httpClient = client
			}
		case TitleOption:
			if title, ok := opt.Value.(string); ok && title != "" {
				s.title = title
			}
		}
	}

	if s.httpClient == nil {
		s.httpClient = common.NewHTTPClient()
	}

	return s
}

// ValidateWebhookURL implements Notifier
func (s *Slack) ValidateWebhookURL(url string) error {
	return ValidateSlackWebhookURL(url)
}

// Post sends the report to the Slack webhook in a single request
func (s *Slack) Post(ctx context.Context, report, webhookURL string, meta Metadata) error {
	if err := s.ValidateWebhookURL(webhookURL); err != nil {
		return err
	}

	msg := s.message(report, meta)

	logger.Debugf("Posting report to Slack in %d blocks", len(msg.Blocks.BlockSet))

	if err := slack.PostWebhookCustomHTTPContext(ctx, strings.TrimSpace(webhookURL), s.httpClient, msg); err != nil {
		return fmt.Errorf("Slack webhook error: %w", err)
	}

	return nil
}

func (s *Slack) message(report string, meta Metadata) *slack.WebhookMessage {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, s.title, true, false)),
	}

	for _, chunk := range common.ChunkLines(report, slackSectionLimit) {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, chunk, false, false), nil, nil,
		))
	}

	var elements []slack.MixedElement
	if meta.Author != "" {
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, "*Author:* "+meta.Author, false, false))
	}
	if meta.RepoName != "" {
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, "*Repository:* "+meta.RepoName, false, false))
	}
	if len(elements) > 0 {
		blocks = append(blocks, slack.NewDividerBlock(), slack.NewContextBlock("", elements...))
	}

	return &slack.WebhookMessage{
		Text:   fallbackText,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

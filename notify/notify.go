package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	// ProviderSlack represents Slack incoming webhooks
	ProviderSlack = "slack"
)

// ErrInvalidWebhookURL is returned when a webhook URL does not have the
// shape the target service issues.
var ErrInvalidWebhookURL = errors.New("invalid webhook URL")

// OptionType defines the type of option for notifiers
type OptionType string

// Available option types
const (
	HTTPClientOption OptionType = "http_client"
	TitleOption      OptionType = "title"
)

// Option represents a generic configuration option for any notifier
type Option struct {
	Type  OptionType
	Value any
}

// WithHTTPClient creates an option to set the HTTP client used to post
func WithHTTPClient(client *http.Client) Option {
	return Option{
		Type:  HTTPClientOption,
		Value: client,
	}
}

// WithTitle creates an option to set the message title
func WithTitle(title string) Option {
	return Option{
		Type:  TitleOption,
		Value: title,
	}
}

// Metadata is optional context shown alongside the report.
type Metadata struct {
	Author   string
	RepoName string
}

// Notifier posts a generated report to a messaging service
type Notifier interface {
	// ValidateWebhookURL reports whether url can be posted to
	ValidateWebhookURL(url string) error
	// Post sends the report to the webhook
	Post(ctx context.Context, report, webhookURL string, meta Metadata) error
}

// NewNotifier creates a notifier for the given messaging service
func NewNotifier(providerName string, opts ...Option) (Notifier, error) {
	switch providerName {
	case ProviderSlack:
		return NewSlack(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported notification provider: %s", providerName)
	}
}

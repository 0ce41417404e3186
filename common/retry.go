package common

import (
	"net/http"
	"time"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig holds the configuration for HTTP retry logic
type RetryConfig struct {
	// Maximum number of retries
	RetryMax int
	// Minimum time to wait between retries
	RetryWaitMin time.Duration
	// Maximum time to wait between retries
	RetryWaitMax time.Duration
	// Function to determine if a request should be retried
	CheckRetry retryablehttp.CheckRetry
}

// NoRetryConfig returns a RetryConfig that sends every request exactly once.
// Remote failures are reported to the user as they happen.
func NoRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     0,
		RetryWaitMin: 0,
		RetryWaitMax: 0,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
	}
}

// NewRetryableClient creates a new HTTP client with the given retry configuration
func NewRetryableClient(config RetryConfig) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()

	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = config.RetryWaitMin
	retryClient.RetryWaitMax = config.RetryWaitMax

	if config.CheckRetry != nil {
		retryClient.CheckRetry = config.CheckRetry
	}

	// Hand back the last response instead of a "giving up" error so callers
	// can read the remote error body.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	retryClient.Logger = &zapRetryLogger{}

	return retryClient
}

// NewHTTPClient returns a standard *http.Client backed by a single-attempt
// retryable client, for SDKs that accept an *http.Client.
func NewHTTPClient() *http.Client {
	return NewRetryableClient(NoRetryConfig()).StandardClient()
}

// zapRetryLogger adapts our zap logger to the interface required by retryablehttp
type zapRetryLogger struct{}

func (z *zapRetryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Errorw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Infow(msg, keysAndValues...)
}

func (z *zapRetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Warnw(msg, keysAndValues...)
}

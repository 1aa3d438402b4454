package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/sony/gobreaker/v2"
	"resty.dev/v3"

	"github.com/readlog/readlog-server/internal/metrics"
)

// ErrNotConfigured is returned by Generate when no API key is set.
var ErrNotConfigured = errors.New("text generation API key is not configured")

// breakerName labels the client's circuit breaker in logs and metrics.
const breakerName = "llm"

// Config configures Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Client is a Generator backed by an OpenAI-compatible chat completions endpoint.
// Calls are retried with backoff and guarded by a circuit breaker so a dead upstream
// fails fast instead of stalling every extraction batch.
type Client struct {
	httpClient *resty.Client
	model      string
	configured bool
	maxRetries uint
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *slog.Logger
}

// NewClient creates a text generation client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	httpClient.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		httpClient: httpClient,
		model:      cfg.Model,
		configured: cfg.APIKey != "",
		maxRetries: uint(retries), //nolint:gosec // clamped above
		retryDelay: time.Second,
		logger:     logger,
	}
	c.breaker = newBreaker(logger)
	return c
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	metrics.SetBreakerOpen(breakerName, false)
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller giving up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerOpen(name, to != gobreaker.StateClosed)
		},
	})
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// ChatCompletionRequest is the request body of POST /chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the subset of the completion response the client reads.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice is one completion candidate.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Generate sends prompt as a single user message and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	start := time.Now()
	text, err := c.breaker.Execute(func() (string, error) {
		return c.generateWithRetry(ctx, prompt)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordLLMRequest("circuit_open", time.Since(start))
		return "", fmt.Errorf("text generation unavailable: %w", err)
	case err != nil:
		metrics.RecordLLMRequest("error", time.Since(start))
		return "", err
	}
	metrics.RecordLLMRequest("ok", time.Since(start))
	return text, nil
}

func (c *Client) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			text, err := c.generate(ctx, prompt)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries+1),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying text generation", "attempt", n+1, "error", err)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	requestBody := ChatCompletionRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody, ok := response.Result().(*ChatCompletionResponse)
	if !ok || responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response content: %s", response.String())
	}
	return content, nil
}

// isRetryableError reports whether err is worth another attempt:
// transport failures, truncated bodies, 5xx and 429 responses.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "unexpected end of JSON input") || strings.Contains(errStr, "empty response") {
		return true
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "connection reset") || strings.Contains(errStr, "EOF") {
		return true
	}
	if strings.Contains(errStr, "response error 5") || strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

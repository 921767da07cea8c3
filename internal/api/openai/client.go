package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

const serviceName = "openai"

// ErrMissingCredentials is wrapped in a RemoteServiceError when no API key
// or endpoint was configured.
var ErrMissingCredentials = errors.New("llm credentials are not configured")

// Client wraps the OpenAI API client
type Client struct {
	cfg             *config.LLMConfig
	client          *openai.Client
	httpClient      *http.Client
	maxRetries      int
	initialInterval time.Duration
	logger          zerolog.Logger
}

// Option configures optional client behaviour.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries bounds how many times a failed call is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialInterval = d }
}

// NewClient creates a new OpenAI or Azure OpenAI client. It never fails:
// missing credentials are reported by Complete.
func NewClient(cfg *config.LLMConfig, opts ...Option) *Client {
	c := &Client{
		cfg:             cfg,
		maxRetries:      2,
		initialInterval: time.Second,
		logger:          log.With().Str("component", "openai_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return c
	}

	var clientCfg openai.ClientConfig
	if strings.EqualFold(cfg.Provider, config.ProviderAzure) {
		if strings.TrimSpace(cfg.Endpoint) == "" {
			return c
		}
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
		}
	}
	if c.httpClient != nil {
		clientCfg.HTTPClient = c.httpClient
	}

	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}

// Complete sends the prompt as a single user message and returns the reply.
// Every failure is a *models.RemoteServiceError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", &models.RemoteServiceError{Service: serviceName, Err: ErrMissingCredentials}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	c.logger.Debug().Str("model", c.cfg.Model).Int("prompt_len", len(prompt)).Msg("Sending prompt")
	start := time.Now()

	var resp openai.ChatCompletionResponse
	operation := func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Dur("retry_in", wait).Msg("OpenAI call failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		c.logger.Error().Err(err).Msg("OpenAI API error")
		return "", &models.RemoteServiceError{Service: serviceName, StatusCode: statusCode(err), Err: err}
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("OpenAI returned empty choices")
		return "", &models.RemoteServiceError{Service: serviceName, Err: errors.New("response has no choices")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &models.RemoteServiceError{Service: serviceName, Err: fmt.Errorf("empty completion (finish reason %q)", resp.Choices[0].FinishReason)}
	}

	c.logger.Info().
		Str("model", resp.Model).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("OpenAI completion received")

	return text, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// retryable treats rate limits, server errors and transport failures as
// transient; any other status is final.
func retryable(err error) bool {
	code := statusCode(err)
	if code == 0 {
		return true
	}
	return code == http.StatusTooManyRequests || code >= 500
}

// Package openai provides a text generator backed by the OpenAI chat
// completions API. It satisfies the same Generate surface as the ollama
// adapter so either can serve as the pipeline's text generator.
package openai

import (
	"context"
	"errors"
	"time"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/config"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Client wraps the OpenAI SDK with the retry and logging conventions used
// by the other provider adapters.
type Client struct {
	api       *goopenai.Client
	apiKey    string
	model     string
	retryConf llmhttp.RetryConfig
	logger    llmhttp.Logger
}

// NewClient creates an OpenAI generator. An empty model falls back to the
// package default.
func NewClient(apiKey, model string, providerCfg config.ProviderConfig, httpCfg config.HTTPConfig) *Client {
	if model == "" {
		model = defaultModel
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if providerCfg.BaseURL != "" {
		cfg.BaseURL = providerCfg.BaseURL
	}

	return &Client{
		api:       goopenai.NewClientWithConfig(cfg),
		apiKey:    apiKey,
		model:     model,
		retryConf: llmhttp.BuildRetryConfig(providerCfg, httpCfg),
	}
}

// SetLogger sets the structured logger for this client.
func (c *Client) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// Generate produces a completion for the prompt. Rate limits and server
// errors are retried with exponential backoff.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	start := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    "openai",
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(prompt),
			APIKey:      c.apiKey,
		})
	}

	var text string
	operation := func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: float32(temperature),
			MaxTokens:   maxTokens,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return classifyError(err)
		}
		if len(resp.Choices) == 0 {
			return llmhttp.NewMalformedResponseError("openai", "no choices in response")
		}
		text = resp.Choices[0].Message.Content
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retryConf); err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:  "openai",
				Model:     c.model,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			})
		}
		return "", err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:  "openai",
			Model:     c.model,
			Timestamp: time.Now(),
			Duration:  time.Since(start),
			Chars:     len(text),
		})
	}
	return text, nil
}

// classifyError maps SDK errors onto the shared retryable error types.
func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		msg := llmhttp.RedactURLSecrets(apiErr.Message)
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return llmhttp.NewAuthenticationError("openai", msg)
		case apiErr.HTTPStatusCode == 429:
			return llmhttp.NewRateLimitError("openai", msg)
		case apiErr.HTTPStatusCode >= 500:
			return llmhttp.NewServiceUnavailableError("openai", msg)
		default:
			return llmhttp.NewInvalidRequestError("openai", msg)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llmhttp.NewTimeoutError("openai", "request deadline exceeded")
	}
	return llmhttp.NewTimeoutError("openai", llmhttp.RedactURLSecrets(err.Error()))
}

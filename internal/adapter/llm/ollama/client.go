// Package ollama talks to a locally hosted generative model through the
// Ollama Generate API. It backs the local verdict strategy, search-query
// generation, and claim extraction when no hosted provider is configured.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/config"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 120 * time.Second // Local models can be slower
)

// HTTPClient is an HTTP client for the Ollama API.
type HTTPClient struct {
	baseURL   string
	model     string
	timeout   time.Duration
	retryConf llmhttp.RetryConfig
	client    *http.Client
	logger    llmhttp.Logger
}

// NewHTTPClient creates a new Ollama HTTP client.
func NewHTTPClient(baseURL, model string, providerCfg config.ProviderConfig, httpCfg config.HTTPConfig) *HTTPClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := llmhttp.ParseTimeout(providerCfg.Timeout, httpCfg.Timeout, defaultTimeout)

	return &HTTPClient{
		baseURL:   baseURL,
		model:     model,
		timeout:   timeout,
		retryConf: llmhttp.BuildRetryConfig(providerCfg, httpCfg),
		client:    &http.Client{Timeout: timeout},
	}
}

// SetLogger sets the structured logger for this client.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// CallOptions contains options for the API call.
type CallOptions struct {
	Temperature float64
	MaxTokens   int
}

// APIResponse represents the parsed response from the API.
type APIResponse struct {
	Text      string
	TokensIn  int
	TokensOut int
	Model     string
}

// Call makes a request to the Ollama Generate API.
func (c *HTTPClient) Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error) {
	start := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    "ollama",
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(prompt),
		})
	}

	reqBody := GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false, // We don't use streaming
	}

	opts := make(map[string]any)
	opts["temperature"] = options.Temperature
	if options.MaxTokens > 0 {
		opts["num_predict"] = options.MaxTokens
	}
	reqBody.Options = opts

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var response *APIResponse
	operation := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return llmhttp.NewTimeoutError("ollama", err.Error())
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleErrorResponse(resp.StatusCode, body)
		}

		var genResp GenerateResponse
		if err := json.Unmarshal(body, &genResp); err != nil {
			return llmhttp.NewMalformedResponseError("ollama", err.Error())
		}

		response = &APIResponse{
			Text:      genResp.Response,
			TokensIn:  genResp.PromptEvalCount,
			TokensOut: genResp.EvalCount,
			Model:     genResp.Model,
		}
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retryConf); err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:  "ollama",
				Model:     c.model,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			})
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:   "ollama",
			Model:      c.model,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			Chars:      len(response.Text),
			StatusCode: http.StatusOK,
		})
	}

	return response, nil
}

// Generate returns the model's raw text for a prompt. It is the small
// surface the verify and ingest usecases depend on.
func (c *HTTPClient) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	resp, err := c.Call(ctx, prompt, CallOptions{Temperature: temperature, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	} else if len(body) > 0 && len(body) < 200 {
		message = string(body)
	}

	switch statusCode {
	case http.StatusNotFound:
		return llmhttp.NewInvalidRequestError("ollama", "model not found: "+message)
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError("ollama", message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llmhttp.NewServiceUnavailableError("ollama", message)
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Provider:   "ollama",
		}
	}
}

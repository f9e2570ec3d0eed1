// Package classify provides a zero-shot category classifier backed by the
// HuggingFace inference API.
package classify

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
	defaultBaseURL = "https://api-inference.huggingface.co"
	defaultModel   = "facebook/bart-large-mnli"
	defaultTimeout = 30 * time.Second
)

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient calls the HuggingFace zero-shot classification endpoint.
type HTTPClient struct {
	apiKey    string
	model     string
	baseURL   string
	retryConf llmhttp.RetryConfig
	client    *http.Client
	logger    llmhttp.Logger
}

// NewHTTPClient creates a classifier client. An empty model falls back to
// the package default.
func NewHTTPClient(apiKey, model string, providerCfg config.ProviderConfig, httpCfg config.HTTPConfig) *HTTPClient {
	if model == "" {
		model = defaultModel
	}
	baseURL := providerCfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := llmhttp.ParseTimeout(providerCfg.Timeout, httpCfg.Timeout, defaultTimeout)

	return &HTTPClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		retryConf: llmhttp.BuildRetryConfig(providerCfg, httpCfg),
		client:    &http.Client{Timeout: timeout},
	}
}

// SetLogger sets the structured logger for this client.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// Classify runs zero-shot classification of text over the candidate labels
// and returns the highest-scoring label.
func (c *HTTPClient) Classify(ctx context.Context, text string, labels []string) (string, error) {
	start := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    "huggingface",
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(text),
			APIKey:      c.apiKey,
		})
	}

	jsonData, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{CandidateLabels: labels, MultiLabel: false},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)

	var top string
	operation := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return llmhttp.NewTimeoutError("huggingface", llmhttp.RedactURLSecrets(err.Error()))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleErrorResponse(resp.StatusCode, body)
		}

		var clsResp classifyResponse
		if err := json.Unmarshal(body, &clsResp); err != nil {
			return llmhttp.NewMalformedResponseError("huggingface", err.Error())
		}
		if len(clsResp.Labels) == 0 {
			return llmhttp.NewMalformedResponseError("huggingface", "no labels in response")
		}

		top = clsResp.Labels[0]
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retryConf); err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:  "huggingface",
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
			Provider:  "huggingface",
			Model:     c.model,
			Timestamp: time.Now(),
			Duration:  time.Since(start),
			Chars:     len(top),
		})
	}
	return top, nil
}

func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	}
	message = llmhttp.RedactURLSecrets(message)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return llmhttp.NewAuthenticationError("huggingface", message)
	case statusCode == http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError("huggingface", message)
	// The inference API answers 503 while a model is cold-loading.
	case statusCode >= 500:
		return llmhttp.NewServiceUnavailableError("huggingface", message)
	default:
		return llmhttp.NewInvalidRequestError("huggingface", message)
	}
}

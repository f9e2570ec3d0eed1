// Package gemini implements the grounded-search fact-check provider: a
// single generateContent call with the google_search tool enabled, so the
// model performs its own web retrieval and returns verdict, category, and
// categorized sources in one structured reply.
package gemini

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
	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash-lite"
	defaultTimeout = 60 * time.Second
)

const systemPrompt = `You are an expert fact-checking agent with access to Google Search. Your task is to thoroughly investigate claims using web search.

INSTRUCTIONS:
1. Use Google Search to find 5-10 reputable sources (news articles, official sites, academic papers)
2. Categorize the claim into: tech, business, politics, science, health, or general
3. Analyze each source and categorize it as supporting or refuting the claim
4. For each source provide its full title, complete URL, and a 1-2 sentence summary
5. Provide a clear verdict:
   - "True": Claim is well-supported by evidence
   - "False": Claim is contradicted by evidence
   - "Misleading": Claim is partially true but misrepresented
   - "Unproven": Insufficient evidence to verify
   - "Complex": Mixed evidence or nuanced situation
6. Write a 2-3 sentence summary explaining your verdict

FOCUS ON:
- Recent, authoritative sources (news sites, official announcements, research)
- Primary sources over secondary when possible
- Multiple independent sources
- Specific facts: dates, numbers, names, events`

const promptTemplate = `Fact-check this claim using Google Search and provide a detailed analysis:

CLAIM: %q

You must structure your response EXACTLY as follows:

VERDICT: [choose one: True, False, Misleading, Unproven, or Complex]
CATEGORY: [choose one: tech, business, politics, science, health, or general]
SUMMARY: [2-3 sentence explanation of your verdict]

SUPPORTING SOURCES:
[For each source that supports the claim, provide:]
- TITLE: [article title]
- URL: [full URL]
- SNIPPET: [1-2 sentence summary]

REFUTING SOURCES:
[For each source that refutes the claim, provide:]
- TITLE: [article title]
- URL: [full URL]
- SNIPPET: [1-2 sentence summary]

Find 5-10 reputable sources and categorize them as supporting or refuting. Be thorough and cite specific evidence.`

// HTTPClient is an HTTP client for the Gemini generateContent API.
type HTTPClient struct {
	apiKey    string
	model     string
	baseURL   string
	timeout   time.Duration
	retryConf llmhttp.RetryConfig
	client    *http.Client
	logger    llmhttp.Logger
}

// NewHTTPClient creates a new Gemini HTTP client.
func NewHTTPClient(apiKey, model string, providerCfg config.ProviderConfig, httpCfg config.HTTPConfig) *HTTPClient {
	if model == "" {
		model = defaultModel
	}
	timeout := llmhttp.ParseTimeout(providerCfg.Timeout, httpCfg.Timeout, defaultTimeout)

	return &HTTPClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   defaultBaseURL,
		timeout:   timeout,
		retryConf: llmhttp.BuildRetryConfig(providerCfg, httpCfg),
		client:    &http.Client{Timeout: timeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetLogger sets the structured logger for this client.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// FactCheck runs one grounded fact-check call for a claim and parses the
// structured reply. Rate limits and server errors are retried with
// exponential backoff; 4xx responses abort immediately.
func (c *HTTPClient) FactCheck(ctx context.Context, claimText string) (domain.GroundedReport, error) {
	start := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    "gemini",
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(claimText),
			APIKey:      c.apiKey,
		})
	}

	reqBody := GenerateContentRequest{
		Contents: []Content{
			{Parts: []Part{{Text: fmt.Sprintf(promptTemplate, claimText)}}},
		},
		Tools: []Tool{
			{GoogleSearch: &GoogleSearch{}}, // Enables search grounding
		},
		SystemInstruction: &Content{Parts: []Part{{Text: systemPrompt}}},
		GenerationConfig:  &GenerationConfig{Temperature: 0.1},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.GroundedReport{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var text string
	operation := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return llmhttp.NewTimeoutError("gemini", llmhttp.RedactURLSecrets(err.Error()))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleErrorResponse(resp.StatusCode, body)
		}

		var genResp GenerateContentResponse
		if err := json.Unmarshal(body, &genResp); err != nil {
			return llmhttp.NewMalformedResponseError("gemini", err.Error())
		}

		if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
			return llmhttp.NewMalformedResponseError("gemini", "no candidates in response")
		}

		text = genResp.Candidates[0].Content.Parts[0].Text
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retryConf); err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:  "gemini",
				Model:     c.model,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			})
		}
		return domain.GroundedReport{}, err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:   "gemini",
			Model:      c.model,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			Chars:      len(text),
			StatusCode: http.StatusOK,
		})
	}

	return ParseReport(text)
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	} else if len(body) > 0 && len(body) < 200 {
		message = string(body)
	}
	message = llmhttp.RedactURLSecrets(message)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmhttp.NewAuthenticationError("gemini", message)
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError("gemini", message)
	case http.StatusBadRequest, http.StatusNotFound:
		return llmhttp.NewInvalidRequestError("gemini", message)
	default:
		if statusCode >= 500 {
			return llmhttp.NewServiceUnavailableError("gemini", message)
		}
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Provider:   "gemini",
		}
	}
}

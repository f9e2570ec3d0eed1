package verify

import (
	"context"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

// TextGenerator produces a completion for a prompt. Implemented by the
// ollama and openai adapters.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// CategoryClassifier performs zero-shot classification over candidate
// labels. Implemented by the classify adapter.
type CategoryClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (string, error)
}

// Searcher returns candidate evidence URLs for a query, optionally scoped
// to specific sites.
type Searcher interface {
	Search(ctx context.Context, query string, sites []string) ([]string, error)
}

// ContentFetcher retrieves pages and returns extracted text keyed by URL.
// Failed URLs are absent from the map.
type ContentFetcher interface {
	FetchAll(ctx context.Context, urls []string) map[string]string
}

// FactChecker runs a single grounded fact-check call.
type FactChecker interface {
	FactCheck(ctx context.Context, claimText string) (domain.GroundedReport, error)
}

// Logger provides structured logging for the verification pipeline.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

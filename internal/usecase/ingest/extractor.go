// Package ingest turns raw documents into verifiable claims: text and PDF
// inputs are reduced to plain text, then a generative model extracts a
// bounded list of factual claims from it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/extract"
)

const (
	defaultMaxClaims   = 3
	claimContextChars  = 200
	fallbackClaimChars = 500
	minClaimChars      = 15
	extractMaxTokens   = 256
	extractTemp        = 0.2

	extractPromptTemplate = `You are a claim extraction assistant. Read the text below and extract factual claims that can be verified.

Rules:
1. Extract 1-3 verifiable factual claims
2. Each claim must be a complete, clear sentence
3. Fix any OCR errors, formatting issues, or incomplete sentences
4. Focus on facts: numbers, dates, events, announcements, acquisitions, financial data
5. Ignore opinions, speculation, or subjective statements

Text:
%s

Extract the claims as a numbered list. Be concise and precise.

1.`
)

// ErrEmptyText is returned when there is no text to extract claims from.
var ErrEmptyText = errors.New("text is required for claim extraction")

var (
	numberedItemRe = regexp.MustCompile(`^(\d+)[.):]?\s+(.+)$`)
	lettersRe      = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
	numericTokenRe = regexp.MustCompile(`^\d+[:.)\-]*$`)
)

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Logger provides structured logging for ingestion.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// Extractor pulls verifiable claims out of raw text with a generative
// model. Malformed model output degrades through two fallbacks: the whole
// response as a single claim, then the original text itself.
type Extractor struct {
	gen       TextGenerator
	maxClaims int
	logger    Logger
}

// NewExtractor creates an extractor. maxClaims <= 0 uses the default of 3.
func NewExtractor(gen TextGenerator, maxClaims int, logger Logger) *Extractor {
	if maxClaims <= 0 {
		maxClaims = defaultMaxClaims
	}
	return &Extractor{gen: gen, maxClaims: maxClaims, logger: logger}
}

// ExtractClaims extracts up to maxClaims claims from text, each enriched
// with entities and a short context window. The only error is empty input.
func (e *Extractor) ExtractClaims(ctx context.Context, text string) ([]domain.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	response, err := e.gen.Generate(ctx, fmt.Sprintf(extractPromptTemplate, text), extractTemp, extractMaxTokens)
	if err != nil {
		if e.logger != nil {
			e.logger.LogWarning(ctx, "claim extraction model failed, using original text", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return []domain.Claim{fallbackClaim(text)}, nil
	}
	response = strings.TrimSpace(response)

	claims := parseNumberedClaims(response, text)

	// No structured output: the whole response serves as a single claim,
	// provided it looks like actual text.
	if len(claims) == 0 && len(response) > minClaimChars && lettersRe.MatchString(response) {
		claims = append(claims, newClaim(response, text))
	}
	if len(claims) == 0 {
		return []domain.Claim{fallbackClaim(text)}, nil
	}

	if len(claims) > e.maxClaims {
		claims = claims[:e.maxClaims]
	}
	return claims, nil
}

// parseNumberedClaims reads numbered list items from the model reply,
// rejecting garbage output: replies without letters, items shorter than 15
// chars, items that are mostly numeric tokens, and lists counting from 0.
func parseNumberedClaims(response, original string) []domain.Claim {
	if !lettersRe.MatchString(response) {
		return nil
	}

	var claims []domain.Claim
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		m := numberedItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Lists numbered from 0 are a malformed-output signature.
		if m[1] == "0" {
			continue
		}
		claimText := strings.TrimSpace(m[2])
		if isValidClaimText(claimText) {
			claims = append(claims, newClaim(claimText, original))
		}
	}
	return claims
}

func isValidClaimText(text string) bool {
	if len(text) < minClaimChars {
		return false
	}
	if !lettersRe.MatchString(text) {
		return false
	}

	tokens := strings.Fields(text)
	numericLike := 0
	for _, tok := range tokens {
		if numericTokenRe.MatchString(tok) {
			numericLike++
		}
	}
	total := len(tokens)
	if total == 0 {
		total = 1
	}
	return float64(numericLike)/float64(total) <= 0.6
}

func newClaim(text, original string) domain.Claim {
	return domain.Claim{
		Text:     text,
		Entities: extract.Entities(text),
		Context:  truncate(original, claimContextChars),
	}
}

func fallbackClaim(original string) domain.Claim {
	return domain.Claim{
		Text:     truncate(original, fallbackClaimChars),
		Entities: extract.Entities(original),
		Context:  truncate(original, claimContextChars),
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

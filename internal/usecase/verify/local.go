package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	localEvidenceLimit  = 5
	excerptChars        = 400
	minExcerptContent   = 100
	explanationMaxChars = 500
	verdictMaxTokens    = 200
	verdictTemp         = 0.1

	verdictPromptTemplate = `You are an expert fact-checker. Analyze the claim against the provided evidence sources and determine if it is TRUE, FALSE, MIXED, or UNCERTAIN.

CLAIM TO VERIFY:
"%s"

EVIDENCE FROM RELIABLE SOURCES:
%s

INSTRUCTIONS:
1. Carefully read all evidence sources
2. Check if the key facts in the claim are supported by the evidence
3. Look for: specific numbers, dates, company names, events mentioned
4. Determine verdict: TRUE (fully supported), FALSE (contradicted), MIXED (partially true), or UNCERTAIN (insufficient evidence)
5. Provide a 2-3 sentence explanation citing specific sources

Your response should be in this format:
VERDICT: [TRUE/FALSE/MIXED/UNCERTAIN]
EXPLANATION: [Your 2-3 sentence explanation with source references]

Response:`
)

var (
	verdictRe     = regexp.MustCompile(`(?i)VERDICT:\s*(TRUE|FALSE|MIXED|UNCERTAIN)`)
	explanationRe = regexp.MustCompile(`(?is)EXPLANATION:\s*(.+)`)
	keyTermRe     = regexp.MustCompile(`\b[A-Z][a-z]+\b|\$[\d.]+\s*(?:billion|million)|\b\d{4}\b`)
)

// LocalStrategy synthesizes a verdict with a local text generator over
// already-gathered evidence. Model failures fall back first to relaxed
// parsing of the raw reply and ultimately to a key-term overlap heuristic,
// so Synthesize never returns an error.
type LocalStrategy struct {
	gen    TextGenerator
	logger Logger
}

// NewLocalStrategy creates the local verdict strategy.
func NewLocalStrategy(gen TextGenerator, logger Logger) *LocalStrategy {
	return &LocalStrategy{gen: gen, logger: logger}
}

func (s *LocalStrategy) Name() string             { return "local" }
func (s *LocalStrategy) GathersOwnEvidence() bool { return false }
func (s *LocalStrategy) EvidenceLimit() int       { return localEvidenceLimit }

// Synthesize generates and parses a structured verdict for the claim.
func (s *LocalStrategy) Synthesize(ctx context.Context, claim domain.Claim, query string, evidence []domain.EvidenceItem) (Synthesis, error) {
	prompt := fmt.Sprintf(verdictPromptTemplate, claim.Text, evidenceContext(evidence))

	response, err := s.gen.Generate(ctx, prompt, verdictTemp, verdictMaxTokens)
	if err != nil {
		if s.logger != nil {
			s.logger.LogWarning(ctx, "verdict generation failed, using heuristic analysis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return heuristicSynthesis(claim, evidence), nil
	}

	return parseVerdictResponse(response), nil
}

// evidenceContext renders the top evidence excerpts for the prompt. Only
// documents with substantial content qualify.
func evidenceContext(evidence []domain.EvidenceItem) string {
	var parts []string
	for _, ev := range evidence {
		if len(parts) == localEvidenceLimit {
			break
		}
		if len(ev.FullContent) <= minExcerptContent {
			continue
		}
		content := ev.FullContent
		if len(content) > excerptChars {
			content = content[:excerptChars]
		}
		parts = append(parts, fmt.Sprintf("Source %d - %s (%s):\n%s...",
			len(parts)+1, ev.Title, domainLabel(ev.URL), content))
	}
	return strings.Join(parts, "\n\n")
}

// parseVerdictResponse extracts VERDICT and EXPLANATION from the model
// reply, with a relaxed literal-word fallback when the format was ignored.
func parseVerdictResponse(response string) Synthesis {
	verdict := domain.VerdictUncertain
	score := 0.5
	explanation := truncate(response, explanationMaxChars)

	if m := verdictRe.FindStringSubmatch(response); m != nil {
		verdict = domain.Verdict(strings.ToLower(m[1]))
		score = domain.ScoreForVerdict(verdict)
	} else {
		lower := strings.ToLower(response)
		hasTrue := strings.Contains(lower, "true")
		hasFalse := strings.Contains(lower, "false")
		switch {
		case hasTrue && !hasFalse:
			verdict, score = domain.VerdictTrue, 0.8
		case hasFalse && !hasTrue:
			verdict, score = domain.VerdictFalse, 0.2
		case strings.Contains(lower, "mixed"):
			verdict, score = domain.VerdictMixed, 0.5
		}
	}

	if m := explanationRe.FindStringSubmatch(response); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			explanation = truncate(text, explanationMaxChars)
		}
	}

	return Synthesis{Verdict: verdict, Score: score, Explanation: explanation}
}

// heuristicSynthesis judges the claim by key-term overlap when the model is
// unreachable: a document counts as a match when it contains at least half
// of the claim's key terms.
func heuristicSynthesis(claim domain.Claim, evidence []domain.EvidenceItem) Synthesis {
	keyTerms := keyTermRe.FindAllString(claim.Text, -1)

	matchCount := 0
	for _, ev := range evidence {
		content := ev.FullContent
		if content == "" {
			content = ev.Snippet
		}
		lower := strings.ToLower(content)

		matches := 0
		for _, term := range keyTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				matches++
			}
		}
		if float64(matches) >= float64(len(keyTerms))*0.5 {
			matchCount++
		}
	}

	verdict := domain.VerdictUncertain
	score := 0.5
	switch {
	case matchCount >= 2:
		verdict, score = domain.VerdictTrue, 0.7
	case matchCount == 0:
		verdict, score = domain.VerdictUncertain, 0.5
	default:
		verdict, score = domain.VerdictMixed, 0.5
	}

	shown := keyTerms
	if len(shown) > 5 {
		shown = shown[:5]
	}
	explanation := fmt.Sprintf(
		"Based on analysis of %d sources, %d sources contain relevant information supporting the claim. Key terms found: %s. (Model verdict generation failed, using heuristic analysis)",
		len(evidence), matchCount, strings.Join(shown, ", "))

	return Synthesis{Verdict: verdict, Score: score, Explanation: explanation}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package verify

import (
	"context"
	"fmt"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	groundedEvidenceLimit = 10
	groundedConfidence    = 0.85
)

// GroundedStrategy delegates retrieval and synthesis to a single
// search-grounded model call. It never surfaces an error: when the fact
// checker fails after its retry budget, the caller receives a terminal
// uncertain result.
type GroundedStrategy struct {
	checker FactChecker
	logger  Logger
}

// NewGroundedStrategy creates the grounded verdict strategy.
func NewGroundedStrategy(checker FactChecker, logger Logger) *GroundedStrategy {
	return &GroundedStrategy{checker: checker, logger: logger}
}

func (s *GroundedStrategy) Name() string             { return "grounded" }
func (s *GroundedStrategy) GathersOwnEvidence() bool { return true }
func (s *GroundedStrategy) EvidenceLimit() int       { return groundedEvidenceLimit }

// Synthesize fact-checks the claim. The query and evidence arguments are
// unused: the grounded model performs its own retrieval.
func (s *GroundedStrategy) Synthesize(ctx context.Context, claim domain.Claim, query string, evidence []domain.EvidenceItem) (Synthesis, error) {
	report, err := s.checker.FactCheck(ctx, claim.Text)
	if err != nil {
		if s.logger != nil {
			s.logger.LogWarning(ctx, "grounded fact-check failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return Synthesis{
			Verdict:     domain.VerdictUncertain,
			Score:       0.5,
			Explanation: fmt.Sprintf("Fact-check failed: %v. Please try again.", err),
			Category:    "general",
		}, nil
	}

	var items []domain.EvidenceItem
	for _, src := range report.Supporting {
		items = append(items, groundedItem(src, domain.StanceSupporting))
	}
	for _, src := range report.Refuting {
		items = append(items, groundedItem(src, domain.StanceRefuting))
	}
	if len(items) > groundedEvidenceLimit {
		items = items[:groundedEvidenceLimit]
	}

	verdict, score := domain.MapGroundedVerdict(report.Verdict)
	return Synthesis{
		Verdict:     verdict,
		Score:       score,
		Explanation: report.Summary,
		Category:    report.Category,
		Evidence:    items,
	}, nil
}

func groundedItem(src domain.GroundedSource, stance domain.Stance) domain.EvidenceItem {
	return domain.EvidenceItem{
		URL:        src.URL,
		Title:      src.Title,
		Snippet:    src.Snippet,
		Stance:     stance,
		Confidence: groundedConfidence,
	}
}

package verify

import (
	"context"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

// Synthesis is the strategy-level output of verdict generation. Category
// and Evidence are only populated by strategies that derive them as part of
// the synthesis call itself.
type Synthesis struct {
	Verdict     domain.Verdict
	Score       float64
	Explanation string
	Category    string
	Evidence    []domain.EvidenceItem
}

// VerdictStrategy turns a claim plus evidence into a verdict. Strategies
// must always produce a usable Synthesis: model failures degrade to
// uncertain or heuristic results instead of surfacing as errors, so a
// returned error means only that the caller's context ended.
type VerdictStrategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// GathersOwnEvidence reports whether Synthesize performs its own
	// retrieval, letting the pipeline skip search and fetch.
	GathersOwnEvidence() bool

	// EvidenceLimit caps the evidence items carried into the result and
	// the graph.
	EvidenceLimit() int

	Synthesize(ctx context.Context, claim domain.Claim, query string, evidence []domain.EvidenceItem) (Synthesis, error)
}

// Package verify implements the claim-verification pipeline: category
// classification, search query generation, web search, content fetch,
// evidence scoring, verdict synthesis, and evidence graph construction.
package verify

import (
	"context"
	"time"

	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/google/uuid"
)

const (
	maxSearchSources = 5
	maxFetchURLs     = 8
)

// Verifier orchestrates one verification flow per call. The strategy
// decides whether the search and fetch stages run at all.
type Verifier struct {
	classifier *Classifier
	queries    *QueryGenerator
	searcher   Searcher
	fetcher    ContentFetcher
	strategy   VerdictStrategy
	logger     Logger
}

// NewVerifier wires the pipeline stages together.
func NewVerifier(classifier *Classifier, queries *QueryGenerator, searcher Searcher, fetcher ContentFetcher, strategy VerdictStrategy, logger Logger) *Verifier {
	return &Verifier{
		classifier: classifier,
		queries:    queries,
		searcher:   searcher,
		fetcher:    fetcher,
		strategy:   strategy,
		logger:     logger,
	}
}

// Verify runs the full pipeline for one claim. Stage failures degrade
// within the pipeline, so the returned error is non-nil only when the
// caller's context ends first.
func (v *Verifier) Verify(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.VerificationResult{}, err
	}

	if v.logger != nil {
		v.logger.LogInfo(ctx, "starting verification", map[string]interface{}{
			"strategy": v.strategy.Name(),
			"entities": len(claim.Entities),
		})
	}

	var result domain.VerificationResult
	if v.strategy.GathersOwnEvidence() {
		result = v.verifyGrounded(ctx, claim)
	} else {
		result = v.verifyWithRetrieval(ctx, claim)
	}

	result.ID = uuid.NewString()
	result.CreatedAt = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		return domain.VerificationResult{}, err
	}
	return result, nil
}

func (v *Verifier) verifyGrounded(ctx context.Context, claim domain.Claim) domain.VerificationResult {
	syn, _ := v.strategy.Synthesize(ctx, claim, "", nil)

	return domain.VerificationResult{
		AuthenticityScore: syn.Score,
		Verdict:           syn.Verdict,
		Evidence:          syn.Evidence,
		Graph:             BuildGraph(ClaimLabel(claim.Text), syn.Category, syn.Evidence, v.strategy.EvidenceLimit()),
		Explanation:       syn.Explanation,
		Category:          syn.Category,
	}
}

func (v *Verifier) verifyWithRetrieval(ctx context.Context, claim domain.Claim) domain.VerificationResult {
	category := v.classifier.Classify(ctx, claim.Text)
	query := v.queries.Generate(ctx, claim)

	sources := SourcesForCategory(category)
	if len(sources) > maxSearchSources {
		sources = sources[:maxSearchSources]
	}

	urls, err := v.searcher.Search(ctx, query, sources)
	if err != nil && v.logger != nil {
		v.logger.LogWarning(ctx, "search failed, continuing without results", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(urls) > maxFetchURLs {
		urls = urls[:maxFetchURLs]
	}

	contentMap := v.fetcher.FetchAll(ctx, urls)

	evidence := BuildEvidence(contentMap, claim, sources, query)
	limit := v.strategy.EvidenceLimit()
	if len(evidence) > limit {
		evidence = evidence[:limit]
	}

	syn, _ := v.strategy.Synthesize(ctx, claim, query, evidence)

	return domain.VerificationResult{
		AuthenticityScore: syn.Score,
		Verdict:           syn.Verdict,
		Evidence:          evidence,
		Graph:             BuildGraph(query, category, evidence, limit),
		Explanation:       syn.Explanation,
		Category:          category,
	}
}

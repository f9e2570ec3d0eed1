package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	queryPromptTemplate = `Create a concise search query (3-7 words) from this claim. Extract only the key facts: company names, events, numbers, dates. Remove opinions and unnecessary words.

Claim: "%s"

Search query:`

	queryMinLength = 5
	queryMaxLength = 100
	queryMaxTokens = 20
	queryTemp      = 0.1

	queryEntityCount = 5
)

// QueryGenerator turns a claim into a short web search query via the text
// generator, falling back to the claim's top entities when the model fails
// or produces something outside the accepted length bounds.
type QueryGenerator struct {
	gen    TextGenerator
	logger Logger
}

// NewQueryGenerator creates a query generator. A nil generator always uses
// the entity fallback.
func NewQueryGenerator(gen TextGenerator, logger Logger) *QueryGenerator {
	return &QueryGenerator{gen: gen, logger: logger}
}

// Generate returns a search query for the claim. It never fails.
func (g *QueryGenerator) Generate(ctx context.Context, claim domain.Claim) string {
	if g.gen == nil {
		return entityQuery(claim)
	}

	raw, err := g.gen.Generate(ctx, fmt.Sprintf(queryPromptTemplate, claim.Text), queryTemp, queryMaxTokens)
	if err != nil {
		if g.logger != nil {
			g.logger.LogWarning(ctx, "search query generation failed, using entities", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return entityQuery(claim)
	}

	query := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(raw))
	if len(query) < queryMinLength || len(query) > queryMaxLength {
		return entityQuery(claim)
	}
	return query
}

func entityQuery(claim domain.Claim) string {
	entities := claim.Entities
	if len(entities) > queryEntityCount {
		entities = entities[:queryEntityCount]
	}
	return strings.Join(entities, " ")
}

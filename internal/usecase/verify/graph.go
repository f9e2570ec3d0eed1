package verify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	graphTitleChars = 40
	claimLabelChars = 100
)

// BuildGraph assembles the evidence graph: a singleton claim node, a
// singleton category node linked by classified_as, and one node per
// evidence item (up to limit) linked by a stance-derived relation.
func BuildGraph(claimLabel, category string, evidence []domain.EvidenceItem, limit int) domain.Graph {
	graph := domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "claim", Label: claimLabel, Type: domain.NodeClaim},
			{ID: "category", Label: "Category: " + category, Type: domain.NodeCategory},
		},
		Edges: []domain.GraphEdge{
			{Source: "claim", Target: "category", Relation: "classified_as"},
		},
	}

	if len(evidence) > limit {
		evidence = evidence[:limit]
	}
	for i, ev := range evidence {
		nodeID := fmt.Sprintf("ev_%d", i)
		title := ev.Title
		if len(title) > graphTitleChars {
			title = title[:graphTitleChars]
		}

		graph.Nodes = append(graph.Nodes, domain.GraphNode{
			ID:         nodeID,
			Label:      fmt.Sprintf("%s: %s...", domainLabel(ev.URL), title),
			Type:       domain.NodeEvidence,
			URL:        ev.URL,
			Confidence: ev.Confidence,
		})
		graph.Edges = append(graph.Edges, domain.GraphEdge{
			Source:   "claim",
			Target:   nodeID,
			Relation: relationForStance(ev.Stance),
		})
	}
	return graph
}

// ClaimLabel shortens claim text for use as the claim node label.
func ClaimLabel(text string) string {
	if len(text) > claimLabelChars {
		text = text[:claimLabelChars]
	}
	return text + "..."
}

func relationForStance(stance domain.Stance) string {
	switch stance {
	case domain.StanceSupporting:
		return "supported_by"
	case domain.StanceRefuting:
		return "refuted_by"
	default:
		return "verified_by"
	}
}

// domainLabel reduces a URL to a short host label. Malformed URLs get the
// literal "source".
func domainLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "source"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	return host
}

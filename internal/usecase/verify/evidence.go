package verify

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	minContentChars = 200
	titleMaxChars   = 150
	snippetMaxChars = 400
	contentMaxChars = 3000
	stubSourceCount = 4
	stubConfidence  = 0.3
	baseConfidence  = 0.6
	perMatchBonus   = 0.08
	maxConfidence   = 0.95

	defaultEvidenceTitle = "News Article"
)

// Domains excluded as evidence: search result pages and generic
// encyclopedia content are not news.
var excludedEvidenceDomains = []string{"duckduckgo.com", "wikipedia.org"}

// BuildEvidence turns fetched page text into a ranked evidence list.
// Documents that are too short or come from excluded domains are dropped.
// Confidence grows with the number of claim entities found in the content.
// When nothing survives, synthetic search-page stubs for the category's
// sources keep the evidence list non-empty.
func BuildEvidence(contentMap map[string]string, claim domain.Claim, sources []string, query string) []domain.EvidenceItem {
	urls := make([]string, 0, len(contentMap))
	for u := range contentMap {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var evidence []domain.EvidenceItem
	for _, u := range urls {
		content := contentMap[u]
		if len(content) < minContentChars || isExcludedDomain(u) {
			continue
		}

		title := firstNonEmptyLine(content)
		if title == "" {
			title = defaultEvidenceTitle
		}
		if len(title) > titleMaxChars {
			title = title[:titleMaxChars]
		}

		snippet := content
		if len(snippet) > snippetMaxChars {
			snippet = snippet[:snippetMaxChars]
		}

		full := content
		if len(full) > contentMaxChars {
			full = full[:contentMaxChars]
		}

		confidence := baseConfidence + perMatchBonus*float64(countEntityMatches(claim.Entities, content))
		if confidence > maxConfidence {
			confidence = maxConfidence
		}

		evidence = append(evidence, domain.EvidenceItem{
			URL:         normalizeURL(u),
			Title:       title,
			Snippet:     snippet,
			Stance:      domain.StanceNeutral,
			Confidence:  confidence,
			FullContent: full,
		})
	}

	if len(evidence) == 0 {
		evidence = stubEvidence(sources, query)
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].Confidence > evidence[j].Confidence
	})
	return evidence
}

// stubEvidence builds search-page references so the pipeline never returns
// an empty evidence list.
func stubEvidence(sources []string, query string) []domain.EvidenceItem {
	if len(sources) > stubSourceCount {
		sources = sources[:stubSourceCount]
	}
	stubs := make([]domain.EvidenceItem, 0, len(sources))
	for _, source := range sources {
		stubs = append(stubs, domain.EvidenceItem{
			URL:        fmt.Sprintf("https://www.%s/search?q=%s", source, url.QueryEscape(query)),
			Title:      fmt.Sprintf("%s search results for: %s", source, query),
			Snippet:    fmt.Sprintf("Search results page. The search query %q can be used to find relevant articles on %s.", query, source),
			Stance:     domain.StanceNeutral,
			Confidence: stubConfidence,
		})
	}
	return stubs
}

func countEntityMatches(entities []string, content string) int {
	lower := strings.ToLower(content)
	matches := 0
	for _, e := range entities {
		if strings.Contains(lower, strings.ToLower(e)) {
			matches++
		}
	}
	return matches
}

func firstNonEmptyLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isExcludedDomain(u string) bool {
	for _, domain := range excludedEvidenceDomains {
		if strings.Contains(u, domain) {
			return true
		}
	}
	return false
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}

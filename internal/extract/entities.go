// Package extract pulls salient tokens out of claim text. The tokens feed
// the search-query fallback and the evidence confidence heuristic; they are
// metadata, not the claims themselves.
package extract

import (
	"regexp"
	"strings"
)

const maxEntities = 8

var (
	yearRe       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	moneyRe      = regexp.MustCompile(`(?i)\$\s*[\d.,]+\s*(?:billion|million|trillion|B|M|T)\b`)
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	acronymRe    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	numberRe     = regexp.MustCompile(`(?i)\b\d+(?:,\d{3})*(?:\.\d+)?\s*(?:million|billion|trillion|thousand|percent|%)\b`)
	percentRe    = regexp.MustCompile(`\d+\.?\d*\s*%`)
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "have": true, "been": true,
}

// Entities extracts up to 8 deduplicated salient tokens from text: years,
// money amounts, proper-noun sequences, acronyms, numbers with units, and
// percentages, in that precedence. Stop-words and single-character tokens
// are discarded. The function is pure: identical input yields identical
// ordered output.
func Entities(text string) []string {
	var candidates []string
	for _, re := range []*regexp.Regexp{yearRe, moneyRe, properNounRe, acronymRe, numberRe, percentRe} {
		candidates = append(candidates, re.FindAllString(text, -1)...)
	}

	seen := make(map[string]bool, len(candidates))
	entities := make([]string, 0, maxEntities)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		if len(c) <= 1 || stopWords[strings.ToLower(c)] {
			continue
		}
		entities = append(entities, c)
		if len(entities) == maxEntities {
			break
		}
	}
	return entities
}

package gemini

import (
	"strings"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/domain"
)

// The fact-check reply is a fixed structured-text block:
//
//	VERDICT: True|False|Misleading|Unproven|Complex
//	CATEGORY: tech|business|politics|science|health|general
//	SUMMARY: <free text, possibly multi-line>
//	SUPPORTING SOURCES:
//	- TITLE: ...
//	- URL: ...
//	- SNIPPET: ...
//	REFUTING SOURCES:
//	- TITLE: ...
//	...
//
// Treat it as a wire format: parse line by line with an explicit malformed
// branch rather than trusting the model to always comply.

var verdictLabels = map[string]string{
	"true":       "True",
	"false":      "False",
	"misleading": "Misleading",
	"unproven":   "Unproven",
	"complex":    "Complex",
}

var categoryLabels = map[string]bool{
	"tech": true, "business": true, "politics": true,
	"science": true, "health": true, "general": true,
}

// ParseReport parses the structured fact-check reply. A reply without a
// recognizable VERDICT line is malformed; missing CATEGORY or SUMMARY
// degrade to defaults instead.
func ParseReport(text string) (domain.GroundedReport, error) {
	report := domain.GroundedReport{Category: "general", Summary: "Analysis complete."}

	lines := strings.Split(text, "\n")

	// Section state: "" (preamble), "supporting", "refuting", "summary".
	section := ""
	var summary []string
	var current *domain.GroundedSource
	flush := func() {
		if current == nil {
			return
		}
		src := *current
		current = nil
		if src.Title == "" || src.URL == "" {
			return
		}
		if section == "supporting" {
			report.Supporting = append(report.Supporting, src)
		} else {
			report.Refuting = append(report.Refuting, src)
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case hasPrefixFold(line, "VERDICT:"):
			flush()
			section = ""
			label := strings.TrimSpace(line[len("VERDICT:"):])
			if canonical, ok := verdictLabels[strings.ToLower(label)]; ok {
				report.Verdict = canonical
			}
		case hasPrefixFold(line, "CATEGORY:"):
			flush()
			section = ""
			cat := strings.ToLower(strings.TrimSpace(line[len("CATEGORY:"):]))
			if categoryLabels[cat] {
				report.Category = cat
			}
		case hasPrefixFold(line, "SUMMARY:"):
			flush()
			section = "summary"
			if rest := strings.TrimSpace(line[len("SUMMARY:"):]); rest != "" {
				summary = append(summary, rest)
			}
		case hasPrefixFold(line, "SUPPORTING SOURCES:"):
			flush()
			section = "supporting"
		case hasPrefixFold(line, "REFUTING SOURCES:"):
			flush()
			section = "refuting"
		case section == "summary":
			if line != "" {
				summary = append(summary, line)
			}
		case section == "supporting" || section == "refuting":
			parseSourceLine(line, &current, flush)
		}
	}
	flush()

	if len(summary) > 0 {
		report.Summary = strings.Join(summary, " ")
	}

	if report.Verdict == "" {
		return domain.GroundedReport{}, llmhttp.NewMalformedResponseError("gemini", "no VERDICT line in fact-check reply")
	}
	return report, nil
}

// parseSourceLine consumes one line inside a sources section. Snippets may
// continue over multiple lines until the next TITLE opens a new item.
func parseSourceLine(line string, current **domain.GroundedSource, flush func()) {
	field := strings.TrimSpace(strings.TrimPrefix(line, "-"))

	switch {
	case hasPrefixFold(field, "TITLE:"):
		flush()
		*current = &domain.GroundedSource{Title: strings.TrimSpace(field[len("TITLE:"):])}
	case hasPrefixFold(field, "URL:"):
		if *current != nil {
			(*current).URL = strings.TrimSpace(field[len("URL:"):])
		}
	case hasPrefixFold(field, "SNIPPET:"):
		if *current != nil {
			(*current).Snippet = strings.TrimSpace(field[len("SNIPPET:"):])
		}
	default:
		// Continuation of a multi-line snippet.
		if *current != nil && (*current).Snippet != "" && field != "" {
			(*current).Snippet += " " + field
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

package verify

// categoryOrder fixes the iteration order for keyword fallback so that
// classification is deterministic. A claim matching keywords from several
// categories lands in the first one listed here.
var categoryOrder = []string{"tech", "business", "politics", "science", "health"}

var categorySources = map[string][]string{
	"tech":     {"wired.com", "techcrunch.com", "theverge.com", "arstechnica.com"},
	"business": {"wsj.com", "bloomberg.com", "reuters.com", "ft.com"},
	"politics": {"nytimes.com", "washingtonpost.com", "politico.com", "reuters.com"},
	"science":  {"nature.com", "sciencedaily.com", "scientificamerican.com"},
	"health":   {"mayoclinic.org", "webmd.com", "nih.gov", "who.int"},
	"general":  {"bbc.com", "cnn.com", "reuters.com", "apnews.com"},
}

var categoryKeywords = map[string][]string{
	"tech":     {"technology", "software", "hardware", "AI", "computer", "digital", "internet", "app"},
	"business": {"acquisition", "merger", "company", "corporation", "stock", "market", "revenue"},
	"politics": {"president", "congress", "election", "government", "policy", "senator", "vote"},
	"science":  {"research", "study", "discovery", "experiment", "scientist", "laboratory"},
	"health":   {"disease", "medical", "patient", "treatment", "doctor", "hospital", "vaccine"},
}

// Categories returns every known category, ending with "general".
func Categories() []string {
	out := make([]string, 0, len(categoryOrder)+1)
	out = append(out, categoryOrder...)
	return append(out, "general")
}

// SourcesForCategory returns the trusted source domains for a category,
// falling back to the general list for unknown categories.
func SourcesForCategory(category string) []string {
	if sources, ok := categorySources[category]; ok {
		return sources
	}
	return categorySources["general"]
}

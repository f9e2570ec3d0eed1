package domain

// GroundedSource is one source cited by a grounded fact-check provider,
// already categorized as supporting or refuting.
type GroundedSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// GroundedReport is the normalized output of a grounded-search fact-check
// call: the provider performs its own web retrieval and returns a verdict
// label together with categorized sources. The verdict label is the
// provider vocabulary (True, False, Misleading, Unproven, Complex); use
// MapGroundedVerdict to translate it.
type GroundedReport struct {
	Verdict    string           `json:"verdict"`
	Category   string           `json:"category"`
	Summary    string           `json:"summary"`
	Supporting []GroundedSource `json:"supportingSources"`
	Refuting   []GroundedSource `json:"refutingSources"`
}

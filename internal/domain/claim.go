package domain

// Claim is a single factual assertion to be verified.
// Entities are populated by the extractor at ingestion time, never
// user-supplied, and the claim is immutable once verification starts.
type Claim struct {
	Text     string   `json:"text"`
	Entities []string `json:"entities"`
	Context  string   `json:"context,omitempty"`

	// Optional image attached to the claim, checked out-of-band by the
	// forensics adapter. At most one of URL/Base64 is set.
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// Stance describes a document's relationship to a claim.
type Stance string

const (
	StanceSupporting Stance = "supporting"
	StanceRefuting   Stance = "refuting"
	StanceNeutral    Stance = "neutral"
)

// EvidenceItem is one external document judged relevant to a claim.
// It is transient: built during a single verification call and returned
// to the caller, never persisted on its own.
type EvidenceItem struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Snippet     string  `json:"snippet"`
	Stance      Stance  `json:"stance"`
	Confidence  float64 `json:"confidence"`
	FullContent string  `json:"full_content,omitempty"`
}

package domain

// ImageProvider identifies which backend produced an image judgment.
type ImageProvider string

const (
	ProviderForensicsAPI ImageProvider = "forensics-api"
	ProviderLocalModel   ImageProvider = "local-model"
	ProviderHeuristic    ImageProvider = "heuristics"
)

// ImageVerificationResult is the outcome of an image authenticity check.
// IsTampered and TamperingScore are nil exactly when the provider was
// unavailable, misconfigured, or returned an unparseable payload; that nil
// state is distinct from a computed false.
type ImageVerificationResult struct {
	Provider       ImageProvider `json:"provider"`
	IsTampered     *bool         `json:"is_tampered"`
	TamperingScore *float64      `json:"tampering_score"`
	Reasons        []string      `json:"reasons"`
	Raw            any           `json:"raw,omitempty"`
}

// Unavailable reports whether the check produced no usable score.
func (r ImageVerificationResult) Unavailable() bool {
	return r.IsTampered == nil || r.TamperingScore == nil
}

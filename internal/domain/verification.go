package domain

import "time"

// Verdict is the final categorical judgment for a claim.
type Verdict string

const (
	VerdictTrue      Verdict = "true"
	VerdictFalse     Verdict = "false"
	VerdictMixed     Verdict = "mixed"
	VerdictUncertain Verdict = "uncertain"
)

// VerificationResult is the outcome of one verify call. It is constructed
// once, never mutated afterwards, and returned to the caller.
type VerificationResult struct {
	ID                string                   `json:"id"`
	AuthenticityScore float64                  `json:"authenticity_score"`
	Verdict           Verdict                  `json:"verdict"`
	Evidence          []EvidenceItem           `json:"evidence"`
	Graph             Graph                    `json:"graph"`
	Explanation       string                   `json:"explanation"`
	Category          string                   `json:"category,omitempty"`
	ImageVerification *ImageVerificationResult `json:"image_verification,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

// ScoreForVerdict maps a verdict parsed from the local model's reply to an
// authenticity score.
func ScoreForVerdict(v Verdict) float64 {
	switch v {
	case VerdictTrue:
		return 0.85
	case VerdictFalse:
		return 0.15
	default:
		return 0.5
	}
}

// MapGroundedVerdict translates the grounded model's verdict label into the
// domain verdict and authenticity score. Unknown labels degrade to uncertain.
func MapGroundedVerdict(label string) (Verdict, float64) {
	switch label {
	case "True":
		return VerdictTrue, 0.9
	case "False":
		return VerdictFalse, 0.1
	case "Misleading":
		return VerdictMixed, 0.3
	case "Unproven":
		return VerdictUncertain, 0.5
	case "Complex":
		return VerdictMixed, 0.5
	default:
		return VerdictUncertain, 0.5
	}
}

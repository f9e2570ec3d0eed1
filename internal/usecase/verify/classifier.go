package verify

import (
	"context"
	"strings"
)

// Classifier assigns a claim to one of the known categories. The zero-shot
// model is the primary path; any model failure falls back to keyword
// matching, and a claim matching nothing lands in "general".
type Classifier struct {
	model  CategoryClassifier
	logger Logger
}

// NewClassifier creates a classifier. A nil model skips straight to the
// keyword fallback.
func NewClassifier(model CategoryClassifier, logger Logger) *Classifier {
	return &Classifier{model: model, logger: logger}
}

// Classify returns the category for a claim. It never fails.
func (c *Classifier) Classify(ctx context.Context, claimText string) string {
	if c.model != nil {
		label, err := c.model.Classify(ctx, claimText, Categories())
		if err == nil {
			label = strings.ToLower(strings.TrimSpace(label))
			if _, known := categorySources[label]; known {
				return label
			}
		} else if c.logger != nil {
			c.logger.LogWarning(ctx, "category classification failed, using keyword fallback", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return classifyByKeywords(claimText)
}

func classifyByKeywords(claimText string) string {
	lower := strings.ToLower(claimText)
	for _, category := range categoryOrder {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return category
			}
		}
	}
	return "general"
}

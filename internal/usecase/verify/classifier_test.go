package verify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bkyoung/claim-verifier/internal/usecase/verify"
	"github.com/stretchr/testify/assert"
)

type mockCategoryClassifier struct {
	classifyFunc func(ctx context.Context, text string, labels []string) (string, error)
}

func (m *mockCategoryClassifier) Classify(ctx context.Context, text string, labels []string) (string, error) {
	return m.classifyFunc(ctx, text, labels)
}

func TestClassifier_Classify(t *testing.T) {
	t.Run("uses zero shot result", func(t *testing.T) {
		var gotLabels []string
		model := &mockCategoryClassifier{
			classifyFunc: func(ctx context.Context, text string, labels []string) (string, error) {
				gotLabels = labels
				return "science", nil
			},
		}

		c := verify.NewClassifier(model, nil)
		category := c.Classify(context.Background(), "researchers discovered a new exoplanet")

		assert.Equal(t, "science", category)
		assert.Equal(t, []string{"tech", "business", "politics", "science", "health", "general"}, gotLabels)
	})

	t.Run("unknown model label falls back to keywords", func(t *testing.T) {
		model := &mockCategoryClassifier{
			classifyFunc: func(ctx context.Context, text string, labels []string) (string, error) {
				return "sports", nil
			},
		}

		c := verify.NewClassifier(model, nil)
		category := c.Classify(context.Background(), "the election results surprised the government")
		assert.Equal(t, "politics", category)
	})

	t.Run("model error falls back to keywords", func(t *testing.T) {
		model := &mockCategoryClassifier{
			classifyFunc: func(ctx context.Context, text string, labels []string) (string, error) {
				return "", errors.New("service unavailable")
			},
		}

		c := verify.NewClassifier(model, nil)
		category := c.Classify(context.Background(), "the hospital treated the patient with a new vaccine")
		assert.Equal(t, "health", category)
	})

	t.Run("nil model uses keywords directly", func(t *testing.T) {
		c := verify.NewClassifier(nil, nil)
		assert.Equal(t, "tech", c.Classify(context.Background(), "a new software app for digital payments"))
	})

	t.Run("no keyword match lands in general", func(t *testing.T) {
		c := verify.NewClassifier(nil, nil)
		assert.Equal(t, "general", c.Classify(context.Background(), "it rained in the valley yesterday"))
	})

	t.Run("first matching category wins on overlap", func(t *testing.T) {
		// "technology" (tech) and "company" (business) both appear; tech
		// is checked first.
		c := verify.NewClassifier(nil, nil)
		assert.Equal(t, "tech", c.Classify(context.Background(), "the company released new technology"))
	})
}

func TestSourcesForCategory(t *testing.T) {
	assert.Equal(t, []string{"wired.com", "techcrunch.com", "theverge.com", "arstechnica.com"}, verify.SourcesForCategory("tech"))
	assert.Equal(t, []string{"bbc.com", "cnn.com", "reuters.com", "apnews.com"}, verify.SourcesForCategory("general"))
	assert.Equal(t, verify.SourcesForCategory("general"), verify.SourcesForCategory("unknown"))
}

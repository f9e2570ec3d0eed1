package verify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/usecase/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFactChecker struct {
	factCheckFunc func(ctx context.Context, claimText string) (domain.GroundedReport, error)
}

func (m *mockFactChecker) FactCheck(ctx context.Context, claimText string) (domain.GroundedReport, error) {
	return m.factCheckFunc(ctx, claimText)
}

func TestGroundedStrategy_Synthesize(t *testing.T) {
	claim := domain.Claim{Text: "Intel posted $4.1 billion profit in Q3 2024"}

	t.Run("maps report to synthesis", func(t *testing.T) {
		checker := &mockFactChecker{
			factCheckFunc: func(ctx context.Context, claimText string) (domain.GroundedReport, error) {
				assert.Equal(t, claim.Text, claimText)
				return domain.GroundedReport{
					Verdict:  "True",
					Category: "tech",
					Summary:  "Multiple outlets confirm the figure.",
					Supporting: []domain.GroundedSource{
						{Title: "Intel Q3 Earnings", URL: "https://www.wired.com/intel", Snippet: "Profit of $4.1 billion."},
					},
					Refuting: []domain.GroundedSource{
						{Title: "Accounting Doubts", URL: "https://example.com/doubts", Snippet: "One analyst disagrees."},
					},
				}, nil
			},
		}

		s := verify.NewGroundedStrategy(checker, nil)
		syn, err := s.Synthesize(context.Background(), claim, "", nil)
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictTrue, syn.Verdict)
		assert.Equal(t, 0.9, syn.Score)
		assert.Equal(t, "tech", syn.Category)
		assert.Equal(t, "Multiple outlets confirm the figure.", syn.Explanation)

		require.Len(t, syn.Evidence, 2)
		assert.Equal(t, domain.StanceSupporting, syn.Evidence[0].Stance)
		assert.Equal(t, 0.85, syn.Evidence[0].Confidence)
		assert.Equal(t, domain.StanceRefuting, syn.Evidence[1].Stance)
	})

	t.Run("caps evidence at ten sources", func(t *testing.T) {
		checker := &mockFactChecker{
			factCheckFunc: func(ctx context.Context, claimText string) (domain.GroundedReport, error) {
				report := domain.GroundedReport{Verdict: "Complex"}
				for i := 0; i < 8; i++ {
					report.Supporting = append(report.Supporting, domain.GroundedSource{Title: "s", URL: "https://example.com/s"})
					report.Refuting = append(report.Refuting, domain.GroundedSource{Title: "r", URL: "https://example.com/r"})
				}
				return report, nil
			},
		}

		s := verify.NewGroundedStrategy(checker, nil)
		syn, err := s.Synthesize(context.Background(), claim, "", nil)
		require.NoError(t, err)
		assert.Len(t, syn.Evidence, 10)
		assert.Equal(t, domain.VerdictMixed, syn.Verdict)
		assert.Equal(t, 0.5, syn.Score)
	})

	t.Run("fact check failure yields terminal uncertain result", func(t *testing.T) {
		checker := &mockFactChecker{
			factCheckFunc: func(ctx context.Context, claimText string) (domain.GroundedReport, error) {
				return domain.GroundedReport{}, errors.New("rate limit exceeded")
			},
		}

		s := verify.NewGroundedStrategy(checker, nil)
		syn, err := s.Synthesize(context.Background(), claim, "", nil)
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictUncertain, syn.Verdict)
		assert.Equal(t, 0.5, syn.Score)
		assert.Equal(t, "general", syn.Category)
		assert.Contains(t, syn.Explanation, "Fact-check failed")
		assert.Contains(t, syn.Explanation, "rate limit exceeded")
		assert.Empty(t, syn.Evidence)
	})
}

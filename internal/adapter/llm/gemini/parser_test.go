package gemini_test

import (
	"errors"
	"testing"

	"github.com/bkyoung/claim-verifier/internal/adapter/llm/gemini"
	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedReply = `VERDICT: True
CATEGORY: tech
SUMMARY: Multiple tech outlets confirm the figures.
The timeline also matches across sources.

SUPPORTING SOURCES:
- TITLE: Intel Reports Strong Q3 Earnings
- URL: https://www.wired.com/story/intel-q3-2024-earnings/
- SNIPPET: Intel announced Q3 profit of $4.1 billion.
- TITLE: Intel Beats Expectations
- URL: https://techcrunch.com/2024/10/intel-earnings/
- SNIPPET: The chipmaker posted better than expected results,
  beating analyst forecasts.

REFUTING SOURCES:
- TITLE: Analysts Question Intel Accounting
- URL: https://example.com/intel-doubts
- SNIPPET: One analyst disputes how the figure was computed.
`

func TestParseReport(t *testing.T) {
	t.Run("well formed reply", func(t *testing.T) {
		report, err := gemini.ParseReport(wellFormedReply)
		require.NoError(t, err)

		assert.Equal(t, "True", report.Verdict)
		assert.Equal(t, "tech", report.Category)
		assert.Equal(t, "Multiple tech outlets confirm the figures. The timeline also matches across sources.", report.Summary)

		require.Len(t, report.Supporting, 2)
		assert.Equal(t, "Intel Reports Strong Q3 Earnings", report.Supporting[0].Title)
		assert.Equal(t, "https://www.wired.com/story/intel-q3-2024-earnings/", report.Supporting[0].URL)
		assert.Equal(t, "Intel announced Q3 profit of $4.1 billion.", report.Supporting[0].Snippet)

		// Multi-line snippet folds into one string.
		assert.Equal(t, "The chipmaker posted better than expected results, beating analyst forecasts.", report.Supporting[1].Snippet)

		require.Len(t, report.Refuting, 1)
		assert.Equal(t, "https://example.com/intel-doubts", report.Refuting[0].URL)
	})

	t.Run("missing verdict is malformed", func(t *testing.T) {
		_, err := gemini.ParseReport("SUMMARY: nothing useful here")
		require.Error(t, err)

		var httpErr *llmhttp.Error
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, llmhttp.ErrTypeMalformedResponse, httpErr.Type)
	})

	t.Run("unknown verdict label is malformed", func(t *testing.T) {
		_, err := gemini.ParseReport("VERDICT: Probably\nCATEGORY: tech")
		assert.Error(t, err)
	})

	t.Run("missing category and summary degrade to defaults", func(t *testing.T) {
		report, err := gemini.ParseReport("VERDICT: Unproven")
		require.NoError(t, err)
		assert.Equal(t, "general", report.Category)
		assert.Equal(t, "Analysis complete.", report.Summary)
		assert.Empty(t, report.Supporting)
		assert.Empty(t, report.Refuting)
	})

	t.Run("source without url is dropped", func(t *testing.T) {
		reply := "VERDICT: False\nSUPPORTING SOURCES:\n- TITLE: orphan title\n- SNIPPET: no url given\n"
		report, err := gemini.ParseReport(reply)
		require.NoError(t, err)
		assert.Empty(t, report.Supporting)
	})

	t.Run("case insensitive labels", func(t *testing.T) {
		report, err := gemini.ParseReport("verdict: misleading\ncategory: HEALTH")
		require.NoError(t, err)
		assert.Equal(t, "Misleading", report.Verdict)
		assert.Equal(t, "health", report.Category)
	})
}

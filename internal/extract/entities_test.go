package extract_test

import (
	"testing"

	"github.com/bkyoung/claim-verifier/internal/extract"
	"github.com/stretchr/testify/assert"
)

func TestEntities(t *testing.T) {
	t.Run("finds years money nouns and acronyms", func(t *testing.T) {
		got := extract.Entities("Intel posted $4.1B profit in Q3 2024, says the CEO")

		assert.Contains(t, got, "2024")
		assert.Contains(t, got, "$4.1B")
		assert.Contains(t, got, "Intel")
		assert.Contains(t, got, "CEO")
	})

	t.Run("caps output at eight tokens", func(t *testing.T) {
		text := "Apple, Google, Microsoft, Amazon, Netflix, Oracle, Intel, Nvidia, and Tesla reported 2023 results"
		got := extract.Entities(text)
		assert.Len(t, got, 8)
	})

	t.Run("drops stop words and single characters", func(t *testing.T) {
		got := extract.Entities("The acquisition closed. A deal. That This Have Been")
		for _, e := range got {
			assert.NotContains(t, []string{"The", "That", "This", "Have", "Been", "A"}, e)
		}
	})

	t.Run("deduplicates", func(t *testing.T) {
		got := extract.Entities("NASA praised NASA for NASA in 2020 and 2020")
		count := 0
		for _, e := range got {
			if e == "NASA" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		text := "NVIDIA acquired Mellanox Technologies in 2020 for $7 billion, a 30% premium"
		first := extract.Entities(text)
		second := extract.Entities(text)
		assert.Equal(t, first, second)
	})

	t.Run("empty text yields nothing", func(t *testing.T) {
		assert.Empty(t, extract.Entities(""))
	})
}

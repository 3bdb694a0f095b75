package smoothing

import (
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

// unknownEmission estimates P(word|tag) for a word outside the vocabulary
// from the capitalization and suffix features of the word. A word without
// features gets the tag prior.
func unknownEmission(c *stats.Counts, tag types.Tag, word string) float64 {
	tagCount := float64(c.TagCount(tag))
	p := 1.0

	if types.IsCapitalized(word) {
		p *= (float64(c.CapitalCount(tag)) + 1) / (tagCount + 2)
	}

	lexiconSize := float64(c.Suffixes().Size())
	for _, suffix := range c.Suffixes().Matches(word) {
		p *= (float64(c.SuffixCount(tag, suffix)) + 1) / (tagCount + lexiconSize)
	}

	return p * divide(tagCount, float64(c.TokenCount()))
}

package smoothing

import (
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

// discountedEmission subtracts d from every seen (word, tag) count and gives
// the freed mass of a tag to unseen words in proportion to the number of
// distinct tags each word occurs with.
type discountedEmission struct {
	c     *stats.Counts
	d     float64
	alpha []float64
}

func newDiscountedEmission(c *stats.Counts, d float64) discountedEmission {
	e := discountedEmission{c: c, d: d, alpha: make([]float64, c.Tags().Size())}
	total := float64(c.DistinctWordTags())
	for _, tag := range c.Tags().States() {
		numerator, denominator := 1.0, 1.0
		for _, wc := range c.TagWords(tag) {
			numerator -= divide(float64(wc.Count)-d, float64(c.TagCount(tag)))
			denominator -= divide(float64(c.TagsPerWord(wc.Word)), total)
		}
		e.alpha[tag] = divide(numerator, denominator)
	}
	return e
}

func (e discountedEmission) NonZeroEmission(tag types.Tag, word int) float64 {
	return divide(float64(e.c.WordTagCount(tag, word))-e.d, float64(e.c.TagCount(tag)))
}

func (e discountedEmission) ZeroEmission(tag types.Tag, word int) float64 {
	return e.alpha[tag] * divide(float64(e.c.TagsPerWord(word)), float64(e.c.DistinctWordTags()))
}

type discountedTransition struct {
	c     *stats.Counts
	d     float64
	alpha []float64
}

func newDiscountedTransition(c *stats.Counts, d float64) discountedTransition {
	tags := c.Tags()
	e := discountedTransition{c: c, d: d, alpha: make([]float64, tags.Size())}
	total := float64(c.DistinctTagBigrams())
	for i := 0; i < tags.Size(); i++ {
		prev := types.Tag(i)
		if prev == tags.End() {
			continue
		}
		numerator, denominator := 1.0, 1.0
		for j := 0; j < tags.Size(); j++ {
			tag := types.Tag(j)
			n := c.TransitionCount(prev, tag)
			if n == 0 {
				continue
			}
			numerator -= divide(float64(n)-d, float64(c.TagCount(prev)))
			denominator -= divide(float64(c.Predecessors(tag)), total)
		}
		e.alpha[prev] = divide(numerator, denominator)
	}
	return e
}

func (e discountedTransition) NonZeroTransition(prev, tag types.Tag) float64 {
	return divide(float64(e.c.TransitionCount(prev, tag))-e.d, float64(e.c.TagCount(prev)))
}

func (e discountedTransition) ZeroTransition(prev, tag types.Tag) float64 {
	return e.alpha[prev] * divide(float64(e.c.Predecessors(tag)), float64(e.c.DistinctTagBigrams()))
}

// KneserNeyAlphas returns the leftover mass of every conditioning tag for the
// given emission and transition discounts, indexed by tag ordinal. Boundary
// tags that never condition a distribution keep an alpha of 0.
func KneserNeyAlphas(c *stats.Counts, dEmission, dTransition float64) (emission, transition []float64) {
	return newDiscountedEmission(c, dEmission).alpha, newDiscountedTransition(c, dTransition).alpha
}

// negativeAlphas lists the tags whose leftover mass is below zero.
func negativeAlphas(tags *types.TagInventory, alphas ...[]float64) []string {
	var names []string
	for _, table := range alphas {
		for i, a := range table {
			if a < 0 {
				names = append(names, tags.Name(types.Tag(i)))
			}
		}
	}
	return names
}

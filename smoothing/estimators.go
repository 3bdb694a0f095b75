package smoothing

import (
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

// Estimator computes the probability of a single table entry. The zero hooks
// are used when the pair was never seen in training.
type Estimator interface {
	NonZeroEmission(tag types.Tag, word int) float64
	ZeroEmission(tag types.Tag, word int) float64
	NonZeroTransition(prev, tag types.Tag) float64
	ZeroTransition(prev, tag types.Tag) float64
}

// Derive builds the estimator of a variant for the given counts and
// parameters.
type Derive func(c *stats.Counts, p Params) Estimator

type emissionPart interface {
	NonZeroEmission(tag types.Tag, word int) float64
	ZeroEmission(tag types.Tag, word int) float64
}

type transitionPart interface {
	NonZeroTransition(prev, tag types.Tag) float64
	ZeroTransition(prev, tag types.Tag) float64
}

type estimator struct {
	emissionPart
	transitionPart
}

func divide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

type mleEmission struct {
	c *stats.Counts
}

func (e mleEmission) NonZeroEmission(tag types.Tag, word int) float64 {
	return divide(float64(e.c.WordTagCount(tag, word)), float64(e.c.TagCount(tag)))
}

func (e mleEmission) ZeroEmission(types.Tag, int) float64 {
	return 0
}

type mleTransition struct {
	c *stats.Counts
}

func (e mleTransition) NonZeroTransition(prev, tag types.Tag) float64 {
	return divide(float64(e.c.TransitionCount(prev, tag)), float64(e.c.TagCount(prev)))
}

func (e mleTransition) ZeroTransition(types.Tag, types.Tag) float64 {
	return 0
}

type addNEmission struct {
	c *stats.Counts
	n float64
}

func (e addNEmission) NonZeroEmission(tag types.Tag, word int) float64 {
	return divide(float64(e.c.WordTagCount(tag, word))+e.n, e.denominator(tag))
}

func (e addNEmission) ZeroEmission(tag types.Tag, _ int) float64 {
	return divide(e.n, e.denominator(tag))
}

func (e addNEmission) denominator(tag types.Tag) float64 {
	return float64(e.c.TagCount(tag)) + e.n*float64(e.c.VocabularySize())
}

type addNTransition struct {
	c *stats.Counts
	n float64
}

func (e addNTransition) NonZeroTransition(prev, tag types.Tag) float64 {
	return divide(float64(e.c.TransitionCount(prev, tag))+e.n, e.denominator(prev))
}

func (e addNTransition) ZeroTransition(prev, _ types.Tag) float64 {
	return divide(e.n, e.denominator(prev))
}

func (e addNTransition) denominator(prev types.Tag) float64 {
	return float64(e.c.TagCount(prev)) + e.n*float64(e.c.Tags().Size())
}

type interpolatedEmission struct {
	c       *stats.Counts
	lambda1 float64
	lambda2 float64
}

func newInterpolatedEmission(c *stats.Counts, lambda1 float64) interpolatedEmission {
	return interpolatedEmission{c: c, lambda1: lambda1, lambda2: 1 - lambda1}
}

func (e interpolatedEmission) NonZeroEmission(tag types.Tag, word int) float64 {
	return e.lambda1*divide(float64(e.c.WordTagCount(tag, word)), float64(e.c.TagCount(tag))) +
		e.ZeroEmission(tag, word)
}

func (e interpolatedEmission) ZeroEmission(_ types.Tag, word int) float64 {
	return e.lambda2 * divide(float64(e.c.WordCount(word)), float64(e.c.TokenCount()))
}

type interpolatedTransition struct {
	c       *stats.Counts
	lambda1 float64
	lambda2 float64
}

func newInterpolatedTransition(c *stats.Counts, lambda1 float64) interpolatedTransition {
	return interpolatedTransition{c: c, lambda1: lambda1, lambda2: 1 - lambda1}
}

func (e interpolatedTransition) NonZeroTransition(prev, tag types.Tag) float64 {
	return e.lambda1*divide(float64(e.c.TransitionCount(prev, tag)), float64(e.c.TagCount(prev))) +
		e.ZeroTransition(prev, tag)
}

func (e interpolatedTransition) ZeroTransition(_, tag types.Tag) float64 {
	return e.lambda2 * divide(float64(e.c.TagCount(tag)), float64(e.c.TokenCount()))
}

type wittenBellEmission struct {
	c *stats.Counts
}

func (e wittenBellEmission) NonZeroEmission(tag types.Tag, word int) float64 {
	seen := float64(len(e.c.TagWords(tag)))
	return divide(float64(e.c.WordTagCount(tag, word)), float64(e.c.TagCount(tag))+seen)
}

func (e wittenBellEmission) ZeroEmission(tag types.Tag, _ int) float64 {
	seen := float64(len(e.c.TagWords(tag)))
	unseen := float64(e.c.VocabularySize()) - seen
	return divide(seen, unseen*(float64(e.c.TagCount(tag))+seen))
}

type wittenBellTransition struct {
	c *stats.Counts
}

func (e wittenBellTransition) NonZeroTransition(prev, tag types.Tag) float64 {
	seen := float64(e.c.Successors(prev))
	return divide(float64(e.c.TransitionCount(prev, tag)), float64(e.c.TagCount(prev))+seen)
}

func (e wittenBellTransition) ZeroTransition(prev, _ types.Tag) float64 {
	seen := float64(e.c.Successors(prev))
	unseen := float64(e.c.Tags().Size()) - seen
	return divide(seen, unseen*(float64(e.c.TagCount(prev))+seen))
}

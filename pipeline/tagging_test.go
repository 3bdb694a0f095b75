package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

func trainedModel(t *testing.T, strategy func(*stats.Counts) smoothing.Strategy, lines ...string) smoothing.Strategy {
	sentences := make([]types.Sentence, len(lines))
	for i, line := range lines {
		sent, err := corpus.ParseTagged(i, line)
		require.NoError(t, err)
		sentences[i] = sent
	}
	s := strategy(stats.New(types.PennTreebank(), types.EnglishSuffixes()))
	require.NoError(t, s.Fit(sentences))
	return s
}

func unsmoothed(c *stats.Counts) smoothing.Strategy {
	return smoothing.NewUnsmoothed(c)
}

func final(c *stats.Counts) smoothing.Strategy {
	return smoothing.NewFinal(c, types.DefaultTuningSettings())
}

func TestLines(t *testing.T) {
	sentences := Lines("The dog runs\r\n\nA cat\n\n")
	require.Len(t, sentences, 3)
	require.Equal(t, []string{"The", "dog", "runs"}, sentences[0].Words())
	require.Empty(t, sentences[1].Tokens)
	require.Equal(t, 2, sentences[2].Index)
	require.Nil(t, Lines("\n"))
}

func TestPOSTagger(t *testing.T) {
	model := trainedModel(t, unsmoothed, "The/DT dog/NN runs/VBZ", "A/DT cat/NN sleeps/VBZ")
	tagger := NewPOSTagger(model, types.PennTreebank())

	in := make(chan types.Sentence)
	go func() {
		defer close(in)
		in <- types.NewUntaggedSentence(0, []string{"The", "dog", "runs"})
		in <- types.NewUntaggedSentence(1, nil)
		in <- types.NewUntaggedSentence(2, []string{"A", "cat", "sleeps"})
		in <- types.NewUntaggedSentence(3, []string{"The", "cat"})
	}()

	got := map[int]Tagged{}
	for tagged := range tagger(in) {
		got[tagged.Index] = tagged
	}
	require.Len(t, got, 4)
	require.Equal(t, []string{"DT", "NN", "VBZ"}, got[0].Tags())
	require.NoError(t, got[0].Err)
	require.Empty(t, got[1].Tokens)
	require.Equal(t, []string{"DT", "NN", "VBZ"}, got[2].Tags())
	require.True(t, errors.Is(got[3].Err, pos.ErrDegenerate))
	require.Equal(t, []string{"DT", "NN"}, got[3].Tags())
}

func TestOrdered(t *testing.T) {
	in := make(chan Tagged)
	go func() {
		defer close(in)
		for _, index := range []int{2, 0, 4, 1, 3, 7, 6} {
			in <- Tagged{Sentence: types.Sentence{Index: index}}
		}
	}()

	var indices []int
	for tagged := range Ordered(in) {
		indices = append(indices, tagged.Index)
	}
	require.Empty(t, cmp.Diff([]int{0, 1, 2, 3, 4, 6, 7}, indices))
}

func TestTagging(t *testing.T) {
	model := trainedModel(t, final,
		"The/DT dog/NN runs/VBZ ./.",
		"A/DT cat/NN sleeps/VBZ ./.",
		"The/DT dogs/NNS run/VBP ./.",
	)
	ppln := Tagging(model, types.PennTreebank())

	response := <-ppln(Request{Tid: "doc-1", Text: "The dog runs .\n\nA cat sleeps .\n"})
	require.NoError(t, response.Err)
	require.Equal(t, "doc-1", response.Tid)
	require.Equal(t, 3, response.Sentences)
	require.Equal(t, 0, response.Degenerate)
	require.Equal(t, "The/DT dog/NN runs/VBZ ./.\n\nA/DT cat/NN sleeps/VBZ ./.\n", response.Tagged)

	empty := <-ppln(Request{Tid: "doc-2"})
	require.NoError(t, empty.Err)
	require.Equal(t, 0, empty.Sentences)
	require.Equal(t, "", empty.Tagged)
}

func TestTaggingCountsDegenerate(t *testing.T) {
	model := trainedModel(t, unsmoothed, "The/DT dog/NN runs/VBZ")
	response := <-Tagging(model, types.PennTreebank())(Request{Tid: "doc", Text: "The dog runs\nThe dog"})
	require.NoError(t, response.Err)
	require.Equal(t, 1, response.Degenerate)
	require.Equal(t, "The/DT dog/NN runs/VBZ\nThe/DT dog/NN\n", response.Tagged)
}

func TestTaggingUntrained(t *testing.T) {
	model := smoothing.NewWittenBell(stats.New(types.PennTreebank(), types.EnglishSuffixes()))
	response := <-Tagging(model, types.PennTreebank())(Request{Tid: "doc", Text: "The dog"})
	require.True(t, errors.Is(response.Err, smoothing.ErrUntrained))
}

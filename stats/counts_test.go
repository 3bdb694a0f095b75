package stats

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shaofeinus/POS-tagger/types"
)

func sentence(index int, pairs ...string) types.Sentence {
	sent := types.Sentence{Index: index}
	for i := 0; i+1 < len(pairs); i += 2 {
		sent.Tokens = append(sent.Tokens, types.Token{Word: pairs[i], Tag: pairs[i+1]})
	}
	return sent
}

func tag(t *testing.T, name string) types.Tag {
	tag, ok := types.PennTreebank().Lookup(name)
	require.True(t, ok, name)
	return tag
}

func load(t *testing.T, sentences ...types.Sentence) *Counts {
	c := New(types.PennTreebank(), types.EnglishSuffixes())
	require.NoError(t, c.Load(sentences))
	return c
}

func TestLoad(t *testing.T) {
	c := load(t,
		sentence(0, "The", "DT", "dog", "NN", "runs", "VBZ"),
		sentence(1, "The", "DT", "Dogs", "NNS", "run", "VBP"),
	)

	require.Equal(t, 6, c.TokenCount())
	require.Equal(t, 2, c.SentenceCount())
	require.Equal(t, []string{"Dogs", "dog", "run", "runs", "the"}, c.Vocabulary())

	the, ok := c.WordID("the")
	require.True(t, ok)
	_, ok = c.WordID("The")
	require.False(t, ok)

	require.Equal(t, 2, c.WordCount(the))
	require.Equal(t, 2, c.WordTagCount(tag(t, "DT"), the))
	require.Equal(t, 2, c.TagCount(tag(t, "DT")))
	require.Equal(t, 2, c.TagCount(tag(t, types.StartTagName)))
	require.Equal(t, 2, c.TransitionCount(tag(t, types.StartTagName), tag(t, "DT")))
	require.Equal(t, 1, c.TransitionCount(tag(t, "VBZ"), tag(t, types.EndTagName)))
	require.Equal(t, 1, c.TransitionCount(tag(t, "VBP"), tag(t, types.EndTagName)))
	require.Equal(t, 2, c.Successors(tag(t, "DT")))

	require.Equal(t, 1, c.CapitalCount(tag(t, "NNS")))
	require.Equal(t, 0, c.CapitalCount(tag(t, "DT")))

	lex := types.EnglishSuffixes()
	for i := 0; i < lex.Size(); i++ {
		if lex.Suffix(i) == "s" {
			require.Equal(t, 1, c.SuffixCount(tag(t, "VBZ"), i))
			require.Equal(t, 1, c.SuffixCount(tag(t, "NNS"), i))
		}
	}
}

func TestLoadOpenQuoteNormalization(t *testing.T) {
	c := load(t, sentence(0, "``", "``", "The", "DT", "end", "NN"))

	_, ok := c.WordID("the")
	require.True(t, ok)
	_, ok = c.WordID("The")
	require.False(t, ok)
}

func TestDistinctPairs(t *testing.T) {
	c := load(t,
		sentence(0, "can", "MD", "run", "VB"),
		sentence(1, "can", "NN", "run", "NN"),
	)

	can, _ := c.WordID("can")
	run, _ := c.WordID("run")
	require.Equal(t, 2, c.TagsPerWord(can))
	require.Equal(t, 2, c.TagsPerWord(run))
	require.Equal(t, 4, c.DistinctWordTags())

	require.Equal(t, []WordCount{{Word: can, Count: 1}, {Word: run, Count: 1}}, c.TagWords(tag(t, "NN")))

	// <s>->MD, MD->VB, VB-></s>, <s>->NN, NN->NN, NN-></s>
	require.Equal(t, 6, c.DistinctTagBigrams())
	require.Equal(t, 2, c.Predecessors(tag(t, "NN")))
	require.Equal(t, 2, c.Predecessors(tag(t, types.EndTagName)))
}

func TestLoadUnknownTag(t *testing.T) {
	c := New(types.PennTreebank(), types.EnglishSuffixes())
	err := c.Load([]types.Sentence{
		sentence(0, "The", "DT"),
		sentence(1, "cat", "NN", "meows", "XYZ"),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownTag))

	var tagErr *UnknownTagError
	require.True(t, errors.As(err, &tagErr))
	require.Equal(t, "XYZ", tagErr.Tag)
	require.Equal(t, 1, tagErr.Sentence)
	require.Equal(t, 1, tagErr.Token)

	require.Equal(t, 0, c.TokenCount())
	require.Equal(t, 0, c.VocabularySize())
}

func TestSnapshotRestore(t *testing.T) {
	c := load(t,
		sentence(0, "The", "DT", "happiness", "NN", "spreads", "VBZ"),
		sentence(1, "London", "NNP", "sleeps", "VBZ"),
	)

	restored := New(types.PennTreebank(), types.EnglishSuffixes())
	require.NoError(t, restored.Restore(c.Snapshot()))

	if diff := cmp.Diff(c.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored counts differ (-want +got):\n%s", diff)
	}
	require.Equal(t, c.DistinctWordTags(), restored.DistinctWordTags())
	require.Equal(t, c.DistinctTagBigrams(), restored.DistinctTagBigrams())

	snap := c.Snapshot()
	snap.TagCounts["BOGUS"] = 1
	err := restored.Restore(snap)
	require.True(t, errors.Is(err, ErrUnknownTag))
	require.Equal(t, 0, restored.TokenCount())
}

func TestRestoreRejectsNegativeCounts(t *testing.T) {
	c := load(t,
		sentence(0, "The", "DT", "dog", "NN", "runs", "VBZ"),
		sentence(1, "London", "NNP", "sleeps", "VBZ"),
	)

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"tokens", func(s *Snapshot) { s.Tokens = -1 }},
		{"sentences", func(s *Snapshot) { s.Sentences = -2 }},
		{"word count", func(s *Snapshot) { s.WordCounts[0] = -1 }},
		{"tag count", func(s *Snapshot) { s.TagCounts["NN"] = -1 }},
		{"capitals", func(s *Snapshot) { s.Capitals["NNP"] = -1 }},
		{"word tags", func(s *Snapshot) { s.WordTags["NN"]["dog"] = -1 }},
		{"transitions", func(s *Snapshot) { s.Transitions["DT"]["NN"] = -3 }},
		{"suffixes", func(s *Snapshot) { s.Suffixes["NN"] = map[string]int{"ing": -1} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := c.Snapshot()
			tc.mutate(&snap)

			restored := New(types.PennTreebank(), types.EnglishSuffixes())
			err := restored.Restore(snap)
			require.True(t, errors.Is(err, ErrNegativeCount), "got %v", err)
			require.Equal(t, 0, restored.TokenCount())
			require.Equal(t, 0, restored.VocabularySize())
		})
	}
}

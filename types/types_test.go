package types

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestPennTreebank(t *testing.T) {
	inv := PennTreebank()
	require.Equal(t, 47, inv.Size())
	require.Len(t, inv.States(), 45)
	require.Same(t, inv, PennTreebank())

	nn, ok := inv.Lookup("NN")
	require.True(t, ok)
	require.Equal(t, "NN", inv.Name(nn))

	_, ok = inv.Lookup("XYZ")
	require.False(t, ok)

	require.True(t, inv.IsBoundary(inv.Start()))
	require.True(t, inv.IsBoundary(inv.End()))
	require.False(t, inv.IsBoundary(nn))
	require.Equal(t, StartTagName, inv.Name(inv.Start()))
	require.Equal(t, EndTagName, inv.Name(inv.End()))

	for i, state := range inv.States() {
		if i > 0 {
			require.Greater(t, int(state), int(inv.States()[i-1]))
		}
	}
}

func TestNewTagInventory(t *testing.T) {
	_, err := NewTagInventory([]string{"NN", "NN", StartTagName, EndTagName})
	require.Error(t, err)

	_, err = NewTagInventory([]string{"NN", StartTagName})
	require.Error(t, err)

	inv, err := NewTagInventory([]string{StartTagName, "DT", "NN", EndTagName})
	require.NoError(t, err)
	require.Equal(t, []Tag{1, 2}, inv.States())
}

func TestFeatureLexiconMatches(t *testing.T) {
	lex := EnglishSuffixes()
	require.Equal(t, 44, lex.Size())

	suffixes := func(word string) []string {
		var out []string
		for _, i := range lex.Matches(word) {
			out = append(out, lex.Suffix(i))
		}
		return out
	}

	cases := []struct {
		word     string
		expected []string
	}{
		{"running", []string{"ing"}},
		{"happiness", []string{"ness", "s"}},
		{"sing", nil},
		{"cats", []string{"s"}},
		{"is", nil},
		{"nationalization", []string{"ion", "tion"}},
	}
	for _, c := range cases {
		t.Run(c.word, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, suffixes(c.word)); diff != "" {
				t.Errorf("unexpected matches (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLowerSentenceInitial(t *testing.T) {
	cases := map[string]string{
		"The":    "the",
		"I":      "I",
		"NASA":   "NASA",
		"McCain": "McCain",
		"dog":    "dog",
		"":       "",
		"A":      "a",
	}
	for in, expected := range cases {
		require.Equal(t, expected, LowerSentenceInitial(in), in)
	}

	require.Equal(t, "the", NormalizeWord("The", 0, ""))
	require.Equal(t, "the", NormalizeWord("The", 1, OpenQuoteTag))
	require.Equal(t, "The", NormalizeWord("The", 1, "DT"))
	require.Equal(t, "The", NormalizeWord("The", 2, OpenQuoteTag))
}

func TestIsCapitalized(t *testing.T) {
	require.True(t, IsCapitalized("London"))
	require.True(t, IsCapitalized("iPhone"))
	require.False(t, IsCapitalized("dog"))
	require.False(t, IsCapitalized("42"))
}

func TestShape(t *testing.T) {
	require.Equal(t, "Xxxxx", shape("Hello"))
	require.Equal(t, "xXxxxx", shape("iPhone"))
	require.Equal(t, "ddxX", shape("42nD"))
	require.Equal(t, "", shape(""))
}

func TestSentence(t *testing.T) {
	sent := NewUntaggedSentence(3, []string{"The", "dog"})
	tagged := sent.WithTags([]string{"DT", "NN"})
	require.Equal(t, []string{"DT", "NN"}, tagged.Tags())
	require.Equal(t, []string{"", ""}, sent.Tags())
	require.Equal(t, 3, tagged.Index)
	require.Equal(t, sent, tagged.Untagged())
}

func TestLoadTuningSettings(t *testing.T) {
	settings, err := LoadTuningSettings("")
	require.NoError(t, err)
	require.Equal(t, DefaultTuningSettings(), settings)

	dir := t.TempDir()
	filePath := filepath.Join(dir, "tuning.yaml")
	content := "trials: 5\nd_emission:\n  lower: 0.1\n  upper: 0.5\n"
	require.NoError(t, ioutil.WriteFile(filePath, []byte(content), 0644))

	settings, err = LoadTuningSettings(filePath)
	require.NoError(t, err)
	expected := DefaultTuningSettings()
	expected.Trials = 5
	expected.DEmission = Range{Lower: 0.1, Upper: 0.5}
	require.Equal(t, expected, settings)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, ioutil.WriteFile(bad, []byte("trials: 0\n"), 0644))
	_, err = LoadTuningSettings(bad)
	require.Error(t, err)

	_, err = LoadTuningSettings(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

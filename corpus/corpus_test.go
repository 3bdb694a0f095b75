package corpus

import (
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shaofeinus/POS-tagger/types"
)

func TestParseTagged(t *testing.T) {
	sent, err := ParseTagged(4, "The/DT 1/2/CD share/NN ./.")
	require.NoError(t, err)

	expected := types.Sentence{Index: 4, Tokens: []types.Token{
		{Word: "The", Tag: "DT"},
		{Word: "1/2", Tag: "CD"},
		{Word: "share", Tag: "NN"},
		{Word: ".", Tag: "."},
	}}
	if diff := cmp.Diff(expected, sent); diff != "" {
		t.Errorf("unexpected sentence (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"The/DT dog", "The/DT dog/", "/NN"} {
		_, err := ParseTagged(0, bad)
		require.True(t, errors.Is(err, ErrMalformedToken), bad)
	}
}

func TestReadTagged(t *testing.T) {
	input := "The/DT dog/NN barks/VBZ\n\nA/DT cat/NN\n"
	sentences, err := ReadTagged(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, sentences, 2)
	require.Equal(t, 1, sentences[1].Index)
	require.Equal(t, []string{"DT", "NN"}, sentences[1].Tags())

	_, err = ReadTagged(strings.NewReader("The/DT\nbroken\n"))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 1, parseErr.Line)
	require.Equal(t, "broken", parseErr.Token)
}

func TestReadUntagged(t *testing.T) {
	sentences, err := ReadUntagged(strings.NewReader("The dog barks\n\nA cat\n"))
	require.NoError(t, err)
	require.Len(t, sentences, 3)
	require.Empty(t, sentences[1].Tokens)
	require.Equal(t, []string{"A", "cat"}, sentences[2].Words())
	require.Equal(t, 2, sentences[2].Index)
}

func TestWriteRoundTrip(t *testing.T) {
	input := "The/DT dog/NN barks/VBZ ./.\nA/DT 1/2/CD share/NN\n"
	sentences, err := ReadTagged(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTagged(&buf, sentences))
	require.Equal(t, input, buf.String())

	untagged := Untag(sentences)
	require.Equal(t, "The dog barks .", FormatUntagged(untagged[0]))
	require.Equal(t, []string{"", "", ""}, untagged[1].Tags())
	require.Equal(t, "DT", sentences[0].Tokens[0].Tag)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	tagged := filepath.Join(dir, "tagged.txt")
	sentences := []types.Sentence{
		types.NewUntaggedSentence(0, []string{"Hello"}).WithTags([]string{"UH"}),
	}
	require.NoError(t, WriteTaggedFile(tagged, sentences))

	read, err := ReadTaggedFile(tagged)
	require.NoError(t, err)
	require.Equal(t, sentences, read)

	_, err = ReadTaggedFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	untagged := filepath.Join(dir, "untagged.txt")
	require.NoError(t, ioutil.WriteFile(untagged, []byte("one two\nthree\n"), 0644))
	out, errs, err := NewUntaggedReader(untagged)
	require.NoError(t, err)

	var streamed []types.Sentence
	for sent := range out {
		streamed = append(streamed, sent)
	}
	require.NoError(t, <-errs)
	require.Equal(t, []types.Sentence{
		types.NewUntaggedSentence(0, []string{"one", "two"}),
		types.NewUntaggedSentence(1, []string{"three"}),
	}, streamed)

	_, _, err = NewUntaggedReader(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

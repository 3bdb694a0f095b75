package types

import (
	"sync"

	"github.com/shaofeinus/POS-tagger/utils"
)

// minStemLength is the number of characters a word must keep in front of a
// matching suffix.
const minStemLength = 3

// FeatureLexicon is the fixed list of suffixes used to estimate emissions of
// words never seen in training.
type FeatureLexicon struct {
	suffixes []string
}

func NewFeatureLexicon(suffixes []string) *FeatureLexicon {
	lex := &FeatureLexicon{suffixes: make([]string, len(suffixes))}
	copy(lex.suffixes, suffixes)
	return lex
}

func (lex *FeatureLexicon) Size() int {
	return len(lex.suffixes)
}

func (lex *FeatureLexicon) Suffix(i int) string {
	return lex.suffixes[i]
}

// Matches returns the indexes of every suffix the word ends with, provided at
// least minStemLength characters are left in front of it.
func (lex *FeatureLexicon) Matches(word string) []int {
	runes := []rune(word)
	var matches []int
	for i, suffix := range lex.suffixes {
		if len(runes)-minStemLength < len([]rune(suffix)) {
			continue
		}
		if utils.RunesEndWith(runes, suffix) {
			matches = append(matches, i)
		}
	}
	return matches
}

var englishSuffixes = []string{
	"able", "al", "an", "ance", "ancy", "ant", "ar", "ary", "ate", "ed",
	"ee", "en", "ence", "ency", "ent", "er", "es", "est", "fication", "ful",
	"fy", "ian", "ible", "ic", "ing", "ion", "ish", "ism", "ist", "ity",
	"ive", "ize", "less", "logy", "ly", "ment", "ness", "or", "ous", "s",
	"ship", "sion", "tion", "y",
}

var (
	englishLexicon     *FeatureLexicon
	englishLexiconOnce sync.Once
)

func EnglishSuffixes() *FeatureLexicon {
	englishLexiconOnce.Do(func() {
		englishLexicon = NewFeatureLexicon(englishSuffixes)
	})
	return englishLexicon
}

package types

import (
	"strings"
	"unicode"

	"github.com/shaofeinus/POS-tagger/utils"
)

// Token is a word of a sentence together with its tag. Tag is empty for
// untagged input.
type Token struct {
	Word string
	Tag  string
}

func shape(txt string) string {
	var sb strings.Builder
	for _, r := range txt {
		switch {
		case unicode.IsDigit(r):
			sb.WriteRune('d')
		case unicode.IsUpper(r):
			sb.WriteRune('X')
		default:
			sb.WriteRune('x')
		}
	}

	return sb.String()
}

func IsCapitalized(word string) bool {
	return strings.ContainsRune(shape(word), 'X')
}

// LowerSentenceInitial lower-cases a sentence-initial word whose remaining
// characters are already lower case. The pronoun "I" is left untouched.
func LowerSentenceInitial(word string) string {
	if word == "I" {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 || !utils.HasNoUpper(runes[1:]) {
		return word
	}
	return strings.ToLower(word)
}

// NormalizeWord applies LowerSentenceInitial to the first token of a sentence
// and to the second one when it follows an opening quote.
func NormalizeWord(word string, index int, prevTag string) string {
	if index == 0 || (index == 1 && prevTag == OpenQuoteTag) {
		return LowerSentenceInitial(word)
	}
	return word
}

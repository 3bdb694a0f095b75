package types

// Sentence is one line of a corpus. Index is the zero based line position and
// is used to restore input order after concurrent tagging.
type Sentence struct {
	Index  int
	Tokens []Token
}

func NewUntaggedSentence(index int, words []string) Sentence {
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Word: w}
	}
	return Sentence{Index: index, Tokens: tokens}
}

func (sent Sentence) Words() []string {
	words := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		words[i] = token.Word
	}
	return words
}

func (sent Sentence) Tags() []string {
	tags := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		tags[i] = token.Tag
	}
	return tags
}

// WithTags returns a copy of the sentence carrying the given tags.
func (sent Sentence) WithTags(tags []string) Sentence {
	tokens := make([]Token, len(sent.Tokens))
	for i, token := range sent.Tokens {
		tokens[i] = Token{Word: token.Word}
		if i < len(tags) {
			tokens[i].Tag = tags[i]
		}
	}
	return Sentence{Index: sent.Index, Tokens: tokens}
}

// Untagged returns a copy of the sentence without tags.
func (sent Sentence) Untagged() Sentence {
	return sent.WithTags(nil)
}

package pos

import "github.com/shaofeinus/POS-tagger/types"

// NewTagger returns a function tagging the words of a sentence. A degenerate
// result is still tagged and comes with a *DegenerateError.
func NewTagger(model Model, tags *types.TagInventory) func(sent types.Sentence) (types.Sentence, error) {
	decoder := NewDecoder(model, tags)

	return func(sent types.Sentence) (types.Sentence, error) {
		outcomes, err := decoder.Tag(sent.Words())
		if outcomes == nil {
			return sent, err
		}
		return sent.WithTags(outcomes), err
	}
}

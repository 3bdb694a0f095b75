package pipeline

import (
	"sort"
	"sync"

	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/types"
)

// Tagged is a sentence leaving the tagging stage. A sentence without any
// non-zero path is still tagged and carries a *pos.DegenerateError.
type Tagged struct {
	types.Sentence
	Err error
}

// NewPOSTagger tags every sentence of the input in its own goroutine, so
// sentences leave in no particular order.
func NewPOSTagger(model pos.Model, tags *types.TagInventory) func(in <-chan types.Sentence) <-chan Tagged {
	tagger := pos.NewTagger(model, tags)

	return func(in <-chan types.Sentence) <-chan Tagged {
		out := make(chan Tagged)
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for sent := range in {

				wg.Add(1)
				go func(sent types.Sentence) {
					defer wg.Done()
					if len(sent.Tokens) == 0 {
						out <- Tagged{Sentence: sent}
						return
					}
					tagged, err := tagger(sent)
					out <- Tagged{Sentence: tagged, Err: err}
				}(sent)

			}

			wg.Wait()

		}()
		return out
	}
}

// Ordered re-sequences tagged sentences by index, starting at 0. Sentences
// still held back when the input closes are flushed in index order.
func Ordered(in <-chan Tagged) <-chan Tagged {
	out := make(chan Tagged)
	go func() {
		defer close(out)
		pending := map[int]Tagged{}
		next := 0
		for t := range in {
			pending[t.Index] = t
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				out <- ready
				next++
			}
		}

		rest := make([]int, 0, len(pending))
		for index := range pending {
			rest = append(rest, index)
		}
		sort.Ints(rest)
		for _, index := range rest {
			out <- pending[index]
		}
	}()
	return out
}

package pos

import (
	"math"
	"sync"

	"github.com/shaofeinus/POS-tagger/types"
)

// Model is the source of the probabilities the decoder works with.
type Model interface {
	Emission(tag types.Tag, word string) (float64, error)
	Transition(prev, tag types.Tag) (float64, error)
}

// generational models report a new generation every time their tables are
// rebuilt.
type generational interface {
	Generation() uint64
}

// Decoder finds the most probable tag sequence of a sentence. It may be shared
// between goroutines as long as the model is not retrained during a Decode.
// The log transition table is built once per model generation.
type Decoder struct {
	model    Model
	tags     *types.TagInventory
	fallback types.Tag
	quote    types.Tag
	hasQuote bool

	mu         sync.RWMutex
	transition [][]float64
	generation uint64
}

func NewDecoder(model Model, tags *types.TagInventory) *Decoder {
	fallback, ok := tags.Lookup(types.DefaultTag)
	if !ok {
		fallback = tags.States()[0]
	}
	quote, hasQuote := tags.Lookup(types.OpenQuoteTag)
	return &Decoder{
		model:    model,
		tags:     tags,
		fallback: fallback,
		quote:    quote,
		hasQuote: hasQuote,
	}
}

func (d *Decoder) logTransitions() ([][]float64, error) {
	size := d.tags.Size()
	table := make([][]float64, size)
	for i := range table {
		table[i] = make([]float64, size)
		for j := range table[i] {
			p, err := d.model.Transition(types.Tag(i), types.Tag(j))
			if err != nil {
				return nil, err
			}
			table[i][j] = logProb(p)
		}
	}
	return table, nil
}

func (d *Decoder) modelGeneration() uint64 {
	if g, ok := d.model.(generational); ok {
		return g.Generation()
	}
	return 0
}

// transitions returns the cached log transition table, rebuilding it when the
// model has been retrained since it was built.
func (d *Decoder) transitions() ([][]float64, error) {
	generation := d.modelGeneration()
	d.mu.RLock()
	table, built := d.transition, d.generation
	d.mu.RUnlock()
	if table != nil && built == generation {
		return table, nil
	}

	table, err := d.logTransitions()
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.transition, d.generation = table, generation
	d.mu.Unlock()
	return table, nil
}

func (d *Decoder) logEmission(tag types.Tag, word string) (float64, error) {
	p, err := d.model.Emission(tag, word)
	if err != nil {
		return LogZero, err
	}
	return logProb(p), nil
}

// Decode runs Viterbi over the words. Ties are resolved in favour of the tag
// enumerated first. When no path survives the fallback tag is used and the
// sequence is marked degenerate.
func (d *Decoder) Decode(words []string) (Sequence, error) {
	n := len(words)
	if n == 0 {
		return Sequence{Outcomes: []string{}}, nil
	}

	transition, err := d.transitions()
	if err != nil {
		return Sequence{}, err
	}

	states := d.tags.States()
	size := d.tags.Size()
	score := make([][]float64, size)
	back := make([][]types.Tag, size)
	for _, tag := range states {
		score[tag] = make([]float64, n)
		back[tag] = make([]types.Tag, n)
	}

	degenerate := -1
	dead := func(i int) bool {
		for _, tag := range states {
			if !math.IsInf(score[tag][i], -1) {
				return false
			}
		}
		return true
	}

	start := d.tags.Start()
	first := types.LowerSentenceInitial(words[0])
	for _, tag := range states {
		e, err := d.logEmission(tag, first)
		if err != nil {
			return Sequence{}, err
		}
		score[tag][0] = addLog(transition[start][tag], e)
		back[tag][0] = start
	}
	if dead(0) {
		degenerate = 0
	}

	// The second word is lower-cased only when it follows an opening quote.
	quoted := ""
	if n > 1 && d.hasQuote {
		quoted = types.LowerSentenceInitial(words[1])
	}

	for i := 1; i < n; i++ {
		for _, tag := range states {
			e, err := d.logEmission(tag, words[i])
			if err != nil {
				return Sequence{}, err
			}
			afterQuote := e
			if i == 1 && quoted != "" && quoted != words[1] {
				if afterQuote, err = d.logEmission(tag, quoted); err != nil {
					return Sequence{}, err
				}
			}

			best, bestPrev := LogZero, d.fallback
			for _, prev := range states {
				emit := e
				if i == 1 && d.hasQuote && prev == d.quote {
					emit = afterQuote
				}
				s := addLog(score[prev][i-1], transition[prev][tag], emit)
				if s > best {
					best, bestPrev = s, prev
				}
			}
			score[tag][i] = best
			back[tag][i] = bestPrev
		}
		if degenerate < 0 && dead(i) {
			degenerate = i
		}
	}

	end := d.tags.End()
	best, last := LogZero, d.fallback
	for _, tag := range states {
		s := addLog(score[tag][n-1], transition[tag][end])
		if s > best {
			best, last = s, tag
		}
	}
	if degenerate < 0 && math.IsInf(best, -1) {
		degenerate = n
	}

	outcomes := make([]string, n)
	cur := last
	for i := n - 1; i >= 0 && cur != start; i-- {
		outcomes[i] = d.tags.Name(cur)
		cur = back[cur][i]
	}

	return Sequence{
		Score:      best,
		Outcomes:   outcomes,
		Degenerate: degenerate >= 0,
		Position:   degenerate,
	}, nil
}

// Tag returns the tag names of the best sequence. A degenerate sequence is
// returned together with a *DegenerateError.
func (d *Decoder) Tag(words []string) ([]string, error) {
	seq, err := d.Decode(words)
	if err != nil {
		return nil, err
	}
	return seq.Outcomes, seq.Err()
}

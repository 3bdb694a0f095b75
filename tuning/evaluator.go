package tuning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/types"
)

// Score compares decoded tags against a gold corpus.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Degenerate int `json:"degenerate"`
}

func (s Score) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Evaluator decodes a development corpus with a bounded number of
// goroutines.
type Evaluator struct {
	workers int
}

func NewEvaluator(workers int) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{workers: workers}
}

type sentenceScore struct {
	correct    int
	total      int
	degenerate bool
}

// Accuracy decodes the words of every gold sentence and counts the tags that
// match. Degenerate sentences are scored like any other.
func (e *Evaluator) Accuracy(ctx context.Context, s smoothing.Strategy, gold []types.Sentence) (Score, error) {
	decoder := pos.NewDecoder(s, s.Counts().Tags())
	results := make([]sentenceScore, len(gold))

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				sent := gold[idx]
				outcomes, err := decoder.Tag(sent.Words())
				if err != nil && !errors.Is(err, pos.ErrDegenerate) {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("sentence %d: %w", sent.Index, err)
					}
					mu.Unlock()
					continue
				}
				r := sentenceScore{total: len(sent.Tokens), degenerate: err != nil}
				for j, token := range sent.Tokens {
					if outcomes[j] == token.Tag {
						r.correct++
					}
				}
				results[idx] = r
			}
		}()
	}

feed:
	for i := range gold {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Score{}, err
	}
	if firstErr != nil {
		return Score{}, firstErr
	}

	var score Score
	for _, r := range results {
		score.Correct += r.correct
		score.Total += r.total
		if r.degenerate {
			score.Degenerate++
		}
	}
	return score, nil
}

// Perplexity averages -log P(words, tags)/n over the gold sentences using the
// probabilities of the strategy. A sentence the model gives zero probability
// makes the result +Inf.
func Perplexity(s smoothing.Strategy, gold []types.Sentence) (float64, error) {
	tags := s.Counts().Tags()
	total := 0.0
	lines := 0
	for _, sent := range gold {
		n := len(sent.Tokens)
		if n == 0 {
			continue
		}

		logP := 0.0
		prev := tags.Start()
		prevName := types.StartTagName
		for i, token := range sent.Tokens {
			tag, ok := tags.Lookup(token.Tag)
			if !ok {
				return 0, fmt.Errorf("sentence %d: unknown tag %q", sent.Index, token.Tag)
			}
			transition, err := s.Transition(prev, tag)
			if err != nil {
				return 0, err
			}
			emission, err := s.Emission(tag, types.NormalizeWord(token.Word, i, prevName))
			if err != nil {
				return 0, err
			}
			logP = addLog(logP, transition, emission)
			prev, prevName = tag, token.Tag
		}
		end, err := s.Transition(prev, tags.End())
		if err != nil {
			return 0, err
		}
		logP = addLog(logP, end)

		total += -logP / float64(n)
		lines++
	}

	if lines == 0 {
		return 0, nil
	}
	return total / float64(lines), nil
}

func addLog(logP float64, probabilities ...float64) float64 {
	for _, p := range probabilities {
		if p <= 0 {
			return pos.LogZero
		}
		logP += math.Log(p)
	}
	return logP
}

package pos

import (
	"errors"
	"fmt"
	"math"
)

// LogZero is the log of a zero probability. Any sum containing it is LogZero.
var LogZero = math.Inf(-1)

var ErrDegenerate = errors.New("every tag sequence has zero probability")

// DegenerateError marks a result where no candidate had a non-zero score from
// Position on. Position equals the sentence length when only the transition
// to the end of sentence failed.
type DegenerateError struct {
	Position int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("position %d: %v", e.Position, ErrDegenerate)
}

func (e *DegenerateError) Unwrap() error {
	return ErrDegenerate
}

// Sequence is a decoded tag sequence. Score is the log probability of the
// best path. A degenerate sequence falls back to the default tag wherever no
// path survived.
type Sequence struct {
	Score      float64
	Outcomes   []string
	Degenerate bool
	Position   int
}

// Err returns a *DegenerateError for a degenerate sequence and nil otherwise.
func (seq Sequence) Err() error {
	if !seq.Degenerate {
		return nil
	}
	return &DegenerateError{Position: seq.Position}
}

func logProb(p float64) float64 {
	if p <= 0 || math.IsNaN(p) {
		return LogZero
	}
	return math.Log(p)
}

func addLog(terms ...float64) float64 {
	sum := 0.0
	for _, t := range terms {
		if math.IsInf(t, -1) {
			return LogZero
		}
		sum += t
	}
	return sum
}

package smoothing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

var (
	ErrUntrained = errors.New("model is not trained")
	ErrNoCounts  = errors.New("no training counts loaded")
)

var smoothingLogger = logger.NewLogger("Smoothing")

// Strategy produces emission and transition probabilities from the counts it
// is bound to and walks its own parameter grid during tuning.
type Strategy interface {
	Name() string
	Counts() *stats.Counts

	// Fit loads the corpus into the bound counts, resets the parameters and
	// trains.
	Fit(sentences []types.Sentence) error
	Train() error
	Trained() bool

	Emission(tag types.Tag, word string) (float64, error)
	Transition(prev, tag types.Tag) (float64, error)

	Grid() Grid
	Step() int
	Params() Params
	Best() Params

	// Next moves to the following grid point. It returns false and keeps the
	// parameters when the grid is exhausted.
	Next() bool
	Seek(step int) error
	SetParams(p Params) error
	RememberBest()
	RestoreBest()
	Reset()
}

// Model is the Strategy shared by every smoothing variant. Variants only
// differ by their grid and by the estimator derived from the parameters.
type Model struct {
	name   string
	counts *stats.Counts
	derive Derive
	grid   Grid

	step     int
	bestStep int
	current  Params
	best     Params

	trained    bool
	generation uint64
	cleaned    int
	emission   [][]float64
	transition [][]float64
}

func NewModel(name string, counts *stats.Counts, grid Grid, derive Derive) *Model {
	m := &Model{
		name:   name,
		counts: counts,
		derive: derive,
		grid:   grid,
	}
	m.Reset()
	return m
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) Counts() *stats.Counts {
	return m.counts
}

func (m *Model) Fit(sentences []types.Sentence) error {
	m.trained = false
	if err := m.counts.Load(sentences); err != nil {
		return fmt.Errorf("load training counts: %w", err)
	}
	m.Reset()
	return m.Train()
}

// Train recomputes every table entry from the counts and the current
// parameters.
func (m *Model) Train() error {
	if m.counts.TokenCount() == 0 {
		return ErrNoCounts
	}
	m.trained = false

	est := m.derive(m.counts, m.current)
	cleaned := 0
	clean := func(p float64) float64 {
		if !isProbability(p) {
			cleaned++
			return 0
		}
		return p
	}
	tags := m.counts.Tags()
	size := tags.Size()
	vocabulary := m.counts.VocabularySize()

	emission := make([][]float64, size)
	for i := range emission {
		tag := types.Tag(i)
		row := make([]float64, vocabulary)
		emission[i] = row
		if tags.IsBoundary(tag) {
			continue
		}
		for w := range row {
			if m.counts.WordTagCount(tag, w) > 0 {
				row[w] = clean(est.NonZeroEmission(tag, w))
			} else {
				row[w] = clean(est.ZeroEmission(tag, w))
			}
		}
	}

	transition := make([][]float64, size)
	for i := range transition {
		prev := types.Tag(i)
		row := make([]float64, size)
		transition[i] = row
		if prev == tags.End() {
			continue
		}
		for j := range row {
			tag := types.Tag(j)
			if tag == tags.Start() {
				continue
			}
			if m.counts.TransitionCount(prev, tag) > 0 {
				row[j] = clean(est.NonZeroTransition(prev, tag))
			} else {
				row[j] = clean(est.ZeroTransition(prev, tag))
			}
		}
	}

	if names := negativeLeftover(est, tags); len(names) > 0 {
		smoothingLogger.Warn().
			Str("strategy", m.name).
			Str("params", m.current.String()).
			Strs("tags", names).
			Msg("negative leftover mass")
	}
	if cleaned > 0 {
		smoothingLogger.Debug().
			Str("strategy", m.name).
			Str("params", m.current.String()).
			Int("cells", cleaned).
			Msg("invalid probabilities set to 0")
	}

	m.emission = emission
	m.transition = transition
	m.cleaned = cleaned
	m.generation++
	m.trained = true
	return nil
}

func (m *Model) Trained() bool {
	return m.trained
}

// Generation is incremented by every successful Train.
func (m *Model) Generation() uint64 {
	return m.generation
}

// Emission returns P(word|tag). Words outside the vocabulary are estimated
// from their orthographic features.
func (m *Model) Emission(tag types.Tag, word string) (float64, error) {
	if !m.trained {
		return 0, ErrUntrained
	}
	if m.counts.Tags().IsBoundary(tag) {
		return 0, nil
	}
	if id, ok := m.counts.WordID(word); ok {
		return m.emission[tag][id], nil
	}
	return unknownEmission(m.counts, tag, word), nil
}

func (m *Model) Transition(prev, tag types.Tag) (float64, error) {
	if !m.trained {
		return 0, ErrUntrained
	}
	return m.transition[prev][tag], nil
}

func (m *Model) Grid() Grid {
	return m.grid
}

func (m *Model) Step() int {
	return m.step
}

func (m *Model) Params() Params {
	return m.current
}

func (m *Model) Best() Params {
	return m.best
}

func (m *Model) Next() bool {
	if m.step+1 >= m.grid.Size() {
		return false
	}
	m.moveTo(m.step + 1)
	return true
}

func (m *Model) Seek(step int) error {
	if step < 0 || step >= m.grid.Size() {
		return fmt.Errorf("step %d is outside the grid of %d points", step, m.grid.Size())
	}
	m.moveTo(step)
	return nil
}

// SetParams pins the parameters outside the grid walk, as when a persisted
// model is restored. The values become both current and best. Step reports -1
// when the values are not a point of the grid.
func (m *Model) SetParams(p Params) error {
	names := m.grid.Names()
	values := make([]float64, len(names))
	for i, name := range names {
		v, ok := p.Get(name)
		if !ok {
			return fmt.Errorf("%s: missing parameter %q", m.name, name)
		}
		values[i] = v
	}
	if p.Len() != len(names) {
		return fmt.Errorf("%s: expected %d parameters, got %d", m.name, len(names), p.Len())
	}
	m.current = NewParams(names, values)
	m.best = m.current
	m.step = m.grid.Index(m.current)
	m.bestStep = m.step
	m.trained = false
	return nil
}

func (m *Model) RememberBest() {
	m.bestStep = m.step
	m.best = m.current
}

func (m *Model) RestoreBest() {
	if m.current.Equal(m.best) {
		return
	}
	m.step = m.bestStep
	m.current = m.best
	m.trained = false
}

func (m *Model) Reset() {
	m.moveTo(0)
	m.bestStep = 0
	m.best = m.current
}

// moveTo invalidates the tables only when the parameters change.
func (m *Model) moveTo(step int) {
	p := m.grid.Point(step)
	if !p.Equal(m.current) {
		m.trained = false
	}
	m.step = step
	m.current = p
}

// isProbability rejects results such as those of a discount larger than a
// count. Train stores 0 in their place.
func isProbability(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

func negativeLeftover(est Estimator, tags *types.TagInventory) []string {
	var alphas [][]float64
	if e, ok := est.(estimator); ok {
		if d, ok := e.emissionPart.(discountedEmission); ok {
			alphas = append(alphas, d.alpha)
		}
		if d, ok := e.transitionPart.(discountedTransition); ok {
			alphas = append(alphas, d.alpha)
		}
	}
	return negativeAlphas(tags, alphas...)
}

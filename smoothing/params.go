package smoothing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shaofeinus/POS-tagger/types"
)

const (
	NEmission         = "n_emission"
	NTransition       = "n_transition"
	Lambda1Emission   = "lambda1_emission"
	Lambda1Transition = "lambda1_transition"
	DEmission         = "d_emission"
	DTransition       = "d_transition"
	Discount          = "d"
	Lambda1           = "lambda1"
)

// Params is an immutable set of named parameter values.
type Params struct {
	names  []string
	values []float64
}

func NewParams(names []string, values []float64) Params {
	p := Params{
		names:  make([]string, len(names)),
		values: make([]float64, len(values)),
	}
	copy(p.names, names)
	copy(p.values, values)
	return p
}

// ParamsFromMap orders the values of m by names. Every name must be present.
func ParamsFromMap(names []string, m map[string]float64) (Params, error) {
	values := make([]float64, len(names))
	for i, name := range names {
		v, ok := m[name]
		if !ok {
			return Params{}, fmt.Errorf("missing parameter %q", name)
		}
		values[i] = v
	}
	if len(m) != len(names) {
		return Params{}, fmt.Errorf("expected %d parameters, got %d", len(names), len(m))
	}
	return NewParams(names, values), nil
}

func (p Params) Len() int {
	return len(p.names)
}

func (p Params) Names() []string {
	return append([]string(nil), p.names...)
}

func (p Params) Get(name string) (float64, bool) {
	for i, n := range p.names {
		if n == name {
			return p.values[i], true
		}
	}
	return 0, false
}

// Value returns the named value or 0 when it is not set.
func (p Params) Value(name string) float64 {
	v, _ := p.Get(name)
	return v
}

func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, len(p.names))
	for i, n := range p.names {
		m[n] = p.values[i]
	}
	return m
}

func (p Params) Equal(o Params) bool {
	if len(p.names) != len(o.names) {
		return false
	}
	for i := range p.names {
		if p.names[i] != o.names[i] || p.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

func (p Params) String() string {
	if len(p.names) == 0 {
		return "none"
	}
	parts := make([]string, len(p.names))
	for i, n := range p.names {
		parts[i] = n + "=" + strconv.FormatFloat(p.values[i], 'g', 6, 64)
	}
	return strings.Join(parts, " ")
}

// Axis is one tunable parameter swept over Range in Steps equal intervals,
// from Lower up or, when Descending, from Upper down.
type Axis struct {
	Name       string
	Range      types.Range
	Steps      int
	Descending bool
}

func (a Axis) Points() int {
	return a.Steps + 1
}

func (a Axis) Value(i int) float64 {
	from, to := a.Range.Lower, a.Range.Upper
	if a.Descending {
		from, to = to, from
	}
	switch {
	case i <= 0:
		return from
	case i >= a.Steps:
		return to
	}
	return from + (to-from)*float64(i)/float64(a.Steps)
}

// Grid is the cross product of its axes. The last axis varies fastest and
// step 0 holds the default parameters.
type Grid struct {
	Axes []Axis
}

func (g Grid) Names() []string {
	names := make([]string, len(g.Axes))
	for i, a := range g.Axes {
		names[i] = a.Name
	}
	return names
}

func (g Grid) Size() int {
	size := 1
	for _, a := range g.Axes {
		size *= a.Points()
	}
	return size
}

func (g Grid) Point(step int) Params {
	values := make([]float64, len(g.Axes))
	rest := step
	for i := len(g.Axes) - 1; i >= 0; i-- {
		points := g.Axes[i].Points()
		values[i] = g.Axes[i].Value(rest % points)
		rest /= points
	}
	return Params{names: g.Names(), values: values}
}

// Index returns the step of the grid point equal to p, or -1 when p is not on
// the grid.
func (g Grid) Index(p Params) int {
	for step := 0; step < g.Size(); step++ {
		if g.Point(step).Equal(p) {
			return step
		}
	}
	return -1
}

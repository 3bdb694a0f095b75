package smoothing

import (
	"fmt"

	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

const (
	UnsmoothedName    = "unsmoothed"
	AddNName          = "addn"
	InterpolationName = "interpolate"
	KneserNeyName     = "kneserney"
	WittenBellName    = "wittenbell"
	FinalName         = "final"
)

func NewUnsmoothed(c *stats.Counts) *Model {
	return NewModel(UnsmoothedName, c, Grid{}, func(c *stats.Counts, _ Params) Estimator {
		return estimator{mleEmission{c: c}, mleTransition{c: c}}
	})
}

func NewAddN(c *stats.Counts, settings types.TuningSettings) *Model {
	grid := Grid{Axes: []Axis{
		{Name: NEmission, Range: settings.NEmission, Steps: settings.Trials},
		{Name: NTransition, Range: settings.NTransition, Steps: settings.Trials},
	}}
	return NewModel(AddNName, c, grid, func(c *stats.Counts, p Params) Estimator {
		return estimator{
			addNEmission{c: c, n: p.Value(NEmission)},
			addNTransition{c: c, n: p.Value(NTransition)},
		}
	})
}

func NewInterpolation(c *stats.Counts, settings types.TuningSettings) *Model {
	grid := Grid{Axes: []Axis{
		{Name: Lambda1Emission, Range: settings.Lambda1Emission, Steps: settings.Trials, Descending: true},
		{Name: Lambda1Transition, Range: settings.Lambda1Transition, Steps: settings.Trials, Descending: true},
	}}
	return NewModel(InterpolationName, c, grid, func(c *stats.Counts, p Params) Estimator {
		return estimator{
			newInterpolatedEmission(c, p.Value(Lambda1Emission)),
			newInterpolatedTransition(c, p.Value(Lambda1Transition)),
		}
	})
}

func NewKneserNey(c *stats.Counts, settings types.TuningSettings) *Model {
	grid := Grid{Axes: []Axis{
		{Name: DEmission, Range: settings.DEmission, Steps: settings.Trials},
		{Name: DTransition, Range: settings.DTransition, Steps: settings.Trials},
	}}
	return NewModel(KneserNeyName, c, grid, func(c *stats.Counts, p Params) Estimator {
		return estimator{
			newDiscountedEmission(c, p.Value(DEmission)),
			newDiscountedTransition(c, p.Value(DTransition)),
		}
	})
}

func NewWittenBell(c *stats.Counts) *Model {
	return NewModel(WittenBellName, c, Grid{}, func(c *stats.Counts, _ Params) Estimator {
		return estimator{wittenBellEmission{c: c}, wittenBellTransition{c: c}}
	})
}

// NewFinal discounts emissions like Kneser-Ney and interpolates transitions.
func NewFinal(c *stats.Counts, settings types.TuningSettings) *Model {
	grid := Grid{Axes: []Axis{
		{Name: Discount, Range: settings.DEmission, Steps: settings.Trials},
		{Name: Lambda1, Range: settings.Lambda1Transition, Steps: settings.Trials, Descending: true},
	}}
	return NewModel(FinalName, c, grid, func(c *stats.Counts, p Params) Estimator {
		return estimator{
			newDiscountedEmission(c, p.Value(Discount)),
			newInterpolatedTransition(c, p.Value(Lambda1)),
		}
	})
}

// Names lists the registered variants.
func Names() []string {
	return []string{UnsmoothedName, AddNName, InterpolationName, KneserNeyName, WittenBellName, FinalName}
}

// New builds the named variant bound to c.
func New(name string, c *stats.Counts, settings types.TuningSettings) (Strategy, error) {
	switch name {
	case UnsmoothedName:
		return NewUnsmoothed(c), nil
	case AddNName:
		return NewAddN(c, settings), nil
	case InterpolationName:
		return NewInterpolation(c, settings), nil
	case KneserNeyName:
		return NewKneserNey(c, settings), nil
	case WittenBellName:
		return NewWittenBell(c), nil
	case FinalName:
		return NewFinal(c, settings), nil
	}
	return nil, fmt.Errorf("unknown smoothing strategy %q", name)
}

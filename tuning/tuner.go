package tuning

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/types"
)

// Trial is the evaluation of one grid point.
type Trial struct {
	Step         int
	Params       smoothing.Params
	Score        Score
	Accuracy     float64
	BestAccuracy float64
}

type Report struct {
	Strategy     string
	Trials       []Trial
	Best         smoothing.Params
	BestAccuracy float64
	Resumed      bool
}

type Tuner struct {
	evaluator   *Evaluator
	recorders   []Recorder
	checkpoints Checkpointer
	runID       string
	logger      zerolog.Logger
}

type Option func(*Tuner)

func WithRecorders(recorders ...Recorder) Option {
	return func(t *Tuner) {
		t.recorders = append(t.recorders, recorders...)
	}
}

// WithCheckpoints makes Tune save its progress after every trial and resume
// from the last saved trial of the same run.
func WithCheckpoints(checkpoints Checkpointer) Option {
	return func(t *Tuner) {
		t.checkpoints = checkpoints
	}
}

// WithRunID names the run. The strategy name is used by default.
func WithRunID(id string) Option {
	return func(t *Tuner) {
		t.runID = id
	}
}

func NewTuner(evaluator *Evaluator, opts ...Option) *Tuner {
	t := &Tuner{
		evaluator: evaluator,
		logger:    logger.NewLogger("Tuner"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tuner) run(s smoothing.Strategy) Run {
	id := t.runID
	if id == "" {
		id = s.Name()
	}
	return Run{ID: id, Strategy: s.Name()}
}

// Tune grid-searches the parameters of a strategy whose counts are already
// loaded. Every grid point is trained and scored against dev. The strategy
// is left trained with the parameters of the most accurate point; on a tie
// the earlier point wins. The context is checked between trials.
func (t *Tuner) Tune(ctx context.Context, s smoothing.Strategy, dev []types.Sentence) (Report, error) {
	run := t.run(s)
	tunerLogger := t.logger.With().Str("run", run.ID).Str("strategy", run.Strategy).Logger()
	report := Report{Strategy: s.Name()}

	s.Reset()
	bestStep, bestAccuracy := 0, 0.0
	evaluate := true

	if t.checkpoints != nil {
		cp, ok, err := t.checkpoints.Load(ctx, run.ID)
		if err != nil {
			return report, fmt.Errorf("load checkpoint: %w", err)
		}
		if ok && cp.Strategy == s.Name() {
			if err := s.Seek(cp.BestStep); err != nil {
				return report, fmt.Errorf("resume best step: %w", err)
			}
			s.RememberBest()
			if err := s.Seek(cp.Step); err != nil {
				return report, fmt.Errorf("resume step: %w", err)
			}
			bestStep, bestAccuracy = cp.BestStep, cp.BestAccuracy
			evaluate = false
			report.Resumed = true
			tunerLogger.Info().Int("step", cp.Step).Float64("best_accuracy", cp.BestAccuracy).Msg("Resuming tuning")
		}
	}

	tunerLogger.Info().Int("grid_size", s.Grid().Size()).Msg("Tuning smoothing parameters")
	for {
		if evaluate {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			trial, err := t.trial(ctx, s, dev)
			if err != nil {
				return report, err
			}
			if trial.Accuracy > bestAccuracy {
				s.RememberBest()
				bestStep, bestAccuracy = trial.Step, trial.Accuracy
			}
			trial.BestAccuracy = bestAccuracy
			report.Trials = append(report.Trials, trial)

			if err := t.record(ctx, run, trial); err != nil {
				return report, err
			}
			if t.checkpoints != nil {
				cp := Checkpoint{
					Strategy:     s.Name(),
					Step:         trial.Step,
					BestStep:     bestStep,
					BestAccuracy: bestAccuracy,
					Params:       trial.Params.Map(),
					Best:         s.Best().Map(),
				}
				if err := t.checkpoints.Save(ctx, run.ID, cp); err != nil {
					return report, fmt.Errorf("save checkpoint: %w", err)
				}
			}
		}
		evaluate = true
		if !s.Next() {
			break
		}
	}

	s.RestoreBest()
	if err := s.Train(); err != nil {
		return report, err
	}
	report.Best = s.Best()
	report.BestAccuracy = bestAccuracy
	tunerLogger.Info().
		Str("best", report.Best.String()).
		Float64("best_accuracy", bestAccuracy).
		Msg("Tuning finished")
	return report, nil
}

// Evaluate scores the strategy with its current parameters, training it
// first when needed.
func (t *Tuner) Evaluate(ctx context.Context, s smoothing.Strategy, dev []types.Sentence) (Report, error) {
	run := t.run(s)
	report := Report{Strategy: s.Name()}

	trial, err := t.trial(ctx, s, dev)
	if err != nil {
		return report, err
	}
	trial.BestAccuracy = trial.Accuracy
	report.Trials = append(report.Trials, trial)
	if err := t.record(ctx, run, trial); err != nil {
		return report, err
	}

	report.Best = s.Params()
	report.BestAccuracy = trial.Accuracy
	return report, nil
}

func (t *Tuner) trial(ctx context.Context, s smoothing.Strategy, dev []types.Sentence) (Trial, error) {
	if !s.Trained() {
		if err := s.Train(); err != nil {
			return Trial{}, fmt.Errorf("train %s with %s: %w", s.Name(), s.Params(), err)
		}
	}
	score, err := t.evaluator.Accuracy(ctx, s, dev)
	if err != nil {
		return Trial{}, fmt.Errorf("evaluate %s with %s: %w", s.Name(), s.Params(), err)
	}
	if score.Degenerate > 0 {
		t.logger.Warn().
			Str("strategy", s.Name()).
			Str("params", s.Params().String()).
			Int("sentences", score.Degenerate).
			Msg("Sentences without a non-zero path")
	}
	return Trial{
		Step:     s.Step(),
		Params:   s.Params(),
		Score:    score,
		Accuracy: score.Accuracy(),
	}, nil
}

func (t *Tuner) record(ctx context.Context, run Run, trial Trial) error {
	for _, r := range t.recorders {
		if err := r.Record(ctx, run, trial); err != nil {
			return fmt.Errorf("record trial %d: %w", trial.Step, err)
		}
	}
	return nil
}

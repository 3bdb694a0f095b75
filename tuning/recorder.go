package tuning

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Run identifies one tuning pass of a strategy.
type Run struct {
	ID       string
	Strategy string
}

// Recorder receives every finished trial.
type Recorder interface {
	Record(ctx context.Context, run Run, trial Trial) error
}

type LogRecorder struct {
	logger zerolog.Logger
}

func NewLogRecorder(logger zerolog.Logger) LogRecorder {
	return LogRecorder{logger: logger}
}

func (r LogRecorder) Record(_ context.Context, run Run, trial Trial) error {
	r.logger.Info().
		Str("run", run.ID).
		Str("strategy", run.Strategy).
		Int("step", trial.Step).
		Str("params", trial.Params.String()).
		Float64("accuracy", trial.Accuracy).
		Float64("best_accuracy", trial.BestAccuracy).
		Int("degenerate", trial.Score.Degenerate).
		Msg("Trial finished")
	return nil
}

func CSVFileName(id string) string {
	return "tuning_results_" + id + ".csv"
}

// CSVRecorder writes one row per trial: the step, every parameter value and
// the accuracy.
type CSVRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

func NewCSVRecorder(filePath string) (*CSVRecorder, error) {
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create tuning results: %w", err)
	}
	return &CSVRecorder{f: f, w: csv.NewWriter(f)}, nil
}

func (r *CSVRecorder) Record(_ context.Context, _ Run, trial Trial) error {
	values := trial.Params.Map()
	row := make([]string, 0, len(values)+2)
	row = append(row, strconv.Itoa(trial.Step))
	for _, name := range trial.Params.Names() {
		row = append(row, strconv.FormatFloat(values[name], 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(trial.Accuracy, 'f', 6, 64))

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// Command smoothing_tests tunes every smoothing variant on the same corpora
// and reports the best accuracy of each.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/tuning"
	"github.com/shaofeinus/POS-tagger/types"
	"github.com/shaofeinus/POS-tagger/utils"
)

type Config struct {
	SettingsPath string `envconfig:"SETTINGS" default:""`
	Workers      int    `envconfig:"WORKERS" default:"0"`
	ResultsDir   string `envconfig:"RESULTS_DIR" default:"."`
	HistoryDB    string `envconfig:"HISTORY_DB" default:""`
}

const usage = "usage: smoothing_tests <tagged training file> <tagged development file>"

type result struct {
	report tuning.Report
	err    error
}

func main() {
	logger.SetupLogging()
	testsLogger := logger.NewLogger("Smoothing tests")
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var config Config
	if err := envconfig.Process("POS_TAGGER", &config); err != nil {
		testsLogger.Error().Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if config.Workers < 1 {
		config.Workers = runtime.NumCPU()
	}
	settings, err := types.LoadTuningSettings(config.SettingsPath)
	if err != nil {
		testsLogger.Error().Err(err).Msg("Failed to load tuning settings")
		os.Exit(1)
	}
	train, err := corpus.ReadTaggedFile(os.Args[1])
	if err != nil {
		testsLogger.Error().Err(err).Msg("Failed to read training corpus")
		os.Exit(1)
	}
	dev, err := corpus.ReadTaggedFile(os.Args[2])
	if err != nil {
		testsLogger.Error().Err(err).Msg("Failed to read development corpus")
		os.Exit(1)
	}

	var history *tuning.SQLiteHistory
	if config.HistoryDB != "" {
		history, err = tuning.NewSQLiteHistory(config.HistoryDB)
		if err != nil {
			testsLogger.Error().Err(err).Msg("Failed to open tuning history")
			os.Exit(1)
		}
		defer history.Close()
	}

	names := smoothing.Names()
	results := make([]result, len(names))
	evaluator := tuning.NewEvaluator(config.Workers)
	wg := sync.WaitGroup{}
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i].report, results[i].err = tuneVariant(ctx, name, settings, evaluator, config, history, train, dev)
		}(i, name)
	}
	wg.Wait()

	failed := false
	for i, name := range names {
		if results[i].err != nil {
			testsLogger.Error().Err(results[i].err).Str("strategy", name).Msg("Variant failed")
			failed = true
			continue
		}
		testsLogger.Info().
			Str("strategy", name).
			Str("best", results[i].report.Best.String()).
			Float64("best_accuracy", results[i].report.BestAccuracy).
			Msg("Variant finished")
	}
	if failed {
		os.Exit(1)
	}
}

func tuneVariant(
	ctx context.Context,
	name string,
	settings types.TuningSettings,
	evaluator *tuning.Evaluator,
	config Config,
	history *tuning.SQLiteHistory,
	train, dev []types.Sentence,
) (report tuning.Report, err error) {
	defer utils.RecoverWithError(&err)

	strategy, err := smoothing.New(name, stats.New(types.PennTreebank(), types.EnglishSuffixes()), settings)
	if err != nil {
		return report, err
	}
	if err := strategy.Fit(train); err != nil {
		return report, err
	}
	csvRecorder, err := tuning.NewCSVRecorder(filepath.Join(config.ResultsDir, tuning.CSVFileName(name)))
	if err != nil {
		return report, err
	}
	defer csvRecorder.Close()

	variantLogger := logger.NewLogger("Smoothing tests (" + name + ")")
	recorders := []tuning.Recorder{tuning.NewLogRecorder(variantLogger), csvRecorder}
	if history != nil {
		recorders = append(recorders, history)
	}
	return tuning.NewTuner(evaluator, tuning.WithRecorders(recorders...)).Tune(ctx, strategy, dev)
}

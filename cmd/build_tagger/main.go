// Command build_tagger trains the final model on a tagged corpus, tunes its
// smoothing parameters against a development corpus and stores the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/model"
	"github.com/shaofeinus/POS-tagger/redis"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/tuning"
	"github.com/shaofeinus/POS-tagger/types"
)

type Config struct {
	SettingsPath string `envconfig:"SETTINGS" default:""`
	Workers      int    `envconfig:"WORKERS" default:"0"`
	ResultsDir   string `envconfig:"RESULTS_DIR" default:"."`
	HistoryDB    string `envconfig:"HISTORY_DB" default:""`
	Checkpoints  bool   `envconfig:"CHECKPOINTS" default:"false"`
	RunID        string `envconfig:"RUN_ID" default:"final"`
}

const usage = "usage: build_tagger <tagged training file> <tagged development file> <model>"

func main() {
	logger.SetupLogging()
	buildLogger := logger.NewLogger("Build tagger")
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := build(ctx, buildLogger, os.Args[1], os.Args[2], os.Args[3]); err != nil {
		var unknownTag *stats.UnknownTagError
		if errors.As(err, &unknownTag) {
			buildLogger.Error().Err(err).Str("tag", unknownTag.Tag).Msg("Training corpus uses a tag outside the tag set")
		} else {
			buildLogger.Error().Err(err).Msg("Failed to build tagger")
		}
		os.Exit(1)
	}
}

func build(ctx context.Context, buildLogger zerolog.Logger, trainPath, devPath, modelKey string) error {
	var config Config
	if err := envconfig.Process("POS_TAGGER", &config); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = runtime.NumCPU()
	}
	settings, err := types.LoadTuningSettings(config.SettingsPath)
	if err != nil {
		return err
	}

	train, err := corpus.ReadTaggedFile(trainPath)
	if err != nil {
		return err
	}
	dev, err := corpus.ReadTaggedFile(devPath)
	if err != nil {
		return err
	}
	buildLogger.Info().Int("train", len(train)).Int("dev", len(dev)).Msg("Corpora loaded")

	strategy := smoothing.NewFinal(stats.New(types.PennTreebank(), types.EnglishSuffixes()), settings)
	if err := strategy.Fit(train); err != nil {
		return err
	}

	csvRecorder, err := tuning.NewCSVRecorder(filepath.Join(config.ResultsDir, tuning.CSVFileName(config.RunID)))
	if err != nil {
		return err
	}
	defer csvRecorder.Close()
	opts := []tuning.Option{
		tuning.WithRunID(config.RunID),
		tuning.WithRecorders(tuning.NewLogRecorder(buildLogger), csvRecorder),
	}
	if config.HistoryDB != "" {
		history, err := tuning.NewSQLiteHistory(config.HistoryDB)
		if err != nil {
			return err
		}
		defer history.Close()
		opts = append(opts, tuning.WithRecorders(history))
	}
	if config.Checkpoints {
		client, err := redis.NewClient(redis.TuningDB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		opts = append(opts, tuning.WithCheckpoints(tuning.NewRedisCheckpointer(&client)))
	}

	report, err := tuning.NewTuner(tuning.NewEvaluator(config.Workers), opts...).Tune(ctx, strategy, dev)
	if err != nil {
		return err
	}
	buildLogger.Info().
		Str("best", report.Best.String()).
		Float64("best_accuracy", report.BestAccuracy).
		Int("trials", len(report.Trials)).
		Bool("resumed", report.Resumed).
		Msg("Tuning finished")

	storeConfig, err := model.ReadConfig()
	if err != nil {
		return fmt.Errorf("read store config: %w", err)
	}
	store, closeStore, err := model.Open(storeConfig)
	if err != nil {
		return err
	}
	defer closeStore()
	return model.SaveStrategy(ctx, store, modelKey, strategy)
}

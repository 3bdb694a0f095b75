// Command run_tagger tags every line of an untagged file with a stored model.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/model"
	"github.com/shaofeinus/POS-tagger/pipeline"
	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/types"
	"github.com/shaofeinus/POS-tagger/utils"
)

type Config struct {
	SettingsPath string `envconfig:"SETTINGS" default:""`
}

const usage = "usage: run_tagger <untagged file> <model> <output file>"

func main() {
	logger.SetupLogging()
	runLogger := logger.NewLogger("Run tagger")
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if err := run(context.Background(), runLogger, os.Args[1], os.Args[2], os.Args[3]); err != nil {
		runLogger.Error().Err(err).Msg("Failed to tag input")
		os.Exit(1)
	}
}

func run(ctx context.Context, runLogger zerolog.Logger, inputPath, modelKey, outputPath string) (err error) {
	defer utils.RecoverWithError(&err)

	var config Config
	if err := envconfig.Process("POS_TAGGER", &config); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	settings, err := types.LoadTuningSettings(config.SettingsPath)
	if err != nil {
		return err
	}
	storeConfig, err := model.ReadConfig()
	if err != nil {
		return fmt.Errorf("read store config: %w", err)
	}
	store, closeStore, err := model.Open(storeConfig)
	if err != nil {
		return err
	}
	defer closeStore()
	strategy, err := model.LoadStrategy(ctx, store, modelKey, settings)
	if err != nil {
		return err
	}
	if !strategy.Trained() {
		if err := strategy.Train(); err != nil {
			return err
		}
	}

	sentences, readErrs, err := corpus.NewUntaggedReader(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	tagger := pipeline.NewPOSTagger(strategy, types.PennTreebank())
	lines, degenerate := 0, 0
	var tagErr error
	for tagged := range pipeline.Ordered(tagger(sentences)) {
		lines++
		if tagged.Err != nil {
			if !errors.Is(tagged.Err, pos.ErrDegenerate) {
				if tagErr == nil {
					tagErr = tagged.Err
				}
				continue
			}
			degenerate++
		}
		if _, err := w.WriteString(corpus.FormatTagged(tagged.Sentence) + "\n"); err != nil && tagErr == nil {
			tagErr = fmt.Errorf("write output: %w", err)
		}
	}
	if err := <-readErrs; err != nil {
		return err
	}
	if tagErr != nil {
		return tagErr
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if degenerate > 0 {
		runLogger.Warn().Int("sentences", degenerate).Msg("Sentences without a non-zero path were tagged NN")
	}
	runLogger.Info().Int("lines", lines).Str("output", outputPath).Msg("Finished tagging")
	return nil
}

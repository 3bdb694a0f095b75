package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaofeinus/POS-tagger/api"
	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/model"
	"github.com/shaofeinus/POS-tagger/pipeline"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/types"
	"github.com/shaofeinus/POS-tagger/worker"
)

type Config struct {
	ModelKey      string `envconfig:"POS_TAGGER_MODEL" required:"true"`
	SettingsPath  string `envconfig:"POS_TAGGER_SETTINGS" default:""`
	RestAPIActive bool   `envconfig:"POS_TAGGER_REST_API_ACTIVE" default:"true"`
	RestAPIPort   string `envconfig:"POS_TAGGER_REST_API_PORT" default:"10000"`
	WorkerActive  bool   `envconfig:"POS_TAGGER_WORKER_ACTIVE" default:"false"`
}

const pipelineStartMaxRetries = 5

func loadModel(config Config) (smoothing.Strategy, error) {
	settings, err := types.LoadTuningSettings(config.SettingsPath)
	if err != nil {
		return nil, err
	}
	storeConfig, err := model.ReadConfig()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := model.Open(storeConfig)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return model.LoadStrategy(context.Background(), store, config.ModelKey, settings)
}

func main() {
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	fatalErrLogger := mainLogger.Fatal().Caller()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if !config.RestAPIActive && !config.WorkerActive {
		fatalErrLogger.Msg("Neither the REST API nor the worker is active")
		os.Exit(1)
	}

	// Load model
	modelChannel := make(chan smoothing.Strategy)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			strategy, err := loadModel(config)
			if err != nil {
				mainLogger.Err(err).Str("model", config.ModelKey).Msg("Failed to load model. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			if !strategy.Trained() {
				if err := strategy.Train(); err != nil {
					mainLogger.Err(err).Msg("Failed to train model. Retrying in 5 sec")
					time.Sleep(5 * time.Second)
					continue
				}
			}
			modelChannel <- strategy
			return
		}
		fatalErrLogger.Msgf("Could not load model after %d retries, exiting", pipelineStartMaxRetries)
		os.Exit(1)
	}()

	// block until the model loads
	strategy := <-modelChannel
	ppln := pipeline.Tagging(strategy, types.PennTreebank())
	mainLogger.Info().Str("strategy", strategy.Name()).Str("params", strategy.Params().String()).Msg("Pipeline loaded")

	if config.RestAPIActive {
		serve := func() {
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			health := &api.Health{
				Model: api.ModelInfo{
					Strategy: strategy.Name(),
					Params:   strategy.Params().Map(),
					Trained:  strategy.Trained(),
				},
			}
			mux := http.NewServeMux()
			mux.HandleFunc("/tag", apiRequest.ProcessData)
			mux.Handle("/health", health)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mainLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, mux)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
			os.Exit(1)
		}
		if !config.WorkerActive {
			serve()
			return
		}
		go serve()
	}

	mainLogger.Info().Msg("Start tagging worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

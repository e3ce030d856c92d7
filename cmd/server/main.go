// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package main is the entry point for the Carpick recommendation server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment variables (Koanf v2)
//  2. Personalization store: BadgerDB (or in-memory), wrapped with a circuit breaker
//  3. Learning log: DuckDB for feedback events and session summaries
//  4. Scoring engine: versioned collaborative parameters plus expert scorers
//  5. Feedback pipeline: Watermill router over gochannel or NATS JetStream
//  6. HTTP server: REST API with Prometheus metrics
//
// The feedback pipeline and the HTTP server run under a suture supervision
// tree; either one crashing is restarted with backoff rather than taking
// the process down. Shutdown on SIGINT/SIGTERM drains in-flight requests
// and closes the pipeline before the stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/carpick/engine/internal/api"
	"github.com/carpick/engine/internal/config"
	"github.com/carpick/engine/internal/database"
	"github.com/carpick/engine/internal/events"
	"github.com/carpick/engine/internal/logging"
	"github.com/carpick/engine/internal/profile"
	"github.com/carpick/engine/internal/recommend"
	"github.com/carpick/engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()
	logger.Info().Str("addr", cfg.Server.Addr()).Msg("starting carpick engine")

	// Personalization store, wrapped with timeout and circuit breaker.
	backend, closeBackend, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer closeBackend()

	profiles := store.NewResilient(backend, store.Config{
		OpTimeout:        cfg.Store.OpTimeout,
		FailureThreshold: cfg.Store.BreakerFailureThreshold,
		OpenTimeout:      cfg.Store.BreakerOpenTimeout,
	}, logger)

	// Learning log.
	learningLog, err := database.Open(database.Config{
		Path:    cfg.Database.Path,
		Threads: cfg.Database.Threads,
	}, logger)
	if err != nil {
		return fmt.Errorf("open learning log: %w", err)
	}
	defer func() {
		if err := learningLog.Close(); err != nil {
			logger.Warn().Err(err).Msg("learning log close failed")
		}
	}()

	// Scoring engine with versioned collaborative parameters.
	params, err := loadParams(cfg.Recommend.ParamsPath)
	if err != nil {
		return fmt.Errorf("load collaborative params: %w", err)
	}
	scorer, err := recommend.NewCollaborativeScorer(params, cfg.Recommend.FusionAlpha)
	if err != nil {
		return fmt.Errorf("create collaborative scorer: %w", err)
	}
	engine, err := recommend.NewEngine(&recommend.Config{
		Workers:  cfg.Recommend.Workers,
		DefaultK: cfg.Recommend.DefaultK,
		MaxK:     cfg.Recommend.MaxK,
	}, scorer, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	// Feedback pipeline feeding the learner; the learning log doubles as
	// the session source for pattern analysis.
	learner := profile.NewLearner(profiles, learningLog, logger)
	pipeline, err := events.NewPipeline(cfg.Events, learner, learningLog, logger)
	if err != nil {
		return fmt.Errorf("create feedback pipeline: %w", err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn().Err(err).Msg("pipeline close failed")
		}
	}()

	handler := api.NewHandler(engine, profiles, pipeline, logger)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(cfg.Server, handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Supervision tree: pipeline and HTTP server restart independently.
	hook := (&sutureslog.Handler{Logger: logging.Slog()}).MustHook()
	sup := suture.New("carpick", suture.Spec{EventHook: hook})
	sup.Add(&pipelineService{pipeline: pipeline})
	sup.Add(&httpService{server: server, shutdownTimeout: cfg.Server.ShutdownTimeout})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// openStore builds the configured profile store backend and its closer.
func openStore(cfg config.StoreConfig) (profile.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "badger":
		bs, err := store.OpenBadger(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() {
			if err := bs.Close(); err != nil {
				logging.Warn().Err(err).Msg("badger close failed")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// loadParams resolves the collaborative parameter set: from file when a
// path is configured, otherwise the built-in deterministic set.
func loadParams(path string) (*recommend.CollaborativeParams, error) {
	if path == "" {
		return recommend.DefaultParams(), nil
	}
	return recommend.LoadParams(path)
}

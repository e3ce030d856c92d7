// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carpick/engine/internal/events"
)

// httpService runs the HTTP server as a supervised service.
type httpService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// Serve implements suture.Service. It blocks until the server fails or
// the supervisor cancels the context, then drains in-flight requests.
func (s *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *httpService) String() string { return "http-server" }

// pipelineService runs the feedback event router as a supervised service.
type pipelineService struct {
	pipeline *events.Pipeline
}

// Serve implements suture.Service. The router's Run blocks until the
// context is canceled or the router fails.
func (s *pipelineService) Serve(ctx context.Context) error {
	return s.pipeline.Run(ctx)
}

func (s *pipelineService) String() string { return "feedback-pipeline" }

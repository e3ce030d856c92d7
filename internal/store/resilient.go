// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package store

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/rs/zerolog"

	"github.com/carpick/engine/internal/metrics"
	"github.com/carpick/engine/internal/profile"
)

// Config tunes the Resilient wrapper.
type Config struct {
	// OpTimeout bounds a single get/put.
	OpTimeout time.Duration

	// FailureThreshold is the consecutive failures before the breaker opens.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// Resilient decorates a profile store with a per-call timeout and a
// circuit breaker. A profile miss is not a failure; only errors and
// timeouts count toward tripping.
//
// When the breaker is open every call fails fast with ErrNotFound
// semantics, which callers already treat as "use the profile in hand".
type Resilient struct {
	inner   profile.Store
	breaker *gobreaker.CircuitBreaker[*profile.PreferenceProfile]
	timeout time.Duration
	logger  zerolog.Logger
}

// NewResilient wraps a store with timeout and breaker protection.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResilient(inner profile.Store, cfg Config, logger zerolog.Logger) *Resilient {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 2 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 15 * time.Second
	}

	componentLogger := logger.With().Str("component", "profile-store").Logger()

	settings := gobreaker.Settings{
		Name:    "profile-store",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.ProfileStoreBreakerState.Set(breakerStateValue(to))
		},
		// Profile misses are normal operation, not failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, profile.ErrNotFound)
		},
	}

	return &Resilient{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*profile.PreferenceProfile](settings),
		timeout: cfg.OpTimeout,
		logger:  componentLogger,
	}
}

// Get retrieves a profile, bounded by the op timeout.
func (r *Resilient) Get(ctx context.Context, userID string) (*profile.PreferenceProfile, error) {
	start := time.Now()
	p, err := r.breaker.Execute(func() (*profile.PreferenceProfile, error) {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.inner.Get(opCtx, userID)
	})
	metrics.ObserveStoreOp("get", opStatus(err), time.Since(start))
	return p, err
}

// Put stores a profile, bounded by the op timeout.
func (r *Resilient) Put(ctx context.Context, p *profile.PreferenceProfile) error {
	start := time.Now()
	_, err := r.breaker.Execute(func() (*profile.PreferenceProfile, error) {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return nil, r.inner.Put(opCtx, p)
	})
	metrics.ObserveStoreOp("put", opStatus(err), time.Since(start))
	return err
}

// opStatus maps an operation result onto a metric label.
func opStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, profile.ErrNotFound):
		return "miss"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// breakerStateValue maps breaker states onto the gauge encoding.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

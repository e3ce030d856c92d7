// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carpick/engine/internal/config"
	"github.com/carpick/engine/internal/database"
	"github.com/carpick/engine/internal/metrics"
	"github.com/carpick/engine/internal/profile"
)

// Pipeline owns the feedback event flow: the publisher the API writes to,
// the routed handler that learns from each event, and the transport
// underneath both.
type Pipeline struct {
	transport    *transport
	router       *message.Router
	topic        string
	sessionTopic string
	logger       zerolog.Logger
}

// NewPipeline builds the feedback pipeline. The learner is required; the
// learning log may be nil, in which case events update profiles without
// being recorded.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(cfg config.EventsConfig, learner *profile.Learner, log *database.DB, logger zerolog.Logger) (*Pipeline, error) {
	wmLogger := NewWatermillLogger(logger)

	t, err := newTransport(cfg, wmLogger)
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, wmLogger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create event router: %w", err)
	}

	// Middleware order is outer to inner: recover panics, retry transient
	// failures, throttle if configured, divert exhausted events to the
	// poison topic.
	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	if cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second)
		router.AddMiddleware(throttle.Middleware)
	}

	if cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(t.publisher, cfg.PoisonTopic)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("create poison queue: %w", err)
		}
		router.AddMiddleware(poison)
	}

	p := &Pipeline{
		transport:    t,
		router:       router,
		topic:        cfg.Topic,
		sessionTopic: cfg.SessionTopic,
		logger:       logger.With().Str("component", "events").Logger(),
	}

	router.AddNoPublisherHandler(
		"feedback-learner",
		cfg.Topic,
		t.subscriber,
		p.handleFeedback(learner, log),
	)

	router.AddNoPublisherHandler(
		"session-recorder",
		cfg.SessionTopic,
		t.subscriber,
		p.handleSession(learner, log),
	)

	return p, nil
}

// Publish sends a feedback event into the pipeline. Invalid actions are
// rejected before anything touches the wire.
func (p *Pipeline) Publish(ctx context.Context, ev profile.FeedbackEvent) error {
	if !ev.Action.Valid() {
		return fmt.Errorf("invalid feedback action %q", ev.Action)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}

	// The message deliberately does not carry the caller's context: the
	// request is acknowledged before learning happens, and a canceled
	// request must not abort the handler downstream.
	msg := message.NewMessage(uuid.NewString(), payload)

	if err := p.transport.publisher.Publish(p.topic, msg); err != nil {
		metrics.FeedbackPublishErrors.Inc()
		return fmt.Errorf("publish feedback event: %w", err)
	}
	return nil
}

// PublishSession records a completed consultation session. The row lands
// in the learning log asynchronously and triggers a pattern refresh for
// the user.
func (p *Pipeline) PublishSession(ctx context.Context, s profile.SessionSummary) error {
	if s.UserID == "" {
		return fmt.Errorf("session summary missing user id")
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session summary: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)

	if err := p.transport.publisher.Publish(p.sessionTopic, msg); err != nil {
		metrics.SessionEvents.WithLabelValues("publish_error").Inc()
		return fmt.Errorf("publish session summary: %w", err)
	}
	return nil
}

// handleFeedback returns the routed handler that applies an event to the
// user's profile and appends it to the learning log. A learner failure
// returns an error so the router retries; a learning-log failure is only
// logged, since the log is not the source of truth.
func (p *Pipeline) handleFeedback(learner *profile.Learner, log *database.DB) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var ev profile.FeedbackEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			metrics.FeedbackEvents.WithLabelValues("unknown", "malformed").Inc()
			// Malformed payloads never become valid; fail through to the
			// poison queue without burning retries on re-parsing.
			return fmt.Errorf("unmarshal feedback event: %w", err)
		}

		ctx := msg.Context()
		if _, err := learner.Update(ctx, ev); err != nil {
			metrics.FeedbackEvents.WithLabelValues(string(ev.Action), "error").Inc()
			return fmt.Errorf("apply feedback for user %s: %w", ev.UserID, err)
		}

		if log != nil {
			if err := log.InsertFeedback(ctx, ev); err != nil {
				p.logger.Warn().Err(err).
					Str("user_id", ev.UserID).
					Msg("learning log write failed")
			}
		}

		metrics.FeedbackEvents.WithLabelValues(string(ev.Action), "ok").Inc()
		return nil
	}
}

// handleSession returns the routed handler that appends a session row and
// refreshes the user's detected patterns from the recent session window.
// Unlike the feedback log, the session log is what pattern analysis reads,
// so a failed insert returns an error and the router retries.
func (p *Pipeline) handleSession(learner *profile.Learner, log *database.DB) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var s profile.SessionSummary
		if err := json.Unmarshal(msg.Payload, &s); err != nil {
			metrics.SessionEvents.WithLabelValues("malformed").Inc()
			return fmt.Errorf("unmarshal session summary: %w", err)
		}

		ctx := msg.Context()
		if log != nil {
			if err := log.InsertSession(ctx, s); err != nil {
				metrics.SessionEvents.WithLabelValues("error").Inc()
				return fmt.Errorf("record session for user %s: %w", s.UserID, err)
			}
		}

		if _, err := learner.RefreshPatterns(ctx, s.UserID); err != nil {
			metrics.SessionEvents.WithLabelValues("error").Inc()
			return fmt.Errorf("refresh patterns for user %s: %w", s.UserID, err)
		}

		metrics.SessionEvents.WithLabelValues("ok").Inc()
		return nil
	}
}

// Run starts the router and blocks until the context is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.router.Run(ctx)
}

// Running returns a channel closed once the router is accepting messages.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close stops the router and shuts down the transport.
func (p *Pipeline) Close() error {
	if err := p.router.Close(); err != nil {
		_ = p.transport.Close()
		return fmt.Errorf("close event router: %w", err)
	}
	return p.transport.Close()
}

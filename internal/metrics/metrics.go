// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package metrics provides Prometheus instrumentation for the engine:
// recommendation latency and throughput, feedback pipeline volume,
// profile store health, and the circuit breaker protecting it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpick_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"status"}, // "ok", "empty", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carpick_recommend_duration_seconds",
			Help:    "End-to-end duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carpick_candidates_scored",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	CompositeScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carpick_composite_score",
			Help:    "Distribution of composite scores across ranked candidates",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0..100
		},
	)

	// Feedback pipeline metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpick_feedback_events_total",
			Help: "Total number of feedback events processed",
		},
		[]string{"action", "status"}, // action: like/dislike/inquire/skip/view
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpick_session_events_total",
			Help: "Total number of session summaries processed",
		},
		[]string{"status"}, // "ok", "error", "malformed", "publish_error"
	)

	FeedbackPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carpick_feedback_publish_errors_total",
			Help: "Total number of failed feedback event publishes",
		},
	)

	// Profile store metrics
	ProfileStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpick_profile_store_operations_total",
			Help: "Total number of profile store operations",
		},
		[]string{"operation", "status"}, // operation: get/put, status: ok/miss/error/timeout
	)

	ProfileStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carpick_profile_store_duration_seconds",
			Help:    "Duration of profile store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProfileStoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carpick_profile_store_breaker_state",
			Help: "Circuit breaker state for the profile store (0=closed, 1=half-open, 2=open)",
		},
	)

	// Learning log metrics
	LearningLogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpick_learning_log_writes_total",
			Help: "Total number of learning log writes",
		},
		[]string{"kind", "status"}, // kind: feedback/session
	)
)

// ObserveRecommend records a completed recommendation request.
func ObserveRecommend(status string, candidates int, duration time.Duration) {
	RecommendRequests.WithLabelValues(status).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if candidates > 0 {
		CandidatesScored.Observe(float64(candidates))
	}
}

// ObserveStoreOp records a profile store operation.
func ObserveStoreOp(operation, status string, duration time.Duration) {
	ProfileStoreOps.WithLabelValues(operation, status).Inc()
	ProfileStoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

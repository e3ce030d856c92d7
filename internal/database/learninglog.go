// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/carpick/engine/internal/metrics"
	"github.com/carpick/engine/internal/profile"
)

// InsertFeedback appends a feedback event to the learning log.
func (db *DB) InsertFeedback(ctx context.Context, ev profile.FeedbackEvent) error {
	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO feedback_events (
			user_id, candidate_id, action, view_duration_seconds,
			price, brand, body_type, fuel_efficiency, safety_rating, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.UserID, ev.CandidateID, string(ev.Action), ev.ViewDurationSeconds,
		ev.Price, ev.Brand, ev.BodyType, ev.FuelEfficiency, ev.SafetyRating, occurredAt,
	)
	if err != nil {
		metrics.LearningLogWrites.WithLabelValues("feedback", "error").Inc()
		return fmt.Errorf("insert feedback event: %w", err)
	}
	metrics.LearningLogWrites.WithLabelValues("feedback", "ok").Inc()
	return nil
}

// InsertSession appends a session summary to the learning log.
func (db *DB) InsertSession(ctx context.Context, s profile.SessionSummary) error {
	startedAt := s.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sessions (
			user_id, persona, budget_range, vehicle_type, satisfaction, started_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Persona, s.BudgetRange, s.VehicleType, s.Satisfaction, startedAt,
	)
	if err != nil {
		metrics.LearningLogWrites.WithLabelValues("session", "error").Inc()
		return fmt.Errorf("insert session: %w", err)
	}
	metrics.LearningLogWrites.WithLabelValues("session", "ok").Inc()
	return nil
}

// SessionSummaries returns the most recent sessions for a user, newest
// first, suitable for pattern aggregation.
func (db *DB) SessionSummaries(ctx context.Context, userID string, limit int) ([]profile.SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, persona, budget_range, vehicle_type, satisfaction, started_at
		FROM sessions
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []profile.SessionSummary
	for rows.Next() {
		var s profile.SessionSummary
		if err := rows.Scan(&s.UserID, &s.Persona, &s.BudgetRange, &s.VehicleType, &s.Satisfaction, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// FeedbackCount returns the total number of logged feedback events for a
// user. Used by the health and profile endpoints for context.
func (db *DB) FeedbackCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback_events WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count feedback events: %w", err)
	}
	return count, nil
}

// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package profile

import "time"

// Action classifies an explicit user reaction to a recommended candidate.
type Action string

// Supported feedback actions.
const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionInquire Action = "inquire"
	ActionSkip    Action = "skip"
	ActionView    Action = "view"
)

// Valid reports whether the action is one of the supported values.
func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionInquire, ActionSkip, ActionView:
		return true
	default:
		return false
	}
}

// FeedbackEvent is a single user action on a recommended candidate.
// It is ephemeral input: applied to the profile and appended to the
// learning log, never stored as an entity beyond that.
//
// The candidate snapshot fields carry the attributes the learner keys
// its deltas on, so events remain self-contained on the feedback topic.
type FeedbackEvent struct {
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	Action      Action `json:"action"`

	// ViewDurationSeconds is set for view actions only.
	ViewDurationSeconds int `json:"view_duration_seconds,omitempty"`

	// Candidate snapshot.
	Price          float64 `json:"price,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	BodyType       string  `json:"body_type,omitempty"`
	FuelEfficiency float64 `json:"fuel_efficiency,omitempty"`
	SafetyRating   float64 `json:"safety_rating,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// SessionSummary is one aggregated consultation session, used by pattern
// analysis. Rows come from the learning log, computed on demand.
type SessionSummary struct {
	UserID       string    `json:"user_id"`
	Persona      string    `json:"persona,omitempty"`
	BudgetRange  string    `json:"budget_range,omitempty"`
	VehicleType  string    `json:"vehicle_type,omitempty"`
	Satisfaction float64   `json:"satisfaction,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

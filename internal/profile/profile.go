// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package profile holds the per-user preference profile and the rule-based
// learner that adjusts it from explicit feedback. Every dimension is a
// bounded score in [0,100]; the clamp after each update is the core
// invariant guarding against runaway drift.
package profile

import "time"

// Score dimension bounds. All preference dimensions live in [MinScore, MaxScore].
const (
	MinScore = 0.0
	MaxScore = 100.0

	// DefaultScore is the mid-range starting value for a fresh profile.
	DefaultScore = 50.0

	// SatisfactionHistoryLimit bounds the rolling satisfaction trend.
	SatisfactionHistoryLimit = 10
)

// Scores is the bounded preference score vector.
type Scores struct {
	BudgetSensitivity        float64 `json:"budget_sensitivity"`
	BrandLoyalty             float64 `json:"brand_loyalty"`
	FuelEfficiencyImportance float64 `json:"fuel_efficiency_importance"`
	SpaceRequirement         float64 `json:"space_requirement"`
	SafetyPriority           float64 `json:"safety_priority"`
	LuxuryPreference         float64 `json:"luxury_preference"`
	TechnologyInterest       float64 `json:"technology_interest"`
	ReliabilityFocus         float64 `json:"reliability_focus"`
}

// Clamp bounds every dimension to [MinScore, MaxScore].
func (s *Scores) Clamp() {
	for _, dim := range []*float64{
		&s.BudgetSensitivity, &s.BrandLoyalty, &s.FuelEfficiencyImportance,
		&s.SpaceRequirement, &s.SafetyPriority, &s.LuxuryPreference,
		&s.TechnologyInterest, &s.ReliabilityFocus,
	} {
		if *dim < MinScore {
			*dim = MinScore
		}
		if *dim > MaxScore {
			*dim = MaxScore
		}
	}
}

// DecisiveDimensions counts dimensions with a strong signal in either
// direction (>= 75 or <= 25). Used for recommendation confidence.
func (s *Scores) DecisiveDimensions() int {
	n := 0
	for _, v := range []float64{
		s.BudgetSensitivity, s.BrandLoyalty, s.FuelEfficiencyImportance,
		s.SpaceRequirement, s.SafetyPriority, s.LuxuryPreference,
		s.TechnologyInterest, s.ReliabilityFocus,
	} {
		if v >= 75 || v <= 25 {
			n++
		}
	}
	return n
}

// Patterns is the detected pattern summary aggregated from sessions.
type Patterns struct {
	DominantPersona      string   `json:"dominant_persona,omitempty"`
	FrequentBudgetRanges []string `json:"frequent_budget_ranges,omitempty"`
	FrequentVehicleTypes []string `json:"frequent_vehicle_types,omitempty"`
}

// Settings holds per-user personalization settings.
type Settings struct {
	RecommendationCount int    `json:"recommendation_count"`
	DetailLevel         string `json:"detail_level"`
}

// PreferenceProfile is the persisted per-user state. It is created on
// first interaction with mid-range defaults, mutated only by the Learner,
// and never deleted automatically.
type PreferenceProfile struct {
	UserID string `json:"user_id"`

	Scores   Scores   `json:"scores"`
	Patterns Patterns `json:"patterns"`

	SessionCount      int       `json:"session_count"`
	QuestionCount     int       `json:"question_count"`
	SatisfactionTrend []float64 `json:"satisfaction_trend,omitempty"`

	Settings Settings `json:"settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDefault returns a fresh profile with every dimension at mid-range.
func NewDefault(userID string) *PreferenceProfile {
	now := time.Now().UTC()
	return &PreferenceProfile{
		UserID: userID,
		Scores: Scores{
			BudgetSensitivity:        DefaultScore,
			BrandLoyalty:             DefaultScore,
			FuelEfficiencyImportance: DefaultScore,
			SpaceRequirement:         DefaultScore,
			SafetyPriority:           DefaultScore,
			LuxuryPreference:         DefaultScore,
			TechnologyInterest:       DefaultScore,
			ReliabilityFocus:         DefaultScore,
		},
		Settings: Settings{
			RecommendationCount: 5,
			DetailLevel:         "standard",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordSatisfaction appends a satisfaction value to the bounded trend.
func (p *PreferenceProfile) RecordSatisfaction(value float64) {
	p.SatisfactionTrend = append(p.SatisfactionTrend, value)
	if len(p.SatisfactionTrend) > SatisfactionHistoryLimit {
		p.SatisfactionTrend = p.SatisfactionTrend[len(p.SatisfactionTrend)-SatisfactionHistoryLimit:]
	}
}

// Clone returns a deep copy. Handed to readers so scoring never observes
// a profile mid-update.
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.SatisfactionTrend = append([]float64(nil), p.SatisfactionTrend...)
	cp.Patterns.FrequentBudgetRanges = append([]string(nil), p.Patterns.FrequentBudgetRanges...)
	cp.Patterns.FrequentVehicleTypes = append([]string(nil), p.Patterns.FrequentVehicleTypes...)
	return &cp
}

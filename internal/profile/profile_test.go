// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package profile

import "testing"

func TestNewDefault(t *testing.T) {
	p := NewDefault("u1")

	if p.UserID != "u1" {
		t.Errorf("Expected user id u1, got %q", p.UserID)
	}
	if p.Scores.BudgetSensitivity != DefaultScore || p.Scores.ReliabilityFocus != DefaultScore {
		t.Errorf("Expected all dimensions at %f, got %+v", DefaultScore, p.Scores)
	}
	if p.Settings.RecommendationCount != 5 {
		t.Errorf("Expected recommendation count 5, got %d", p.Settings.RecommendationCount)
	}
	if p.Settings.DetailLevel != "standard" {
		t.Errorf("Expected detail level standard, got %q", p.Settings.DetailLevel)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestClamp(t *testing.T) {
	s := Scores{BudgetSensitivity: 120, BrandLoyalty: -10, SafetyPriority: 50}
	s.Clamp()

	if s.BudgetSensitivity != MaxScore {
		t.Errorf("Expected %f, got %f", MaxScore, s.BudgetSensitivity)
	}
	if s.BrandLoyalty != MinScore {
		t.Errorf("Expected %f, got %f", MinScore, s.BrandLoyalty)
	}
	if s.SafetyPriority != 50 {
		t.Errorf("Expected 50 unchanged, got %f", s.SafetyPriority)
	}
}

func TestDecisiveDimensions(t *testing.T) {
	tests := []struct {
		name     string
		scores   Scores
		expected int
	}{
		{"all mid-range", Scores{
			BudgetSensitivity: 50, BrandLoyalty: 50, FuelEfficiencyImportance: 50,
			SpaceRequirement: 50, SafetyPriority: 50, LuxuryPreference: 50,
			TechnologyInterest: 50, ReliabilityFocus: 50,
		}, 0},
		{"high and low both count", Scores{
			BudgetSensitivity: 75, BrandLoyalty: 25, FuelEfficiencyImportance: 50,
			SpaceRequirement: 74, SafetyPriority: 26, LuxuryPreference: 50,
			TechnologyInterest: 50, ReliabilityFocus: 50,
		}, 2},
		{"zero value all decisive", Scores{}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scores.DecisiveDimensions(); got != tt.expected {
				t.Errorf("Expected %d decisive dimensions, got %d", tt.expected, got)
			}
		})
	}
}

func TestRecordSatisfactionBounded(t *testing.T) {
	p := NewDefault("u")
	for i := 0; i < SatisfactionHistoryLimit+5; i++ {
		p.RecordSatisfaction(float64(i))
	}

	if len(p.SatisfactionTrend) != SatisfactionHistoryLimit {
		t.Fatalf("Expected trend bounded at %d, got %d", SatisfactionHistoryLimit, len(p.SatisfactionTrend))
	}
	if p.SatisfactionTrend[0] != 5 {
		t.Errorf("Expected oldest retained value 5, got %f", p.SatisfactionTrend[0])
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewDefault("u")
	p.RecordSatisfaction(0.5)
	p.Patterns.FrequentVehicleTypes = []string{"SUV"}

	c := p.Clone()
	c.Scores.BudgetSensitivity = 99
	c.SatisfactionTrend[0] = 0.1
	c.Patterns.FrequentVehicleTypes[0] = "세단"

	if p.Scores.BudgetSensitivity != DefaultScore {
		t.Error("Clone shares score state with original")
	}
	if p.SatisfactionTrend[0] != 0.5 {
		t.Error("Clone shares satisfaction slice with original")
	}
	if p.Patterns.FrequentVehicleTypes[0] != "SUV" {
		t.Error("Clone shares pattern slice with original")
	}

	var nilProfile *PreferenceProfile
	if nilProfile.Clone() != nil {
		t.Error("Expected nil clone of nil profile")
	}
}

func TestActionValid(t *testing.T) {
	valid := []Action{ActionLike, ActionDislike, ActionInquire, ActionSkip, ActionView}
	for _, a := range valid {
		if !a.Valid() {
			t.Errorf("Expected %q to be valid", a)
		}
	}
	for _, a := range []Action{"", "love", "LIKE"} {
		if a.Valid() {
			t.Errorf("Expected %q to be invalid", a)
		}
	}
}

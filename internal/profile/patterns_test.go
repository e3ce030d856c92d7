// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package profile

import (
	"reflect"
	"testing"
)

func TestAnalyzeSessions(t *testing.T) {
	p := NewDefault("u")
	sessions := []SessionSummary{
		{UserID: "u", Persona: "가족형", BudgetRange: "2000-3000", VehicleType: "SUV", Satisfaction: 0.8},
		{UserID: "u", Persona: "가족형", BudgetRange: "2000-3000", VehicleType: "SUV", Satisfaction: 0.9},
		{UserID: "u", Persona: "실용형", BudgetRange: "3000-4000", VehicleType: "세단", Satisfaction: 0.7},
		{UserID: "u", Persona: "가족형", BudgetRange: "1000-2000", VehicleType: "SUV"},
	}

	AnalyzeSessions(p, sessions)

	if p.Patterns.DominantPersona != "가족형" {
		t.Errorf("Expected dominant persona 가족형, got %q", p.Patterns.DominantPersona)
	}
	if want := []string{"2000-3000", "1000-2000"}; !reflect.DeepEqual(p.Patterns.FrequentBudgetRanges, want) {
		t.Errorf("Expected budget ranges %v, got %v", want, p.Patterns.FrequentBudgetRanges)
	}
	if want := []string{"SUV", "세단"}; !reflect.DeepEqual(p.Patterns.FrequentVehicleTypes, want) {
		t.Errorf("Expected vehicle types %v, got %v", want, p.Patterns.FrequentVehicleTypes)
	}
	if p.SessionCount != 4 {
		t.Errorf("Expected session count 4, got %d", p.SessionCount)
	}
	if len(p.SatisfactionTrend) != 3 {
		t.Errorf("Expected 3 satisfaction entries, got %d", len(p.SatisfactionTrend))
	}
}

func TestAnalyzeSessionsEmptyIsNoOp(t *testing.T) {
	p := NewDefault("u")
	p.SessionCount = 7

	AnalyzeSessions(p, nil)

	if p.SessionCount != 7 {
		t.Errorf("Expected session count unchanged, got %d", p.SessionCount)
	}
	if p.Patterns.DominantPersona != "" {
		t.Errorf("Expected no dominant persona, got %q", p.Patterns.DominantPersona)
	}
}

func TestAnalyzeSessionsKeepsLargerSessionCount(t *testing.T) {
	p := NewDefault("u")
	p.SessionCount = 10

	AnalyzeSessions(p, []SessionSummary{{UserID: "u", Persona: "실용형"}})

	if p.SessionCount != 10 {
		t.Errorf("Expected session count to stay 10, got %d", p.SessionCount)
	}
}

func TestTopFrequentTieBreaking(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 1}

	got := topFrequent(counts, 2)
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected lexicographic tie-break %v, got %v", want, got)
	}

	if got := mostFrequent(map[string]int{}); got != "" {
		t.Errorf("Expected empty string for empty counts, got %q", got)
	}
}

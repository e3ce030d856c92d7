// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"strings"
	"testing"
)

func TestBudgetCenterScore(t *testing.T) {
	u := UserProfile{BudgetMin: 2000, BudgetMax: 4000}

	tests := []struct {
		name     string
		price    float64
		expected float64
	}{
		{"midpoint", 3000, 100},
		{"at lower bound", 2000, 0},
		{"at upper bound", 4000, 0},
		{"quarter off midpoint", 3500, 50},
		{"far beyond range", 9000, 0},
		{"negative price", -500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := budgetCenterScore(u, tt.price)
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestBudgetCenterScoreMonotonicity(t *testing.T) {
	u := UserProfile{BudgetMin: 1000, BudgetMax: 5000}

	// Moving toward the midpoint never lowers the score.
	prev := -1.0
	for price := 1000.0; price <= 3000; price += 250 {
		got := budgetCenterScore(u, price)
		if got < prev {
			t.Errorf("Score decreased toward midpoint at price %f: %f < %f", price, got, prev)
		}
		prev = got
	}
}

func TestBudgetCenterScoreDegenerateBudget(t *testing.T) {
	// Zero-width budget falls off over half the midpoint.
	u := UserProfile{BudgetMin: 3000, BudgetMax: 3000}
	if got := budgetCenterScore(u, 3000); got != 100 {
		t.Errorf("Expected 100 at exact degenerate budget, got %f", got)
	}
	if got := budgetCenterScore(u, 4500); got != 0 {
		t.Errorf("Expected 0 one half-midpoint away, got %f", got)
	}
}

func TestFinanceScore(t *testing.T) {
	tests := []struct {
		name     string
		user     UserProfile
		vehicle  VehicleCandidate
		expected float64
	}{
		{"no income is neutral", UserProfile{}, VehicleCandidate{Price: 3000}, 50},
		{"high income cheap car", UserProfile{MonthlyIncome: 1000, Age: 40, CreditScore: 800},
			VehicleCandidate{Price: 1500}, 100},
		{"low income expensive car", UserProfile{MonthlyIncome: 150, Age: 40, CreditScore: 800},
			VehicleCandidate{Price: 9500}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := financeScore(tt.user, tt.vehicle, Insights{})
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestFinanceScoreMonotonicInPrice(t *testing.T) {
	u := UserProfile{MonthlyIncome: 300, Age: 35, CreditScore: 700}
	prev := 101.0
	for price := 1000.0; price <= 8000; price += 500 {
		got := financeScore(u, VehicleCandidate{Price: price}, Insights{})
		if got > prev {
			t.Errorf("Finance score increased with price at %f: %f > %f", price, got, prev)
		}
		prev = got
	}
}

func TestCreditTier(t *testing.T) {
	tests := []struct {
		name     string
		user     UserProfile
		expected int
	}{
		{"explicit score wins", UserProfile{CreditScore: 720, MonthlyIncome: 9999, Age: 40}, 720},
		{"derived with prime age", UserProfile{MonthlyIncome: 5000, Age: 40}, 800},
		{"derived income capped", UserProfile{MonthlyIncome: 100000, Age: 20}, 750},
		{"derived baseline", UserProfile{}, 550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := creditTier(tt.user); got != tt.expected {
				t.Errorf("Expected tier %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestAPRForTier(t *testing.T) {
	tests := []struct {
		score    int
		expected float64
	}{
		{800, 5.5},
		{750, 5.5},
		{700, 7.5},
		{650, 7.5},
		{600, 10.5},
		{550, 10.5},
		{500, 13.5},
	}

	for _, tt := range tests {
		if got := aprForTier(tt.score); got != tt.expected {
			t.Errorf("aprForTier(%d): expected %f, got %f", tt.score, tt.expected, got)
		}
	}
}

func TestMonthlyPayment(t *testing.T) {
	// Zero-rate payment is a simple division.
	if got := monthlyPayment(6000, 0, 60); got != 100 {
		t.Errorf("Expected 100 at zero rate, got %f", got)
	}
	if got := monthlyPayment(0, 5.5, 60); got != 0 {
		t.Errorf("Expected 0 for zero principal, got %f", got)
	}
	// Amortized payment exceeds the zero-rate payment.
	if got := monthlyPayment(6000, 5.5, 60); got <= 100 {
		t.Errorf("Expected amortized payment above 100, got %f", got)
	}
}

func TestLifestyleScore(t *testing.T) {
	tests := []struct {
		name     string
		user     UserProfile
		vehicle  VehicleCandidate
		insights Insights
		expected float64
	}{
		{"baseline", UserProfile{}, VehicleCandidate{BodyType: "세단"}, Insights{}, 70},
		{"family suv", UserProfile{HouseholdSize: 4}, VehicleCandidate{BodyType: "SUV"}, Insights{}, 80},
		{"young coupe", UserProfile{Age: 28}, VehicleCandidate{BodyType: "쿠페"}, Insights{}, 75},
		{"income-proportionate price", UserProfile{MonthlyIncome: 500},
			VehicleCandidate{BodyType: "세단", Price: 3000}, Insights{}, 80},
		{"eco match", UserProfile{Priorities: Priorities{FuelEfficiency: 0.7}},
			VehicleCandidate{BodyType: "세단", FuelType: "하이브리드"}, Insights{}, 75},
		{"space concern boost", UserProfile{},
			VehicleCandidate{BodyType: "승합차"}, Insights{Concerns: []string{ConcernSpace}}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifestyleScore(tt.user, tt.vehicle, tt.insights)
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestVehicleScoreBoundsAndBoosts(t *testing.T) {
	u := UserProfile{BudgetMin: 2000, BudgetMax: 4000,
		Priorities: Priorities{Price: 0.3, FuelEfficiency: 0.3, Safety: 0.4}}
	v := VehicleCandidate{Price: 3000, Year: 2021, FuelEfficiency: 16, SafetyRating: 5}

	plain := vehicleScore(u, v, Insights{})
	if plain < 0 || plain > 100 {
		t.Fatalf("Vehicle score %f out of [0,100]", plain)
	}

	boosted := vehicleScore(u, v, Insights{Concerns: []string{ConcernFuel, ConcernSafety}})
	if boosted != clampScore(plain+2*insightBoost) {
		t.Errorf("Expected both boosts applied: %f, got %f", clampScore(plain+2*insightBoost), boosted)
	}
}

func TestVehicleScoreZeroPriorities(t *testing.T) {
	// With no stated priorities every attribute weighs equally; the score
	// must still be defined and bounded.
	u := UserProfile{BudgetMin: 1000, BudgetMax: 3000}
	got := vehicleScore(u, VehicleCandidate{Price: 2000, Year: 2020, FuelEfficiency: 12, SafetyRating: 4}, Insights{})
	if got <= 0 || got > 100 {
		t.Errorf("Expected bounded positive score, got %f", got)
	}
}

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name                        string
		vehicle, finance, lifestyle float64
		expected                    int
	}{
		{"all max", 100, 100, 100, 100},
		{"all min", 0, 0, 0, 0},
		{"uniform mid", 50, 50, 50, 50},
		{"weighted blend", 80, 60, 40, 62},
		{"rounds nearest", 81, 60, 40, 62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compositeScore(tt.vehicle, tt.finance, tt.lifestyle)
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestDominantFactorTieOrder(t *testing.T) {
	tests := []struct {
		name     string
		b        ScoreBreakdown
		expected string
	}{
		{"vehicle wins tie", ScoreBreakdown{VehicleScore: 70, FinanceScore: 70, LifestyleScore: 70}, "vehicle"},
		{"finance beats lifestyle tie", ScoreBreakdown{VehicleScore: 10, FinanceScore: 80, LifestyleScore: 80}, "finance"},
		{"lifestyle strictly highest", ScoreBreakdown{VehicleScore: 10, FinanceScore: 20, LifestyleScore: 90}, "lifestyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dominantFactor(tt.b); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExplainMentionsVehicle(t *testing.T) {
	b := ScoreBreakdown{VehicleScore: 90, FinanceScore: 50, LifestyleScore: 50}
	v := VehicleCandidate{Brand: "현대", Model: "투싼"}
	got := explain(b, v, CollabScore{Bilinear: 0.7, Pattern: 0.6})

	if !strings.Contains(got, "현대") || !strings.Contains(got, "투싼") {
		t.Errorf("Explanation missing vehicle identity: %q", got)
	}
	if !strings.Contains(got, "적합도") {
		t.Errorf("Explanation missing collaborative attribution: %q", got)
	}
}

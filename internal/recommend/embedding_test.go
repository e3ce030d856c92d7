// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"math"
	"testing"
)

func TestBuildUserEmbeddingDimension(t *testing.T) {
	tests := []struct {
		name string
		user UserProfile
	}{
		{"zero profile", UserProfile{}},
		{"full profile", UserProfile{
			BudgetMin: 2000, BudgetMax: 4000, HouseholdSize: 4, Age: 38,
			MonthlyIncome: 450, Region: "서울",
			Priorities: Priorities{Price: 0.4, FuelEfficiency: 0.3, Safety: 0.3},
		}},
		{"unknown region", UserProfile{Region: "화성"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := BuildUserEmbedding(tt.user)
			if len(e) != UserEmbeddingDim {
				t.Errorf("Expected dimension %d, got %d", UserEmbeddingDim, len(e))
			}
			for i, v := range e {
				if v < 0 || v > 1 {
					t.Errorf("Component %d = %f out of [0,1]", i, v)
				}
			}
		})
	}
}

func TestBuildItemEmbeddingDimension(t *testing.T) {
	v := VehicleCandidate{
		ID: "v1", Brand: "현대", Model: "투싼", Year: 2021, Price: 2800,
		Mileage: 45000, FuelType: "가솔린", BodyType: "SUV",
		SeatingCapacity: 5, FuelEfficiency: 12.5, SafetyRating: 5,
	}

	e := BuildItemEmbedding(v)
	if len(e) != ItemEmbeddingDim {
		t.Fatalf("Expected dimension %d, got %d", ItemEmbeddingDim, len(e))
	}
	for i, val := range e {
		if val < 0 || val > 1 {
			t.Errorf("Component %d = %f out of [0,1]", i, val)
		}
	}
}

func TestEmbeddingDeterminism(t *testing.T) {
	u := UserProfile{BudgetMin: 1500, BudgetMax: 3000, Age: 29, Region: "경기"}
	v := VehicleCandidate{Brand: "기아", BodyType: "세단", FuelType: "하이브리드", Year: 2020, Price: 2400}

	a, b := BuildUserEmbedding(u), BuildUserEmbedding(u)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("User embedding component %d differs across calls: %f vs %f", i, a[i], b[i])
		}
	}

	c, d := BuildItemEmbedding(v), BuildItemEmbedding(v)
	for i := range c {
		if c[i] != d[i] {
			t.Errorf("Item embedding component %d differs across calls: %f vs %f", i, c[i], d[i])
		}
	}
}

func TestEmbeddingNormalization(t *testing.T) {
	tests := []struct {
		name     string
		vehicle  VehicleCandidate
		index    int
		expected float64
	}{
		{"price normalized", VehicleCandidate{Price: 2500}, 0, 0.25},
		{"price clamped high", VehicleCandidate{Price: 50000}, 0, 1},
		{"negative price clamped", VehicleCandidate{Price: -100}, 0, 0},
		{"year normalized", VehicleCandidate{Year: 2020}, 1, 0.8},
		{"pre-2000 year clamped", VehicleCandidate{Year: 1995}, 1, 0},
		{"mileage normalized", VehicleCandidate{Mileage: 100000}, 2, 0.5},
		{"fuel efficiency normalized", VehicleCandidate{FuelEfficiency: 15}, 3, 0.5},
		{"safety normalized", VehicleCandidate{SafetyRating: 4}, 4, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := BuildItemEmbedding(tt.vehicle)
			if math.Abs(e[tt.index]-tt.expected) > 1e-9 {
				t.Errorf("Expected component %d = %f, got %f", tt.index, tt.expected, e[tt.index])
			}
		})
	}
}

func TestUnknownCategoriesAreNeutral(t *testing.T) {
	v := VehicleCandidate{Brand: "무명브랜드", BodyType: "비행선", FuelType: "석탄"}
	e := BuildItemEmbedding(v)

	// Brand occupies indices 8..11, body 12..15, fuel 16..17.
	for i := 8; i < ItemEmbeddingDim; i++ {
		if e[i] != 0.5 {
			t.Errorf("Expected neutral 0.5 at component %d, got %f", i, e[i])
		}
	}
}

func TestKnownCategoryVectors(t *testing.T) {
	e := BuildItemEmbedding(VehicleCandidate{Brand: "현대"})
	want := brandVectors["현대"]
	for i := 0; i < 4; i++ {
		if e[8+i] != want[i] {
			t.Errorf("Brand component %d: expected %f, got %f", i, want[i], e[8+i])
		}
	}
}

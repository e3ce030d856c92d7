// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/carpick/engine/internal/profile"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing profile, got %v", err)
	}

	p := profile.NewDefault("u1")
	p.Scores.SafetyPriority = 80
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Scores.SafetyPriority != 80 {
		t.Errorf("Expected SafetyPriority 80, got %f", got.Scores.SafetyPriority)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := profile.NewDefault("u1")
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Mutating what callers hold must not leak into the store.
	p.Scores.BudgetSensitivity = 99
	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Scores.BudgetSensitivity != profile.DefaultScore {
		t.Errorf("Store leaked caller mutation: got %f", got.Scores.BudgetSensitivity)
	}

	got.Scores.BudgetSensitivity = 10
	again, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Scores.BudgetSensitivity != profile.DefaultScore {
		t.Errorf("Store leaked reader mutation: got %f", again.Scores.BudgetSensitivity)
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing profile, got %v", err)
	}

	p := profile.NewDefault("u1")
	p.QuestionCount = 3
	p.Patterns.FrequentVehicleTypes = []string{"SUV"}
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.QuestionCount != 3 {
		t.Errorf("Expected QuestionCount 3, got %d", got.QuestionCount)
	}
	if len(got.Patterns.FrequentVehicleTypes) != 1 || got.Patterns.FrequentVehicleTypes[0] != "SUV" {
		t.Errorf("Expected patterns round-trip, got %v", got.Patterns.FrequentVehicleTypes)
	}
}

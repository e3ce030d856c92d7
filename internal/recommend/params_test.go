// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultParamsDeterministic(t *testing.T) {
	a := DefaultParams()
	b := DefaultParams()

	if a.Version != DefaultParamsVersion {
		t.Errorf("Expected version %q, got %q", DefaultParamsVersion, a.Version)
	}
	if a.B3 != b.B3 {
		t.Errorf("B3 differs across calls: %f vs %f", a.B3, b.B3)
	}
	for i := range a.W1 {
		for j := range a.W1[i] {
			if a.W1[i][j] != b.W1[i][j] {
				t.Fatalf("W1[%d][%d] differs across calls", i, j)
			}
		}
	}
}

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("Default params failed validation: %v", err)
	}
}

func TestValidateShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CollaborativeParams)
	}{
		{"empty version", func(p *CollaborativeParams) { p.Version = "" }},
		{"w1 missing row", func(p *CollaborativeParams) { p.W1 = p.W1[:FFInputDim-1] }},
		{"w1 ragged row", func(p *CollaborativeParams) { p.W1[3] = p.W1[3][:2] }},
		{"b1 wrong length", func(p *CollaborativeParams) { p.B1 = p.B1[:1] }},
		{"w2 missing row", func(p *CollaborativeParams) { p.W2 = nil }},
		{"b2 wrong length", func(p *CollaborativeParams) { p.B2 = append(p.B2, 0) }},
		{"w3 wrong length", func(p *CollaborativeParams) { p.W3 = p.W3[:3] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadParamsMissingFile(t *testing.T) {
	if _, err := LoadParams("/nonexistent/params.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestLoadParamsMalformedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	content := "version: custom\nw1:\n  - [0.1, 0.2]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp params: %v", err)
	}

	if _, err := LoadParams(path); err == nil {
		t.Error("Expected shape validation error, got nil")
	}
}

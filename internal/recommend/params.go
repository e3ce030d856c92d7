// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"fmt"
	"math/rand"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Feed-forward network shape. The concatenated user+item embedding is
// zero-padded (or truncated) to FFInputDim before the first layer.
const (
	FFInputDim   = 32
	FFHidden1Dim = 16
	FFHidden2Dim = 8

	// defaultParamsSeed generates the built-in parameter set. The seed is
	// part of the parameter version contract: the same seed always yields
	// the same matrices, so scores are reproducible across processes.
	defaultParamsSeed = 42

	// DefaultParamsVersion names the built-in parameter set.
	DefaultParamsVersion = "v1"
)

// CollaborativeParams is the fixed weight set for the feed-forward branch.
// Loaded once at process start, either built in (deterministic, seeded) or
// supplied externally as YAML. Never reseeded or regenerated per call.
type CollaborativeParams struct {
	Version string `koanf:"version"`

	W1 [][]float64 `koanf:"w1"` // FFInputDim x FFHidden1Dim
	B1 []float64   `koanf:"b1"` // FFHidden1Dim
	W2 [][]float64 `koanf:"w2"` // FFHidden1Dim x FFHidden2Dim
	B2 []float64   `koanf:"b2"` // FFHidden2Dim
	W3 []float64   `koanf:"w3"` // FFHidden2Dim
	B3 float64     `koanf:"b3"`
}

// DefaultParams returns the built-in parameter set. Deterministic: the
// matrices come from a fixed-seed source, so two processes always agree.
func DefaultParams() *CollaborativeParams {
	rng := rand.New(rand.NewSource(defaultParamsSeed)) //nolint:gosec // deterministic params, not crypto

	genMatrix := func(rows, cols int) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
			for j := range m[i] {
				m[i][j] = rng.Float64() - 0.5
			}
		}
		return m
	}
	genVector := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = rng.Float64() - 0.5
		}
		return v
	}

	return &CollaborativeParams{
		Version: DefaultParamsVersion,
		W1:      genMatrix(FFInputDim, FFHidden1Dim),
		B1:      genVector(FFHidden1Dim),
		W2:      genMatrix(FFHidden1Dim, FFHidden2Dim),
		B2:      genVector(FFHidden2Dim),
		W3:      genVector(FFHidden2Dim),
		B3:      rng.Float64() - 0.5,
	}
}

// LoadParams reads an externally-supplied parameter set from a YAML file.
// A malformed file is a startup error, never a per-request one.
func LoadParams(path string) (*CollaborativeParams, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load params file %s: %w", path, err)
	}

	p := &CollaborativeParams{}
	if err := k.Unmarshal("", p); err != nil {
		return nil, fmt.Errorf("unmarshal params file %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("params file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks matrix shapes. Fails fast at initialization so a
// malformed parameter set never reaches the scoring path.
func (p *CollaborativeParams) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("params version must not be empty")
	}
	if err := checkMatrix("w1", p.W1, FFInputDim, FFHidden1Dim); err != nil {
		return err
	}
	if len(p.B1) != FFHidden1Dim {
		return fmt.Errorf("b1 length %d, want %d", len(p.B1), FFHidden1Dim)
	}
	if err := checkMatrix("w2", p.W2, FFHidden1Dim, FFHidden2Dim); err != nil {
		return err
	}
	if len(p.B2) != FFHidden2Dim {
		return fmt.Errorf("b2 length %d, want %d", len(p.B2), FFHidden2Dim)
	}
	if len(p.W3) != FFHidden2Dim {
		return fmt.Errorf("w3 length %d, want %d", len(p.W3), FFHidden2Dim)
	}
	return nil
}

// checkMatrix verifies a weight matrix has the expected shape.
func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s row %d has %d cols, want %d", name, i, len(row), cols)
		}
	}
	return nil
}

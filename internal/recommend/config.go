// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"fmt"
	"runtime"
)

// Config holds engine tuning knobs.
type Config struct {
	// Workers bounds concurrent candidate scoring. 0 picks
	// min(8, NumCPU); scoring is CPU-bound and in-memory, so more
	// workers than cores buys nothing.
	Workers int

	// DefaultK is the number of recommendations returned when the
	// request and profile are silent.
	DefaultK int

	// MaxK caps the number of returned recommendations.
	MaxK int
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:  0,
		DefaultK: 5,
		MaxK:     50,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be >= 1")
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k %d < default_k %d", c.MaxK, c.DefaultK)
	}
	return nil
}

// workerCount resolves the effective worker bound.
func (c *Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

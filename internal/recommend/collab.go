// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"fmt"
	"math"
)

// neutralScore is returned for degenerate embeddings (zero or mismatched
// length) instead of an error: collaborative scoring is advisory and must
// never break the ranking path.
const neutralScore = 0.5

// CollabScore is one collaborative compatibility estimate with both
// branch scores surfaced for explanation attribution.
type CollabScore struct {
	// Score is the fused estimate in [0,1].
	Score float64

	// Bilinear is the direct-fit branch: element-wise product over the
	// common prefix of both embeddings, summed and squashed.
	Bilinear float64

	// Pattern is the feed-forward branch over the padded concatenation.
	Pattern float64
}

// Explanation renders the branch attribution line.
func (c CollabScore) Explanation() string {
	return fmt.Sprintf("직접 적합도 %.0f%% · 패턴 적합도 %.0f%%", c.Bilinear*100, c.Pattern*100)
}

// CollaborativeScorer fuses a bilinear estimator and a fixed-parameter
// feed-forward estimator into one compatibility score.
//
// Construct once at startup with its parameter set and share it; the
// scorer is immutable after construction and safe for concurrent use.
type CollaborativeScorer struct {
	params *CollaborativeParams
	alpha  float64
}

// NewCollaborativeScorer creates a scorer from a validated parameter set.
// alpha weights the bilinear branch; (1-alpha) weights the feed-forward
// branch. A nil params falls back to the built-in set.
func NewCollaborativeScorer(params *CollaborativeParams, alpha float64) (*CollaborativeScorer, error) {
	if params == nil {
		params = DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collaborative params: %w", err)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %f out of [0,1]", alpha)
	}
	return &CollaborativeScorer{params: params, alpha: alpha}, nil
}

// ParamsVersion returns the version of the loaded parameter set.
func (s *CollaborativeScorer) ParamsVersion() string {
	return s.params.Version
}

// Score computes the fused compatibility between a user and an item
// embedding. Degenerate inputs score neutral rather than erroring.
func (s *CollaborativeScorer) Score(user, item Embedding) CollabScore {
	if len(user) == 0 || len(item) == 0 {
		return CollabScore{Score: neutralScore, Bilinear: neutralScore, Pattern: neutralScore}
	}

	bilinear := s.bilinear(user, item)
	pattern := s.feedForward(user, item)
	fused := s.alpha*bilinear + (1-s.alpha)*pattern

	return CollabScore{Score: fused, Bilinear: bilinear, Pattern: pattern}
}

// bilinear computes the element-wise product over the common prefix,
// summed and passed through the logistic function.
func (s *CollaborativeScorer) bilinear(user, item Embedding) float64 {
	n := len(user)
	if len(item) < n {
		n = len(item)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += user[i] * item[i]
	}
	return sigmoid(sum)
}

// feedForward runs the concatenated, zero-padded embeddings through two
// ReLU hidden layers and a logistic output using the fixed parameter set.
func (s *CollaborativeScorer) feedForward(user, item Embedding) float64 {
	input := make([]float64, FFInputDim)
	n := copy(input, user)
	copy(input[n:], item)

	h1 := make([]float64, FFHidden1Dim)
	for j := 0; j < FFHidden1Dim; j++ {
		sum := s.params.B1[j]
		for i := 0; i < FFInputDim; i++ {
			sum += input[i] * s.params.W1[i][j]
		}
		h1[j] = relu(sum)
	}

	h2 := make([]float64, FFHidden2Dim)
	for j := 0; j < FFHidden2Dim; j++ {
		sum := s.params.B2[j]
		for i := 0; i < FFHidden1Dim; i++ {
			sum += h1[i] * s.params.W2[i][j]
		}
		h2[j] = relu(sum)
	}

	out := s.params.B3
	for i := 0; i < FFHidden2Dim; i++ {
		out += h2[i] * s.params.W3[i]
	}
	return sigmoid(out)
}

// sigmoid is the logistic squashing function.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// relu is the rectified-linear activation.
func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

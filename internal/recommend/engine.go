// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carpick/engine/internal/metrics"
	"github.com/carpick/engine/internal/profile"
)

// Confidence bounds for one recommendation.
const (
	confidenceBase = 70
	confidenceCap  = 95
)

// Engine coordinates the expert scorers and the collaborative scorer into
// ranked, explained recommendations. It is stateless per call and safe
// for concurrent use; candidates are scored in parallel up to a bounded
// worker count.
type Engine struct {
	config *Config
	scorer *CollaborativeScorer
	logger zerolog.Logger
}

// NewEngine creates an engine around a constructed collaborative scorer.
// The scorer carries the fixed parameter set; there is no hidden global
// state and no per-call reseeding.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, scorer *CollaborativeScorer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if scorer == nil {
		return nil, fmt.Errorf("collaborative scorer required")
	}
	return &Engine{
		config: cfg,
		scorer: scorer,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend scores every candidate and returns the ranked list. An empty
// candidate list yields an empty response, never an error; nothing on
// this path performs blocking I/O.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = e.prepareRequest(req)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()
	logger.Debug().Int("candidates", len(req.Candidates)).Msg("processing recommendation request")

	if len(req.Candidates) == 0 {
		metrics.ObserveRecommend("empty", 0, time.Since(start))
		return e.emptyResponse(req, start), nil
	}

	insights := ExtractInsights(req.Message)
	userEmb := BuildUserEmbedding(req.User)

	scored := e.scoreCandidates(ctx, req, userEmb, insights)

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].breakdown.CompositeScore != scored[j].breakdown.CompositeScore {
			return scored[i].breakdown.CompositeScore > scored[j].breakdown.CompositeScore
		}
		if scored[i].breakdown.Confidence != scored[j].breakdown.Confidence {
			return scored[i].breakdown.Confidence > scored[j].breakdown.Confidence
		}
		return scored[i].price < scored[j].price
	})

	if len(scored) > req.K {
		scored = scored[:req.K]
	}

	recommendations := make([]ScoreBreakdown, len(scored))
	for i := range scored {
		recommendations[i] = scored[i].breakdown
		metrics.CompositeScore.Observe(float64(scored[i].breakdown.CompositeScore))
	}

	resp := &Response{
		Recommendations: recommendations,
		TotalCandidates: len(req.Candidates),
		Metadata:        e.buildMetadata(req, start),
	}

	metrics.ObserveRecommend("ok", len(req.Candidates), time.Since(start))
	logger.Debug().
		Int("returned", len(recommendations)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.K == 0 && req.Profile != nil {
		req.K = req.Profile.Settings.RecommendationCount
	}
	if req.K <= 0 {
		req.K = e.config.DefaultK
	}
	if req.K > e.config.MaxK {
		req.K = e.config.MaxK
	}
	return req
}

// scoredCandidate pairs a breakdown with the price used for tie-breaking.
type scoredCandidate struct {
	breakdown ScoreBreakdown
	price     float64
}

// scoreCandidates fans the candidate list out over a bounded worker pool.
// Candidates are independent; there is no shared mutable state.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreCandidates(ctx context.Context, req Request, userEmb Embedding, in Insights) []scoredCandidate {
	results := make([]scoredCandidate, len(req.Candidates))
	sem := make(chan struct{}, e.config.workerCount())
	var wg sync.WaitGroup

	launched := 0
	for i := range req.Candidates {
		if ctx.Err() != nil {
			// The caller already gave up on the response; only candidates
			// launched so far make it into the result.
			break
		}
		launched++
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.scoreOne(req, req.Candidates[idx], userEmb, in)
		}(i)
	}

	wg.Wait()
	return results[:launched]
}

// scoreOne computes the full breakdown for a single candidate.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreOne(req Request, v VehicleCandidate, userEmb Embedding, in Insights) scoredCandidate {
	collab := e.scorer.Score(userEmb, BuildItemEmbedding(v))

	b := ScoreBreakdown{
		CandidateID:        v.ID,
		CollaborativeScore: collab.Score,
		BilinearScore:      collab.Bilinear,
		PatternScore:       collab.Pattern,
		VehicleScore:       vehicleScore(req.User, v, in),
		FinanceScore:       financeScore(req.User, v, in),
		LifestyleScore:     lifestyleScore(req.User, v, in),
	}
	b.CompositeScore = compositeScore(b.VehicleScore, b.FinanceScore, b.LifestyleScore)
	b.Confidence = confidence(req.Profile)
	b.Explanation = explain(b, v, collab)

	return scoredCandidate{breakdown: b, price: v.Price}
}

// confidence grows with the richness of the user's interaction history
// and with decisive preference dimensions, capped below certainty.
func confidence(p *profile.PreferenceProfile) int {
	c := confidenceBase
	if p != nil {
		sessions := p.SessionCount
		if sessions > 10 {
			sessions = 10
		}
		questions := p.QuestionCount / 2
		if questions > 10 {
			questions = 10
		}
		c += sessions + questions
		if p.Scores.DecisiveDimensions() >= 2 {
			c += 5
		}
	}
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}

// emptyResponse builds the response for an empty candidate list.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, start time.Time) *Response {
	return &Response{
		Recommendations: []ScoreBreakdown{},
		TotalCandidates: 0,
		Metadata:        e.buildMetadata(req, start),
	}
}

// buildMetadata constructs response metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildMetadata(req Request, start time.Time) ResponseMetadata {
	return ResponseMetadata{
		RequestID:        req.RequestID,
		UserID:           req.UserID,
		LatencyMS:        time.Since(start).Milliseconds(),
		EmbeddingVersion: EmbeddingVersion,
		ParamsVersion:    e.scorer.ParamsVersion(),
		Timestamp:        time.Now(),
	}
}

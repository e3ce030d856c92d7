// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Store implementations when no profile exists
// for a user id.
var ErrNotFound = errors.New("profile not found")

// Store is the persistence boundary the learner reads and writes through.
// Implementations must support read-after-write for the same caller within
// one process; cross-process strong consistency is not required.
type Store interface {
	Get(ctx context.Context, userID string) (*PreferenceProfile, error)
	Put(ctx context.Context, p *PreferenceProfile) error
}

// SessionSource supplies recent session summaries for pattern analysis,
// newest first.
type SessionSource interface {
	SessionSummaries(ctx context.Context, userID string, limit int) ([]SessionSummary, error)
}

// patternWindow bounds how many recent sessions feed one analysis pass.
const patternWindow = 50

// Learner applies bounded, rule-based adjustments to preference profiles.
//
// Writes for a given user id are serialized through striped locks so
// concurrent feedback events cannot produce lost updates. Cross-user
// updates have no ordering requirement and proceed in parallel.
type Learner struct {
	store    Store
	sessions SessionSource
	logger   zerolog.Logger

	stripes [lockStripes]sync.Mutex
}

// lockStripes is the number of per-user lock stripes. Power of two so the
// stripe index reduces to a mask over the hash.
const lockStripes = 64

// NewLearner creates a learner writing through the given store. The
// session source may be nil, which disables pattern refreshes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLearner(store Store, sessions SessionSource, logger zerolog.Logger) *Learner {
	return &Learner{
		store:    store,
		sessions: sessions,
		logger:   logger.With().Str("component", "learner").Logger(),
	}
}

// Update applies one feedback event to the user's profile and persists it.
// A missing profile (or a failing store read) starts from defaults rather
// than failing: learning must never lose an event to a slow store.
func (l *Learner) Update(ctx context.Context, ev FeedbackEvent) (*PreferenceProfile, error) {
	if !ev.Action.Valid() {
		return nil, fmt.Errorf("invalid feedback action %q", ev.Action)
	}

	stripe := &l.stripes[stripeIndex(ev.UserID)]
	stripe.Lock()
	defer stripe.Unlock()

	p, err := l.store.Get(ctx, ev.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Warn().Err(err).Str("user_id", ev.UserID).
				Msg("profile read failed, starting from defaults")
		}
		p = NewDefault(ev.UserID)
	}

	Apply(p, ev)

	if err := l.store.Put(ctx, p); err != nil {
		// The caller still gets the updated in-memory profile.
		l.logger.Warn().Err(err).Str("user_id", ev.UserID).
			Msg("profile write failed")
		return p, fmt.Errorf("persist profile: %w", err)
	}

	return p, nil
}

// RefreshPatterns recomputes the profile's detected pattern summary from
// the recent session window and persists it. Runs when a session is
// recorded, never on a schedule. Without a session source this is a no-op
// returning (nil, nil).
func (l *Learner) RefreshPatterns(ctx context.Context, userID string) (*PreferenceProfile, error) {
	if l.sessions == nil {
		return nil, nil
	}

	sessions, err := l.sessions.SessionSummaries(ctx, userID, patternWindow)
	if err != nil {
		return nil, fmt.Errorf("load sessions for user %s: %w", userID, err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	stripe := &l.stripes[stripeIndex(userID)]
	stripe.Lock()
	defer stripe.Unlock()

	p, err := l.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Warn().Err(err).Str("user_id", userID).
				Msg("profile read failed, starting from defaults")
		}
		p = NewDefault(userID)
	}

	AnalyzeSessions(p, sessions)
	p.UpdatedAt = time.Now().UTC()

	if err := l.store.Put(ctx, p); err != nil {
		return p, fmt.Errorf("persist profile: %w", err)
	}
	return p, nil
}

// Apply mutates the profile with the fixed delta table for one event and
// clamps every dimension afterwards. Exposed separately so the adjustment
// rules are testable without a store.
//
// Applying an identical event twice on a saturated dimension yields the
// same final state (saturation idempotence); order independence across
// different events is not guaranteed.
func Apply(p *PreferenceProfile, ev FeedbackEvent) {
	s := &p.Scores

	switch ev.Action {
	case ActionLike:
		if ev.Price > 0 && ev.Price < 3000 {
			s.BudgetSensitivity += 5
		}
		if ev.Price >= 5000 {
			s.LuxuryPreference += 4
		}
		if isSpaciousBody(ev.BodyType) {
			s.SpaceRequirement += 3
		}
		if ev.FuelEfficiency >= 15 {
			s.FuelEfficiencyImportance += 3
		}
		if ev.SafetyRating >= 4 {
			s.SafetyPriority += 2
		}
		s.BrandLoyalty++
		p.RecordSatisfaction(1)

	case ActionDislike:
		if ev.Price > 5000 {
			s.BudgetSensitivity += 3
		}
		if ev.Price > 0 && ev.Price < 2000 {
			s.LuxuryPreference += 2
		}
		if ev.BodyType == "SUV" {
			s.SpaceRequirement -= 2
		}
		s.BrandLoyalty--
		p.RecordSatisfaction(0)

	case ActionInquire:
		s.ReliabilityFocus++
		s.TechnologyInterest++
		if ev.Price > 0 && ev.Price < 3000 {
			s.BudgetSensitivity += 2
		}
		p.QuestionCount++

	case ActionView:
		if ev.ViewDurationSeconds >= 60 {
			s.TechnologyInterest++
		}

	case ActionSkip:
		// Counted in the learning log only; no dimension change.
	}

	s.Clamp()
	p.UpdatedAt = time.Now().UTC()
}

// isSpaciousBody reports body types that signal a space requirement.
func isSpaciousBody(bodyType string) bool {
	return bodyType == "SUV" || bodyType == "승합차"
}

// stripeIndex hashes a user id onto a lock stripe (FNV-1a).
func stripeIndex(userID string) uint32 {
	hash := uint32(2166136261)
	for i := 0; i < len(userID); i++ {
		hash ^= uint32(userID[i])
		hash *= 16777619
	}
	return hash % lockStripes
}

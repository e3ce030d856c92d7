// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package store implements the personalization store boundary: preference
// profiles keyed by user id, behind a swappable backend. The BadgerDB
// backend is the production default; the in-memory backend serves tests
// and degraded operation.
//
// Callers treat every failure here as "no profile found" and proceed with
// the profile they already have, so recommendations never fail because
// persistence is slow. The Resilient wrapper enforces that discipline
// with a per-call timeout and a circuit breaker.
package store

import (
	"context"
	"sync"

	"github.com/carpick/engine/internal/profile"
)

// profileKeyPrefix namespaces profile keys in the key-value backend.
const profileKeyPrefix = "profile:"

// MemoryStore is a concurrency-safe in-memory profile store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*profile.PreferenceProfile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*profile.PreferenceProfile)}
}

// Get retrieves a profile by user id.
func (s *MemoryStore) Get(_ context.Context, userID string) (*profile.PreferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p.Clone(), nil
}

// Put stores a profile keyed by its user id.
func (s *MemoryStore) Put(_ context.Context, p *profile.PreferenceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p.Clone()
	return nil
}

// Ensure implementations satisfy the learner's store contract.
var (
	_ profile.Store = (*MemoryStore)(nil)
	_ profile.Store = (*BadgerStore)(nil)
	_ profile.Store = (*Resilient)(nil)
)

// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package profile

import "sort"

// maxFrequentValues bounds the retained frequent budget ranges and
// vehicle types per profile.
const maxFrequentValues = 2

// AnalyzeSessions aggregates session-level signals into the profile's
// detected pattern summary. Computed on demand, never by a scheduler.
//
// Only the most frequent values are kept; satisfaction history stays
// bounded through RecordSatisfaction. Ties break lexicographically so
// identical inputs always produce identical patterns.
func AnalyzeSessions(p *PreferenceProfile, sessions []SessionSummary) {
	if len(sessions) == 0 {
		return
	}

	personas := make(map[string]int)
	budgets := make(map[string]int)
	types := make(map[string]int)

	for i := range sessions {
		s := &sessions[i]
		if s.Persona != "" {
			personas[s.Persona]++
		}
		if s.BudgetRange != "" {
			budgets[s.BudgetRange]++
		}
		if s.VehicleType != "" {
			types[s.VehicleType]++
		}
		if s.Satisfaction > 0 {
			p.RecordSatisfaction(s.Satisfaction)
		}
	}

	p.Patterns.DominantPersona = mostFrequent(personas)
	p.Patterns.FrequentBudgetRanges = topFrequent(budgets, maxFrequentValues)
	p.Patterns.FrequentVehicleTypes = topFrequent(types, maxFrequentValues)

	if len(sessions) > p.SessionCount {
		p.SessionCount = len(sessions)
	}
}

// mostFrequent returns the single most frequent key, ties broken
// lexicographically. Empty map returns "".
func mostFrequent(counts map[string]int) string {
	top := topFrequent(counts, 1)
	if len(top) == 0 {
		return ""
	}
	return top[0]
}

// topFrequent returns up to n keys ordered by descending count, ties
// broken lexicographically.
func topFrequent(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

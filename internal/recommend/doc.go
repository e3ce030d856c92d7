// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package recommend implements the scoring core: normalized user/item
// embeddings, a deterministic two-branch collaborative scorer, the three
// expert sub-scores (vehicle, finance, lifestyle) and their composition
// into ranked, explained recommendations.
//
// # Determinism
//
// Every function here is deterministic. The feed-forward branch runs on a
// fixed, versioned parameter set loaded once at startup, and explanation
// text comes from template selection with fixed tie-breaking, so identical
// inputs always produce identical ranked output.
//
// # Concurrency
//
// Scoring is stateless and side-effect-free per call. The Engine fans
// candidates out over a bounded worker pool; no scoring path performs
// blocking I/O. Preference profiles are only read here; mutation is the
// profile package's job.
package recommend

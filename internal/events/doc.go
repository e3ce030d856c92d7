// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package events carries feedback and session summaries from the API to
// the preference learner over a Watermill pipeline. The API publishes and
// returns immediately; one routed handler applies each feedback event to
// the profile store and appends it to the learning log, another records
// session summaries and refreshes the user's detected patterns.
//
// Two transports are supported. The in-process gochannel transport is the
// default and needs no external services. The NATS JetStream transport
// gives durable, load-balanced consumption across instances, optionally
// against an embedded server for single-node deployments.
//
// The router wraps every handler with panic recovery, exponential backoff
// retry, optional throttling, and a poison queue for events that exhaust
// their retries. Feedback is therefore at-least-once: the learner's delta
// application is small and bounded, so occasional redelivery only nudges
// scores that clamping already limits.
package events

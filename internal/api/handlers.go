// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/carpick/engine/internal/models"
	"github.com/carpick/engine/internal/profile"
	"github.com/carpick/engine/internal/recommend"
)

// recommendTimeout bounds one scoring call end to end.
const recommendTimeout = 10 * time.Second

// EventPublisher is the API's view of the event pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, ev profile.FeedbackEvent) error
	PublishSession(ctx context.Context, s profile.SessionSummary) error
}

// Handler carries the dependencies for all API endpoints.
type Handler struct {
	engine    *recommend.Engine
	profiles  profile.Store
	publisher EventPublisher
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewHandler creates the API handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine *recommend.Engine, profiles profile.Store, publisher EventPublisher, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		profiles:  profiles,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Recommend handles POST /api/v1/recommend. The preference profile is
// fetched here and handed to the engine read-only; a store failure means
// scoring proceeds with defaults rather than failing the request.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed request body", err)
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}
	if err := h.validate.Struct(&req.User); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user profile", err)
		return
	}
	if req.User.BudgetMax > 0 && req.User.BudgetMax < req.User.BudgetMin {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "budget_max below budget_min", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	req.Profile = h.fetchProfile(ctx, req.UserID)

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	h.recordSession(ctx, req, resp)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: resp.Metadata.LatencyMS,
		},
	})
}

// recordSession publishes a summary of this consultation so pattern
// analysis can pick it up. A recommendation never fails on session
// recording; failures are logged and dropped.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) recordSession(ctx context.Context, req recommend.Request, resp *recommend.Response) {
	if len(resp.Recommendations) == 0 {
		return
	}

	s := profile.SessionSummary{
		UserID:      req.UserID,
		Persona:     personaFor(req.User),
		BudgetRange: budgetRangeFor(req.User),
		VehicleType: topVehicleType(req.Candidates, resp.Recommendations[0].CandidateID),
	}
	if err := h.publisher.PublishSession(ctx, s); err != nil {
		h.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("session recording failed")
	}
}

// personaFor buckets the raw profile into the coarse personas pattern
// analysis aggregates over.
func personaFor(u recommend.UserProfile) string {
	switch {
	case u.HouseholdSize >= 4:
		return "가족형"
	case u.Age > 0 && u.Age < 35:
		return "젊은층"
	default:
		return "실용형"
	}
}

// budgetRangeFor buckets the budget midpoint into 1000-만원 bands.
func budgetRangeFor(u recommend.UserProfile) string {
	mid := (u.BudgetMin + u.BudgetMax) / 2
	if mid <= 0 {
		return ""
	}
	lo := int(mid/1000) * 1000
	return fmt.Sprintf("%d-%d", lo, lo+1000)
}

// topVehicleType returns the body type of the top-ranked candidate.
func topVehicleType(candidates []recommend.VehicleCandidate, topID string) string {
	for i := range candidates {
		if candidates[i].ID == topID {
			return candidates[i].BodyType
		}
	}
	return ""
}

// fetchProfile loads the caller's preference profile. Any failure falls
// back to nil and the engine scores with defaults.
func (h *Handler) fetchProfile(ctx context.Context, userID string) *profile.PreferenceProfile {
	p, err := h.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("profile fetch failed, scoring with defaults")
		}
		return nil
	}
	return p
}

// Feedback handles POST /api/v1/feedback. The event is published and the
// request acknowledged immediately; learning happens asynchronously.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var ev profile.FeedbackEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed request body", err)
		return
	}
	if ev.UserID == "" || ev.CandidateID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id and candidate_id are required", nil)
		return
	}
	if !ev.Action.Valid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown feedback action", nil)
		return
	}

	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		respondError(w, http.StatusServiceUnavailable, "FEEDBACK_ERROR", "Failed to accept feedback", err)
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "accepted",
		Data: map[string]interface{}{
			"user_id":      ev.UserID,
			"candidate_id": ev.CandidateID,
			"action":       ev.Action,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// GetProfile handles GET /api/v1/profiles/{userID}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID path parameter required", nil)
		return
	}

	p, err := h.profiles.Get(r.Context(), userID)
	if errors.Is(err, profile.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No profile for user", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to load profile", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   p,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status": "ok",
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

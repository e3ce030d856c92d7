// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"time"

	"github.com/carpick/engine/internal/profile"
)

// Priorities is the user's stated importance vector. Weights are free-form
// user input; they are not required to sum to 1 and are normalized where
// the scoring math needs it.
type Priorities struct {
	Price          float64 `json:"price"`
	FuelEfficiency float64 `json:"fuel_efficiency"`
	Safety         float64 `json:"safety"`
	Performance    float64 `json:"performance"`
	Design         float64 `json:"design"`
}

// Sum returns the total of all priority weights.
func (p Priorities) Sum() float64 {
	return p.Price + p.FuelEfficiency + p.Safety + p.Performance + p.Design
}

// UserProfile is the raw user input for one recommendation call.
// It is immutable per call and supplied fresh each request.
//
// Monetary amounts are in 만원 (10,000 KRW units).
type UserProfile struct {
	// BudgetMin and BudgetMax bound the purchase budget in 만원.
	BudgetMin float64 `json:"budget_min" validate:"min=0"`
	BudgetMax float64 `json:"budget_max" validate:"min=0"`

	HouseholdSize int    `json:"household_size"`
	Age           int    `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	Region        string `json:"region"`

	Priorities Priorities `json:"priorities"`

	// CreditScore is optional; 0 means unknown and a tier is derived
	// from income and age instead.
	CreditScore int `json:"credit_score,omitempty"`
}

// VehicleCandidate is one externally-sourced listing. All fields are
// read-only inputs; the catalog has already applied hard filters.
type VehicleCandidate struct {
	ID              string   `json:"id"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	Price           float64  `json:"price"`
	Mileage         float64  `json:"mileage"`
	FuelType        string   `json:"fuel_type"`
	BodyType        string   `json:"body_type"`
	SeatingCapacity int      `json:"seating_capacity"`
	FuelEfficiency  float64  `json:"fuel_efficiency"`
	SafetyRating    float64  `json:"safety_rating"`
	Features        []string `json:"features,omitempty"`
	Region          string   `json:"region,omitempty"`

	// Listing metadata.
	DetailURL  string `json:"detail_url,omitempty"`
	DealerType string `json:"dealer_type,omitempty"`

	// Market signals.
	ValueScore      float64 `json:"value_score,omitempty"`
	PopularityScore float64 `json:"popularity_score,omitempty"`
}

// Embedding is a fixed-length normalized feature vector for a user or
// vehicle. Values are in [0,1] wherever the source quantity has a known
// practical range. Same input always yields the same embedding.
type Embedding []float64

// ScoreBreakdown is the per-candidate scoring record.
//
// CollaborativeScore is surfaced alongside the composite as advisory
// context for explanations; it is not folded into the composite to avoid
// double-counting vehicle fit.
type ScoreBreakdown struct {
	CandidateID string `json:"candidate_id"`

	// CollaborativeScore in [0,1], with its two branch scores.
	CollaborativeScore float64 `json:"collaborative_score"`
	BilinearScore      float64 `json:"bilinear_score"`
	PatternScore       float64 `json:"pattern_score"`

	// Expert sub-scores and the composite, all in [0,100].
	VehicleScore   float64 `json:"vehicle_score"`
	FinanceScore   float64 `json:"finance_score"`
	LifestyleScore float64 `json:"lifestyle_score"`
	CompositeScore int     `json:"composite_score"`

	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

// Request is one recommendation call.
type Request struct {
	RequestID  string             `json:"request_id,omitempty"`
	UserID     string             `json:"user_id"`
	User       UserProfile        `json:"user_profile"`
	Candidates []VehicleCandidate `json:"candidates"`

	// Message is an optional free-text conversational signal. Extracted
	// insights apply transient scoring boosts only; they never touch the
	// persisted preference profile.
	Message string `json:"message,omitempty"`

	// K bounds the number of returned recommendations. 0 uses the
	// profile's recommendation count, then the engine default.
	K int `json:"k,omitempty"`

	// Profile is the caller-fetched preference profile. Nil falls back
	// to defaults; the engine only reads it.
	Profile *profile.PreferenceProfile `json:"-"`
}

// Response is the ranked recommendation list.
type Response struct {
	Recommendations []ScoreBreakdown `json:"recommendations"`
	TotalCandidates int              `json:"total_candidates"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ResponseMetadata carries observability context for one response.
type ResponseMetadata struct {
	RequestID        string    `json:"request_id"`
	UserID           string    `json:"user_id"`
	LatencyMS        int64     `json:"latency_ms"`
	EmbeddingVersion int       `json:"embedding_version"`
	ParamsVersion    string    `json:"params_version"`
	Timestamp        time.Time `json:"timestamp"`
}

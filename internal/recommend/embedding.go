// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

// EmbeddingVersion identifies the normalization constant set below.
// The constants are versioned together: changing any of them requires
// re-validating every downstream score threshold.
const EmbeddingVersion = 1

// Normalization constants for embedding construction. Source quantities
// are divided by their practical upper bound to land in [0,1].
const (
	normPrice      = 10000.0  // 만원
	normIncome     = 10000.0  // 만원, monthly
	normAge        = 100.0    // years
	normHousehold  = 10.0     // persons
	normYearBase   = 2000.0   // model-year offset origin
	normYearRange  = 25.0     // years past the origin
	normMileage    = 200000.0 // km
	normFuelEff    = 30.0     // km/L
	normSafety     = 5.0      // rating ceiling
	normSeats      = 10.0     // seating capacity
	normMarketSig  = 100.0    // value/popularity scores
	categoryNeutral = 0.5     // unknown category fill value
)

// Category lookup tables. Each category maps to a small fixed-length
// vector; unknown categories map to a neutral mid-value vector instead
// of erroring so scoring never blocks on vocabulary gaps.
var brandVectors = map[string][4]float64{
	"현대":    {0.9, 0.3, 0.6, 0.8},
	"기아":    {0.85, 0.35, 0.55, 0.75},
	"제네시스":  {0.7, 0.9, 0.8, 0.6},
	"쉐보레":   {0.6, 0.4, 0.5, 0.55},
	"르노코리아": {0.5, 0.35, 0.45, 0.5},
	"KG모빌리티": {0.45, 0.3, 0.4, 0.5},
	"BMW":   {0.55, 0.95, 0.85, 0.5},
	"벤츠":    {0.5, 1.0, 0.9, 0.45},
	"아우디":   {0.5, 0.9, 0.8, 0.45},
	"폭스바겐":  {0.55, 0.7, 0.65, 0.5},
	"토요타":   {0.6, 0.6, 0.7, 0.85},
	"렉서스":   {0.5, 0.85, 0.8, 0.8},
}

var bodyVectors = map[string][4]float64{
	"경차":  {0.2, 0.1, 0.9, 0.3},
	"세단":  {0.5, 0.5, 0.6, 0.6},
	"해치백": {0.35, 0.3, 0.75, 0.45},
	"쿠페":  {0.3, 0.8, 0.3, 0.4},
	"SUV": {0.85, 0.6, 0.45, 0.75},
	"승합차": {1.0, 0.3, 0.4, 0.7},
	"트럭":  {0.9, 0.2, 0.5, 0.6},
	"왜건":  {0.7, 0.4, 0.6, 0.55},
}

var fuelVectors = map[string][2]float64{
	"가솔린":  {0.5, 0.4},
	"디젤":   {0.6, 0.5},
	"LPG":  {0.4, 0.7},
	"하이브리드": {0.8, 0.9},
	"전기":   {1.0, 1.0},
	"수소":   {1.0, 0.9},
}

var regionVectors = map[string][4]float64{
	"서울": {1.0, 0.9, 0.2, 0.8},
	"경기": {0.9, 0.8, 0.4, 0.75},
	"인천": {0.8, 0.7, 0.4, 0.7},
	"부산": {0.7, 0.6, 0.5, 0.65},
	"대구": {0.6, 0.55, 0.55, 0.6},
	"광주": {0.55, 0.5, 0.6, 0.55},
	"대전": {0.55, 0.5, 0.55, 0.6},
	"기타": {0.4, 0.35, 0.7, 0.5},
}

// UserEmbeddingDim and ItemEmbeddingDim are the fixed embedding lengths.
const (
	UserEmbeddingDim = 14 // 10 scalars + 4 region
	ItemEmbeddingDim = 18 // 8 scalars + 4 brand + 4 body + 2 fuel
)

// BuildUserEmbedding converts a user profile into its fixed-length
// normalized feature vector. Pure and total: out-of-range inputs are
// clamped silently so this can never block downstream ranking.
func BuildUserEmbedding(u UserProfile) Embedding {
	e := make(Embedding, 0, UserEmbeddingDim)
	e = append(e,
		clamp01(u.BudgetMin/normPrice),
		clamp01(u.BudgetMax/normPrice),
		clamp01(float64(u.HouseholdSize)/normHousehold),
		clamp01(float64(u.Age)/normAge),
		clamp01(u.MonthlyIncome/normIncome),
		clamp01(u.Priorities.Price),
		clamp01(u.Priorities.FuelEfficiency),
		clamp01(u.Priorities.Safety),
		clamp01(u.Priorities.Performance),
		clamp01(u.Priorities.Design),
	)
	return appendCategory4(e, regionVectors, u.Region)
}

// BuildItemEmbedding converts a vehicle candidate into its fixed-length
// normalized feature vector. Pure and total like BuildUserEmbedding.
func BuildItemEmbedding(v VehicleCandidate) Embedding {
	e := make(Embedding, 0, ItemEmbeddingDim)
	e = append(e,
		clamp01(v.Price/normPrice),
		clamp01((float64(v.Year)-normYearBase)/normYearRange),
		clamp01(v.Mileage/normMileage),
		clamp01(v.FuelEfficiency/normFuelEff),
		clamp01(v.SafetyRating/normSafety),
		clamp01(float64(v.SeatingCapacity)/normSeats),
		clamp01(v.ValueScore/normMarketSig),
		clamp01(v.PopularityScore/normMarketSig),
	)
	e = appendCategory4(e, brandVectors, v.Brand)
	e = appendCategory4(e, bodyVectors, v.BodyType)
	return appendCategory2(e, fuelVectors, v.FuelType)
}

// appendCategory4 appends a 4-wide category vector, neutral on miss.
func appendCategory4(e Embedding, table map[string][4]float64, key string) Embedding {
	if vec, ok := table[key]; ok {
		return append(e, vec[0], vec[1], vec[2], vec[3])
	}
	return append(e, categoryNeutral, categoryNeutral, categoryNeutral, categoryNeutral)
}

// appendCategory2 appends a 2-wide category vector, neutral on miss.
func appendCategory2(e Embedding, table map[string][2]float64, key string) Embedding {
	if vec, ok := table[key]; ok {
		return append(e, vec[0], vec[1])
	}
	return append(e, categoryNeutral, categoryNeutral)
}

// clamp01 bounds a normalized value to [0,1]. Negative source values
// (a negative price, say) are treated as zero rather than failing.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

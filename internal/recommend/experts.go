// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import (
	"fmt"
	"math"
)

// Expert weighting inside the composite. Collaborative score is surfaced
// separately and deliberately not blended here.
const (
	compositeVehicleWeight   = 0.4
	compositeFinanceWeight   = 0.3
	compositeLifestyleWeight = 0.3
)

// Finance constants: a representative 60-month loan with 20% down.
const (
	loanTermMonths    = 60
	loanDownRatio     = 0.2
	comfortableRatio  = 0.25 // payment-to-income ratio with no penalty
	unaffordableRatio = 0.60 // ratio at which the finance score reaches 0
)

// insightBoost bounds a single transient conversational boost.
const insightBoost = 5.0

// vehicleScore blends budget centering with the user's stated priority
// vector applied to the candidate's normalized attributes.
func vehicleScore(u UserProfile, v VehicleCandidate, in Insights) float64 {
	center := budgetCenterScore(u, v.Price)

	attrs := map[string]float64{
		"price":           center / 100,
		"fuel_efficiency": clamp01(v.FuelEfficiency / normFuelEff),
		"safety":          clamp01(v.SafetyRating / normSafety),
		// Recency stands in for performance; a listing's model year is the
		// only performance signal the catalog reliably carries.
		"performance": clamp01((float64(v.Year) - normYearBase) / normYearRange),
		"design":      0.6,
	}

	weights := map[string]float64{
		"price":           u.Priorities.Price,
		"fuel_efficiency": u.Priorities.FuelEfficiency,
		"safety":          u.Priorities.Safety,
		"performance":     u.Priorities.Performance,
		"design":          u.Priorities.Design,
	}
	total := u.Priorities.Sum()
	if total <= 0 {
		for k := range weights {
			weights[k] = 1
		}
		total = float64(len(weights))
	}

	var weighted float64
	for k, w := range weights {
		weighted += (w / total) * attrs[k]
	}

	score := 0.4*center + 0.6*weighted*100

	if in.HasConcern(ConcernFuel) && v.FuelEfficiency >= 15 {
		score += insightBoost
	}
	if in.HasConcern(ConcernSafety) && v.SafetyRating >= 4 {
		score += insightBoost
	}

	return clampScore(score)
}

// budgetCenterScore measures closeness of price to the budget midpoint
// with symmetric falloff: 100 at the midpoint, 0 at or beyond one
// half-width away. Moving a price toward the midpoint never lowers it.
func budgetCenterScore(u UserProfile, price float64) float64 {
	if price < 0 {
		price = 0
	}
	mid := (u.BudgetMin + u.BudgetMax) / 2
	half := (u.BudgetMax - u.BudgetMin) / 2
	if half <= 0 {
		// Degenerate budget: fall off over half the midpoint.
		half = mid * 0.5
	}
	if half <= 0 {
		if price == mid {
			return 100
		}
		return 0
	}
	return clampScore(100 * (1 - math.Abs(price-mid)/half))
}

// financeScore estimates affordability from a representative loan's
// monthly payment against monthly income, penalizing linearly once the
// payment exceeds the comfortable ratio.
func financeScore(u UserProfile, v VehicleCandidate, in Insights) float64 {
	if u.MonthlyIncome <= 0 {
		// No income signal: neutral, slightly cautious.
		return 50
	}

	principal := v.Price * (1 - loanDownRatio)
	apr := aprForTier(creditTier(u))
	payment := monthlyPayment(principal, apr, loanTermMonths)

	ratio := payment / u.MonthlyIncome
	var score float64
	switch {
	case ratio <= comfortableRatio:
		score = 100
	case ratio >= unaffordableRatio:
		score = 0
	default:
		score = 100 * (unaffordableRatio - ratio) / (unaffordableRatio - comfortableRatio)
	}

	if in.HasConcern(ConcernPrice) && v.Price <= (u.BudgetMin+u.BudgetMax)/2 {
		score += insightBoost
	}

	return clampScore(score)
}

// creditTier returns the user's credit score, deriving one from income
// and age when not supplied.
func creditTier(u UserProfile) int {
	if u.CreditScore > 0 {
		return u.CreditScore
	}
	derived := 550.0
	derived += math.Min(200, u.MonthlyIncome/25)
	if u.Age >= 30 && u.Age <= 55 {
		derived += 50
	}
	if derived > 850 {
		derived = 850
	}
	return int(derived)
}

// aprForTier maps a credit tier to an annual interest rate (percent).
func aprForTier(score int) float64 {
	switch {
	case score >= 750:
		return 5.5
	case score >= 650:
		return 7.5
	case score >= 550:
		return 10.5
	default:
		return 13.5
	}
}

// monthlyPayment computes the standard amortization payment.
func monthlyPayment(principal, aprPercent float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := aprPercent / 100 / 12
	if r == 0 {
		return principal / float64(months)
	}
	return principal * r / (1 - math.Pow(1+r, -float64(months)))
}

// lifestyleScore starts from a 70 baseline and adds categorical
// compatibility bonuses, capped at 100.
func lifestyleScore(u UserProfile, v VehicleCandidate, in Insights) float64 {
	score := 70.0

	if u.HouseholdSize >= 4 && (v.BodyType == "SUV" || v.BodyType == "승합차") {
		score += 10
	}
	if u.Age > 0 && u.Age < 35 && (v.BodyType == "쿠페" || v.BodyType == "해치백") {
		score += 5
	}

	if annual := u.MonthlyIncome * 12; annual > 0 {
		ratio := v.Price / annual
		if ratio >= 0.3 && ratio <= 0.8 {
			score += 10
		}
	}

	if (v.FuelType == "하이브리드" || v.FuelType == "전기") && u.Priorities.FuelEfficiency >= 0.5 {
		score += 5
	}

	if in.HasConcern(ConcernSpace) && (v.BodyType == "SUV" || v.BodyType == "승합차") {
		score += insightBoost
	}
	if in.HasConcern(ConcernReliability) && v.Mileage > 0 && v.Mileage <= 80000 {
		score += 3
	}

	return clampScore(score)
}

// compositeScore blends the three expert sub-scores and rounds, clamped
// to [0,100].
func compositeScore(vehicle, finance, lifestyle float64) int {
	c := compositeVehicleWeight*vehicle + compositeFinanceWeight*finance + compositeLifestyleWeight*lifestyle
	rounded := int(math.Round(c))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// explain selects a deterministic template from the dominant contributing
// sub-score and appends the collaborative attribution. Identical inputs
// always produce identical text.
func explain(b ScoreBreakdown, v VehicleCandidate, collab CollabScore) string {
	var lead string
	switch dominantFactor(b) {
	case "vehicle":
		lead = fmt.Sprintf("%s %s은(는) 예산과 우선순위에 잘 맞는 차량입니다.", v.Brand, v.Model)
	case "finance":
		lead = fmt.Sprintf("%s %s은(는) 월 납입 부담이 낮아 재무적으로 안정적인 선택입니다.", v.Brand, v.Model)
	default:
		lead = fmt.Sprintf("%s %s은(는) 라이프스타일에 잘 어울리는 차종입니다.", v.Brand, v.Model)
	}
	return lead + " " + collab.Explanation()
}

// dominantFactor names the highest expert sub-score. Ties resolve in the
// fixed order vehicle, finance, lifestyle.
func dominantFactor(b ScoreBreakdown) string {
	best, factor := b.VehicleScore, "vehicle"
	if b.FinanceScore > best {
		best, factor = b.FinanceScore, "finance"
	}
	if b.LifestyleScore > best {
		factor = "lifestyle"
	}
	return factor
}

// clampScore bounds an expert sub-score to [0,100].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

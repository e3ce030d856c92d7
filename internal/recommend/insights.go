// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package recommend

import "strings"

// Sentiment, urgency and decision-stage labels produced by ExtractInsights.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	UrgencyHigh   = "high"
	UrgencyNormal = "normal"

	StageResearch   = "research"
	StageComparison = "comparison"
	StageDecision   = "decision"
)

// Concern categories recognized in conversational text.
const (
	ConcernPrice       = "price"
	ConcernFuel        = "fuel"
	ConcernSafety      = "safety"
	ConcernSpace       = "space"
	ConcernReliability = "reliability"
)

// Insights is the deterministic classification of one free-text message.
// It drives transient scoring boosts only; it never mutates the persisted
// preference profile. Only explicit feedback events do that.
type Insights struct {
	Keywords      []string `json:"keywords,omitempty"`
	Sentiment     string   `json:"sentiment"`
	Urgency       string   `json:"urgency"`
	DecisionStage string   `json:"decision_stage"`
	Concerns      []string `json:"concerns,omitempty"`
	Priorities    []string `json:"priorities,omitempty"`
}

// Keyword tables. Classification is plain substring membership over fixed
// Korean term lists per category, so identical text always classifies
// identically.
var (
	positiveTerms = []string{"좋아", "마음에 들", "괜찮", "최고", "만족", "예쁘", "멋지", "감사"}
	negativeTerms = []string{"별로", "싫", "비싸", "실망", "걱정", "불만", "아쉽", "부담"}

	urgentTerms = []string{"급해", "빨리", "당장", "이번 주", "오늘", "지금 바로", "서둘러"}

	comparisonTerms = []string{"비교", "어떤 게", "차이", "뭐가 나은", "고민 중", "둘 중"}
	decisionTerms   = []string{"결정", "계약", "구매할게", "살게요", "확정", "진행해"}

	concernTerms = map[string][]string{
		ConcernPrice:       {"가격", "비싸", "저렴", "할인", "예산", "싸게", "가성비"},
		ConcernFuel:        {"연비", "기름값", "유지비", "하이브리드", "전기차"},
		ConcernSafety:      {"안전", "사고", "에어백", "충돌", "아이", "가족"},
		ConcernSpace:       {"공간", "넓은", "짐", "트렁크", "캠핑", "카시트"},
		ConcernReliability: {"고장", "수리", "보증", "무사고", "정비", "내구성"},
	}
)

// ExtractInsights classifies a conversational message. Absence of matches
// defaults to neutral sentiment, normal urgency and the research stage.
func ExtractInsights(text string) Insights {
	in := Insights{
		Sentiment:     SentimentNeutral,
		Urgency:       UrgencyNormal,
		DecisionStage: StageResearch,
	}
	if text == "" {
		return in
	}

	positives := countMatches(text, positiveTerms)
	negatives := countMatches(text, negativeTerms)
	switch {
	case positives > negatives:
		in.Sentiment = SentimentPositive
	case negatives > positives:
		in.Sentiment = SentimentNegative
	}

	if countMatches(text, urgentTerms) > 0 {
		in.Urgency = UrgencyHigh
	}

	// Decision beats comparison when both match.
	switch {
	case countMatches(text, decisionTerms) > 0:
		in.DecisionStage = StageDecision
	case countMatches(text, comparisonTerms) > 0:
		in.DecisionStage = StageComparison
	}

	// Concern order is fixed so output is deterministic.
	for _, concern := range []string{ConcernPrice, ConcernFuel, ConcernSafety, ConcernSpace, ConcernReliability} {
		matched := matchedTerms(text, concernTerms[concern])
		if len(matched) == 0 {
			continue
		}
		in.Concerns = append(in.Concerns, concern)
		in.Keywords = append(in.Keywords, matched...)
	}
	in.Priorities = in.Concerns

	return in
}

// HasConcern reports whether a concern category was detected.
func (in Insights) HasConcern(concern string) bool {
	for _, c := range in.Concerns {
		if c == concern {
			return true
		}
	}
	return false
}

// countMatches counts how many terms appear in the text.
func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// matchedTerms returns the terms that appear in the text, in table order.
func matchedTerms(text string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			out = append(out, term)
		}
	}
	return out
}

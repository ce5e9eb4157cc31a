package relevance

import (
	"strings"

	"github.com/brightline-ai/context-engine/internal/analysis"
)

// Weights centralizes every tunable constant of the relevance computation.
// The scorer has no other literals; tuning happens here.
type Weights struct {
	TitleWeight     float64 // per-keyword credit for a title hit
	SummaryWeight   float64 // per-keyword credit for a summary hit
	PreviewWeight   float64 // per-keyword credit for a raw-content preview hit
	KeyPointsWeight float64 // per-keyword credit for a key-point hit
	PreviewChars    int     // raw-content prefix scanned when no summary exists

	StructuredBonusCap float64
	RankingItemBonus   float64 // per ranking entry when the intent is best_choice
	WinnerBonus        float64 // flat, when the intent is best_choice
	ComparisonBonus    float64 // per comparison when the query is comparative
	PricingItemBonus   float64 // per price entry when the intent is pricing
	RecommendBonus     float64 // per recommendation when seeking one

	IntentKeywordBonus float64
	IntentKeywordCap   float64
	ProductMatchBonus  float64
	ProductMatchCap    float64
	ConfidenceFactor   float64

	RecSeekingCap        float64
	RecSeekingRanking    float64
	RecSeekingComparison float64
	RecSeekingReview     float64
	RecSeekingWinner     float64
	RecSeekingRecs       float64

	MaxScore       float64 // hard cap on the final score
	RelevanceFloor float64 // selection stops below this score
	MaxItems       int     // selection cap per query
	ContentChars   int     // raw-content truncation for context items
}

// DefaultWeights returns the production relevance tuning.
func DefaultWeights() Weights {
	return Weights{
		TitleWeight:     0.4,
		SummaryWeight:   0.3,
		PreviewWeight:   0.2,
		KeyPointsWeight: 0.3,
		PreviewChars:    500,

		StructuredBonusCap: 0.5,
		RankingItemBonus:   0.1,
		WinnerBonus:        0.3,
		ComparisonBonus:    0.1,
		PricingItemBonus:   0.15,
		RecommendBonus:     0.1,

		IntentKeywordBonus: 0.1,
		IntentKeywordCap:   0.3,
		ProductMatchBonus:  0.2,
		ProductMatchCap:    0.4,
		ConfidenceFactor:   0.2,

		RecSeekingCap:        0.4,
		RecSeekingRanking:    0.3,
		RecSeekingComparison: 0.25,
		RecSeekingReview:     0.2,
		RecSeekingWinner:     0.2,
		RecSeekingRecs:       0.15,

		MaxScore:       3.0,
		RelevanceFloor: 0.1,
		MaxItems:       7,
		ContentChars:   1000,
	}
}

// Scorer computes the composite relevance of a document for a query. The
// computation is pure; a Scorer is safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Zero-valued weights fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	def := DefaultWeights()
	if weights.TitleWeight == 0 && weights.SummaryWeight == 0 && weights.KeyPointsWeight == 0 {
		weights = def
	}
	if weights.PreviewChars <= 0 {
		weights.PreviewChars = def.PreviewChars
	}
	if weights.MaxScore <= 0 {
		weights.MaxScore = def.MaxScore
	}
	if weights.MaxItems <= 0 {
		weights.MaxItems = def.MaxItems
	}
	if weights.ContentChars <= 0 {
		weights.ContentChars = def.ContentChars
	}
	return &Scorer{weights: weights}
}

// Weights exposes the active tuning, mostly for the selector and tests.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes the final relevance of doc for query. The result is always
// in [0, MaxScore].
func (s *Scorer) Score(doc Material, query QueryAnalysis) float64 {
	score := s.baseRelevance(doc, query) * query.Boost(doc.Analysis.ContentType)

	score += s.structuredBonus(doc.Analysis.StructuredData, query)
	score += s.intentKeywordBonus(doc.Analysis.IntentKeywords, query.Keywords)
	score += s.productBonus(doc.Analysis.PrimaryProducts, query.Products)
	score += doc.Analysis.ConfidenceScore * s.weights.ConfidenceFactor
	score += s.recommendationBonus(doc.Analysis, query)

	if score > s.weights.MaxScore {
		score = s.weights.MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// baseRelevance is the keyword-overlap score: each query keyword earns the
// weight of every document field it appears in, normalized by the keyword
// count and capped at 1.
func (s *Scorer) baseRelevance(doc Material, query QueryAnalysis) float64 {
	if len(query.Keywords) == 0 {
		return 0
	}

	title := strings.ToLower(doc.Title)
	summary := strings.ToLower(doc.Summary)
	preview := ""
	if summary == "" && doc.RawContent != "" {
		raw := doc.RawContent
		if len(raw) > s.weights.PreviewChars {
			raw = raw[:s.weights.PreviewChars]
		}
		preview = strings.ToLower(raw)
	}
	points := make([]string, len(doc.KeyPoints))
	for i, kp := range doc.KeyPoints {
		points[i] = strings.ToLower(kp)
	}

	total := 0.0
	for _, kw := range query.Keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			total += s.weights.TitleWeight
		}
		if summary != "" {
			if strings.Contains(summary, kw) {
				total += s.weights.SummaryWeight
			}
		} else if strings.Contains(preview, kw) {
			total += s.weights.PreviewWeight
		}
		for _, kp := range points {
			if strings.Contains(kp, kw) {
				total += s.weights.KeyPointsWeight
				break
			}
		}
	}

	base := total / float64(len(query.Keywords))
	if base > 1 {
		base = 1
	}
	return base
}

// structuredBonus rewards structured data that matches the query's intent,
// capped so structure never dominates keyword relevance.
func (s *Scorer) structuredBonus(sd analysis.StructuredData, query QueryAnalysis) float64 {
	bonus := 0.0

	if query.Intent == IntentBestChoice {
		bonus += float64(len(sd.Rankings)) * s.weights.RankingItemBonus
		if sd.Winner != nil {
			bonus += s.weights.WinnerBonus
		}
	}
	if query.IsComparative {
		bonus += float64(len(sd.Comparisons)) * s.weights.ComparisonBonus
	}
	if query.Intent == IntentPricing {
		bonus += float64(len(sd.Pricing)) * s.weights.PricingItemBonus
	}
	if query.IsLookingForRecommendation {
		bonus += float64(len(sd.Recommendations)) * s.weights.RecommendBonus
	}

	if bonus > s.weights.StructuredBonusCap {
		bonus = s.weights.StructuredBonusCap
	}
	return bonus
}

// intentKeywordBonus credits document intent keywords that substring-overlap
// a query keyword in either direction.
func (s *Scorer) intentKeywordBonus(docKeywords, queryKeywords []string) float64 {
	bonus := 0.0
	for _, dk := range docKeywords {
		dk = strings.ToLower(dk)
		if dk == "" {
			continue
		}
		for _, qk := range queryKeywords {
			qk = strings.ToLower(qk)
			if qk == "" {
				continue
			}
			if strings.Contains(dk, qk) || strings.Contains(qk, dk) {
				bonus += s.weights.IntentKeywordBonus
				break
			}
		}
		if bonus >= s.weights.IntentKeywordCap {
			return s.weights.IntentKeywordCap
		}
	}
	return bonus
}

// productBonus credits primary products that overlap a query product.
// Each query product is credited at most once.
func (s *Scorer) productBonus(docProducts, queryProducts []string) float64 {
	bonus := 0.0
	credited := make(map[int]bool, len(queryProducts))

	for _, dp := range docProducts {
		dp = strings.ToLower(dp)
		if dp == "" {
			continue
		}
		for i, qp := range queryProducts {
			if credited[i] {
				continue
			}
			qp = strings.ToLower(qp)
			if qp == "" {
				continue
			}
			if strings.Contains(dp, qp) || strings.Contains(qp, dp) {
				credited[i] = true
				bonus += s.weights.ProductMatchBonus
				break
			}
		}
		if bonus >= s.weights.ProductMatchCap {
			return s.weights.ProductMatchCap
		}
	}
	return bonus
}

// recommendationBonus rewards recommendation-shaped documents when the query
// is looking for one.
func (s *Scorer) recommendationBonus(result analysis.ContentAnalysisResult, query QueryAnalysis) float64 {
	if !query.IsLookingForRecommendation {
		return 0
	}

	bonus := 0.0
	switch result.ContentType {
	case analysis.ContentTypeRanking:
		bonus += s.weights.RecSeekingRanking
	case analysis.ContentTypeComparison:
		bonus += s.weights.RecSeekingComparison
	case analysis.ContentTypeReview:
		bonus += s.weights.RecSeekingReview
	}
	if result.StructuredData.Winner != nil {
		bonus += s.weights.RecSeekingWinner
	}
	if len(result.StructuredData.Recommendations) > 0 {
		bonus += s.weights.RecSeekingRecs
	}

	if bonus > s.weights.RecSeekingCap {
		bonus = s.weights.RecSeekingCap
	}
	return bonus
}

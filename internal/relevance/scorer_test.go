package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightline-ai/context-engine/internal/analysis"
)

func TestScorer_BaseRelevance(t *testing.T) {
	s := NewScorer(DefaultWeights())

	t.Run("title hits", func(t *testing.T) {
		doc := Material{Title: "Budget Laptop Guide"}
		query := QueryAnalysis{Keywords: []string{"laptop", "budget"}}
		assert.InDelta(t, 0.4, s.Score(doc, query), 0.0001)
	})

	t.Run("summary outweighs preview", func(t *testing.T) {
		withSummary := Material{Summary: "a laptop overview"}
		withRaw := Material{RawContent: "a laptop overview"}
		query := QueryAnalysis{Keywords: []string{"laptop"}}
		assert.InDelta(t, 0.3, s.Score(withSummary, query), 0.0001)
		assert.InDelta(t, 0.2, s.Score(withRaw, query), 0.0001)
	})

	t.Run("preview only scans the content prefix", func(t *testing.T) {
		doc := Material{RawContent: stringOfLen(600) + " laptop"}
		query := QueryAnalysis{Keywords: []string{"laptop"}}
		assert.InDelta(t, 0.0, s.Score(doc, query), 0.0001)
	})

	t.Run("key points credit once per keyword", func(t *testing.T) {
		doc := Material{KeyPoints: []string{"great laptop", "cheap laptop"}}
		query := QueryAnalysis{Keywords: []string{"laptop"}}
		assert.InDelta(t, 0.3, s.Score(doc, query), 0.0001)
	})

	t.Run("no keywords means no base relevance", func(t *testing.T) {
		doc := Material{Title: "Budget Laptop Guide"}
		assert.InDelta(t, 0.0, s.Score(doc, QueryAnalysis{}), 0.0001)
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		doc := Material{Title: "BUDGET LAPTOPS"}
		query := QueryAnalysis{Keywords: []string{"Laptop"}}
		assert.InDelta(t, 0.4, s.Score(doc, query), 0.0001)
	})
}

func TestScorer_ContentTypeBoost(t *testing.T) {
	s := NewScorer(DefaultWeights())

	doc := Material{
		Title:    "Budget Laptop Guide",
		Analysis: analysis.ContentAnalysisResult{ContentType: analysis.ContentTypeRanking},
	}
	query := QueryAnalysis{
		Keywords:      []string{"laptop"},
		ContextBoosts: map[analysis.ContentType]float64{analysis.ContentTypeRanking: 1.5},
	}

	assert.InDelta(t, 0.6, s.Score(doc, query), 0.0001)

	t.Run("missing boost defaults to one", func(t *testing.T) {
		plain := QueryAnalysis{Keywords: []string{"laptop"}}
		assert.InDelta(t, 0.4, s.Score(doc, plain), 0.0001)
	})
}

func TestScorer_StructuredBonus(t *testing.T) {
	s := NewScorer(DefaultWeights())

	t.Run("winner adds a flat bonus on top of ranking entries", func(t *testing.T) {
		base := Material{Analysis: analysis.ContentAnalysisResult{
			StructuredData: analysis.StructuredData{Rankings: make([]analysis.RankingEntry, 2)},
		}}
		withWinner := base
		withWinner.Analysis.StructuredData.Winner = &analysis.Winner{Product: "Dell XPS"}

		query := QueryAnalysis{Intent: IntentBestChoice, Keywords: []string{"best"}}
		diff := s.Score(withWinner, query) - s.Score(base, query)
		assert.InDelta(t, 0.3, diff, 0.0001)
	})

	t.Run("capped at half a point", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			StructuredData: analysis.StructuredData{
				Rankings: make([]analysis.RankingEntry, 10),
				Winner:   &analysis.Winner{Product: "Dell XPS"},
			},
		}}
		query := QueryAnalysis{Intent: IntentBestChoice}
		assert.InDelta(t, 0.5, s.Score(doc, query), 0.0001)
	})

	t.Run("pricing intent counts price entries", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			StructuredData: analysis.StructuredData{Pricing: make([]analysis.PriceEntry, 2)},
		}}
		query := QueryAnalysis{Intent: IntentPricing}
		assert.InDelta(t, 0.3, s.Score(doc, query), 0.0001)
	})

	t.Run("comparative queries count comparisons", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			StructuredData: analysis.StructuredData{Comparisons: make([]analysis.Comparison, 3)},
		}}
		query := QueryAnalysis{IsComparative: true}
		assert.InDelta(t, 0.3, s.Score(doc, query), 0.0001)
	})

	t.Run("structure without matching intent earns nothing", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			StructuredData: analysis.StructuredData{Rankings: make([]analysis.RankingEntry, 5)},
		}}
		assert.InDelta(t, 0.0, s.Score(doc, QueryAnalysis{Intent: IntentGeneral}), 0.0001)
	})
}

func TestScorer_IntentKeywordBonus(t *testing.T) {
	s := NewScorer(DefaultWeights())

	t.Run("substring overlap in either direction", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			IntentKeywords: []string{"laptops"},
		}}
		query := QueryAnalysis{Keywords: []string{"laptop"}}
		assert.InDelta(t, 0.1, s.Score(doc, query), 0.0001)
	})

	t.Run("capped at three matches", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			IntentKeywords: []string{"best", "budget", "gaming", "cheap"},
		}}
		query := QueryAnalysis{Keywords: []string{"best", "budget", "gaming", "cheap"}}
		// Four keywords also overlap the base-relevance fields of an empty
		// document zero ways, so only the capped keyword bonus remains.
		assert.InDelta(t, 0.3, s.Score(doc, query), 0.0001)
	})
}

func TestScorer_ProductBonus(t *testing.T) {
	s := NewScorer(DefaultWeights())

	t.Run("one credit per query product", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			PrimaryProducts: []string{"Dell XPS 13", "Dell XPS 15"},
		}}
		query := QueryAnalysis{Products: []string{"Dell XPS"}}
		assert.InDelta(t, 0.2, s.Score(doc, query), 0.0001)
	})

	t.Run("capped at two credits", func(t *testing.T) {
		doc := Material{Analysis: analysis.ContentAnalysisResult{
			PrimaryProducts: []string{"Dell XPS", "HP Pavilion", "Lenovo Yoga"},
		}}
		query := QueryAnalysis{Products: []string{"Dell XPS", "HP Pavilion", "Lenovo Yoga"}}
		assert.InDelta(t, 0.4, s.Score(doc, query), 0.0001)
	})
}

func TestScorer_ConfidenceFactor(t *testing.T) {
	s := NewScorer(DefaultWeights())

	doc := Material{Analysis: analysis.ContentAnalysisResult{ConfidenceScore: 0.8}}
	assert.InDelta(t, 0.16, s.Score(doc, QueryAnalysis{}), 0.0001)
}

func TestScorer_RecommendationSeekingBonus(t *testing.T) {
	s := NewScorer(DefaultWeights())

	doc := Material{Analysis: analysis.ContentAnalysisResult{
		ContentType: analysis.ContentTypeRanking,
		StructuredData: analysis.StructuredData{
			Winner:          &analysis.Winner{Product: "Dell XPS"},
			Recommendations: make([]analysis.Recommendation, 1),
		},
	}}

	t.Run("capped when everything lines up", func(t *testing.T) {
		query := QueryAnalysis{IsLookingForRecommendation: true}
		// Recommendation entries also feed the structured bonus when the
		// query seeks a recommendation.
		structured := 1 * s.Weights().RecommendBonus
		assert.InDelta(t, 0.4+structured, s.Score(doc, query), 0.0001)
	})

	t.Run("absent unless the query seeks a recommendation", func(t *testing.T) {
		assert.InDelta(t, 0.0, s.Score(doc, QueryAnalysis{}), 0.0001)
	})

	t.Run("review type earns its flat bonus", func(t *testing.T) {
		review := Material{Analysis: analysis.ContentAnalysisResult{
			ContentType: analysis.ContentTypeReview,
		}}
		query := QueryAnalysis{IsLookingForRecommendation: true}
		assert.InDelta(t, 0.2, s.Score(review, query), 0.0001)
	})
}

func TestScorer_FinalScoreCapped(t *testing.T) {
	s := NewScorer(DefaultWeights())

	doc := Material{
		Title:   "best laptop",
		Summary: "best laptop",
		KeyPoints: []string{
			"best laptop",
		},
		Analysis: analysis.ContentAnalysisResult{
			ContentType: analysis.ContentTypeRanking,
			StructuredData: analysis.StructuredData{
				Rankings:        make([]analysis.RankingEntry, 10),
				Winner:          &analysis.Winner{Product: "Dell XPS"},
				Recommendations: make([]analysis.Recommendation, 5),
			},
			IntentKeywords:  []string{"best", "laptop", "budget"},
			PrimaryProducts: []string{"Dell XPS", "HP Pavilion"},
			ConfidenceScore: 1.0,
		},
	}
	query := QueryAnalysis{
		Intent:                     IntentBestChoice,
		Keywords:                   []string{"best", "laptop", "budget"},
		Products:                   []string{"Dell XPS", "HP Pavilion"},
		IsComparative:              true,
		IsLookingForRecommendation: true,
		ContextBoosts:              map[analysis.ContentType]float64{analysis.ContentTypeRanking: 2.0},
	}

	score := s.Score(doc, query)
	assert.InDelta(t, 3.0, score, 0.0001)
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

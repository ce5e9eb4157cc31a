// Package relevance ranks analyzed documents against a query and assembles
// the context block handed to the downstream language model.
package relevance

import "github.com/brightline-ai/context-engine/internal/analysis"

// Intent is the coarse goal of a user query, supplied by the query-intent
// collaborator.
type Intent string

const (
	IntentBestChoice     Intent = "best_choice"
	IntentPricing        Intent = "pricing"
	IntentComparison     Intent = "comparison"
	IntentRecommendation Intent = "recommendation"
	IntentInformation    Intent = "information"
	IntentGeneral        Intent = "general"
)

// QueryAnalysis is the externally computed classification of the current
// query. This package treats it as read-only and applies defensive defaults
// (missing boost means 1.0, empty sets contribute nothing) instead of
// validating it.
type QueryAnalysis struct {
	Intent                     Intent                              `json:"intent"`
	Keywords                   []string                            `json:"keywords"`
	Products                   []string                            `json:"products"`
	IsComparative              bool                                `json:"isComparative"`
	IsLookingForRecommendation bool                                `json:"isLookingForRecommendation"`
	ContextBoosts              map[analysis.ContentType]float64    `json:"contextBoosts,omitempty"`
}

// Boost returns the context boost for a content type, defaulting to 1.0.
func (q QueryAnalysis) Boost(ct analysis.ContentType) float64 {
	if b, ok := q.ContextBoosts[ct]; ok && b > 0 {
		return b
	}
	return 1.0
}

// Material is a candidate document as the scorer sees it: the stored fields
// plus the persisted analysis. The storage layer converts its records into
// this shape; the scorer never touches storage directly.
type Material struct {
	ID         string
	Title      string
	Summary    string
	RawContent string
	KeyPoints  []string
	Analysis   analysis.ContentAnalysisResult
}

// ContextItem is one selected document rendered for the context block.
// Created fresh per query and discarded after the block is built.
type ContextItem struct {
	Title          string                   `json:"title"`
	Content        string                   `json:"content"`
	Relevance      float64                  `json:"relevance"`
	ContentType    analysis.ContentType     `json:"contentType,omitempty"`
	StructuredData *analysis.StructuredData `json:"structuredData,omitempty"`
}

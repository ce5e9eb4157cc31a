// Package storage provides database models and repositories for the context engine.
package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/relevance"
)

// Site represents one customer site whose pages feed a chat assistant.
// Every document belongs to exactly one site and queries never cross sites.
type Site struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    string    `json:"domain" db:"domain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Document represents an ingested training material. The ingestion pipeline
// creates it; the analysis fields below are populated by this engine after
// each (re-)ingestion and are never mutated on the query path.
type Document struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	SiteID     uuid.UUID       `json:"site_id" db:"site_id"`
	Title      string          `json:"title" db:"title"`
	RawContent string          `json:"raw_content,omitempty" db:"raw_content"`
	Summary    string          `json:"summary,omitempty" db:"summary"`
	KeyPoints  []string        `json:"key_points" db:"key_points"`
	Metadata   json.RawMessage `json:"metadata,omitempty" db:"metadata"`

	ContentType     analysis.ContentType    `json:"content_type,omitempty" db:"content_type"`
	StructuredData  analysis.StructuredData `json:"structured_data,omitempty" db:"structured_data"`
	IntentKeywords  []string                `json:"intent_keywords,omitempty" db:"intent_keywords"`
	PrimaryProducts []string                `json:"primary_products,omitempty" db:"primary_products"`
	ConfidenceScore float64                 `json:"confidence_score" db:"confidence_score"`
	AnalyzedAt      *time.Time              `json:"analyzed_at,omitempty" db:"analyzed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplyAnalysis copies an analysis result onto the document's persisted
// analysis columns.
func (d *Document) ApplyAnalysis(result analysis.ContentAnalysisResult, at time.Time) {
	d.ContentType = result.ContentType
	d.StructuredData = result.StructuredData
	d.IntentKeywords = result.IntentKeywords
	d.PrimaryProducts = result.PrimaryProducts
	d.ConfidenceScore = result.ConfidenceScore
	d.AnalyzedAt = &at
	d.UpdatedAt = at
}

// AnalysisResult reassembles the persisted analysis columns.
func (d *Document) AnalysisResult() analysis.ContentAnalysisResult {
	ct := d.ContentType
	if ct == "" {
		ct = analysis.ContentTypeGeneral
	}
	return analysis.ContentAnalysisResult{
		ContentType:     ct,
		StructuredData:  d.StructuredData,
		IntentKeywords:  d.IntentKeywords,
		PrimaryProducts: d.PrimaryProducts,
		ConfidenceScore: d.ConfidenceScore,
	}
}

// Material converts the document into the scorer's input shape.
func (d *Document) Material() relevance.Material {
	return relevance.Material{
		ID:         d.ID.String(),
		Title:      d.Title,
		Summary:    d.Summary,
		RawContent: d.RawContent,
		KeyPoints:  d.KeyPoints,
		Analysis:   d.AnalysisResult(),
	}
}

// Materials converts a document slice for the scorer.
func Materials(docs []*Document) []relevance.Material {
	out := make([]relevance.Material, len(docs))
	for i, d := range docs {
		out[i] = d.Material()
	}
	return out
}

// Package rpc provides Connect service implementations for the context engine.
package rpc

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

// ContextService implements the Connect context-query service. It is the
// server-to-server surface used by the chat backend.
type ContextService struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewContextService creates a new context service.
func NewContextService(logger *observability.Logger, eng *engine.Engine) *ContextService {
	return &ContextService{
		logger: logger,
		engine: eng,
	}
}

// ContextQueryRequest carries the caller-computed query analysis for one
// chat turn.
type ContextQueryRequest struct {
	SiteID                     string             `json:"site_id"`
	Intent                     string             `json:"intent,omitempty"`
	Keywords                   []string           `json:"keywords,omitempty"`
	Products                   []string           `json:"products,omitempty"`
	IsComparative              bool               `json:"is_comparative,omitempty"`
	IsLookingForRecommendation bool               `json:"is_looking_for_recommendation,omitempty"`
	ContextBoosts              map[string]float64 `json:"context_boosts,omitempty"`
	IncludeItems               bool               `json:"include_items,omitempty"`
}

// ContextQueryResponse is the assembled context plus per-item details when
// requested.
type ContextQueryResponse struct {
	ContextBlock string         `json:"context_block"`
	Items        []*ContextItem `json:"items,omitempty"`
	ItemCount    int            `json:"item_count"`
	LatencyMs    int64          `json:"latency_ms"`
}

// ContextItem is one selected document in the response.
type ContextItem struct {
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Relevance      float64         `json:"relevance"`
	ContentType    string          `json:"content_type,omitempty"`
	StructuredData *StructuredData `json:"structured_data,omitempty"`
}

// StructuredData mirrors the extracted facts of a selected document.
type StructuredData struct {
	Rankings        []*RankedProduct  `json:"rankings,omitempty"`
	Winner          *Winner           `json:"winner,omitempty"`
	Pricing         []*PriceEntry     `json:"pricing,omitempty"`
	Features        []*FeatureSet     `json:"features,omitempty"`
	Ratings         []*Rating         `json:"ratings,omitempty"`
	Recommendations []*Recommendation `json:"recommendations,omitempty"`
	Comparisons     []*ComparisonPair `json:"comparisons,omitempty"`
}

// RankedProduct is one entry of an ordered list.
type RankedProduct struct {
	Rank    int      `json:"rank"`
	Product string   `json:"product"`
	Reason  string   `json:"reason,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

// Winner is the overall pick of a ranking or comparison.
type Winner struct {
	Product string `json:"product"`
	Reason  string `json:"reason,omitempty"`
}

// PriceEntry is one extracted price.
type PriceEntry struct {
	Product  string `json:"product"`
	Price    string `json:"price"`
	Currency string `json:"currency,omitempty"`
}

// FeatureSet lists bullet features for one product.
type FeatureSet struct {
	Product  string   `json:"product"`
	Features []string `json:"features"`
}

// Rating is one extracted score.
type Rating struct {
	Product   string `json:"product"`
	Rating    string `json:"rating"`
	MaxRating string `json:"max_rating,omitempty"`
}

// Recommendation is one usage-specific pick.
type Recommendation struct {
	Context string `json:"context"`
	Product string `json:"product"`
	Reason  string `json:"reason,omitempty"`
}

// ComparisonPair is one "X vs Y" pairing.
type ComparisonPair struct {
	Products   [2]string `json:"products"`
	Aspect     string    `json:"aspect,omitempty"`
	Conclusion string    `json:"conclusion,omitempty"`
}

// AnalyzeDocumentRequest asks for a stored document to be re-analyzed.
type AnalyzeDocumentRequest struct {
	SiteID     string `json:"site_id"`
	DocumentID string `json:"document_id"`
}

// AnalyzeDocumentResponse reports the refreshed analysis.
type AnalyzeDocumentResponse struct {
	DocumentID      string   `json:"document_id"`
	ContentType     string   `json:"content_type"`
	IntentKeywords  []string `json:"intent_keywords,omitempty"`
	PrimaryProducts []string `json:"primary_products,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
	AnalyzedAt      string   `json:"analyzed_at"`
}

// QueryContext handles Connect context queries.
func (s *ContextService) QueryContext(ctx context.Context, req *connect.Request[ContextQueryRequest]) (*connect.Response[ContextQueryResponse], error) {
	msg := req.Msg

	if msg.SiteID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("site_id is required"))
	}
	siteID, err := uuid.Parse(msg.SiteID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid site_id format"))
	}

	query := toQueryAnalysis(msg)

	start := time.Now()
	items, err := s.engine.SelectContext(ctx, siteID, query)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		s.logger.Error().Err(err).Str("site_id", msg.SiteID).Msg("Context query failed")
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	block, err := s.engine.BuildOptimizedContext(ctx, siteID, query)
	if err != nil {
		s.logger.Error().Err(err).Str("site_id", msg.SiteID).Msg("Context assembly failed")
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &ContextQueryResponse{
		ContextBlock: block,
		ItemCount:    len(items),
		LatencyMs:    time.Since(start).Milliseconds(),
	}
	if msg.IncludeItems {
		resp.Items = toRPCItems(items)
	}

	return connect.NewResponse(resp), nil
}

// AnalyzeDocument handles Connect re-analysis requests.
func (s *ContextService) AnalyzeDocument(ctx context.Context, req *connect.Request[AnalyzeDocumentRequest]) (*connect.Response[AnalyzeDocumentResponse], error) {
	msg := req.Msg

	if msg.SiteID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("site_id is required"))
	}
	siteID, err := uuid.Parse(msg.SiteID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid site_id format"))
	}
	docID, err := uuid.Parse(msg.DocumentID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid document_id format"))
	}

	doc, err := s.engine.AnalyzeDocument(ctx, siteID, docID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		s.logger.Error().Err(err).Str("site_id", msg.SiteID).Str("document_id", msg.DocumentID).Msg("Document analysis failed")
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &AnalyzeDocumentResponse{
		DocumentID:      doc.ID.String(),
		ContentType:     string(doc.ContentType),
		IntentKeywords:  doc.IntentKeywords,
		PrimaryProducts: doc.PrimaryProducts,
		ConfidenceScore: doc.ConfidenceScore,
	}
	if doc.AnalyzedAt != nil {
		resp.AnalyzedAt = doc.AnalyzedAt.Format(time.RFC3339)
	}

	return connect.NewResponse(resp), nil
}

func toQueryAnalysis(msg *ContextQueryRequest) relevance.QueryAnalysis {
	query := relevance.QueryAnalysis{
		Intent:                     relevance.Intent(msg.Intent),
		Keywords:                   msg.Keywords,
		Products:                   msg.Products,
		IsComparative:              msg.IsComparative,
		IsLookingForRecommendation: msg.IsLookingForRecommendation,
	}
	if msg.Intent == "" {
		query.Intent = relevance.IntentGeneral
	}
	if len(msg.ContextBoosts) > 0 {
		query.ContextBoosts = make(map[analysis.ContentType]float64, len(msg.ContextBoosts))
		for ct, boost := range msg.ContextBoosts {
			query.ContextBoosts[analysis.ContentType(ct)] = boost
		}
	}
	return query
}

func toRPCItems(items []relevance.ContextItem) []*ContextItem {
	out := make([]*ContextItem, 0, len(items))
	for _, item := range items {
		rpcItem := &ContextItem{
			Title:       item.Title,
			Content:     item.Content,
			Relevance:   item.Relevance,
			ContentType: string(item.ContentType),
		}
		if item.StructuredData != nil {
			rpcItem.StructuredData = toRPCStructuredData(item.StructuredData)
		}
		out = append(out, rpcItem)
	}
	return out
}

func toRPCStructuredData(sd *analysis.StructuredData) *StructuredData {
	out := &StructuredData{}
	for _, r := range sd.Rankings {
		out.Rankings = append(out.Rankings, &RankedProduct{
			Rank:    r.Rank,
			Product: r.Product,
			Reason:  r.Reason,
			Score:   r.Score,
		})
	}
	if sd.Winner != nil {
		out.Winner = &Winner{
			Product: sd.Winner.Product,
			Reason:  sd.Winner.Reason,
		}
	}
	for _, p := range sd.Pricing {
		out.Pricing = append(out.Pricing, &PriceEntry{
			Product:  p.Product,
			Price:    p.Price,
			Currency: p.Currency,
		})
	}
	for _, f := range sd.Features {
		out.Features = append(out.Features, &FeatureSet{
			Product:  f.Product,
			Features: f.Features,
		})
	}
	for _, r := range sd.Ratings {
		out.Ratings = append(out.Ratings, &Rating{
			Product:   r.Product,
			Rating:    r.Rating,
			MaxRating: r.MaxRating,
		})
	}
	for _, rec := range sd.Recommendations {
		out.Recommendations = append(out.Recommendations, &Recommendation{
			Context: rec.Context,
			Product: rec.Product,
			Reason:  rec.Reason,
		})
	}
	for _, c := range sd.Comparisons {
		out.Comparisons = append(out.Comparisons, &ComparisonPair{
			Products:   c.Products,
			Aspect:     c.Aspect,
			Conclusion: c.Conclusion,
		})
	}
	return out
}

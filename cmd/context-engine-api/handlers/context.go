package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

// ContextHandler handles context selection queries.
type ContextHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewContextHandler creates a new context handler.
func NewContextHandler(logger *observability.Logger, eng *engine.Engine) *ContextHandler {
	return &ContextHandler{
		logger: logger,
		engine: eng,
	}
}

// ContextQueryRequest carries the query analysis computed by the chat
// backend for the current turn.
type ContextQueryRequest struct {
	Intent                     string             `json:"intent,omitempty"`
	Keywords                   []string           `json:"keywords,omitempty"`
	Products                   []string           `json:"products,omitempty"`
	IsComparative              bool               `json:"is_comparative,omitempty"`
	IsLookingForRecommendation bool               `json:"is_looking_for_recommendation,omitempty"`
	ContextBoosts              map[string]float64 `json:"context_boosts,omitempty"`
	IncludeItems               bool               `json:"include_items,omitempty"`
}

// ContextQueryResponse is the assembled context block plus the selected
// items when requested.
type ContextQueryResponse struct {
	ContextBlock string                  `json:"context_block"`
	Items        []relevance.ContextItem `json:"items,omitempty"`
	ItemCount    int                     `json:"item_count"`
	LatencyMs    int64                   `json:"latency_ms"`
}

// Query handles POST /sites/{siteId}/context/query.
func (h *ContextHandler) Query(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	var req ContextQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	query := relevance.QueryAnalysis{
		Intent:                     relevance.Intent(req.Intent),
		Keywords:                   req.Keywords,
		Products:                   req.Products,
		IsComparative:              req.IsComparative,
		IsLookingForRecommendation: req.IsLookingForRecommendation,
	}
	if req.Intent == "" {
		query.Intent = relevance.IntentGeneral
	}
	if len(req.ContextBoosts) > 0 {
		query.ContextBoosts = make(map[analysis.ContentType]float64, len(req.ContextBoosts))
		for ct, boost := range req.ContextBoosts {
			query.ContextBoosts[analysis.ContentType(ct)] = boost
		}
	}

	start := time.Now()
	items, err := h.engine.SelectContext(r.Context(), siteID, query)
	if err != nil {
		h.logger.Error().Err(err).Str("site_id", siteID.String()).Msg("Context query failed")
		writeStorageError(w, err)
		return
	}

	block, err := h.engine.BuildOptimizedContext(r.Context(), siteID, query)
	if err != nil {
		h.logger.Error().Err(err).Str("site_id", siteID.String()).Msg("Context assembly failed")
		writeStorageError(w, err)
		return
	}

	resp := ContextQueryResponse{
		ContextBlock: block,
		ItemCount:    len(items),
		LatencyMs:    time.Since(start).Milliseconds(),
	}
	if req.IncludeItems {
		resp.Items = items
	}

	writeJSON(w, http.StatusOK, resp)
}

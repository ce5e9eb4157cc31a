package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/monitoring"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

// DocumentHandler handles training material CRUD and re-analysis.
type DocumentHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(logger *observability.Logger, eng *engine.Engine) *DocumentHandler {
	return &DocumentHandler{
		logger: logger,
		engine: eng,
	}
}

// DocumentRequest is the body of document create/update calls.
type DocumentRequest struct {
	Title      string          `json:"title"`
	RawContent string          `json:"raw_content"`
	Summary    string          `json:"summary,omitempty"`
	KeyPoints  []string        `json:"key_points,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// Create handles POST /sites/{siteId}/documents. The document is analyzed
// before it is stored.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Title == "" || req.RawContent == "" {
		writeError(w, http.StatusBadRequest, "title and raw_content are required", "")
		return
	}

	doc := &storage.Document{
		SiteID:     siteID,
		Title:      req.Title,
		RawContent: req.RawContent,
		Summary:    req.Summary,
		KeyPoints:  req.KeyPoints,
		Metadata:   req.Metadata,
	}
	if err := h.engine.CreateDocument(r.Context(), doc); err != nil {
		h.logger.Error().Err(err).Str("site_id", siteID.String()).Msg("Document creation failed")
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /sites/{siteId}/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	docs, err := h.engine.Repositories().Documents.ListBySite(r.Context(), siteID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// Get handles GET /sites/{siteId}/documents/{documentId}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	siteID, docID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	doc, err := h.engine.Repositories().Documents.GetByID(r.Context(), siteID, docID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Update handles PUT /sites/{siteId}/documents/{documentId}. Content changes
// trigger re-analysis.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	siteID, docID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	doc := &storage.Document{
		ID:         docID,
		SiteID:     siteID,
		Title:      req.Title,
		RawContent: req.RawContent,
		Summary:    req.Summary,
		KeyPoints:  req.KeyPoints,
		Metadata:   req.Metadata,
	}
	if err := h.engine.UpdateDocument(r.Context(), doc); err != nil {
		writeStorageError(w, err)
		return
	}

	refreshed, err := h.engine.Repositories().Documents.GetByID(r.Context(), siteID, docID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshed)
}

// Delete handles DELETE /sites/{siteId}/documents/{documentId}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	siteID, docID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if err := h.engine.DeleteDocument(r.Context(), siteID, docID); err != nil {
		writeStorageError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reanalyze handles POST /sites/{siteId}/documents/{documentId}/reanalyze.
func (h *DocumentHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	siteID, docID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	doc, err := h.engine.AnalyzeDocument(r.Context(), siteID, docID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Reindex handles POST /sites/{siteId}/reindex, re-analyzing every document
// of the site.
func (h *DocumentHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	count, err := h.engine.ReanalyzeSite(r.Context(), siteID, nil)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reanalyzed": count})
}

// Stale handles GET /sites/{siteId}/documents/stale, listing documents whose
// analysis lags behind their content.
func (h *DocumentHandler) Stale(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	var cfg monitoring.StalenessConfig
	if raw := r.URL.Query().Get("max_age"); raw != "" {
		maxAge, err := time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_age duration", err.Error())
			return
		}
		cfg.MaxAge = maxAge
	}

	docs, err := h.engine.StaleDocuments(r.Context(), siteID, cfg)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// Audit handles GET /sites/{siteId}/audit, returning the retained audit
// trail for the site.
func (h *DocumentHandler) Audit(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	events := h.engine.AuditTrail(siteID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (h *DocumentHandler) pathIDs(w http.ResponseWriter, r *http.Request) (siteID, docID uuid.UUID, ok bool) {
	siteID, ok = parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}
	docID, ok = parseUUIDParam(w, chi.URLParam(r, "documentId"), "documentId")
	return
}

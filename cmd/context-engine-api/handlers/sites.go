package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/storage"
)

// SiteHandler handles site CRUD requests.
type SiteHandler struct {
	logger *observability.Logger
	sites  *storage.SiteRepository
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(logger *observability.Logger, sites *storage.SiteRepository) *SiteHandler {
	return &SiteHandler{
		logger: logger,
		sites:  sites,
	}
}

// CreateSiteRequest is the body of POST /sites.
type CreateSiteRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Create handles POST /sites.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Name == "" || req.Domain == "" {
		writeError(w, http.StatusBadRequest, "name and domain are required", "")
		return
	}

	site := &storage.Site{Name: req.Name, Domain: req.Domain}
	if err := h.sites.Create(r.Context(), site); err != nil {
		h.logger.Error().Err(err).Str("domain", req.Domain).Msg("Site creation failed")
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, site)
}

// List handles GET /sites.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.List(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sites": sites})
}

// Get handles GET /sites/{siteId}.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	siteID, ok := parseUUIDParam(w, chi.URLParam(r, "siteId"), "siteId")
	if !ok {
		return
	}

	site, err := h.sites.GetByID(r.Context(), siteID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

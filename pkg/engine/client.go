package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/monitoring"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
)

// Client is the HTTP SDK for a remote context engine API server. It covers
// the same operations as the in-process Engine.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new context engine API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8085"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// QueryRequest carries a pre-analyzed query to the context query endpoint.
type QueryRequest struct {
	Intent                     string             `json:"intent,omitempty"`
	Keywords                   []string           `json:"keywords,omitempty"`
	Products                   []string           `json:"products,omitempty"`
	IsComparative              bool               `json:"is_comparative,omitempty"`
	IsLookingForRecommendation bool               `json:"is_looking_for_recommendation,omitempty"`
	ContextBoosts              map[string]float64 `json:"context_boosts,omitempty"`
	IncludeItems               bool               `json:"include_items,omitempty"`
}

// QueryResponse is the assembled context block plus the selected items when
// requested.
type QueryResponse struct {
	ContextBlock string                  `json:"context_block"`
	Items        []relevance.ContextItem `json:"items,omitempty"`
	ItemCount    int                     `json:"item_count"`
	LatencyMs    int64                   `json:"latency_ms"`
}

// DocumentRequest is the body of document create and update calls.
type DocumentRequest struct {
	Title      string          `json:"title"`
	RawContent string          `json:"raw_content"`
	Summary    string          `json:"summary,omitempty"`
	KeyPoints  []string        `json:"key_points,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CreateSite registers a new site.
func (c *Client) CreateSite(ctx context.Context, name, domain string) (*storage.Site, error) {
	var site storage.Site
	body := map[string]string{"name": name, "domain": domain}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sites", body, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// ListSites returns all registered sites.
func (c *Client) ListSites(ctx context.Context) ([]*storage.Site, error) {
	var resp struct {
		Sites []*storage.Site `json:"sites"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sites, nil
}

// CreateDocument ingests a document; the server analyzes it before storing.
func (c *Client) CreateDocument(ctx context.Context, siteID uuid.UUID, req DocumentRequest) (*storage.Document, error) {
	var doc storage.Document
	path := fmt.Sprintf("/api/v1/sites/%s/documents", siteID)
	if err := c.do(ctx, http.MethodPost, path, req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns a site's documents.
func (c *Client) ListDocuments(ctx context.Context, siteID uuid.UUID) ([]*storage.Document, error) {
	var resp struct {
		Documents []*storage.Document `json:"documents"`
	}
	path := fmt.Sprintf("/api/v1/sites/%s/documents", siteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, siteID, docID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/sites/%s/documents/%s", siteID, docID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ReanalyzeDocument recomputes the analysis of a stored document.
func (c *Client) ReanalyzeDocument(ctx context.Context, siteID, docID uuid.UUID) (*storage.Document, error) {
	var doc storage.Document
	path := fmt.Sprintf("/api/v1/sites/%s/documents/%s/reanalyze", siteID, docID)
	if err := c.do(ctx, http.MethodPost, path, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Reindex re-analyzes every document of a site and returns the count.
func (c *Client) Reindex(ctx context.Context, siteID uuid.UUID) (int, error) {
	var resp struct {
		Reanalyzed int `json:"reanalyzed"`
	}
	path := fmt.Sprintf("/api/v1/sites/%s/reindex", siteID)
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Reanalyzed, nil
}

// StaleDocuments lists documents whose analysis lags behind their content.
func (c *Client) StaleDocuments(ctx context.Context, siteID uuid.UUID) ([]*storage.Document, error) {
	var resp struct {
		Documents []*storage.Document `json:"documents"`
	}
	path := fmt.Sprintf("/api/v1/sites/%s/documents/stale", siteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// AuditTrail returns the server's retained audit events for a site.
func (c *Client) AuditTrail(ctx context.Context, siteID uuid.UUID) ([]monitoring.AuditEvent, error) {
	var resp struct {
		Events []monitoring.AuditEvent `json:"events"`
	}
	path := fmt.Sprintf("/api/v1/sites/%s/audit", siteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Query executes a context query against a site.
func (c *Client) Query(ctx context.Context, siteID uuid.UUID, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	path := fmt.Sprintf("/api/v1/sites/%s/context/query", siteID)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks the service health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

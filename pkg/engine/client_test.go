package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientQuery(t *testing.T) {
	siteID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sites/"+siteID.String()+"/context/query", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "best_choice", req.Intent)
		assert.Equal(t, []string{"wireless", "headphones"}, req.Keywords)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(QueryResponse{
			ContextBlock: "Best Wireless Headphones",
			ItemCount:    1,
			LatencyMs:    3,
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), siteID, QueryRequest{
		Intent:   "best_choice",
		Keywords: []string{"wireless", "headphones"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Best Wireless Headphones", resp.ContextBlock)
	assert.Equal(t, 1, resp.ItemCount)
}

func TestClientCreateSiteAndReindex(t *testing.T) {
	siteID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sites":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Audio Advisor", body["name"])
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     siteID,
				"name":   body["name"],
				"domain": body["domain"],
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sites/"+siteID.String()+"/reindex":
			json.NewEncoder(w).Encode(map[string]int{"reanalyzed": 4})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	site, err := client.CreateSite(context.Background(), "Audio Advisor", "audio-advisor.test")
	require.NoError(t, err)
	assert.Equal(t, siteID, site.ID)

	count, err := client.Reindex(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ListDocuments(context.Background(), uuid.New())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not found", apiErr.Message)
}

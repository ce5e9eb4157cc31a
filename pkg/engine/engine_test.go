package engine

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/monitoring"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
)

func testEngine(t *testing.T) (*Engine, *storage.Repositories) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.Migrate(context.Background(), db))

	repos := storage.NewRepositories(db)
	logger := observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})

	eng := New(repos, cache.NewMemoryClient(100), DefaultOptions(), logger)
	return eng, repos
}

func createTestSite(t *testing.T, repos *storage.Repositories) *storage.Site {
	t.Helper()

	site := &storage.Site{Name: "Audio Advisor", Domain: "audio-advisor.test"}
	require.NoError(t, repos.Sites.Create(context.Background(), site))
	return site
}

func TestEngineCreateDocumentAnalyzes(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	doc := &storage.Document{
		SiteID: site.ID,
		Title:  "Best Wireless Headphones Ranked",
		RawContent: "1. Sony WH-1000XM5 for superb noise cancelling\n" +
			"2. Bose QuietComfort Ultra\n" +
			"3. Apple AirPods Max\n" +
			"Our top pick: Sony WH-1000XM5.",
	}
	require.NoError(t, eng.CreateDocument(ctx, doc))

	stored, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ContentTypeRanking, stored.ContentType)
	assert.NotNil(t, stored.AnalyzedAt)
	assert.Greater(t, stored.ConfidenceScore, 0.0)
	assert.NotEmpty(t, stored.IntentKeywords)
}

func TestEngineSelectContext(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	ranked := &storage.Document{
		SiteID: site.ID,
		Title:  "Best Wireless Headphones Ranked",
		RawContent: "1. Sony WH-1000XM5 for superb noise cancelling\n" +
			"2. Bose QuietComfort Ultra\n" +
			"Our top pick: Sony WH-1000XM5.",
	}
	unrelated := &storage.Document{
		SiteID:     site.ID,
		Title:      "Office Chair Assembly Guide",
		RawContent: "Step by step assembly instructions for the chair.",
	}
	require.NoError(t, eng.CreateDocument(ctx, ranked))
	require.NoError(t, eng.CreateDocument(ctx, unrelated))

	items, err := eng.SelectContext(ctx, site.ID, relevance.QueryAnalysis{
		Intent:   relevance.IntentBestChoice,
		Keywords: []string{"wireless", "headphones"},
	})
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Best Wireless Headphones Ranked", items[0].Title)
	assert.Greater(t, items[0].Relevance, 0.1)
	require.NotNil(t, items[0].StructuredData)
	assert.NotEmpty(t, items[0].StructuredData.Rankings)
}

func TestEngineBuildOptimizedContextCaches(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	doc := &storage.Document{
		SiteID: site.ID,
		Title:  "Best Wireless Headphones Ranked",
		RawContent: "1. Sony WH-1000XM5 for superb noise cancelling\n" +
			"2. Bose QuietComfort Ultra\n" +
			"Our top pick: Sony WH-1000XM5.",
	}
	require.NoError(t, eng.CreateDocument(ctx, doc))

	query := relevance.QueryAnalysis{
		Intent:   relevance.IntentBestChoice,
		Keywords: []string{"wireless", "headphones"},
	}

	first, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Contains(t, first, "Best Wireless Headphones Ranked")

	// Deleting through the repository bypasses invalidation, so the cached
	// block must still be served.
	require.NoError(t, repos.Documents.Delete(ctx, site.ID, doc.ID))

	second, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	eng.InvalidateSite(ctx, site.ID)

	third, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestEngineReanalyzeSite(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	for _, title := range []string{"Guide One", "Guide Two", "Guide Three"} {
		require.NoError(t, repos.Documents.Create(ctx, &storage.Document{
			SiteID:     site.ID,
			Title:      title,
			RawContent: "Plain descriptive content about the product line.",
		}))
	}

	var calls int
	count, err := eng.ReanalyzeSite(ctx, site.ID, func(done, total int) {
		calls++
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, calls)

	docs, err := repos.Documents.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	for _, d := range docs {
		assert.NotNil(t, d.AnalyzedAt)
		assert.Equal(t, analysis.ContentTypeGeneral, d.ContentType)
	}
}

func TestEngineAnalyzeDocumentMissing(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)

	_, err := eng.AnalyzeDocument(context.Background(), site.ID, site.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngineAuditTrail(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	doc := &storage.Document{
		SiteID:     site.ID,
		Title:      "Plain Page",
		RawContent: "Plain descriptive content.",
	}
	require.NoError(t, eng.CreateDocument(ctx, doc))

	_, err := eng.SelectContext(ctx, site.ID, relevance.QueryAnalysis{
		Intent:   relevance.IntentGeneral,
		Keywords: []string{"plain"},
	})
	require.NoError(t, err)

	require.NoError(t, eng.DeleteDocument(ctx, site.ID, doc.ID))

	events := eng.AuditTrail(site.ID)
	require.Len(t, events, 3)
	assert.Equal(t, monitoring.ActionCreated, events[0].Action)
	assert.Equal(t, monitoring.ActionQueried, events[1].Action)
	assert.Equal(t, monitoring.ActionDeleted, events[2].Action)
	assert.Equal(t, doc.ID, events[0].ResourceID)
}

func TestEngineStaleDocuments(t *testing.T) {
	eng, repos := testEngine(t)
	site := createTestSite(t, repos)
	ctx := context.Background()

	analyzed := &storage.Document{
		SiteID:     site.ID,
		Title:      "Analyzed Page",
		RawContent: "Analyzed content.",
	}
	require.NoError(t, eng.CreateDocument(ctx, analyzed))

	raw := &storage.Document{
		SiteID:     site.ID,
		Title:      "Raw Page",
		RawContent: "Never analyzed content.",
	}
	require.NoError(t, repos.Documents.Create(ctx, raw))

	stale, err := eng.StaleDocuments(ctx, site.ID, monitoring.StalenessConfig{})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, raw.ID, stale[0].ID)

	_, err = eng.AnalyzeDocument(ctx, site.ID, raw.ID)
	require.NoError(t, err)

	stale, err = eng.StaleDocuments(ctx, site.ID, monitoring.StalenessConfig{})
	require.NoError(t, err)
	assert.Empty(t, stale)
}

package integration

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

func TestEngineRoundTripOnPostgresAndRedis(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupTestContainers(t)
	defer setup.Cleanup()

	db := setup.OpenMigratedDB(t)
	defer db.Close()

	redisCache, err := cache.NewRedisClient(cache.RedisConfig{Addr: setup.RedisAddr})
	require.NoError(t, err)
	defer redisCache.Close()

	logger := observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})
	repos := storage.NewRepositories(db)
	eng := engine.New(repos, redisCache, engine.DefaultOptions(), logger)

	ctx := context.Background()

	site := &storage.Site{Name: "Audio Advisor", Domain: "audio-advisor.test"}
	require.NoError(t, repos.Sites.Create(ctx, site))

	other := &storage.Site{Name: "Other", Domain: "other.test"}
	require.NoError(t, repos.Sites.Create(ctx, other))

	ranked := &storage.Document{
		SiteID: site.ID,
		Title:  "Best Wireless Headphones Ranked",
		RawContent: "1. Sony WH-1000XM5 for superb noise cancelling\n" +
			"2. Bose QuietComfort Ultra\n" +
			"Our top pick: Sony WH-1000XM5.",
	}
	require.NoError(t, eng.CreateDocument(ctx, ranked))

	leaked := &storage.Document{
		SiteID:     other.ID,
		Title:      "Best Wireless Headphones From Another Site",
		RawContent: "1. Some Other Model that must never cross sites",
	}
	require.NoError(t, eng.CreateDocument(ctx, leaked))

	stored, err := repos.Documents.GetByID(ctx, site.ID, ranked.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ContentTypeRanking, stored.ContentType)
	require.NotNil(t, stored.AnalyzedAt)
	assert.NotEmpty(t, stored.StructuredData.Rankings)

	query := relevance.QueryAnalysis{
		Intent:   relevance.IntentBestChoice,
		Keywords: []string{"wireless", "headphones"},
	}

	items, err := eng.SelectContext(ctx, site.ID, query)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Best Wireless Headphones Ranked", items[0].Title)

	// Context block round trip through Redis.
	first, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Contains(t, first, "Best Wireless Headphones Ranked")

	require.NoError(t, repos.Documents.Delete(ctx, site.ID, ranked.ID))

	cached, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	eng.InvalidateSite(ctx, site.ID)

	rebuilt, err := eng.BuildOptimizedContext(ctx, site.ID, query)
	require.NoError(t, err)
	assert.Empty(t, rebuilt)

	// The other site's cache and documents are untouched.
	otherItems, err := eng.SelectContext(ctx, other.ID, query)
	require.NoError(t, err)
	require.Len(t, otherItems, 1)
	assert.Equal(t, "Best Wireless Headphones From Another Site", otherItems[0].Title)
}

func TestDocumentAnalysisPersistenceOnPostgres(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupTestContainers(t)
	defer setup.Cleanup()

	db := setup.OpenMigratedDB(t)
	defer db.Close()

	logger := observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})
	repos := storage.NewRepositories(db)
	eng := engine.New(repos, cache.NewMemoryClient(100), engine.DefaultOptions(), logger)

	ctx := context.Background()

	site := &storage.Site{Name: "Gadget Hub", Domain: "gadget-hub.test"}
	require.NoError(t, repos.Sites.Create(ctx, site))

	doc := &storage.Document{
		SiteID: site.ID,
		Title:  "Sennheiser Momentum 4 Review",
		RawContent: "After three months the Sennheiser Momentum 4 earns a rating of 4.5/5.\n" +
			"The verdict: superb battery life. Pros: 60-hour battery.",
	}
	require.NoError(t, repos.Documents.Create(ctx, doc))

	// Content edits trigger re-analysis and the result survives a reload.
	refreshed, err := eng.AnalyzeDocument(ctx, site.ID, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.AnalyzedAt)

	reloaded, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, refreshed.ContentType, reloaded.ContentType)
	assert.InDelta(t, refreshed.ConfidenceScore, reloaded.ConfidenceScore, 1e-9)
	assert.Equal(t, refreshed.IntentKeywords, reloaded.IntentKeywords)

	count, err := eng.ReanalyzeSite(ctx, site.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

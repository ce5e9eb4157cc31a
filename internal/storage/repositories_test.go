package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline-ai/context-engine/internal/analysis"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func createSite(t *testing.T, repos *Repositories) *Site {
	t.Helper()

	site := &Site{Name: "Acme Widgets", Domain: "acme.example"}
	require.NoError(t, repos.Sites.Create(context.Background(), site))
	return site
}

func TestSiteRepository(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()

	site := createSite(t, repos)
	require.NotEqual(t, uuid.Nil, site.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := repos.Sites.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Widgets", got.Name)
		assert.Equal(t, "acme.example", got.Domain)
	})

	t.Run("get by domain", func(t *testing.T) {
		got, err := repos.Sites.GetByDomain(ctx, "acme.example")
		require.NoError(t, err)
		assert.Equal(t, site.ID, got.ID)
	})

	t.Run("missing site", func(t *testing.T) {
		_, err := repos.Sites.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		sites, err := repos.Sites.List(ctx)
		require.NoError(t, err)
		assert.Len(t, sites, 1)
	})
}

func TestDocumentRepository_RoundTrip(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()
	site := createSite(t, repos)

	doc := &Document{
		SiteID:     site.ID,
		Title:      "Top 5 Widgets",
		RawContent: "1. Premium Widget - great value",
		Summary:    "A ranked widget list.",
		KeyPoints:  []string{"premium wins", "budget option exists"},
	}
	doc.ApplyAnalysis(analysis.ContentAnalysisResult{
		ContentType: analysis.ContentTypeRanking,
		StructuredData: analysis.StructuredData{
			Rankings: []analysis.RankingEntry{{Rank: 1, Product: "Premium Widget"}},
			Winner:   &analysis.Winner{Product: "Premium Widget", Reason: "best value"},
		},
		IntentKeywords:  []string{"best", "widget"},
		PrimaryProducts: []string{"Premium Widget"},
		ConfidenceScore: 0.74,
	}, time.Now())

	require.NoError(t, repos.Documents.Create(ctx, doc))

	got, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, "Top 5 Widgets", got.Title)
	assert.Equal(t, []string{"premium wins", "budget option exists"}, got.KeyPoints)
	assert.Equal(t, analysis.ContentTypeRanking, got.ContentType)
	require.Len(t, got.StructuredData.Rankings, 1)
	assert.Equal(t, "Premium Widget", got.StructuredData.Rankings[0].Product)
	require.NotNil(t, got.StructuredData.Winner)
	assert.Equal(t, "best value", got.StructuredData.Winner.Reason)
	assert.Equal(t, []string{"best", "widget"}, got.IntentKeywords)
	assert.InDelta(t, 0.74, got.ConfidenceScore, 0.0001)
	assert.NotNil(t, got.AnalyzedAt)
}

func TestDocumentRepository_UnanalyzedDocument(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()
	site := createSite(t, repos)

	doc := &Document{SiteID: site.ID, Title: "Plain Notes", RawContent: "nothing here"}
	require.NoError(t, repos.Documents.Create(ctx, doc))

	got, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	require.NoError(t, err)

	assert.Empty(t, got.ContentType)
	assert.True(t, got.StructuredData.IsEmpty())
	assert.Nil(t, got.AnalyzedAt)

	// Reassembly still yields a usable result for the scorer.
	result := got.AnalysisResult()
	assert.Equal(t, analysis.ContentTypeGeneral, result.ContentType)
}

func TestDocumentRepository_UpdateAnalysis(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()
	site := createSite(t, repos)

	doc := &Document{SiteID: site.ID, Title: "Widget Pricing", RawContent: "Premium Widget costs $49.99"}
	require.NoError(t, repos.Documents.Create(ctx, doc))

	result := analysis.ContentAnalysisResult{
		ContentType: analysis.ContentTypeProductPage,
		StructuredData: analysis.StructuredData{
			Pricing: []analysis.PriceEntry{{Product: "Premium Widget", Price: "49.99", Currency: "USD"}},
		},
		ConfidenceScore: 0.5,
	}
	require.NoError(t, repos.Documents.UpdateAnalysis(ctx, site.ID, doc.ID, result, time.Now()))

	got, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ContentTypeProductPage, got.ContentType)
	require.Len(t, got.StructuredData.Pricing, 1)
	assert.Equal(t, "USD", got.StructuredData.Pricing[0].Currency)

	t.Run("missing document", func(t *testing.T) {
		err := repos.Documents.UpdateAnalysis(ctx, site.ID, uuid.New(), result, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentRepository_ListBySiteIsScoped(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()

	siteA := createSite(t, repos)
	siteB := &Site{Name: "Other", Domain: "other.example"}
	require.NoError(t, repos.Sites.Create(ctx, siteB))

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Documents.Create(ctx, &Document{SiteID: siteA.ID, Title: "A doc"}))
	}
	require.NoError(t, repos.Documents.Create(ctx, &Document{SiteID: siteB.ID, Title: "B doc"}))

	docs, err := repos.Documents.ListBySite(ctx, siteA.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestDocumentRepository_Delete(t *testing.T) {
	repos := NewRepositories(setupDB(t))
	ctx := context.Background()
	site := createSite(t, repos)

	doc := &Document{SiteID: site.ID, Title: "Short lived"}
	require.NoError(t, repos.Documents.Create(ctx, doc))
	require.NoError(t, repos.Documents.Delete(ctx, site.ID, doc.ID))

	_, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repos.Documents.Delete(ctx, site.ID, doc.ID), ErrNotFound)
}

func TestDocumentMaterialConversion(t *testing.T) {
	doc := &Document{
		ID:        uuid.New(),
		Title:     "Top Widgets",
		Summary:   "Ranked widgets",
		KeyPoints: []string{"premium wins"},
	}
	doc.ApplyAnalysis(analysis.ContentAnalysisResult{
		ContentType:     analysis.ContentTypeRanking,
		ConfidenceScore: 0.6,
	}, time.Now())

	m := doc.Material()
	assert.Equal(t, doc.ID.String(), m.ID)
	assert.Equal(t, "Top Widgets", m.Title)
	assert.Equal(t, analysis.ContentTypeRanking, m.Analysis.ContentType)
	assert.InDelta(t, 0.6, m.Analysis.ConfidenceScore, 0.0001)
}

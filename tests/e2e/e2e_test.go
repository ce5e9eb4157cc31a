// Package e2e provides end-to-end tests for the context engine.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

// TestEndToEndHeadphoneSiteIngestionAndQuery runs the full pipeline from raw
// page content to an assembled context block.
func TestEndToEndHeadphoneSiteIngestionAndQuery(t *testing.T) {
	ctx := context.Background()
	logger := observability.NewLogger(observability.LogConfig{
		Level:       "error",
		Format:      "console",
		ServiceName: "e2e-test",
	})

	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	dbCfg := config.DatabaseConfig{Driver: "sqlite"}
	dbCfg.SQLite.Path = dbPath
	dbCfg.SQLite.MaxOpenConns = 1

	db, err := storage.Open(dbCfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	defer os.Remove(dbPath)

	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	repos := storage.NewRepositories(db)
	eng := engine.New(repos, cache.NewMemoryClient(100), engine.DefaultOptions(), logger)

	site := &storage.Site{Name: "Audio Advisor", Domain: "audio-advisor.example"}
	if err := repos.Sites.Create(ctx, site); err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}

	// Step 1: Ingest pages
	t.Log("\n=== Step 1: Ingesting Pages ===")
	ingestStart := time.Now()
	docs := corpusDocuments(site.ID)
	for _, doc := range docs {
		if err := eng.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("Failed to ingest %q: %v", doc.Title, err)
		}
	}
	t.Logf("Ingested %d documents in %v", len(docs), time.Since(ingestStart))

	byType := map[analysis.ContentType]int{}
	for _, doc := range docs {
		stored, err := repos.Documents.GetByID(ctx, site.ID, doc.ID)
		if err != nil {
			t.Fatalf("Failed to reload %q: %v", doc.Title, err)
		}
		if stored.AnalyzedAt == nil {
			t.Errorf("Document %q was not analyzed on ingest", doc.Title)
		}
		byType[stored.ContentType]++
		t.Logf("  - %s: type=%s confidence=%.2f keywords=%d",
			stored.Title, stored.ContentType, stored.ConfidenceScore, len(stored.IntentKeywords))
	}
	for _, want := range []analysis.ContentType{
		analysis.ContentTypeRanking,
		analysis.ContentTypeComparison,
		analysis.ContentTypeReview,
	} {
		if byType[want] == 0 {
			t.Errorf("Expected at least one %s document after ingest", want)
		}
	}

	// Step 2: Query for the best product
	t.Log("\n=== Step 2: Best-Choice Query ===")
	bestQuery := relevance.QueryAnalysis{
		Intent:                     relevance.IntentBestChoice,
		Keywords:                   []string{"wireless", "headphones", "noise", "cancelling"},
		IsLookingForRecommendation: true,
	}

	queryStart := time.Now()
	items, err := eng.SelectContext(ctx, site.ID, bestQuery)
	if err != nil {
		t.Fatalf("Failed to select context: %v", err)
	}
	t.Logf("Selected %d items in %v", len(items), time.Since(queryStart))
	if len(items) == 0 {
		t.Fatal("Expected at least one context item for best-choice query")
	}
	if items[0].ContentType != analysis.ContentTypeRanking {
		t.Errorf("Expected ranking content first for best-choice intent, got %s", items[0].ContentType)
	}
	for i, item := range items {
		t.Logf("  %d. %s (type=%s relevance=%.3f)", i+1, item.Title, item.ContentType, item.Relevance)
		if i > 0 && item.Relevance > items[i-1].Relevance {
			t.Errorf("Items not sorted by relevance at position %d", i)
		}
	}

	block, err := eng.BuildOptimizedContext(ctx, site.ID, bestQuery)
	if err != nil {
		t.Fatalf("Failed to build context block: %v", err)
	}
	if !strings.Contains(block, "Sony WH-1000XM5") {
		t.Errorf("Expected winner product in assembled block, got:\n%s", block)
	}

	// Step 3: Comparison query with a product filter
	t.Log("\n=== Step 3: Comparison Query ===")
	compareQuery := relevance.QueryAnalysis{
		Intent:        relevance.IntentComparison,
		Keywords:      []string{"sony", "bose"},
		Products:      []string{"Sony WH-1000XM5", "Bose QuietComfort Ultra"},
		IsComparative: true,
	}
	compareBlock, err := eng.BuildOptimizedContext(ctx, site.ID, compareQuery)
	if err != nil {
		t.Fatalf("Failed to build comparison block: %v", err)
	}
	if !strings.Contains(compareBlock, "Bose QuietComfort Ultra") {
		t.Errorf("Expected compared product in block, got:\n%s", compareBlock)
	}
	t.Logf("Comparison block: %d bytes", len(compareBlock))

	// Step 4: Cached rebuild
	t.Log("\n=== Step 4: Cached Rebuild ===")
	cachedStart := time.Now()
	cachedBlock, err := eng.BuildOptimizedContext(ctx, site.ID, compareQuery)
	if err != nil {
		t.Fatalf("Failed to rebuild from cache: %v", err)
	}
	if cachedBlock != compareBlock {
		t.Error("Cached block differs from freshly built block")
	}
	t.Logf("Cache hit served in %v", time.Since(cachedStart))

	// Step 5: Full reindex
	t.Log("\n=== Step 5: Reindex ===")
	count, err := eng.ReanalyzeSite(ctx, site.ID, nil)
	if err != nil {
		t.Fatalf("Failed to reindex site: %v", err)
	}
	if count != len(docs) {
		t.Errorf("Expected %d documents reanalyzed, got %d", len(docs), count)
	}
	t.Logf("Reanalyzed %d documents", count)
}

// TestEndToEndUnknownDocument verifies error paths stay typed across the
// storage boundary.
func TestEndToEndUnknownDocument(t *testing.T) {
	ctx := context.Background()
	logger := observability.NewLogger(observability.LogConfig{
		Level:       "error",
		Format:      "console",
		ServiceName: "e2e-test",
	})

	dbCfg := config.DatabaseConfig{Driver: "sqlite"}
	dbCfg.SQLite.Path = ":memory:"
	dbCfg.SQLite.MaxOpenConns = 1

	db, err := storage.Open(dbCfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	repos := storage.NewRepositories(db)
	eng := engine.New(repos, nil, engine.DefaultOptions(), logger)

	site := &storage.Site{Name: "Empty Site", Domain: "empty.example"}
	if err := repos.Sites.Create(ctx, site); err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}

	if _, err := eng.AnalyzeDocument(ctx, site.ID, uuid.New()); err == nil {
		t.Fatal("Expected error analyzing unknown document")
	} else if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not-found error, got: %v", err)
	}
}

func corpusDocuments(siteID uuid.UUID) []*storage.Document {
	return []*storage.Document{
		{
			SiteID: siteID,
			Title:  "Best Wireless Headphones of 2026",
			RawContent: "Our definitive ranking of the best wireless headphones.\n" +
				"1. Sony WH-1000XM5 with class-leading noise cancelling\n" +
				"2. Bose QuietComfort Ultra\n" +
				"3. Sennheiser Momentum 4\n" +
				"Our top pick: Sony WH-1000XM5.",
		},
		{
			SiteID: siteID,
			Title:  "Sony WH-1000XM5 vs Bose QuietComfort Ultra",
			RawContent: "Sony WH-1000XM5 vs Bose QuietComfort Ultra compared head to head.\n" +
				"The Sony WH-1000XM5 costs $399.99 while the Bose QuietComfort Ultra costs $429.00.\n" +
				"For noise cancelling, the Bose QuietComfort Ultra edges ahead.",
		},
		{
			SiteID: siteID,
			Title:  "Sennheiser Momentum 4 Review",
			RawContent: "After three months of daily use, the Sennheiser Momentum 4 earns a rating of 4.5/5.\n" +
				"The verdict: superb battery life and warm sound.\n" +
				"Pros: 60-hour battery, comfortable fit.",
		},
		{
			SiteID: siteID,
			Title:  "How to Pair Wireless Headphones",
			RawContent: "Step 1: Open the Bluetooth menu on your phone.\n" +
				"Step 2: Hold the power button until the light flashes.\n" +
				"Step 3: Select the headphones from the device list.",
		},
	}
}

// Package main provides a self-contained demo of the context engine. It
// seeds sample training materials into a temporary SQLite database, analyzes
// them, and runs example context queries end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"

	_ "github.com/mattn/go-sqlite3"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

type sampleDocument struct {
	Title   string
	Summary string
	Content string
}

type sampleQuery struct {
	Label string
	Query relevance.QueryAnalysis
}

func main() {
	printBanner()

	ctx := context.Background()
	logger := observability.NewLogger(observability.LogConfig{
		Level:       "warn",
		Format:      "console",
		ServiceName: "context-demo",
	})

	dbPath := filepath.Join(os.TempDir(), "context_demo.db")
	os.Remove(dbPath)
	fmt.Printf("%sInitializing database at: %s%s\n", colorCyan, dbPath, colorReset)

	dbCfg := config.DatabaseConfig{Driver: "sqlite"}
	dbCfg.SQLite.Path = dbPath
	dbCfg.SQLite.MaxOpenConns = 1

	db, err := storage.Open(dbCfg)
	if err != nil {
		fail("open database", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		fail("run migrations", err)
	}

	repos := storage.NewRepositories(db)
	eng := engine.New(repos, cache.NewMemoryClient(1000), engine.DefaultOptions(), logger)

	site := &storage.Site{Name: "Gadget Review Hub", Domain: "gadget-review-hub.demo"}
	if err := repos.Sites.Create(ctx, site); err != nil {
		fail("create site", err)
	}
	fmt.Printf("%s✓ Site registered: %s%s\n\n", colorGreen, site.Domain, colorReset)

	docs := sampleDocuments()
	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("Analyzing documents"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)

	for _, sample := range docs {
		doc := &storage.Document{
			SiteID:     site.ID,
			Title:      sample.Title,
			Summary:    sample.Summary,
			RawContent: sample.Content,
		}
		if err := eng.CreateDocument(ctx, doc); err != nil {
			fail("ingest document", err)
		}
		_ = bar.Add(1)
	}

	printStats(ctx, repos, site)

	for _, sample := range sampleQueries() {
		fmt.Printf("\n%s━━━ %s ━━━%s\n", colorBold, sample.Label, colorReset)

		start := time.Now()
		block, err := eng.BuildOptimizedContext(ctx, site.ID, sample.Query)
		if err != nil {
			fail("context query", err)
		}

		if block == "" {
			fmt.Printf("%s(no relevant context found)%s\n", colorYellow, colorReset)
			continue
		}
		fmt.Printf("%s(%s)%s\n\n%s\n", colorCyan, time.Since(start), colorReset, block)
	}

	fmt.Printf("\n%sDemo complete.%s\n", colorGreen, colorReset)
}

func printBanner() {
	fmt.Println(colorBold + `
   ____            _            _     _____             _
  / ___|___  _ __ | |_ _____  _| |_  | ____|_ __   __ _(_)_ __   ___
 | |   / _ \| '_ \| __/ _ \ \/ / __| |  _| | '_ \ / _` + "`" + ` | | '_ \ / _ \
 | |__| (_) | | | | ||  __/>  <| |_  | |___| | | | (_| | | | | |  __/
  \____\___/|_| |_|\__\___/_/\_\\__| |_____|_| |_|\__, |_|_| |_|\___|
                                                  |___/
` + colorReset)
}

func printStats(ctx context.Context, repos *storage.Repositories, site *storage.Site) {
	docs, err := repos.Documents.ListBySite(ctx, site.ID)
	if err != nil {
		fail("list documents", err)
	}

	byType := map[string]int{}
	for _, d := range docs {
		byType[string(d.ContentType)]++
	}

	fmt.Printf("\n%sIngested %d documents:%s\n", colorBold, len(docs), colorReset)
	for ct, n := range byType {
		fmt.Printf("  %s: %d\n", ct, n)
	}
}

func fail(what string, err error) {
	fmt.Printf("%sError: %s: %v%s\n", colorRed, what, err, colorReset)
	os.Exit(1)
}

func sampleDocuments() []sampleDocument {
	return []sampleDocument{
		{
			Title:   "Best Wireless Headphones of 2026",
			Summary: "Our ranked list of the top wireless headphones this year.",
			Content: `We tested dozens of models to rank the best wireless headphones.

1. Sony WH-1000XM5 for its superb noise cancelling and comfort
2. Bose QuietComfort Ultra with class-leading transparency mode
3. Apple AirPods Max for seamless iPhone pairing
4. Sennheiser Momentum 4 with outstanding battery life

Our top pick: Sony WH-1000XM5. Recommended for travelers: Bose QuietComfort Ultra.`,
		},
		{
			Title:   "Sony WH-1000XM5 vs Bose QuietComfort Ultra",
			Summary: "Head-to-head comparison of the two flagship headphones.",
			Content: `Sony WH-1000XM5 vs Bose QuietComfort Ultra is the matchup most buyers ask about.
The Sony model costs $399.99 while the Bose flagship costs $429.00.
Compared to the Bose, the Sony lasts longer on a charge. The Bose wins on comfort.`,
		},
		{
			Title:   "Sennheiser Momentum 4 Review",
			Summary: "Long-term review of the Momentum 4 after three months.",
			Content: `After three months of daily use, the Sennheiser Momentum 4 earns a rating of 4.5/5.
The verdict: superb battery life and a balanced sound signature.
Pros: 60-hour battery, detailed mids. Cons: bulky case.`,
		},
		{
			Title:   "How to Pair Your Headphones with Two Devices",
			Summary: "Step-by-step multipoint pairing guide.",
			Content: `This tutorial walks you through multipoint pairing step by step.
Step 1: Enable pairing mode. Step 2: Connect the first device.
Step 3: Repeat for the second device. How to switch between them is automatic.`,
		},
		{
			Title:   "Repair and Warranty Service",
			Summary: "What our headphone repair service covers.",
			Content: `Our repair service covers driver replacement, hinge repair and battery service.
Contact us for a quote. Pricing starts at $29 USD for diagnostics.
We offer a 12-month warranty on every repair.`,
		},
	}
}

func sampleQueries() []sampleQuery {
	return []sampleQuery{
		{
			Label: "What are the best wireless headphones?",
			Query: relevance.QueryAnalysis{
				Intent:                     relevance.IntentBestChoice,
				Keywords:                   []string{"best", "wireless", "headphones"},
				IsLookingForRecommendation: true,
			},
		},
		{
			Label: "Sony WH-1000XM5 or Bose QuietComfort Ultra?",
			Query: relevance.QueryAnalysis{
				Intent:        relevance.IntentComparison,
				Keywords:      []string{"sony", "bose", "compare"},
				Products:      []string{"Sony WH-1000XM5", "Bose QuietComfort Ultra"},
				IsComparative: true,
			},
		},
		{
			Label: "How much do they cost?",
			Query: relevance.QueryAnalysis{
				Intent:   relevance.IntentPricing,
				Keywords: []string{"price", "cost", "headphones"},
			},
		},
		{
			Label: "How do I pair with two devices?",
			Query: relevance.QueryAnalysis{
				Intent:   relevance.IntentInformation,
				Keywords: []string{"pair", "devices", "multipoint"},
			},
		},
	}
}

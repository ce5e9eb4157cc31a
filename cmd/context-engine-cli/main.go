// Package main provides the context engine CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/monitoring"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
	"github.com/brightline-ai/context-engine/pkg/engine"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "context-engine-cli",
	Short: "Context engine CLI for document analysis and context queries",
	Long: `Context engine CLI provides commands for managing chat assistant context.

Use this tool to:
- Register sites and ingest training materials
- Analyze documents and inspect extracted structured data
- Run context queries the way the chat backend would
- Reindex a site after content or scoring changes

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		level := cfg.Observability.LogLevel
		if !verbose {
			level = "warn"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			ServiceName: "context-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newSiteCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newReindexCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newSiteCmd creates the site subcommand with create/list operations.
func newSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage sites",
	}

	var name, domain string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new site",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			site := &storage.Site{Name: name, Domain: domain}
			if err := eng.Repositories().Sites.Create(ctx, site); err != nil {
				return fmt.Errorf("create site: %w", err)
			}

			if outputJSON {
				return printJSON(site)
			}
			fmt.Printf("✓ Site created\n  ID: %s\n  Domain: %s\n", site.ID, site.Domain)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "site name (required)")
	createCmd.Flags().StringVar(&domain, "domain", "", "site domain (required)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("domain")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			sites, err := eng.Repositories().Sites.List(ctx)
			if err != nil {
				return fmt.Errorf("list sites: %w", err)
			}

			if outputJSON {
				return printJSON(map[string]interface{}{"sites": sites})
			}
			for _, s := range sites {
				fmt.Printf("%s  %s  %s\n", s.ID, s.Domain, s.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

// newIngestCmd creates the ingest subcommand.
func newIngestCmd() *cobra.Command {
	var (
		site    string
		title   string
		file    string
		summary string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a training material into a site",
		Long: `Ingest stores a document for a site and analyzes it immediately, so it
is selectable by the next context query.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			siteID, err := resolveSite(ctx, eng, site)
			if err != nil {
				return err
			}

			doc := &storage.Document{
				SiteID:     siteID,
				Title:      title,
				RawContent: string(content),
				Summary:    summary,
			}
			if err := eng.CreateDocument(ctx, doc); err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}

			if outputJSON {
				return printJSON(doc)
			}

			fmt.Printf("✓ Document ingested\n")
			fmt.Printf("  ID: %s\n", doc.ID)
			fmt.Printf("  Type: %s | Confidence: %.2f\n", doc.ContentType, doc.ConfidenceScore)
			fmt.Printf("  Keywords: %s\n", strings.Join(doc.IntentKeywords, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "site ID or domain (required)")
	cmd.Flags().StringVar(&title, "title", "", "document title (required)")
	cmd.Flags().StringVar(&file, "file", "", "path to the content file (required)")
	cmd.Flags().StringVar(&summary, "summary", "", "optional summary used for context blocks")

	_ = cmd.MarkFlagRequired("site")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd() *cobra.Command {
	var (
		file     string
		title    string
		site     string
		document string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a document and print the extracted data",
		Long: `Analyze classifies content and extracts structured data, keywords and
products. With --file the analysis runs offline on a local file; with
--site and --document it re-analyzes a stored document and persists the
result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			if document != "" {
				eng, cleanup, err := openEngine()
				if err != nil {
					return err
				}
				defer cleanup()

				siteID, err := resolveSite(ctx, eng, site)
				if err != nil {
					return err
				}
				docID, err := uuid.Parse(document)
				if err != nil {
					return fmt.Errorf("invalid document ID: %w", err)
				}

				doc, err := eng.AnalyzeDocument(ctx, siteID, docID)
				if err != nil {
					return fmt.Errorf("analyze failed: %w", err)
				}
				return printAnalysis(doc.Title, doc.AnalysisResult())
			}

			if file == "" {
				return fmt.Errorf("either --file or --site and --document are required")
			}

			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			if title == "" {
				title = file
			}

			opts := engine.OptionsFromConfig(cfg)
			analyzer := analysis.NewAnalyzer(opts.Analysis, opts.Confidence, logger)
			result := analyzer.Analyze(ctx, title, string(content))
			return printAnalysis(title, result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a local content file")
	cmd.Flags().StringVar(&title, "title", "", "title for offline analysis (defaults to file name)")
	cmd.Flags().StringVar(&site, "site", "", "site ID or domain for stored documents")
	cmd.Flags().StringVar(&document, "document", "", "stored document ID to re-analyze")

	return cmd
}

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	var (
		site        string
		intent      string
		keywords    []string
		products    []string
		comparative bool
		wantsRecs   bool
		showItems   bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a context query against a site",
		Long: `Query scores the site's documents against the supplied query analysis
and prints the assembled context block, exactly as the chat backend
would receive it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			siteID, err := resolveSite(ctx, eng, site)
			if err != nil {
				return err
			}

			query := relevance.QueryAnalysis{
				Intent:                     relevance.Intent(intent),
				Keywords:                   keywords,
				Products:                   products,
				IsComparative:              comparative,
				IsLookingForRecommendation: wantsRecs,
			}
			if intent == "" {
				query.Intent = relevance.IntentGeneral
			}

			spin := NewSpinner("Selecting context...", outputJSON)
			spin.Start()
			start := time.Now()

			items, err := eng.SelectContext(ctx, siteID, query)
			if err != nil {
				spin.Stop()
				return fmt.Errorf("query failed: %w", err)
			}
			block, err := eng.BuildOptimizedContext(ctx, siteID, query)
			spin.Stop()
			if err != nil {
				return fmt.Errorf("context assembly failed: %w", err)
			}
			elapsed := time.Since(start)

			if outputJSON {
				return printJSON(map[string]interface{}{
					"contextBlock": block,
					"items":        items,
					"itemCount":    len(items),
					"latencyMs":    elapsed.Milliseconds(),
				})
			}

			fmt.Printf("Selected %d items in %s\n\n", len(items), FormatDuration(elapsed))
			if showItems {
				for i, item := range items {
					fmt.Printf("%d. %s (%.2f, %s)\n", i+1, item.Title, item.Relevance, item.ContentType)
				}
				fmt.Println()
			}
			fmt.Println(block)
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "site ID or domain (required)")
	cmd.Flags().StringVar(&intent, "intent", "", "query intent (best_choice, pricing, comparison, recommendation, information, general)")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "query keywords")
	cmd.Flags().StringSliceVar(&products, "products", nil, "products mentioned in the query")
	cmd.Flags().BoolVar(&comparative, "comparative", false, "query compares products")
	cmd.Flags().BoolVar(&wantsRecs, "recommendation", false, "query asks for a recommendation")
	cmd.Flags().BoolVar(&showItems, "items", false, "list selected items before the block")

	_ = cmd.MarkFlagRequired("site")

	return cmd
}

// newReindexCmd creates the reindex subcommand.
func newReindexCmd() *cobra.Command {
	var (
		site      string
		staleOnly bool
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Re-analyze every document of a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			siteID, err := resolveSite(ctx, eng, site)
			if err != nil {
				return err
			}

			ui := NewUI(outputJSON, !IsTerminal())
			defer ui.Close()

			start := time.Now()
			var count int
			if staleOnly {
				stale, err := eng.StaleDocuments(ctx, siteID, monitoring.StalenessConfig{})
				if err != nil {
					return fmt.Errorf("list stale documents: %w", err)
				}
				bar := ui.ProgressBar("reindex", int64(len(stale)))
				for i, doc := range stale {
					if _, err := eng.AnalyzeDocument(ctx, siteID, doc.ID); err != nil {
						return fmt.Errorf("reindex failed: %w", err)
					}
					if bar != nil {
						bar.SetCurrent(int64(i + 1))
					}
				}
				count = len(stale)
			} else {
				docs, err := eng.Repositories().Documents.ListBySite(ctx, siteID)
				if err != nil {
					return fmt.Errorf("list documents: %w", err)
				}
				bar := ui.ProgressBar("reindex", int64(len(docs)))
				count, err = eng.ReanalyzeSite(ctx, siteID, func(done, total int) {
					if bar != nil {
						bar.SetCurrent(int64(done))
					}
				})
				if err != nil {
					return fmt.Errorf("reindex failed: %w", err)
				}
			}

			if outputJSON {
				return printJSON(map[string]interface{}{
					"reanalyzed": count,
					"durationMs": time.Since(start).Milliseconds(),
				})
			}
			ui.Success("Reindexed %d documents in %s", count, FormatDuration(time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "site ID or domain (required)")
	cmd.Flags().BoolVar(&staleOnly, "stale", false, "only re-analyze documents with missing or outdated analysis")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.Encode(map[string]string{
					"version": "0.1.0",
					"go":      "1.23",
				})
				return
			}
			fmt.Println("context-engine-cli v0.1.0")
		},
	}
}

// openEngine opens the database and builds an engine over it. The returned
// cleanup closes the database and cache.
func openEngine() (*engine.Engine, func(), error) {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := storage.Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	cacheClient := cache.NewMemoryClient(cfg.Cache.MaxEntries)
	repos := storage.NewRepositories(db)
	eng := engine.New(repos, cacheClient, engine.OptionsFromConfig(cfg), logger)

	cleanup := func() {
		cacheClient.Close()
		db.Close()
	}
	return eng, cleanup, nil
}

// resolveSite accepts a site UUID or a domain.
func resolveSite(ctx context.Context, eng *engine.Engine, idOrDomain string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idOrDomain); err == nil {
		return id, nil
	}

	site, err := eng.Repositories().Sites.GetByDomain(ctx, idOrDomain)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve site %q: %w", idOrDomain, err)
	}
	return site.ID, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printAnalysis renders an analysis result for humans or machines.
func printAnalysis(title string, result analysis.ContentAnalysisResult) error {
	if outputJSON {
		return printJSON(result)
	}

	fmt.Printf("Title: %s\n", title)
	fmt.Printf("Type: %s | Confidence: %.2f\n", result.ContentType, result.ConfidenceScore)
	if len(result.IntentKeywords) > 0 {
		fmt.Printf("Keywords: %s\n", strings.Join(result.IntentKeywords, ", "))
	}
	if len(result.PrimaryProducts) > 0 {
		fmt.Printf("Products: %s\n", strings.Join(result.PrimaryProducts, ", "))
	}

	sd := result.StructuredData
	if sd.IsEmpty() {
		return nil
	}

	fmt.Println("\nStructured data:")
	for _, r := range sd.Rankings {
		fmt.Printf("  #%d %s\n", r.Rank, r.Product)
	}
	if sd.Winner != nil {
		fmt.Printf("  Winner: %s\n", sd.Winner.Product)
	}
	for _, p := range sd.Pricing {
		fmt.Printf("  Price: %s %s %s\n", p.Product, p.Price, p.Currency)
	}
	for _, r := range sd.Ratings {
		fmt.Printf("  Rating: %s %s/%s\n", r.Product, r.Rating, r.MaxRating)
	}
	for _, rec := range sd.Recommendations {
		fmt.Printf("  Recommended for %s: %s\n", rec.Context, rec.Product)
	}
	for _, c := range sd.Comparisons {
		fmt.Printf("  Comparison: %s vs %s\n", c.Products[0], c.Products[1])
	}
	return nil
}

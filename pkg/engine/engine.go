// Package engine is the embeddable entry point of the context engine. It
// wires the analysis pipeline, relevance selection, storage and the context
// cache behind a single facade so API servers, CLIs and in-process callers
// share one code path.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/analysis"
	"github.com/brightline-ai/context-engine/internal/cache"
	"github.com/brightline-ai/context-engine/internal/config"
	"github.com/brightline-ai/context-engine/internal/monitoring"
	"github.com/brightline-ai/context-engine/internal/observability"
	"github.com/brightline-ai/context-engine/internal/relevance"
	"github.com/brightline-ai/context-engine/internal/storage"
)

// Options tunes the engine. Zero values fall back to the package defaults of
// the underlying components.
type Options struct {
	Analysis     analysis.Config
	Confidence   analysis.ConfidenceWeights
	Relevance    relevance.Weights
	CacheResults bool
	CacheTTL     time.Duration
}

// DefaultOptions returns options matching the shipped defaults.
func DefaultOptions() Options {
	return Options{
		Analysis:     analysis.DefaultConfig(),
		Confidence:   analysis.DefaultConfidenceWeights(),
		Relevance:    relevance.DefaultWeights(),
		CacheResults: true,
		CacheTTL:     5 * time.Minute,
	}
}

// OptionsFromConfig maps the loaded service configuration onto engine
// options, keeping defaults for anything the file does not set.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()

	opts.Analysis.MinClassifyMatches = cfg.Analysis.MinClassifyMatches
	opts.Analysis.MaxRank = cfg.Analysis.MaxRank
	opts.Analysis.MinCaptureChars = cfg.Analysis.MinCaptureChars
	opts.Analysis.ReasonRadius = cfg.Analysis.ReasonRadius
	opts.Analysis.WinnerReasonRadius = cfg.Analysis.WinnerReasonRadius
	opts.Analysis.MaxKeywords = cfg.Analysis.MaxKeywords
	opts.Analysis.MaxPrimaryProducts = cfg.Analysis.MaxPrimaryProducts
	opts.Analysis.RankedPrimaryProducts = cfg.Analysis.RankedPrimaryProducts
	opts.Analysis.MaxProductNameChars = cfg.Analysis.MaxProductNameChars

	if cfg.Relevance.MaxItems > 0 {
		opts.Relevance.MaxItems = cfg.Relevance.MaxItems
	}
	if cfg.Relevance.RelevanceFloor > 0 {
		opts.Relevance.RelevanceFloor = cfg.Relevance.RelevanceFloor
	}
	if cfg.Relevance.MaxScore > 0 {
		opts.Relevance.MaxScore = cfg.Relevance.MaxScore
	}
	if cfg.Relevance.PreviewChars > 0 {
		opts.Relevance.PreviewChars = cfg.Relevance.PreviewChars
	}
	if cfg.Relevance.ContentChars > 0 {
		opts.Relevance.ContentChars = cfg.Relevance.ContentChars
	}
	opts.CacheResults = cfg.Relevance.CacheResults
	if cfg.Cache.TTL > 0 {
		opts.CacheTTL = cfg.Cache.TTL
	}

	return opts
}

// Engine runs the full pipeline: analyze on write, score and assemble on
// read. All methods are safe for concurrent use.
type Engine struct {
	repos     *storage.Repositories
	cache     cache.Client
	analyzer  *analysis.Analyzer
	selector  *relevance.Selector
	assembler *relevance.Assembler
	logger    *observability.Logger
	audit     *monitoring.AuditLogger

	cacheResults bool
	cacheTTL     time.Duration
}

// New creates an engine over the given repositories and cache client. A nil
// cache client disables context caching.
func New(repos *storage.Repositories, cacheClient cache.Client, opts Options, logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	return &Engine{
		repos:        repos,
		cache:        cacheClient,
		analyzer:     analysis.NewAnalyzer(opts.Analysis, opts.Confidence, logger),
		selector:     relevance.NewSelector(relevance.NewScorer(opts.Relevance), logger),
		assembler:    relevance.NewAssembler(),
		logger:       logger,
		audit:        monitoring.NewAuditLogger(logger, 256),
		cacheResults: opts.CacheResults && cacheClient != nil,
		cacheTTL:     opts.CacheTTL,
	}
}

// CreateDocument persists a new training material and analyzes it in the
// same call, so it is selectable immediately.
func (e *Engine) CreateDocument(ctx context.Context, doc *storage.Document) error {
	if err := e.repos.Documents.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	result := e.analyzer.Analyze(ctx, doc.Title, doc.RawContent)
	now := time.Now().UTC()
	if err := e.repos.Documents.UpdateAnalysis(ctx, doc.SiteID, doc.ID, result, now); err != nil {
		return fmt.Errorf("persist analysis: %w", err)
	}
	doc.ApplyAnalysis(result, now)

	e.invalidateSite(ctx, doc.SiteID)
	e.audit.LogDocument(ctx, doc.SiteID, doc.ID, monitoring.ActionCreated)
	return nil
}

// UpdateDocument saves edited content and recomputes its analysis.
func (e *Engine) UpdateDocument(ctx context.Context, doc *storage.Document) error {
	if err := e.repos.Documents.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	e.audit.LogDocument(ctx, doc.SiteID, doc.ID, monitoring.ActionUpdated)

	if _, err := e.AnalyzeDocument(ctx, doc.SiteID, doc.ID); err != nil {
		return err
	}
	return nil
}

// DeleteDocument removes a document and drops the site's cached context.
func (e *Engine) DeleteDocument(ctx context.Context, siteID, docID uuid.UUID) error {
	if err := e.repos.Documents.Delete(ctx, siteID, docID); err != nil {
		return err
	}
	e.invalidateSite(ctx, siteID)
	e.audit.LogDocument(ctx, siteID, docID, monitoring.ActionDeleted)
	return nil
}

// AnalyzeDocument recomputes and persists the analysis for one stored
// document, returning the refreshed record.
func (e *Engine) AnalyzeDocument(ctx context.Context, siteID, docID uuid.UUID) (*storage.Document, error) {
	doc, err := e.repos.Documents.GetByID(ctx, siteID, docID)
	if err != nil {
		return nil, err
	}

	result := e.analyzer.Analyze(ctx, doc.Title, doc.RawContent)
	now := time.Now().UTC()
	if err := e.repos.Documents.UpdateAnalysis(ctx, siteID, docID, result, now); err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	doc.ApplyAnalysis(result, now)

	e.invalidateSite(ctx, siteID)
	e.audit.LogDocument(ctx, siteID, docID, monitoring.ActionAnalyzed)
	return doc, nil
}

// ReanalyzeSite recomputes the analysis for every document of a site and
// returns how many were processed. Used by the reindex command and endpoint.
func (e *Engine) ReanalyzeSite(ctx context.Context, siteID uuid.UUID, progress func(done, total int)) (int, error) {
	docs, err := e.repos.Documents.ListBySite(ctx, siteID)
	if err != nil {
		return 0, err
	}

	for i, doc := range docs {
		result := e.analyzer.Analyze(ctx, doc.Title, doc.RawContent)
		if err := e.repos.Documents.UpdateAnalysis(ctx, siteID, doc.ID, result, time.Now().UTC()); err != nil {
			return i, fmt.Errorf("reanalyze %s: %w", doc.ID, err)
		}
		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	e.invalidateSite(ctx, siteID)
	e.audit.LogReindex(ctx, siteID, len(docs))
	return len(docs), nil
}

// StaleDocuments returns the site's documents whose analysis is missing or
// older than their content.
func (e *Engine) StaleDocuments(ctx context.Context, siteID uuid.UUID, cfg monitoring.StalenessConfig) ([]*storage.Document, error) {
	docs, err := e.repos.Documents.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return monitoring.StaleDocuments(docs, cfg), nil
}

// SelectContext scores the site's documents against the query analysis and
// returns the selected items in relevance order.
func (e *Engine) SelectContext(ctx context.Context, siteID uuid.UUID, query relevance.QueryAnalysis) ([]relevance.ContextItem, error) {
	start := time.Now()
	docs, err := e.repos.Documents.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	items := e.selector.Select(ctx, storage.Materials(docs), query)
	e.audit.LogQuery(ctx, siteID, string(query.Intent), time.Since(start), len(items))
	return items, nil
}

// BuildOptimizedContext selects context for the query and renders it as the
// single string handed to the downstream model. Results are cached per
// (site, query analysis) when caching is enabled.
func (e *Engine) BuildOptimizedContext(ctx context.Context, siteID uuid.UUID, query relevance.QueryAnalysis) (string, error) {
	var key string
	if e.cacheResults {
		key = e.queryKey(siteID, query)
		if cached, err := e.cache.Get(ctx, key); err == nil {
			return string(cached), nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn().Err(err).Str("site_id", siteID.String()).Msg("Context cache read failed")
		}
	}

	items, err := e.SelectContext(ctx, siteID, query)
	if err != nil {
		return "", err
	}
	block := e.assembler.Build(items)

	if e.cacheResults {
		if err := e.cache.Set(ctx, key, []byte(block), e.cacheTTL); err != nil {
			e.logger.Warn().Err(err).Str("site_id", siteID.String()).Msg("Context cache write failed")
		}
	}

	return block, nil
}

// InvalidateSite drops all cached context for a site.
func (e *Engine) InvalidateSite(ctx context.Context, siteID uuid.UUID) {
	e.invalidateSite(ctx, siteID)
}

// Repositories exposes the underlying storage layer for callers that need
// direct CRUD access (the API handlers and CLI).
func (e *Engine) Repositories() *storage.Repositories {
	return e.repos
}

// AuditTrail returns the retained audit events for a site, oldest first.
func (e *Engine) AuditTrail(siteID uuid.UUID) []monitoring.AuditEvent {
	return e.audit.RecentEvents(siteID)
}

func (e *Engine) invalidateSite(ctx context.Context, siteID uuid.UUID) {
	if e.cache == nil {
		return
	}
	if err := e.cache.DeleteByPrefix(ctx, cache.SiteCacheKey(siteID.String())); err != nil {
		e.logger.Warn().Err(err).Str("site_id", siteID.String()).Msg("Context cache invalidation failed")
	}
}

// queryKey derives a deterministic cache key from the query analysis. The
// JSON encoding of QueryAnalysis is stable for a given value because map
// keys are sorted by encoding/json.
func (e *Engine) queryKey(siteID uuid.UUID, query relevance.QueryAnalysis) string {
	payload, err := json.Marshal(query)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", query))
	}
	return cache.QueryCacheKey(siteID.String(), string(payload))
}

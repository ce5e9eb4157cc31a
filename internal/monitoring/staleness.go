package monitoring

import (
	"time"

	"github.com/brightline-ai/context-engine/internal/storage"
)

// StalenessConfig controls what counts as stale analysis.
type StalenessConfig struct {
	// MaxAge marks analysis older than this as stale. Zero disables the
	// age check.
	MaxAge time.Duration
}

// StaleDocuments returns the documents whose analysis is missing or out of
// date relative to their content.
func StaleDocuments(docs []*storage.Document, cfg StalenessConfig) []*storage.Document {
	var stale []*storage.Document
	now := time.Now()
	for _, doc := range docs {
		if IsStale(doc, cfg, now) {
			stale = append(stale, doc)
		}
	}
	return stale
}

// IsStale reports whether a single document needs reanalysis.
func IsStale(doc *storage.Document, cfg StalenessConfig, now time.Time) bool {
	if doc.AnalyzedAt == nil {
		return true
	}
	if doc.AnalyzedAt.Before(doc.UpdatedAt) {
		return true
	}
	if cfg.MaxAge > 0 && now.Sub(*doc.AnalyzedAt) > cfg.MaxAge {
		return true
	}
	return false
}

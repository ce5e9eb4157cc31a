package relevance

import (
	"context"
	"sort"
	"strings"

	"github.com/brightline-ai/context-engine/internal/observability"
)

// Selector scores a document pool and picks the context items for a query.
type Selector struct {
	scorer *Scorer
	logger *observability.Logger
}

// NewSelector creates a selector around the given scorer. A nil logger falls
// back to the default development logger.
func NewSelector(scorer *Scorer, logger *observability.Logger) *Selector {
	if scorer == nil {
		scorer = NewScorer(DefaultWeights())
	}
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	return &Selector{scorer: scorer, logger: logger}
}

// Select scores every candidate, sorts descending, and accepts up to
// MaxItems. Selection stops at the first score below the relevance floor,
// even when MaxItems has not been reached. An empty result means no usable
// context; callers degrade gracefully.
func (s *Selector) Select(ctx context.Context, pool []Material, query QueryAnalysis) []ContextItem {
	log := s.logger.WithContext(ctx).WithOperation("select_context")
	w := s.scorer.Weights()

	type scored struct {
		doc   Material
		score float64
	}
	candidates := make([]scored, 0, len(pool))
	for _, doc := range pool {
		candidates = append(candidates, scored{doc: doc, score: s.scorer.Score(doc, query)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	items := make([]ContextItem, 0, w.MaxItems)
	for _, c := range candidates {
		if len(items) >= w.MaxItems {
			break
		}
		if c.score < w.RelevanceFloor {
			break
		}
		sd := c.doc.Analysis.StructuredData
		item := ContextItem{
			Title:       c.doc.Title,
			Content:     s.itemContent(c.doc),
			Relevance:   c.score,
			ContentType: c.doc.Analysis.ContentType,
		}
		if !sd.IsEmpty() {
			item.StructuredData = &sd
		}
		items = append(items, item)
	}

	log.Debug().
		Int("pool", len(pool)).
		Int("selected", len(items)).
		Str("intent", string(query.Intent)).
		Msg("Context selection complete")

	return items
}

// itemContent prefers the summary, bulleted key points appended, over a
// truncated raw-content fallback.
func (s *Selector) itemContent(doc Material) string {
	w := s.scorer.Weights()

	if doc.Summary != "" {
		var b strings.Builder
		b.WriteString(doc.Summary)
		for _, kp := range doc.KeyPoints {
			b.WriteString("\n• ")
			b.WriteString(kp)
		}
		return b.String()
	}

	raw := doc.RawContent
	if len(raw) > w.ContentChars {
		return raw[:w.ContentChars] + "…"
	}
	return raw
}

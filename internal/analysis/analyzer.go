package analysis

import (
	"context"

	"github.com/brightline-ai/context-engine/internal/observability"
)

// Analyzer runs the full content analysis pipeline: classification,
// structured-data extraction, keyword and product extraction, and
// confidence scoring.
type Analyzer struct {
	classifier *Classifier
	extractor  *Extractor
	keywords   *KeywordExtractor
	confidence *ConfidenceCalculator
	logger     *observability.Logger
}

// NewAnalyzer creates an analyzer with the given tuning. A nil logger falls
// back to the default development logger.
func NewAnalyzer(cfg Config, weights ConfidenceWeights, logger *observability.Logger) *Analyzer {
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	return &Analyzer{
		classifier: NewClassifier(cfg),
		extractor:  NewExtractor(cfg),
		keywords:   NewKeywordExtractor(cfg),
		confidence: NewConfidenceCalculator(weights),
		logger:     logger,
	}
}

// Analyze classifies the document and extracts everything downstream scoring
// needs. It is deterministic for identical input.
func (a *Analyzer) Analyze(ctx context.Context, title, content string) ContentAnalysisResult {
	log := a.logger.WithContext(ctx).WithOperation("analyze")

	contentType := a.classifier.Classify(title, content)
	combined := title + "\n" + content

	sd := a.extractor.Extract(contentType, combined)

	result := ContentAnalysisResult{
		ContentType:     contentType,
		StructuredData:  sd,
		IntentKeywords:  a.keywords.IntentKeywords(combined, contentType),
		PrimaryProducts: a.keywords.PrimaryProducts(combined, contentType, sd),
		ConfidenceScore: a.confidence.Calculate(content, sd),
	}

	log.Debug().
		Str("content_type", string(result.ContentType)).
		Int("structured_points", sd.TotalPoints()).
		Int("keywords", len(result.IntentKeywords)).
		Int("products", len(result.PrimaryProducts)).
		Float64("confidence", result.ConfidenceScore).
		Msg("Content analysis complete")

	return result
}

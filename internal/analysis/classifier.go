// Package analysis provides content-type classification for training materials.
package analysis

// Config centralizes the tuning constants of the analysis pipeline so they
// stay explicit and testable instead of being scattered as literals.
type Config struct {
	MinClassifyMatches    int // below this many hits a document stays "general"
	MaxRank               int // ranking entries above this rank are noise
	MinCaptureChars       int // captured product text shorter than this is noise
	ReasonRadius          int // half-width of the reason window around a ranking hit
	WinnerReasonRadius    int // half-width of the reason window around a winner hit
	MaxKeywords           int
	MaxPrimaryProducts    int
	RankedPrimaryProducts int // how many ranked products become primary products
	MaxProductNameChars   int
}

// DefaultConfig returns the production tuning constants.
func DefaultConfig() Config {
	return Config{
		MinClassifyMatches:    2,
		MaxRank:               20,
		MinCaptureChars:       4,
		ReasonRadius:          100,
		WinnerReasonRadius:    150,
		MaxKeywords:           20,
		MaxPrimaryProducts:    10,
		RankedPrimaryProducts: 5,
		MaxProductNameChars:   100,
	}
}

// Classifier assigns a content type to a document by counting pattern hits.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given tuning constants.
func NewClassifier(cfg Config) *Classifier {
	if cfg.MinClassifyMatches <= 0 {
		cfg.MinClassifyMatches = 2
	}
	return &Classifier{cfg: cfg}
}

// Classify scores title and body against every pattern family and returns the
// best-fit type. Generic text with fewer hits than the classification floor
// falls back to "general". Exact ties resolve by the fixed priority order in
// classifierPriority, so classification is deterministic.
func (c *Classifier) Classify(title, content string) ContentType {
	text := title + "\n" + content

	best := ContentTypeGeneral
	bestCount := 0
	for _, ct := range classifierPriority {
		count := countMatches(text, contentTypePatterns[ct])
		if count > bestCount {
			best = ct
			bestCount = count
		}
	}

	if bestCount < c.cfg.MinClassifyMatches {
		return ContentTypeGeneral
	}
	return best
}

// Scores returns the per-type hit counts, useful for tuning pattern families.
func (c *Classifier) Scores(title, content string) map[ContentType]int {
	text := title + "\n" + content
	scores := make(map[ContentType]int, len(classifierPriority))
	for _, ct := range classifierPriority {
		scores[ct] = countMatches(text, contentTypePatterns[ct])
	}
	return scores
}

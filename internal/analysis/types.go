// Package analysis classifies training-material content and extracts
// structured facts from it using pattern heuristics.
package analysis

// ContentType is the coarse category assigned to a document. It selects the
// extraction strategy and the relevance boost applied at query time.
type ContentType string

const (
	ContentTypeRanking     ContentType = "ranking"
	ContentTypeComparison  ContentType = "comparison"
	ContentTypeProductPage ContentType = "product_page"
	ContentTypeReview      ContentType = "review"
	ContentTypeService     ContentType = "service"
	ContentTypeTutorial    ContentType = "tutorial"
	ContentTypeGeneral     ContentType = "general"
)

// RankingEntry is one position in an extracted ranked list.
type RankingEntry struct {
	Rank    int      `json:"rank"`
	Product string   `json:"product"`
	Reason  string   `json:"reason,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

// Winner is the single top recommendation detected in a document.
type Winner struct {
	Product string `json:"product"`
	Reason  string `json:"reason,omitempty"`
}

// PriceEntry pairs a product name with a detected price.
type PriceEntry struct {
	Product  string `json:"product"`
	Price    string `json:"price"`
	Currency string `json:"currency,omitempty"`
}

// FeatureSet lists bullet features attributed to one product.
type FeatureSet struct {
	Product  string   `json:"product"`
	Features []string `json:"features"`
}

// RatingEntry is a numeric rating detected for a product.
type RatingEntry struct {
	Product   string `json:"product"`
	Rating    string `json:"rating"`
	MaxRating string `json:"maxRating,omitempty"`
}

// Recommendation pairs a usage context with the product recommended for it.
type Recommendation struct {
	Context string `json:"context"`
	Product string `json:"product"`
	Reason  string `json:"reason,omitempty"`
}

// Comparison is an "A vs B" pair detected in text.
type Comparison struct {
	Products   [2]string `json:"products"`
	Aspect     string    `json:"aspect"`
	Conclusion string    `json:"conclusion,omitempty"`
}

// StructuredData holds every fact collection mined from a document. A nil or
// empty collection means "not detected", never "detected empty".
type StructuredData struct {
	Rankings        []RankingEntry   `json:"rankings,omitempty"`
	Winner          *Winner          `json:"winner,omitempty"`
	Pricing         []PriceEntry     `json:"pricing,omitempty"`
	Features        []FeatureSet     `json:"features,omitempty"`
	Ratings         []RatingEntry    `json:"ratings,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Comparisons     []Comparison     `json:"comparisons,omitempty"`
}

// TotalPoints counts every extracted fact; scalar facts such as the winner
// count as one point.
func (sd *StructuredData) TotalPoints() int {
	if sd == nil {
		return 0
	}
	points := len(sd.Rankings) + len(sd.Pricing) + len(sd.Features) +
		len(sd.Ratings) + len(sd.Recommendations) + len(sd.Comparisons)
	if sd.Winner != nil {
		points++
	}
	return points
}

// IsEmpty reports whether no structured data was detected at all.
func (sd *StructuredData) IsEmpty() bool {
	return sd.TotalPoints() == 0
}

// ContentAnalysisResult is the persisted analysis attached to a document.
// It is recomputed whenever the document's content changes and is immutable
// between recomputations.
type ContentAnalysisResult struct {
	ContentType     ContentType    `json:"contentType"`
	StructuredData  StructuredData `json:"structuredData"`
	IntentKeywords  []string       `json:"intentKeywords"`
	PrimaryProducts []string       `json:"primaryProducts"`
	ConfidenceScore float64        `json:"confidenceScore"`
}

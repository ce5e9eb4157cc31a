// Package analysis provides structured-data extraction from raw document text.
package analysis

import (
	"sort"
	"strings"
)

// Extractor mines structured facts out of raw text. Which extractors run is
// dispatched by the document's content type. Every extractor returns an empty
// collection on no matches; nothing here fails.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given tuning constants.
func NewExtractor(cfg Config) *Extractor {
	if cfg.MaxRank <= 0 {
		cfg.MaxRank = 20
	}
	if cfg.MinCaptureChars <= 0 {
		cfg.MinCaptureChars = 4
	}
	if cfg.ReasonRadius <= 0 {
		cfg.ReasonRadius = 100
	}
	if cfg.WinnerReasonRadius <= 0 {
		cfg.WinnerReasonRadius = 150
	}
	if cfg.MaxProductNameChars <= 0 {
		cfg.MaxProductNameChars = 100
	}
	return &Extractor{cfg: cfg}
}

// Extract runs the extractor set for contentType against text.
func (e *Extractor) Extract(contentType ContentType, text string) StructuredData {
	var sd StructuredData

	switch contentType {
	case ContentTypeRanking:
		sd.Rankings = e.ExtractRankings(text)
		sd.Winner = e.ExtractWinner(text)
	case ContentTypeComparison:
		sd.Comparisons = e.ExtractComparisons(text)
		sd.Winner = e.ExtractWinner(text)
	case ContentTypeProductPage:
		sd.Pricing = e.ExtractPricing(text)
		sd.Features = e.ExtractFeatures(text)
	case ContentTypeReview:
		sd.Ratings = e.ExtractRatings(text)
		sd.Recommendations = e.ExtractRecommendations(text)
	case ContentTypeService:
		sd.Pricing = e.ExtractPricing(text)
		sd.Recommendations = e.ExtractRecommendations(text)
	}

	return sd
}

// ExtractRankings detects numbered-list, hash-rank and ordinal-place entries.
// Ranks above the configured maximum and captures shorter than the noise
// floor are rejected. The result is sorted ascending by rank.
func (e *Extractor) ExtractRankings(text string) []RankingEntry {
	var entries []RankingEntry
	seen := make(map[int]bool)

	addEntry := func(rank int, capture string, at int) {
		if rank < 1 || rank > e.cfg.MaxRank {
			return
		}
		capture = strings.TrimSpace(capture)
		if len(capture) < e.cfg.MinCaptureChars {
			return
		}
		if seen[rank] {
			return
		}
		seen[rank] = true
		entries = append(entries, RankingEntry{
			Rank:    rank,
			Product: e.cleanProductName(capture),
			Reason:  window(text, at, e.cfg.ReasonRadius),
		})
	}

	for _, m := range numberedLinePattern.FindAllStringSubmatchIndex(text, -1) {
		rank := atoiSafe(text[m[2]:m[3]])
		addEntry(rank, text[m[4]:m[5]], m[0])
	}
	for _, m := range hashRankPattern.FindAllStringSubmatchIndex(text, -1) {
		rank := atoiSafe(text[m[2]:m[3]])
		addEntry(rank, text[m[4]:m[5]], m[0])
	}
	for _, m := range ordinalRankPattern.FindAllStringSubmatchIndex(text, -1) {
		rank := ordinalRanks[strings.ToLower(text[m[2]:m[3]])]
		addEntry(rank, text[m[4]:m[5]], m[0])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})
	return entries
}

// ExtractWinner finds the document's single top recommendation, if any.
// The first matching pattern wins.
func (e *Extractor) ExtractWinner(text string) *Winner {
	for _, p := range winnerPatterns {
		m := p.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		capture := strings.TrimSpace(text[m[2]:m[3]])
		if len(capture) < e.cfg.MinCaptureChars {
			continue
		}
		return &Winner{
			Product: e.cleanProductName(capture),
			Reason:  window(text, m[0], e.cfg.WinnerReasonRadius),
		}
	}
	return nil
}

// ExtractPricing pairs product-name windows with currency amounts. Currency
// comes from an explicit unit token or is inferred from the symbol.
func (e *Extractor) ExtractPricing(text string) []PriceEntry {
	var prices []PriceEntry
	seen := make(map[string]bool)

	add := func(name, price, unit string) {
		product := e.cleanProductName(strings.TrimSpace(name))
		if len(product) < e.cfg.MinCaptureChars {
			return
		}
		currency := unit
		if mapped, ok := currencyForSymbol[unit]; ok {
			currency = mapped
		}
		key := product + "|" + price
		if seen[key] {
			return
		}
		seen[key] = true
		prices = append(prices, PriceEntry{Product: product, Price: price, Currency: currency})
	}

	for _, m := range symbolPricePattern.FindAllStringSubmatch(text, -1) {
		add(m[1], m[3], m[2])
	}
	for _, m := range codePricePattern.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2], m[3])
	}

	return prices
}

// ExtractFeatures applies a paragraph-level heuristic: blank-line-delimited
// sections mentioning features or specifications contribute their first line
// as the product and their bullet-marked lines as the feature list.
func (e *Extractor) ExtractFeatures(text string) []FeatureSet {
	var sets []FeatureSet

	for _, section := range blankLinePattern.Split(text, -1) {
		if !featureSectionPattern.MatchString(section) {
			continue
		}

		lines := strings.Split(strings.TrimSpace(section), "\n")
		if len(lines) == 0 {
			continue
		}
		first := strings.TrimSpace(lines[0])
		if len(first) < 10 || len(first) > 100 {
			continue
		}

		var features []string
		for _, m := range bulletLinePattern.FindAllStringSubmatch(section, -1) {
			if f := strings.TrimSpace(m[1]); f != "" {
				features = append(features, f)
			}
		}
		if len(features) == 0 {
			continue
		}

		sets = append(sets, FeatureSet{
			Product:  e.cleanProductName(first),
			Features: features,
		})
	}

	return sets
}

// ExtractRatings detects "<name> rated/scores/gets X/Y" numeric patterns.
func (e *Extractor) ExtractRatings(text string) []RatingEntry {
	var ratings []RatingEntry
	for _, m := range ratingPattern.FindAllStringSubmatch(text, -1) {
		product := e.cleanProductName(strings.TrimSpace(m[1]))
		if len(product) < e.cfg.MinCaptureChars {
			continue
		}
		ratings = append(ratings, RatingEntry{
			Product:   product,
			Rating:    m[2],
			MaxRating: m[3],
		})
	}
	return ratings
}

// ExtractRecommendations detects "for <context>, we recommend <product>" and
// "<item> is perfect/ideal/best for <context>" phrasings.
func (e *Extractor) ExtractRecommendations(text string) []Recommendation {
	var recs []Recommendation

	for _, m := range recommendForPattern.FindAllStringSubmatchIndex(text, -1) {
		context := strings.TrimSpace(text[m[2]:m[3]])
		product := e.cleanProductName(strings.TrimSpace(text[m[4]:m[5]]))
		if len(product) < e.cfg.MinCaptureChars {
			continue
		}
		recs = append(recs, Recommendation{
			Context: context,
			Product: product,
			Reason:  window(text, m[0], e.cfg.ReasonRadius),
		})
	}

	for _, m := range perfectForPattern.FindAllStringSubmatchIndex(text, -1) {
		product := e.cleanProductName(strings.TrimSpace(text[m[2]:m[3]]))
		context := strings.TrimSpace(text[m[4]:m[5]])
		if len(product) < e.cfg.MinCaptureChars {
			continue
		}
		recs = append(recs, Recommendation{
			Context: context,
			Product: product,
			Reason:  window(text, m[0], e.cfg.ReasonRadius),
		})
	}

	return recs
}

// ExtractComparisons detects "A vs B" pairs. Aspect detection is out of
// scope; every pair is labeled a general comparison.
func (e *Extractor) ExtractComparisons(text string) []Comparison {
	var comparisons []Comparison
	seen := make(map[string]bool)

	for _, m := range comparisonPairPattern.FindAllStringSubmatchIndex(text, -1) {
		a := e.cleanProductName(strings.TrimSpace(text[m[2]:m[3]]))
		b := e.cleanProductName(strings.TrimSpace(text[m[4]:m[5]]))
		if len(a) < e.cfg.MinCaptureChars || len(b) < e.cfg.MinCaptureChars {
			continue
		}
		key := a + "|" + b
		if seen[key] {
			continue
		}
		seen[key] = true
		comparisons = append(comparisons, Comparison{
			Products:   [2]string{a, b},
			Aspect:     "general comparison",
			Conclusion: window(text, m[0], e.cfg.WinnerReasonRadius),
		})
	}

	return comparisons
}

// cleanProductName normalizes a captured product name: leading rank markers
// are stripped, punctuation other than hyphens collapses to spaces, runs of
// whitespace collapse, and the result is trimmed and length-capped.
func (e *Extractor) cleanProductName(name string) string {
	name = leadingRankMarker.ReplaceAllString(name, "")
	name = nonNamePattern.ReplaceAllString(name, " ")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) > e.cfg.MaxProductNameChars {
		name = strings.TrimSpace(name[:e.cfg.MaxProductNameChars])
	}
	return name
}

// window slices a fixed-radius context span around position at.
func window(text string, at, radius int) string {
	start := at - radius
	if start < 0 {
		start = 0
	}
	end := at + radius
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}

// atoiSafe parses a small positive integer, returning 0 on any failure.
func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1000 {
			return 0
		}
	}
	return n
}

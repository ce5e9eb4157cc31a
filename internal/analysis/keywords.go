// Package analysis provides keyword and primary-product extraction.
package analysis

import (
	"strings"
	"unicode"
)

// stopWords are dropped during keyword extraction. Same shape as the query
// side uses: generic function words plus filler that matches everything.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"should": true, "could": true, "may": true, "might": true, "must": true,
	"can": true, "what": true, "which": true, "who": true, "where": true,
	"when": true, "why": true, "how": true, "about": true, "this": true,
	"that": true, "these": true, "those": true, "they": true, "them": true,
	"their": true, "there": true, "here": true, "also": true, "just": true,
	"more": true, "most": true, "some": true, "such": true, "very": true,
	"into": true, "than": true, "then": true, "over": true, "your": true,
}

// supplementalKeywords are always added for a content type, on top of the
// keywords found in the text itself.
var supplementalKeywords = map[ContentType][]string{
	ContentTypeRanking:     {"best", "top", "ranking", "rated", "winner", "choice"},
	ContentTypeComparison:  {"compare", "comparison", "versus", "difference", "better"},
	ContentTypeProductPage: {"price", "cost", "product", "features", "specifications"},
	ContentTypeReview:      {"review", "rating", "experience", "quality", "verdict"},
	ContentTypeService:     {"service", "plan", "subscription", "booking", "support"},
	ContentTypeTutorial:    {"guide", "tutorial", "steps", "howto", "instructions"},
}

// leadingArticles disqualify a capitalized line as a product-name candidate.
var leadingArticles = map[string]bool{"the": true, "a": true, "an": true}

// KeywordExtractor derives intent keywords and primary products from a
// document and its extracted structure.
type KeywordExtractor struct {
	cfg Config
}

// NewKeywordExtractor creates a keyword extractor with the given tuning.
func NewKeywordExtractor(cfg Config) *KeywordExtractor {
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 20
	}
	if cfg.MaxPrimaryProducts <= 0 {
		cfg.MaxPrimaryProducts = 10
	}
	if cfg.RankedPrimaryProducts <= 0 {
		cfg.RankedPrimaryProducts = 5
	}
	return &KeywordExtractor{cfg: cfg}
}

// IntentKeywords returns the deduplicated union of the text's common keywords
// (capped) and the supplemental list for the content type.
func (k *KeywordExtractor) IntentKeywords(text string, contentType ContentType) []string {
	keywords := k.commonKeywords(text)

	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		seen[kw] = true
	}
	for _, kw := range supplementalKeywords[contentType] {
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}

	return keywords
}

// commonKeywords lower-cases, tokenizes, drops stopwords and short tokens,
// deduplicates, and caps the result.
func (k *KeywordExtractor) commonKeywords(text string) []string {
	tokens := tokenSplitter.Split(strings.ToLower(text), -1)

	keywords := make([]string, 0, k.cfg.MaxKeywords)
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if len(tok) <= 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) >= k.cfg.MaxKeywords {
			break
		}
	}
	return keywords
}

// PrimaryProducts selects the products a document is chiefly about. Ranking
// documents contribute their top ranked products, comparison documents every
// compared product, and everything else falls back to a capitalized-line
// heuristic. The result is deduplicated and capped.
func (k *KeywordExtractor) PrimaryProducts(text string, contentType ContentType, sd StructuredData) []string {
	var candidates []string

	switch contentType {
	case ContentTypeRanking:
		for i, entry := range sd.Rankings {
			if i >= k.cfg.RankedPrimaryProducts {
				break
			}
			candidates = append(candidates, entry.Product)
		}
	case ContentTypeComparison:
		for _, cmp := range sd.Comparisons {
			candidates = append(candidates, cmp.Products[0], cmp.Products[1])
		}
	default:
		candidates = k.capitalizedLines(text)
	}

	products := make([]string, 0, k.cfg.MaxPrimaryProducts)
	seen := make(map[string]bool)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		products = append(products, c)
		if len(products) >= k.cfg.MaxPrimaryProducts {
			break
		}
	}
	return products
}

// capitalizedLines treats capitalized lines of 5 to 100 characters that do
// not start with an article as product-name candidates.
func (k *KeywordExtractor) capitalizedLines(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 || len(line) > 100 {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsUpper(first) {
			continue
		}
		firstWord := strings.ToLower(strings.Fields(line)[0])
		if leadingArticles[firstWord] {
			continue
		}
		candidates = append(candidates, line)
	}
	return candidates
}

// Package analysis provides the pattern library used by the classifier and
// the structured-data extractors. Pattern sets are kept as data so they can
// be tuned without touching scoring logic.
package analysis

import "regexp"

// classifierPriority fixes the tie-break order when two content types score
// the same number of pattern hits.
var classifierPriority = []ContentType{
	ContentTypeRanking,
	ContentTypeComparison,
	ContentTypeProductPage,
	ContentTypeReview,
	ContentTypeService,
	ContentTypeTutorial,
}

// contentTypePatterns maps each content type to its pattern family.
var contentTypePatterns = map[ContentType][]*regexp.Regexp{
	ContentTypeRanking: {
		regexp.MustCompile(`(?m)^\s*\d{1,2}[.)]\s+\S`),
		regexp.MustCompile(`(?i)\btop\s+\d+\b`),
		regexp.MustCompile(`#\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b(?:first|second|third|fourth|fifth)\s+(?:place|pick|choice)\b`),
		regexp.MustCompile(`(?i)\bbest\s+\w+`),
		regexp.MustCompile(`(?i)\brank(?:ed|ing)?\b`),
	},
	ContentTypeComparison: {
		regexp.MustCompile(`(?i)\bvs\.?\b`),
		regexp.MustCompile(`(?i)\bversus\b`),
		regexp.MustCompile(`(?i)\bbetter\s+than\b`),
		regexp.MustCompile(`(?i)\bcompared?\s+(?:to|with)\b`),
		regexp.MustCompile(`(?i)\bpros\s+and\s+cons\b`),
		regexp.MustCompile(`(?i)\bdifferences?\s+between\b`),
	},
	ContentTypeProductPage: {
		regexp.MustCompile(`[$€£]\s?\d+(?:[.,]\d+)?`),
		regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*kr\b`),
		regexp.MustCompile(`(?i)\b(?:buy\s+now|add\s+to\s+cart|in\s+stock|out\s+of\s+stock|free\s+shipping)\b`),
		regexp.MustCompile(`(?i)\bpric(?:e|ing)\b`),
		regexp.MustCompile(`(?i)\bspecifications?\b`),
	},
	ContentTypeReview: {
		regexp.MustCompile(`(?i)\breview(?:s|ed)?\b`),
		regexp.MustCompile(`(?i)\brating\b`),
		regexp.MustCompile(`(?i)\bstars?\b`),
		regexp.MustCompile(`(?i)\bpros:`),
		regexp.MustCompile(`(?i)\bcons:`),
		regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:/|out\s+of)\s*\d+`),
	},
	ContentTypeService: {
		regexp.MustCompile(`(?i)\bplans?\b`),
		regexp.MustCompile(`(?i)\bsubscriptions?\b`),
		regexp.MustCompile(`(?i)\bconsultations?\b`),
		regexp.MustCompile(`(?i)\b(?:booking|appointment)\b`),
		regexp.MustCompile(`(?i)\bservices?\b`),
	},
	ContentTypeTutorial: {
		regexp.MustCompile(`(?i)\bhow\s+to\b`),
		regexp.MustCompile(`(?i)\bstep\s+\d+\b`),
		regexp.MustCompile(`(?i)\bguide\b`),
		regexp.MustCompile(`(?i)\btutorial\b`),
		regexp.MustCompile(`(?i)\binstructions?\b`),
	},
}

// Extraction patterns, grouped by fact kind.
var (
	numberedLinePattern = regexp.MustCompile(`(?m)^\s*(\d{1,2})[.)]\s+(.+)$`)
	hashRankPattern     = regexp.MustCompile(`#(\d{1,2})[:\s]+([^\n#]+)`)
	ordinalRankPattern  = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth)\s+(?:place|pick|choice)[:\s-]+([^\n.!?]+)`)

	winnerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bour\s+(?:top\s+)?(?:pick|choice|recommendation)(?:\s+is)?[:\s]+([^\n.!?]+)`),
		regexp.MustCompile(`(?i)\bbest\s+overall[:\s]+([^\n.!?]+)`),
		regexp.MustCompile(`(?i)\bwe\s+recommend\s+(?:the\s+)?([^\n.!?]+)`),
		regexp.MustCompile(`(?i)\bwinner[:\s]+([^\n.!?]+)`),
		regexp.MustCompile(`(?i)#1\s+choice[:\s]+([^\n.!?]+)`),
	}

	// Name window before a price. Known limitation: on dense text the window
	// can absorb a neighboring name; tests pin today's behavior.
	symbolPricePattern = regexp.MustCompile(`([A-Za-z][A-Za-z0-9'&_ -]{8,48}?)\s+(?:costs?|is\s+priced\s+at|starts?\s+at|for\s+(?:just|only)|for|at|now|only)?\s*([$€£])\s*(\d+(?:[.,]\d+)?)`)
	codePricePattern   = regexp.MustCompile(`([A-Za-z][A-Za-z0-9'&_ -]{8,48}?)\s+(?:costs?|is\s+priced\s+at|starts?\s+at|for\s+(?:just|only)|for|at|now|only)?\s*(\d+(?:[.,]\d+)?)\s*(USD|EUR|GBP|NOK|kr)\b`)

	ratingPattern = regexp.MustCompile(`(?m)([A-Z][A-Za-z0-9'&_ -]{2,60}?)\s+(?:is\s+)?(?:rated|scores?|gets?)\s+(\d+(?:\.\d+)?)\s*(?:/|out\s+of)\s*(\d+(?:\.\d+)?)`)

	recommendForPattern = regexp.MustCompile(`(?i)\b(?:for|if)\s+([^,\n]{3,60}),\s*(?:we\s+)?recommend(?:s)?\s+(?:the\s+)?([^\n.!?]+)`)
	perfectForPattern   = regexp.MustCompile(`(?m)([A-Z][A-Za-z0-9'&_ -]{2,60}?)\s+is\s+(?:perfect|ideal|best)\s+for\s+([^\n.!?]+)`)

	comparisonPairPattern = regexp.MustCompile(`(?m)([A-Z][A-Za-z0-9'&_ -]{2,50}?)\s+(?:vs\.?|versus)\s+([A-Z][A-Za-z0-9'&_ -]{2,50})`)

	featureSectionPattern = regexp.MustCompile(`(?i)\b(?:features|specifications)\b`)
	bulletLinePattern     = regexp.MustCompile(`(?m)^\s*[•*-]\s+(.+)$`)
	blankLinePattern      = regexp.MustCompile(`\n\s*\n`)

	leadingRankMarker = regexp.MustCompile(`^[#\d.)\s]+`)
	nonNamePattern    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	tokenSplitter     = regexp.MustCompile(`\W+`)
)

// ordinalRanks maps ordinal words to numeric ranks.
var ordinalRanks = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
	"fifth":  5,
}

// currencyForSymbol maps price symbols to ISO currency codes.
var currencyForSymbol = map[string]string{
	"$":  "USD",
	"€":  "EUR",
	"£":  "GBP",
	"kr": "NOK",
}

// countMatches reports how many times any pattern in the family hits text.
func countMatches(text string, patterns []*regexp.Regexp) int {
	total := 0
	for _, p := range patterns {
		total += len(p.FindAllStringIndex(text, -1))
	}
	return total
}

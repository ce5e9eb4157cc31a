package analysis

import "strings"

// ConfidenceWeights tunes the confidence score components.
type ConfidenceWeights struct {
	Base           float64 // floor every analysis starts from
	LengthPerWords float64 // word count divisor for the length component
	LengthCap      float64 // maximum length contribution
	RichnessPer    float64 // contribution per structured data point
	RichnessCap    float64 // maximum richness contribution
}

// DefaultConfidenceWeights returns the standard confidence tuning.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		Base:           0.3,
		LengthPerWords: 1000,
		LengthCap:      0.3,
		RichnessPer:    0.04,
		RichnessCap:    0.4,
	}
}

// ConfidenceCalculator scores how trustworthy an analysis result is, from
// content length and structured-data richness.
type ConfidenceCalculator struct {
	weights ConfidenceWeights
}

// NewConfidenceCalculator creates a calculator with the given weights.
// Zero-valued weights fall back to the defaults.
func NewConfidenceCalculator(weights ConfidenceWeights) *ConfidenceCalculator {
	def := DefaultConfidenceWeights()
	if weights.Base == 0 {
		weights.Base = def.Base
	}
	if weights.LengthPerWords == 0 {
		weights.LengthPerWords = def.LengthPerWords
	}
	if weights.LengthCap == 0 {
		weights.LengthCap = def.LengthCap
	}
	if weights.RichnessPer == 0 {
		weights.RichnessPer = def.RichnessPer
	}
	if weights.RichnessCap == 0 {
		weights.RichnessCap = def.RichnessCap
	}
	return &ConfidenceCalculator{weights: weights}
}

// Calculate returns a confidence score in [Base, 1.0]. Longer documents and
// richer structured data both raise the score, each up to its own cap.
func (c *ConfidenceCalculator) Calculate(content string, sd StructuredData) float64 {
	score := c.weights.Base

	words := float64(len(strings.Fields(content)))
	length := words / c.weights.LengthPerWords
	if length > c.weights.LengthCap {
		length = c.weights.LengthCap
	}
	score += length

	richness := float64(sd.TotalPoints()) * c.weights.RichnessPer
	if richness > c.weights.RichnessCap {
		richness = c.weights.RichnessCap
	}
	score += richness

	if score > 1.0 {
		score = 1.0
	}
	return score
}

package relevance

import (
	"fmt"
	"math"
	"strings"
)

// Assembler renders selected context items into the single text block that
// is interpolated into the model prompt.
type Assembler struct{}

// NewAssembler creates an assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Build renders the items as a numbered list. Each entry shows the title,
// content type, whole-percent relevance and the item body, followed by a
// structured-information block when the item carries structured data.
// An empty item list renders an empty string.
func (a *Assembler) Build(items []ContextItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		pct := int(math.Round(item.Relevance * 100))
		fmt.Fprintf(&b, "%d. %s [%s, relevance %d%%]\n", i+1, item.Title, item.ContentType, pct)
		b.WriteString(item.Content)

		if item.StructuredData != nil && !item.StructuredData.IsEmpty() {
			b.WriteString("\n\nStructured Information:")
			a.writeStructured(&b, item)
		}
	}
	return b.String()
}

func (a *Assembler) writeStructured(b *strings.Builder, item ContextItem) {
	sd := item.StructuredData

	for _, r := range sd.Rankings {
		fmt.Fprintf(b, "\n- Rank %d: %s", r.Rank, r.Product)
		if r.Reason != "" {
			fmt.Fprintf(b, " (%s)", r.Reason)
		}
	}
	if sd.Winner != nil {
		fmt.Fprintf(b, "\n- Winner: %s", sd.Winner.Product)
		if sd.Winner.Reason != "" {
			fmt.Fprintf(b, " (%s)", sd.Winner.Reason)
		}
	}
	for _, rec := range sd.Recommendations {
		fmt.Fprintf(b, "\n- Recommended for %s: %s", rec.Context, rec.Product)
	}
	for _, p := range sd.Pricing {
		fmt.Fprintf(b, "\n- Price: %s %s %s", p.Product, p.Price, p.Currency)
	}
}

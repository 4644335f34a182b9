package ingest

import "strings"

// Complaint is the raw input to title generation.
type Complaint struct {
	Text     string
	Address  string
	Category string
}

// Composed is a generated title together with its parts.
type Composed struct {
	Title        string
	Summary      string
	Tier         Tier
	ShortAddress string
}

// Pipeline orchestrates title generation:
// text → normalization → tokenization → keyword extraction, address → shortening,
// then "[category] summary / address".
type Pipeline struct {
	summarizer *Summarizer
}

// NewPipeline creates a title pipeline around the given summarizer.
func NewPipeline(s *Summarizer) *Pipeline {
	return &Pipeline{summarizer: s}
}

// Summarizer exposes the pipeline's keyword extractor.
func (p *Pipeline) Summarizer() *Summarizer {
	return p.summarizer
}

// Compose runs a complaint through the full pipeline.
func (p *Pipeline) Compose(c Complaint) Composed {
	sum := p.summarizer.Extract(c.Text, DefaultMaxLength)
	if sum.Text == "" {
		sum.Text = FallbackSummary
	}
	short := ShortenAddress(c.Address)

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.Category)
	b.WriteString("] ")
	b.WriteString(sum.Text)
	if short != "" {
		b.WriteString(" / ")
		b.WriteString(short)
	}

	return Composed{
		Title:        b.String(),
		Summary:      sum.Text,
		Tier:         sum.Tier,
		ShortAddress: short,
	}
}

// Title returns "[category] summary / short address", or
// "[category] summary" when the address is blank. It never fails.
func (p *Pipeline) Title(text, address, category string) string {
	return p.Compose(Complaint{Text: text, Address: address, Category: category}).Title
}

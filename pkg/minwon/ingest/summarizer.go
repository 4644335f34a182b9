package ingest

import (
	"log/slog"
	"strings"
)

const (
	// FallbackSummary is used when there is no content to summarize.
	FallbackSummary = "민원 내용"

	// DefaultMaxLength is the conventional maxLength argument.
	DefaultMaxLength = 15

	// summaryRunes is the width of the sentence and degraded fallbacks.
	summaryRunes = 12
)

// Tier identifies which layer produced a summary.
type Tier int

const (
	TierEmpty Tier = iota
	TierLocation
	TierComplaint
	TierSentence
	TierDegraded
)

func (t Tier) String() string {
	switch t {
	case TierLocation:
		return "location"
	case TierComplaint:
		return "complaint"
	case TierSentence:
		return "sentence"
	case TierDegraded:
		return "degraded"
	default:
		return "empty"
	}
}

// Summary is the extracted title fragment and the tier that produced it.
type Summary struct {
	Text string
	Tier Tier
}

// Observer is notified of every summary produced. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveSummary(tier Tier)
	ObserveTokenizerFailure()
}

// Summarizer picks the most salient fragment of a complaint's first sentence.
// It holds no mutable state; concurrent use is safe as long as the tokenizer is.
type Summarizer struct {
	tokenizer Tokenizer
	keywords  KeywordSets
	logger    *slog.Logger
	observer  Observer
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithLogger sets the logger used to report tokenizer failures.
func WithLogger(l *slog.Logger) SummarizerOption {
	return func(s *Summarizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers an observer for tier outcomes.
func WithObserver(o Observer) SummarizerOption {
	return func(s *Summarizer) {
		s.observer = o
	}
}

// NewSummarizer creates a summarizer over the given tokenizer and keyword sets.
func NewSummarizer(tok Tokenizer, kw KeywordSets, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		tokenizer: tok,
		keywords:  kw,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a short fragment of text. It never fails: blank input
// yields FallbackSummary and tokenizer failures degrade to a truncated copy
// of the normalized text.
//
// maxLength is accepted for callers that pass it, but the sentence fallback
// always truncates to 12 runes.
func (s *Summarizer) Summarize(text string, maxLength int) string {
	return s.Extract(text, maxLength).Text
}

// Extract is Summarize that also reports which tier produced the result.
func (s *Summarizer) Extract(text string, maxLength int) Summary {
	sum := s.extract(text)
	if s.observer != nil {
		s.observer.ObserveSummary(sum.Tier)
	}
	return sum
}

func (s *Summarizer) extract(text string) Summary {
	if strings.TrimSpace(text) == "" {
		return Summary{Text: FallbackSummary, Tier: TierEmpty}
	}

	normalized := Normalize(text)
	sentence := FirstSentence(normalized)

	nounSeq, err := nouns(s.tokenizer, sentence)
	if err != nil {
		s.logger.Warn("summary_tokenize_failed",
			"sentence", sentence,
			"error", err)
		if s.observer != nil {
			s.observer.ObserveTokenizerFailure()
		}
		degraded := strings.TrimSpace(truncateRunes(normalized, summaryRunes))
		if degraded == "" {
			degraded = FallbackSummary
		}
		return Summary{Text: degraded, Tier: TierDegraded}
	}

	// Tier 1: place nouns, with a trailing locative marker when the
	// sentence has one right after the noun.
	if noun, ok := s.keywords.matchLocation(nounSeq); ok {
		summary := noun
		for _, marker := range locativeMarkers {
			if strings.Contains(sentence, noun+" "+marker) {
				summary += " " + marker
				break
			}
		}
		return Summary{Text: summary, Tier: TierLocation}
	}

	// Tier 2: complaint-action nouns, verbatim.
	if noun, ok := s.keywords.matchComplaint(nounSeq); ok {
		return Summary{Text: noun, Tier: TierComplaint}
	}

	// Tier 3: the sentence itself.
	if runeLen(sentence) > summaryRunes {
		return Summary{Text: strings.TrimSpace(truncateRunes(sentence, summaryRunes)), Tier: TierSentence}
	}
	return Summary{Text: sentence, Tier: TierSentence}
}

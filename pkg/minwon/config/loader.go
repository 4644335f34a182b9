package config

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/minwon/pkg/minwon/ingest"
	"github.com/cognicore/minwon/pkg/minwon/morph"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	KeywordsPath string
	LexiconPath  string

	Logger   *slog.Logger
	Observer ingest.Observer
}

// Components holds all loaded configuration components
type Components struct {
	Analyzer *morph.Analyzer
	Keywords ingest.KeywordSets
	Pipeline *ingest.Pipeline
}

// Load reads all configuration files and returns initialized components.
// Missing paths fall back to the built-in keyword sets and lexicon.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load keyword sets
	if l.KeywordsPath != "" {
		kwConfig, err := LoadKeywords(l.KeywordsPath)
		if err != nil {
			return nil, fmt.Errorf("load keywords: %w", err)
		}
		kw, err := ingest.NewKeywordSets(kwConfig.Location, kwConfig.Complaint)
		if err != nil {
			return nil, fmt.Errorf("load keywords: %w", err)
		}
		comp.Keywords = kw
	} else {
		comp.Keywords = ingest.DefaultKeywordSets()
	}

	// Load analyzer lexicon; keyword sets always join its nouns
	var lexicon morph.Lexicon
	if l.LexiconPath != "" {
		lex, err := LoadLexicon(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lexicon = morph.Lexicon{
			Nouns:       lex.Nouns,
			ProperNouns: lex.ProperNouns,
			NonNouns:    lex.NonNouns,
		}
	}
	comp.Analyzer = morph.New(lexicon, comp.Keywords)

	var opts []ingest.SummarizerOption
	if l.Logger != nil {
		opts = append(opts, ingest.WithLogger(l.Logger))
	}
	if l.Observer != nil {
		opts = append(opts, ingest.WithObserver(l.Observer))
	}
	comp.Pipeline = ingest.NewPipeline(ingest.NewSummarizer(comp.Analyzer, comp.Keywords, opts...))

	return comp, nil
}

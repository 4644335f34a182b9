// Package morph is a small dictionary-assisted Korean analyzer that splits
// complaint sentences into morphemes with Sejong-style tags.
//
// It does not attempt full morphological analysis. The goal is to recover
// noun stems from eojeol (space-separated words) well enough for keyword
// matching:
//
//   - lexicon words are tagged directly (NNG, NNP, MAG)
//   - 하다/되다 predicates keep their noun stem ("신고합니다" → 신고 + 합니다)
//   - copula forms keep their noun stem ("공사인지" → 공사 + 인지)
//   - other predicate endings mark the whole word as VV
//   - trailing particles are split off ("학교에서" → 학교 + 에서)
//   - anything else made of Hangul is taken to be a common noun
//
// An Analyzer is immutable after construction and safe for concurrent use.
package morph

import (
	"strings"
	"unicode"

	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

// Tags produced by the analyzer.
const (
	TagCommonNoun = "NNG"
	TagProperNoun = "NNP"
	TagAdverb     = "MAG"
	TagVerb       = "VV"
	TagVerbSuffix = "XSV"
	TagCopula     = "VCP"
	TagParticle   = "J"
	TagForeign    = "SL"
	TagNumber     = "SN"
	TagSymbol     = "SW"
)

// Morpheme is a surface form with its tag.
type Morpheme struct {
	Surface string
	Tag     string
}

// Lexicon lists words the analyzer should recognize as given.
type Lexicon struct {
	Nouns       []string
	ProperNouns []string
	NonNouns    []string // adverbs, pronouns, determiners
}

// Analyzer tags morphemes using a lexicon plus ending and particle tables.
type Analyzer struct {
	nouns    map[string]struct{}
	proper   map[string]struct{}
	nonNouns map[string]struct{}
}

// New creates an analyzer from the given lexicon merged over the built-in one.
// Every keyword in kw is recognized as a common noun, so the keywords the
// summarizer matches on are never split or tagged as predicates.
func New(lex Lexicon, kw ingest.KeywordSets) *Analyzer {
	a := &Analyzer{
		nouns:    make(map[string]struct{}),
		proper:   make(map[string]struct{}),
		nonNouns: make(map[string]struct{}),
	}
	addAll(a.nouns, builtinNouns)
	addAll(a.nouns, kw.Location())
	addAll(a.nouns, kw.Complaint())
	addAll(a.nonNouns, builtinNonNouns)

	addAll(a.nouns, lex.Nouns)
	addAll(a.proper, lex.ProperNouns)
	addAll(a.nonNouns, lex.NonNouns)
	return a
}

// Default returns an analyzer with the built-in lexicon and the default
// keyword sets.
func Default() *Analyzer {
	return New(Lexicon{}, ingest.DefaultKeywordSets())
}

func addAll(set map[string]struct{}, words []string) {
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			set[w] = struct{}{}
		}
	}
}

// Tokenize implements ingest.Tokenizer.
func (a *Analyzer) Tokenize(sentence string) ([]ingest.Token, error) {
	morphs := a.Analyze(sentence)
	tokens := make([]ingest.Token, 0, len(morphs))
	for _, m := range morphs {
		tokens = append(tokens, ingest.Token{Surface: m.Surface, Tag: ingest.ParseTag(m.Tag)})
	}
	return tokens, nil
}

// Analyze splits sentence into morphemes.
func (a *Analyzer) Analyze(sentence string) []Morpheme {
	var out []Morpheme
	for _, word := range splitWords(sentence) {
		for i, run := range splitScripts(word) {
			// "CCTV가": a bare particle attached to a foreign word or number.
			if i > 0 && run.script == scriptHangul && isParticle(run.text) {
				out = append(out, Morpheme{Surface: run.text, Tag: TagParticle})
				continue
			}
			out = append(out, a.analyzeRun(run)...)
		}
	}
	return out
}

func isParticle(s string) bool {
	for _, p := range particles {
		if p == s {
			return true
		}
	}
	return false
}

// splitWords splits on anything that is not a letter or digit.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

type script int

const (
	scriptHangul script = iota
	scriptLatin
	scriptDigit
	scriptOther
)

func scriptOf(r rune) script {
	switch {
	case r >= '가' && r <= '힣':
		return scriptHangul
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		return scriptLatin
	case unicode.IsDigit(r):
		return scriptDigit
	default:
		return scriptOther
	}
}

type scriptRun struct {
	text   string
	script script
}

// splitScripts breaks a word where the script changes ("CCTV가" → CCTV, 가).
func splitScripts(word string) []scriptRun {
	var runs []scriptRun
	var cur strings.Builder
	curScript := script(-1)

	for _, r := range word {
		sc := scriptOf(r)
		if cur.Len() > 0 && sc != curScript {
			runs = append(runs, scriptRun{text: cur.String(), script: curScript})
			cur.Reset()
		}
		curScript = sc
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		runs = append(runs, scriptRun{text: cur.String(), script: curScript})
	}
	return runs
}

func (a *Analyzer) analyzeRun(run scriptRun) []Morpheme {
	switch run.script {
	case scriptHangul:
		return a.analyzeHangul(run.text)
	case scriptLatin:
		return []Morpheme{{Surface: run.text, Tag: TagForeign}}
	case scriptDigit:
		return []Morpheme{{Surface: run.text, Tag: TagNumber}}
	default:
		return []Morpheme{{Surface: run.text, Tag: TagSymbol}}
	}
}

func (a *Analyzer) analyzeHangul(word string) []Morpheme {
	if tag, ok := a.lookup(word); ok {
		return []Morpheme{{Surface: word, Tag: tag}}
	}

	if stem, ending, ok := cutSuffix(word, derivationEndings, 2); ok {
		return []Morpheme{{Surface: stem, Tag: a.nounTag(stem)}, {Surface: ending, Tag: TagVerbSuffix}}
	}
	if stem, ending, ok := cutSuffix(word, copulaEndings, 1); ok {
		return []Morpheme{{Surface: stem, Tag: a.nounTag(stem)}, {Surface: ending, Tag: TagCopula}}
	}
	if _, _, ok := cutSuffix(word, predicateEndings, 1); ok {
		return []Morpheme{{Surface: word, Tag: TagVerb}}
	}
	if stem, particle, ok := cutSuffix(word, particles, 1); ok {
		if tag, known := a.lookup(stem); known {
			return []Morpheme{{Surface: stem, Tag: tag}, {Surface: particle, Tag: TagParticle}}
		}
		return []Morpheme{{Surface: stem, Tag: TagCommonNoun}, {Surface: particle, Tag: TagParticle}}
	}

	return []Morpheme{{Surface: word, Tag: TagCommonNoun}}
}

func (a *Analyzer) lookup(word string) (string, bool) {
	if _, ok := a.proper[word]; ok {
		return TagProperNoun, true
	}
	if _, ok := a.nouns[word]; ok {
		return TagCommonNoun, true
	}
	if _, ok := a.nonNouns[word]; ok {
		return TagAdverb, true
	}
	return "", false
}

func (a *Analyzer) nounTag(stem string) string {
	if _, ok := a.proper[stem]; ok {
		return TagProperNoun
	}
	return TagCommonNoun
}

// cutSuffix removes the longest suffix from the table that leaves a stem of
// at least minStem runes. Tables are ordered longest first.
func cutSuffix(word string, table []string, minStem int) (stem, suffix string, ok bool) {
	for _, suf := range table {
		if !strings.HasSuffix(word, suf) {
			continue
		}
		stem = strings.TrimSuffix(word, suf)
		if len([]rune(stem)) >= minStem {
			return stem, suf, true
		}
	}
	return "", "", false
}

package ingest

import (
	"fmt"
	"sync"

	"github.com/cognicore/minwon/pkg/minwon/internalerr"
)

// Tag is the part-of-speech class the summarizer cares about.
type Tag int

const (
	TagOther Tag = iota
	TagCommonNoun
	TagProperNoun
)

func (t Tag) String() string {
	switch t {
	case TagCommonNoun:
		return "NNG"
	case TagProperNoun:
		return "NNP"
	default:
		return "OTHER"
	}
}

// ParseTag maps an analyzer tag (Sejong style: NNG, NNP, VV, JKS, ...) to a Tag.
func ParseTag(s string) Tag {
	switch s {
	case "NNG":
		return TagCommonNoun
	case "NNP":
		return TagProperNoun
	default:
		return TagOther
	}
}

// IsNoun reports whether the tag is a summary candidate.
func (t Tag) IsNoun() bool {
	return t == TagCommonNoun || t == TagProperNoun
}

// Token is one morpheme produced by a Tokenizer.
type Token struct {
	Surface string
	Tag     Tag
}

// Tokenizer is the morphological analyzer consumed by the summarizer.
// Implementations may return an error on malformed input.
type Tokenizer interface {
	Tokenize(sentence string) ([]Token, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(sentence string) ([]Token, error)

// Tokenize implements Tokenizer.
func (f TokenizerFunc) Tokenize(sentence string) ([]Token, error) {
	return f(sentence)
}

// Serialize wraps a tokenizer that is not safe for concurrent use so that
// calls are made one at a time.
func Serialize(t Tokenizer) Tokenizer {
	return &serialTokenizer{inner: t}
}

type serialTokenizer struct {
	mu    sync.Mutex
	inner Tokenizer
}

func (s *serialTokenizer) Tokenize(sentence string) ([]Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Tokenize(sentence)
}

// nouns runs the tokenizer and keeps common and proper nouns in order.
// Panics inside the tokenizer and tokens without a surface form are
// reported as errors.
func nouns(t Tokenizer, sentence string) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: tokenizer panic: %v", internalerr.ErrTokenizer, r)
		}
	}()

	tokens, err := t.Tokenize(sentence)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrTokenizer, err)
	}
	for i, tok := range tokens {
		if tok.Surface == "" {
			return nil, fmt.Errorf("%w: token %d has empty surface", internalerr.ErrTokenizer, i)
		}
		if tok.Tag.IsNoun() {
			out = append(out, tok.Surface)
		}
	}
	return out, nil
}

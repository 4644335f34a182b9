package ingest

import (
	"fmt"
	"strings"

	"github.com/cognicore/minwon/pkg/minwon/internalerr"
)

// KeywordSets holds the two ordered keyword lists scanned by the summarizer.
// Order matters: within a noun, earlier keywords are tried first.
// A KeywordSets value is immutable once built.
type KeywordSets struct {
	location  []string
	complaint []string
}

// NewKeywordSets copies the given lists. Blank entries are dropped and
// surrounding whitespace is trimmed; an error is returned if both lists end
// up empty.
func NewKeywordSets(location, complaint []string) (KeywordSets, error) {
	kw := KeywordSets{
		location:  cleanKeywords(location),
		complaint: cleanKeywords(complaint),
	}
	if len(kw.location) == 0 && len(kw.complaint) == 0 {
		return KeywordSets{}, fmt.Errorf("%w: no location or complaint keywords", internalerr.ErrInvalidConfig)
	}
	return kw, nil
}

// DefaultKeywordSets returns the built-in place and complaint-action keywords.
func DefaultKeywordSets() KeywordSets {
	return KeywordSets{
		location: []string{
			"역", "사거리", "교차로", "학교", "아파트", "공원", "시장",
			"마트", "주차장", "병원", "센터", "도서관", "입구", "출구",
		},
		complaint: []string{
			"주정차", "주차", "쓰레기", "악취", "소음", "도로", "가로등",
			"보수", "신고", "단속", "파손", "공사", "흡연",
		},
	}
}

// Location returns a copy of the place keywords.
func (k KeywordSets) Location() []string {
	return append([]string(nil), k.location...)
}

// Complaint returns a copy of the complaint-action keywords.
func (k KeywordSets) Complaint() []string {
	return append([]string(nil), k.complaint...)
}

// matchLocation returns the first noun containing any place keyword.
// The outer loop is over nouns: the earliest noun wins, not the best keyword.
func (k KeywordSets) matchLocation(nouns []string) (string, bool) {
	return firstContaining(nouns, k.location)
}

func (k KeywordSets) matchComplaint(nouns []string) (string, bool) {
	return firstContaining(nouns, k.complaint)
}

func firstContaining(nouns, keywords []string) (string, bool) {
	for _, noun := range nouns {
		for _, kw := range keywords {
			if strings.Contains(noun, kw) {
				return noun, true
			}
		}
	}
	return "", false
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

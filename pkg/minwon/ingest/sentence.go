package ingest

import "strings"

// sentenceFallbackRunes bounds the working sentence when no segment survives
// sentence splitting.
const sentenceFallbackRunes = 30

// FirstSentence returns the first non-empty segment of normalized text split
// on '.', '!', '?' or newline. When every segment is empty (for example text
// made only of terminal punctuation) the first 30 runes of the text are used.
func FirstSentence(normalized string) string {
	segments := strings.FieldsFunc(normalized, isSentenceBreak)
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			return seg
		}
	}
	return truncateRunes(normalized, sentenceFallbackRunes)
}

func isSentenceBreak(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func runeLen(s string) int {
	return len([]rune(s))
}

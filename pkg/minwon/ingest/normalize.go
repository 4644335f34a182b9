package ingest

import (
	"strings"
	"unicode"
)

// Locative markers that get split off the preceding noun ("역앞" → "역 앞").
const (
	MarkerFront = "앞"
	MarkerBack  = "뒤"
	MarkerSide  = "옆"
)

// locativeMarkers is the order used when attaching a marker to a summary.
var locativeMarkers = []string{MarkerFront, MarkerBack, MarkerSide}

// Normalize rewrites raw complaint text into the canonical form used for
// tokenization and substring matching:
//
//  1. a Hangul run ending in 앞/뒤/옆 gets a space before the marker when the
//     marker is followed by a particle (에 은 는 이 가 을 를), whitespace or
//     the end of the text
//  2. "앞에" collapses to "앞"
//  3. whitespace runs collapse to a single space and the result is trimmed
//
// The rewrite is repeated until nothing changes, so Normalize(Normalize(s))
// always equals Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	for {
		next := normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizeOnce(text string) string {
	text = splitLocatives(text)
	text = strings.ReplaceAll(text, MarkerFront+"에", MarkerFront)
	return strings.Join(strings.Fields(text), " ")
}

// splitLocatives implements step 1 with leftmost-greedy semantics: inside a
// Hangul run the split happens before the last marker whose lookahead holds,
// and scanning resumes right after that marker.
func splitLocatives(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + 8)

	i := 0
	for i < len(runes) {
		if !isHangul(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}

		end := i
		for end < len(runes) && isHangul(runes[end]) {
			end++
		}

		split := -1
		for k := end - 1; k > i; k-- {
			if isLocativeMarker(runes[k]) && lookaheadOK(runes, k+1) {
				split = k
				break
			}
		}
		if split < 0 {
			b.WriteString(string(runes[i:end]))
			i = end
			continue
		}

		b.WriteString(string(runes[i:split]))
		b.WriteRune(' ')
		b.WriteRune(runes[split])
		i = split + 1
	}
	return b.String()
}

func lookaheadOK(runes []rune, pos int) bool {
	if pos >= len(runes) {
		return true
	}
	r := runes[pos]
	return isParticle(r) || unicode.IsSpace(r)
}

func isHangul(r rune) bool {
	return r >= '가' && r <= '힣'
}

func isLocativeMarker(r rune) bool {
	switch r {
	case '앞', '뒤', '옆':
		return true
	}
	return false
}

func isParticle(r rune) bool {
	switch r {
	case '에', '은', '는', '이', '가', '을', '를':
		return true
	}
	return false
}

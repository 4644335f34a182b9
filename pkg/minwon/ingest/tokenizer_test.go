package ingest

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseTag(t *testing.T) {
	tests := map[string]Tag{
		"NNG": TagCommonNoun,
		"NNP": TagProperNoun,
		"NNB": TagOther,
		"VV":  TagOther,
		"":    TagOther,
	}
	for in, want := range tests {
		if got := ParseTag(in); got != want {
			t.Errorf("ParseTag(%q) = %v, want %v", in, got, want)
		}
	}
	if ParseTag(TagProperNoun.String()) != TagProperNoun {
		t.Error("String/ParseTag round trip failed for proper noun")
	}
}

func TestSerializeRunsOneAtATime(t *testing.T) {
	var active, peak int32
	inner := TokenizerFunc(func(s string) ([]Token, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return []Token{{Surface: s, Tag: TagCommonNoun}}, nil
	})
	tok := Serialize(inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tok.Tokenize("학교"); err != nil {
				t.Errorf("Tokenize: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak)
	}
}

func TestNounsFiltersAndKeepsOrder(t *testing.T) {
	tok := TokenizerFunc(func(string) ([]Token, error) {
		return []Token{
			{Surface: "강남역", Tag: TagProperNoun},
			{Surface: "에서", Tag: TagOther},
			{Surface: "소음", Tag: TagCommonNoun},
			{Surface: "심하", Tag: TagOther},
		}, nil
	})

	got, err := nouns(tok, "강남역에서 소음 심하다")
	if err != nil {
		t.Fatalf("nouns: %v", err)
	}
	if len(got) != 2 || got[0] != "강남역" || got[1] != "소음" {
		t.Errorf("nouns = %v", got)
	}
}

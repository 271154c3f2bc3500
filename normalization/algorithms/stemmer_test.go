package algorithms

import (
	"sync"
	"testing"
)

func TestEnglishStemmer_Stem(t *testing.T) {
	stemmer := NewEnglishStemmer()

	tests := []struct {
		input    string
		expected string
	}{
		{"valves", "valv"},
		{"valve", "valv"},
		{"pipes", "pipe"},
		{"  Pipes ", "pipe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := stemmer.Stem(tt.input); got != tt.expected {
				t.Errorf("Stem(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEnglishStemmer_Cache(t *testing.T) {
	stemmer := NewEnglishStemmer()

	first := stemmer.StemWithCache("flanges")
	second := stemmer.StemWithCache("Flanges")
	if first != second {
		t.Errorf("cached stem differs: %q vs %q", first, second)
	}
	if stemmer.CacheSize() != 1 {
		t.Errorf("expected 1 cached entry, got %d", stemmer.CacheSize())
	}

	noCache := NewEnglishStemmerWithoutCache()
	if noCache.StemWithCache("flanges") != first {
		t.Error("stemmer without cache must give the same result")
	}
}

func TestEnglishStemmer_Concurrent(t *testing.T) {
	stemmer := NewEnglishStemmer()
	words := []string{"valves", "pipes", "fittings", "gaskets", "bolts"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stemmer.StemTokens(words)
		}()
	}
	wg.Wait()

	if stemmer.CacheSize() != len(words) {
		t.Errorf("expected %d cached entries, got %d", len(words), stemmer.CacheSize())
	}
}

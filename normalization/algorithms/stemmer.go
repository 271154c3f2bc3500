package algorithms

import (
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// Stemmer interface defines methods for stemming words
type Stemmer interface {
	// Stem returns the stemmed version of a word
	Stem(word string) string

	// StemTokens returns stemmed versions of multiple words
	StemTokens(tokens []string) []string

	// StemWithCache returns the stemmed version with caching
	StemWithCache(word string) string
}

// EnglishStemmer implements stemming for English item descriptions using Snowball algorithm
type EnglishStemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
	useCache bool
}

// NewEnglishStemmer creates a new English language stemmer
func NewEnglishStemmer() *EnglishStemmer {
	return &EnglishStemmer{
		language: "english",
		cache:    make(map[string]string),
		useCache: true,
	}
}

// NewEnglishStemmerWithoutCache creates a stemmer without caching
func NewEnglishStemmerWithoutCache() *EnglishStemmer {
	return &EnglishStemmer{
		language: "english",
		useCache: false,
	}
}

// Stem returns the stemmed version of a word using Snowball algorithm
// Example: "valves" -> "valv", "fittings" -> "fit"
func (s *EnglishStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	// Stop words are handled by TextNormalizer, so they are not filtered here
	stemmed, err := snowball.Stem(normalized, s.language, false)
	if err != nil {
		// If stemming fails, return the normalized word
		return normalized
	}

	return stemmed
}

// StemWithCache returns the stemmed version with caching for performance
func (s *EnglishStemmer) StemWithCache(word string) string {
	if !s.useCache {
		return s.Stem(word)
	}

	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	if cached, ok := s.cache[normalized]; ok {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	stemmed := s.Stem(normalized)

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()

	return stemmed
}

// StemTokens returns stemmed versions of multiple words
func (s *EnglishStemmer) StemTokens(tokens []string) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = s.StemWithCache(token)
	}
	return result
}

// CacheSize returns the number of cached stems
func (s *EnglishStemmer) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

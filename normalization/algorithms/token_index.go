package algorithms

import (
	"sort"
	"sync"
)

// TokenIndex инвертированный индекс токен -> идентификаторы кластеров.
// Используется для отбора кандидатов перед вычислением индекса Жаккара:
// кластеры без общих токенов имеют сходство 0 и не проверяются.
type TokenIndex struct {
	index map[string][]int
	mu    sync.RWMutex
}

// NewTokenIndex создает пустой индекс
func NewTokenIndex() *TokenIndex {
	return &TokenIndex{
		index: make(map[string][]int),
	}
}

// Add добавляет идентификатор для каждого токена
func (ti *TokenIndex) Add(id int, tokens []string) {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		ti.index[token] = append(ti.index[token], id)
	}
}

// Candidates возвращает отсортированные уникальные идентификаторы,
// разделяющие с tokens хотя бы один токен
func (ti *TokenIndex) Candidates(tokens []string) []int {
	ti.mu.RLock()
	defer ti.mu.RUnlock()

	unique := make(map[int]bool)
	for _, token := range tokens {
		for _, id := range ti.index[token] {
			unique[id] = true
		}
	}

	result := make([]int, 0, len(unique))
	for id := range unique {
		result = append(result, id)
	}
	sort.Ints(result)
	return result
}

// Size возвращает количество проиндексированных токенов
func (ti *TokenIndex) Size() int {
	ti.mu.RLock()
	defer ti.mu.RUnlock()
	return len(ti.index)
}

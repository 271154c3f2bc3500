package algorithms

import (
	"strings"
)

// JaccardIndex вычисляет индекс Жаккара для сравнения множеств
// Индекс Жаккара = |A ∩ B| / |A ∪ B|
// Значение от 0.0 (нет общих элементов) до 1.0 (полное совпадение)
type JaccardIndex struct {
	// Если оба описания содержат числа и наборы чисел различаются,
	// описания считаются разными позициями (100mm и 50mm)
	dimensionGuard bool
}

// NewJaccardIndex создает новый вычислитель индекса Жаккара
func NewJaccardIndex() *JaccardIndex {
	return &JaccardIndex{}
}

// NewDimensionAwareJaccard создает вычислитель с проверкой размеров
func NewDimensionAwareJaccard() *JaccardIndex {
	return &JaccardIndex{dimensionGuard: true}
}

// Similarity вычисляет индекс Жаккара для двух строк, разбитых по пробелам
func (j *JaccardIndex) Similarity(text1, text2 string) float64 {
	return j.SimilarityTokens(strings.Fields(text1), strings.Fields(text2))
}

// SimilarityTokens вычисляет индекс Жаккара для двух наборов токенов
func (j *JaccardIndex) SimilarityTokens(tokens1, tokens2 []string) float64 {
	set1 := toSet(tokens1)
	set2 := toSet(tokens2)

	if j.dimensionGuard {
		nums1 := NumericTokens(tokens1)
		nums2 := NumericTokens(tokens2)
		if len(nums1) > 0 && len(nums2) > 0 && !sameSet(nums1, nums2) {
			return 0.0
		}
	}

	return j.computeJaccard(set1, set2)
}

// SimilaritySets вычисляет индекс Жаккара для двух множеств напрямую
func (j *JaccardIndex) SimilaritySets(set1, set2 map[string]bool) float64 {
	return j.computeJaccard(set1, set2)
}

// computeJaccard вычисляет индекс Жаккара для двух множеств
func (j *JaccardIndex) computeJaccard(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	// Вычисляем пересечение
	intersection := 0
	for elem := range set1 {
		if set2[elem] {
			intersection++
		}
	}

	// Объединение
	union := len(set1) + len(set2) - intersection

	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if token != "" {
			set[token] = true
		}
	}
	return set
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for elem := range a {
		if !b[elem] {
			return false
		}
	}
	return true
}

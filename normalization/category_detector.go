package normalization

import (
	"regexp"
	"strings"
)

var categoryWordPattern = regexp.MustCompile(`\p{L}+`)

// categoryRule набор ключевых слов категории
type categoryRule struct {
	name     string
	keywords []string
}

// CategoryDetector определяет категорию позиции по ключевым словам наименования
type CategoryDetector struct {
	rules   []categoryRule
	keyword map[string][]int
}

// NewCategoryDetector создает детектор со словарем категорий по умолчанию
func NewCategoryDetector() *CategoryDetector {
	return newCategoryDetector([]categoryRule{
		{"Piping", []string{"pipe", "tube", "elbow", "tee", "reducer", "flange", "coupling", "nipple", "fitting", "bend"}},
		{"Valves", []string{"valve", "actuator", "strainer"}},
		{"Fasteners", []string{"bolt", "nut", "screw", "washer", "stud", "anchor", "rivet"}},
		{"Electrical", []string{"cable", "wire", "breaker", "switch", "motor", "transformer", "lamp", "socket", "conduit"}},
		{"Structural Steel", []string{"beam", "channel", "angle", "plate", "sheet", "rebar", "girder"}},
		{"Pumps", []string{"pump", "impeller"}},
		{"Bearings", []string{"bearing"}},
		{"Seals & Gaskets", []string{"gasket", "seal", "packing"}},
		{"Instrumentation", []string{"gauge", "sensor", "transmitter", "thermometer", "manometer"}},
		{"Safety", []string{"helmet", "gloves", "goggles", "harness", "respirator"}},
		{"Consumables", []string{"electrode", "paint", "grease", "lubricant", "oil", "solvent"}},
	})
}

func newCategoryDetector(rules []categoryRule) *CategoryDetector {
	d := &CategoryDetector{
		rules:   rules,
		keyword: make(map[string][]int),
	}
	for i, rule := range rules {
		for _, kw := range rule.keywords {
			d.keyword[kw] = append(d.keyword[kw], i)
		}
	}
	return d
}

// Detect возвращает категорию с наибольшим числом совпавших слов.
// При равенстве выигрывает категория, объявленная раньше. Без совпадений - nil.
func (d *CategoryDetector) Detect(name string) *string {
	words := categoryWordPattern.FindAllString(strings.ToLower(name), -1)
	if len(words) == 0 {
		return nil
	}

	scores := make([]int, len(d.rules))
	matched := false
	for _, word := range words {
		for _, idx := range d.lookup(word) {
			scores[idx]++
			matched = true
		}
	}
	if !matched {
		return nil
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	category := d.rules[best].name
	return &category
}

// lookup ищет слово как есть и в единственном числе
func (d *CategoryDetector) lookup(word string) []int {
	if idx, ok := d.keyword[word]; ok {
		return idx
	}
	if strings.HasSuffix(word, "es") {
		if idx, ok := d.keyword[strings.TrimSuffix(word, "es")]; ok {
			return idx
		}
	}
	if strings.HasSuffix(word, "s") {
		if idx, ok := d.keyword[strings.TrimSuffix(word, "s")]; ok {
			return idx
		}
	}
	return nil
}

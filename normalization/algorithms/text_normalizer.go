package algorithms

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Дюймы, записанные кавычками: 2" или 2''
	inchMarkPattern = regexp.MustCompile(`(\d)\s*(?:"|'')`)
	// Слова и числа (в том числе десятичные); "100mm" дает "100" и "mm"
	tokenPattern = regexp.MustCompile(`\p{L}+|\d+(?:\.\d+)?`)
)

// TextNormalizer нормализует описания позиций закупок
type TextNormalizer struct {
	removeStopWords bool
	stopWords       map[string]bool
	stemmer         Stemmer
}

// NewTextNormalizer создает новый нормализатор текста
func NewTextNormalizer(removeStopWords bool) *TextNormalizer {
	return &TextNormalizer{
		removeStopWords: removeStopWords,
		stopWords:       getDefaultStopWordsForNormalizer(),
	}
}

// WithStemmer включает стемминг словесных токенов
func (tn *TextNormalizer) WithStemmer(stemmer Stemmer) *TextNormalizer {
	tn.stemmer = stemmer
	return tn
}

// Normalize выполняет полную нормализацию текста и возвращает токены через пробел
func (tn *TextNormalizer) Normalize(text string) string {
	return strings.Join(tn.Tokens(text), " ")
}

// Tokens возвращает нормализованные токены в порядке первого появления без повторов.
// Для пустого или нечитаемого текста возвращается пустой срез.
func (tn *TextNormalizer) Tokens(text string) []string {
	// 1. Удаление диакритики и приведение совместимых символов
	text = foldUnicode(text)

	// 2. Приведение к нижнему регистру
	text = strings.ToLower(text)

	// 3. Нормализация кавычек и дефисов
	text = normalizeQuotes(text)
	text = normalizeHyphens(text)

	// 4. Дюймовые кавычки в единицу измерения
	text = inchMarkPattern.ReplaceAllString(text, "$1 inch ")

	raw := tokenPattern.FindAllString(text, -1)
	result := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	add := func(token string) {
		if token == "" || seen[token] {
			return
		}
		seen[token] = true
		result = append(result, token)
	}

	prevNumeric := false
	for _, token := range raw {
		if isNumericToken(token) {
			add(canonicalNumber(token))
			prevNumeric = true
			continue
		}

		afterNumber := prevNumeric
		prevNumeric = false

		// 5. Единицы измерения
		if unit, ok := unitSynonyms[token]; ok {
			add(unit)
			continue
		}
		if unit, ok := contextualUnits[token]; ok && afterNumber {
			add(unit)
			continue
		}

		// 6. Аббревиатуры материалов
		if expansion, ok := abbreviations[token]; ok {
			for _, word := range expansion {
				add(tn.stem(word))
			}
			continue
		}

		// 7. Стоп-слова
		if tn.removeStopWords && tn.stopWords[token] {
			continue
		}

		add(tn.stem(token))
	}

	return result
}

func (tn *TextNormalizer) stem(word string) string {
	if tn.stemmer == nil {
		return word
	}
	return tn.stemmer.StemWithCache(word)
}

// foldUnicode раскладывает символы (NFKD), удаляет комбинирующие знаки и собирает обратно
func foldUnicode(text string) string {
	if text == "" {
		return text
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return result
}

// normalizeQuotes нормализует различные типы кавычек
func normalizeQuotes(text string) string {
	replacements := map[rune]rune{
		'“': '"',  // Left double quotation mark
		'”': '"',  // Right double quotation mark
		'″': '"',  // Double prime
		'‘': '\'', // Left single quotation mark
		'’': '\'', // Right single quotation mark
		'′': '\'', // Prime
		'«': '"',
		'»': '"',
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if replacement, ok := replacements[r]; ok {
			builder.WriteRune(replacement)
		} else {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// normalizeHyphens нормализует различные типы дефисов
func normalizeHyphens(text string) string {
	text = strings.ReplaceAll(text, "—", "-")
	text = strings.ReplaceAll(text, "–", "-")
	text = strings.ReplaceAll(text, "−", "-")
	return text
}

func isNumericToken(token string) bool {
	return token != "" && token[0] >= '0' && token[0] <= '9'
}

// canonicalNumber приводит "100.0" и "0100" к "100"
func canonicalNumber(token string) string {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return token
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NumericTokens возвращает множество числовых токенов (размеры, давления, номиналы)
func NumericTokens(tokens []string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokens {
		if isNumericToken(token) {
			set[token] = true
		}
	}
	return set
}

// unitSynonyms однозначные написания единиц измерения
var unitSynonyms = map[string]string{
	"mm": "mm", "millimeter": "mm", "millimeters": "mm", "millimetre": "mm", "millimetres": "mm",
	"cm": "cm", "centimeter": "cm", "centimeters": "cm", "centimetre": "cm",
	"mtr": "m", "mtrs": "m", "meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"inch": "inch", "inches": "inch", "inchs": "inch",
	"ft": "ft", "feet": "ft", "foot": "ft",
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"ltr": "l", "ltrs": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"pcs": "pcs", "pc": "pcs", "piece": "pcs", "pieces": "pcs", "nos": "pcs",
	"bar": "bar", "psi": "psi",
}

// contextualUnits сокращения, которые считаются единицами только после числа
var contextualUnits = map[string]string{
	"in": "inch",
	"m":  "m",
	"l":  "l",
	"no": "pcs",
	"ea": "pcs",
}

// abbreviations сокращения материалов и типовых терминов
var abbreviations = map[string][]string{
	"cs":   {"carbon", "steel"},
	"ss":   {"stainless", "steel"},
	"ms":   {"mild", "steel"},
	"gi":   {"galvanized", "iron"},
	"ci":   {"cast", "iron"},
	"di":   {"ductile", "iron"},
	"dia":  {"diameter"},
	"sch":  {"schedule"},
	"assy": {"assembly"},
	"std":  {"standard"},
	"galv": {"galvanized"},
}

// getDefaultStopWordsForNormalizer возвращает список стоп-слов для нормализатора
func getDefaultStopWordsForNormalizer() map[string]bool {
	return map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true,
		"in": true, "on": true, "at": true, "to": true,
		"for": true, "of": true, "with": true, "by": true, "from": true,
		"is": true, "are": true, "be": true,
		"this": true, "that": true, "these": true, "those": true,
		"type": true, "x": true, "size": true,
	}
}

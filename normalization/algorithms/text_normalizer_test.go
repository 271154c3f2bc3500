package algorithms

import (
	"reflect"
	"testing"
)

// Тесты для TextNormalizer
func TestTextNormalizer_Normalize(t *testing.T) {
	normalizer := NewTextNormalizer(true)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Mixed case with glued unit", "Carbon Steel Pipe 100mm", "carbon steel pipe 100 mm"},
		{"Lowercase with spaced unit", "carbon steel pipe 100 mm", "carbon steel pipe 100 mm"},
		{"Extra whitespace", "  Carbon   Steel\tPipe  100 MM ", "carbon steel pipe 100 mm"},
		{"Material abbreviation", "CS Pipe 100mm", "carbon steel pipe 100 mm"},
		{"Inch mark", `Stainless Steel Valve 2"`, "stainless steel valve 2 inch"},
		{"Inch word after number", "SS valve 2 in", "stainless steel valve 2 inch"},
		{"Unit synonym", "Gate Valve 50 millimetre", "gate valve 50 mm"},
		{"Decimal number canonical", "Flange 100.0 mm", "flange 100 mm"},
		{"Diacritics", "Café Fitting", "cafe fitting"},
		{"Stop words", "Valve for the boiler", "valve boiler"},
		{"Dimension separator", "Plate 100x50 mm", "plate 100 50 mm"},
		{"Duplicate tokens", "CS carbon steel pipe", "carbon steel pipe"},
		{"Punctuation noise", "Pipe, (seamless) - 100mm!!", "pipe seamless 100 mm"},
		{"Empty", "", ""},
		{"Garbage", " ### --- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizer.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextNormalizer_KeepsStopWordsWhenDisabled(t *testing.T) {
	normalizer := NewTextNormalizer(false)

	result := normalizer.Normalize("Valve for boiler")
	if result != "valve for boiler" {
		t.Errorf("Expected stop words to be kept, got %q", result)
	}
}

func TestTextNormalizer_InWithoutNumberIsNotUnit(t *testing.T) {
	normalizer := NewTextNormalizer(false)

	tokens := normalizer.Tokens("valve in stock")
	want := []string{"valve", "in", "stock"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokens() = %v, want %v", tokens, want)
	}
}

func TestTextNormalizer_WithStemmer(t *testing.T) {
	normalizer := NewTextNormalizer(true).WithStemmer(NewEnglishStemmer())

	a := normalizer.Normalize("Gate Valves 50mm")
	b := normalizer.Normalize("gate valve 50 mm")
	if a != b {
		t.Errorf("plural and singular should normalize equally: %q vs %q", a, b)
	}
}

func TestTextNormalizer_Deterministic(t *testing.T) {
	normalizer := NewTextNormalizer(true).WithStemmer(NewEnglishStemmer())
	input := "Stainless Steel Ball Valve 2\" Flanged"

	first := normalizer.Normalize(input)
	for i := 0; i < 10; i++ {
		if got := normalizer.Normalize(input); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestNumericTokens(t *testing.T) {
	set := NumericTokens([]string{"pipe", "100", "mm", "2.5"})
	if len(set) != 2 || !set["100"] || !set["2.5"] {
		t.Errorf("unexpected numeric tokens: %v", set)
	}
}

func TestFoldUnicode_CombiningMarks(t *testing.T) {
	text := "café"
	if got := foldUnicode(text); got != "cafe" {
		t.Errorf("Expected 'cafe' after removing diacritics, got %q", got)
	}
}

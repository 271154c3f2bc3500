package algorithms

import (
	"math"
	"reflect"
	"testing"
)

func TestJaccardIndex_Similarity(t *testing.T) {
	j := NewJaccardIndex()

	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"Identical", "carbon steel pipe", "carbon steel pipe", 1.0},
		{"Half overlap", "a b c", "a b d", 0.5},
		{"Disjoint", "gate valve", "carbon pipe", 0.0},
		{"Order independent", "pipe steel carbon", "carbon steel pipe", 1.0},
		{"Both empty", "", "", 1.0},
		{"One empty", "pipe", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := j.Similarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestJaccardIndex_DimensionGuard(t *testing.T) {
	plain := NewJaccardIndex()
	guarded := NewDimensionAwareJaccard()

	a := []string{"carbon", "steel", "pipe", "100", "mm"}
	b := []string{"carbon", "steel", "pipe", "50", "mm"}

	if got := plain.SimilarityTokens(a, b); math.Abs(got-4.0/6.0) > 1e-9 {
		t.Errorf("plain similarity = %v, want %v", got, 4.0/6.0)
	}
	if got := guarded.SimilarityTokens(a, b); got != 0 {
		t.Errorf("guarded similarity for different sizes = %v, want 0", got)
	}

	// Описание без размеров сравнивается обычным образом
	c := []string{"carbon", "steel", "pipe"}
	if got := guarded.SimilarityTokens(a, c); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("guarded similarity without numbers = %v, want 0.6", got)
	}
	if got := guarded.SimilarityTokens(a, a); got != 1.0 {
		t.Errorf("identical tokens must give 1.0, got %v", got)
	}
}

func TestJaccardIndex_SimilaritySets(t *testing.T) {
	j := NewJaccardIndex()
	set1 := map[string]bool{"a": true, "b": true}
	set2 := map[string]bool{"b": true, "c": true}

	if got := j.SimilaritySets(set1, set2); math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("SimilaritySets = %v, want 1/3", got)
	}
}

func TestTokenIndex_Candidates(t *testing.T) {
	idx := NewTokenIndex()
	idx.Add(0, []string{"carbon", "steel", "pipe"})
	idx.Add(1, []string{"gate", "valve"})
	idx.Add(2, []string{"stainless", "steel", "valve"})

	tests := []struct {
		name   string
		tokens []string
		want   []int
	}{
		{"Shared steel", []string{"steel"}, []int{0, 2}},
		{"Shared valve", []string{"ball", "valve"}, []int{1, 2}},
		{"No overlap", []string{"gasket"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Candidates(tt.tokens)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}

	if idx.Size() != 6 {
		t.Errorf("expected 6 indexed tokens, got %d", idx.Size())
	}
}

package match

import (
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		// Identical strings
		{"", "", 0},
		{"hello", "hello", 0},

		// Empty vs non-empty
		{"", "abc", 3},
		{"abc", "", 3},

		// Single character operations
		{"a", "b", 1},
		{"a", "ab", 1},
		{"ab", "a", 1},

		// Multiple operations
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},

		// Case-sensitive
		{"Hello", "hello", 1},

		// Runes, not bytes
		{"名前", "名", 1},
		{"größe", "grosse", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := Levenshtein(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}

			// Verify symmetry
			resultReverse := Levenshtein(tt.b, tt.a)
			if result != resultReverse {
				t.Errorf("Levenshtein symmetry failed: (%q, %q) = %d, (%q, %q) = %d",
					tt.a, tt.b, result, tt.b, tt.a, resultReverse)
			}
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1.0},
		{"hello", "hello", 1.0},
		{"abc", "xyz", 0.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"名前", "名", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := LevenshteinNormalized(tt.a, tt.b)
			if diff := result - tt.expected; diff < -0.001 || diff > 0.001 {
				t.Errorf("LevenshteinNormalized(%q, %q) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestHeaderSimilarity(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		minScore float64
	}{
		{"DropRate", "drop_rate", 1.0},
		{"Item ID", "item", 1.0},
		{"Level", "Lvl", 0.5},
		{"Name", "Description", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := HeaderSimilarity(tt.a, tt.b)
			if result < tt.minScore {
				t.Errorf("HeaderSimilarity(%q, %q) = %f, want >= %f", tt.a, tt.b, result, tt.minScore)
			}
		})
	}
}

func BenchmarkLevenshtein(b *testing.B) {
	for b.Loop() {
		Levenshtein("move_speed_bonus", "MoveSpeedBonus")
	}
}

package match

import (
	"strings"
	"unicode"
)

// NormalizeHeader normalizes a header cell for fuzzy matching.
// The normalization pipeline:
// 1. Tokenize CamelCase.
// 2. Case-fold to lower.
// 3. Strip separators (_, -, ., spaces and line breaks).
func NormalizeHeader(s string) string {
	tokens := tokenizeCamelCase(s)

	return strings.ToLower(strings.Join(tokens, ""))
}

// NormalizeHeaderWithSuffixStrip normalizes and strips a trailing id
// token, so "Item ID" and "item" compare equal.
func NormalizeHeaderWithSuffixStrip(s string) string {
	normalized := NormalizeHeader(s)

	for _, suffix := range []string{"ids", "id"} {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			return strings.TrimSuffix(normalized, suffix)
		}
	}

	return normalized
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "DropRate" -> ["Drop", "Rate"]
//   - "itemID" -> ["item", "ID"]
//   - "HPMax" -> ["HP", "Max"]
//   - "move speed" -> ["move", "speed"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// "dropRate" -> split before 'R'
	if isUpper && !isPrevUpper && !isSeparator(prev) {
		return true
	}

	// "HPMax" -> "HP" + "Max", split before 'M'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

package common

import "strings"

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// IsBlank reports whether a raw cell value carries no data: nil, an empty
// string, or a whitespace-only string.
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}

// AllBlank reports whether every cell in the row is blank.
func AllBlank(cells []any) bool {
	for _, c := range cells {
		if !IsBlank(c) {
			return false
		}
	}

	return true
}

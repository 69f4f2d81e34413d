// Package hooks registers the built-in row filters, folds and post-row
// hooks that rule files can refer to by name.
package hooks

import (
	"errors"
	"fmt"
	"strings"

	"sheet-importer/convert"
	"sheet-importer/internal/common"
	"sheet-importer/internal/record"
	"sheet-importer/internal/registry"
	"sheet-importer/internal/rule"
)

func init() {
	registry.Register(Builtins{})
}

// Builtins is the module holding the built-in functions.
type Builtins struct{}

func (Builtins) Register(r *registry.Registry) {
	r.RegisterFilter("skip_comments", SkipComments)

	r.RegisterFold("sum", rule.Fold2(Sum))
	r.RegisterFold("max", rule.Fold2(Max))
	r.RegisterFold("append", rule.Fold2(Append))
	r.RegisterFold("keep_first", rule.Fold2(KeepFirst))
	r.RegisterFold("join", rule.Fold2(Join))

	r.RegisterHook("strip_nulls", StripNulls)
}

var errNotNumeric = errors.New("not a number")

// SkipComments drops rows whose first non-blank cell starts with "#" or
// "//".
func SkipComments(row rule.Row) bool {
	for _, c := range row.Cells {
		if common.IsBlank(c) {
			continue
		}

		s, ok := c.(string)
		if !ok {
			return true
		}

		s = strings.TrimSpace(s)

		return !strings.HasPrefix(s, "#") && !strings.HasPrefix(s, "//")
	}

	return true
}

// Sum adds value to prior. Integers stay integers.
func Sum(value, prior any) (any, error) {
	return arith(value, prior, func(a, b int) int { return a + b }, func(a, b float64) float64 { return a + b })
}

// Max keeps the larger of value and prior.
func Max(value, prior any) (any, error) {
	return arith(value, prior, func(a, b int) int { return max(a, b) }, func(a, b float64) float64 { return max(a, b) })
}

func arith(value, prior any, ints func(a, b int) int, floats func(a, b float64) float64) (any, error) {
	if value == nil {
		return nil, nil
	}

	if prior == nil {
		return value, nil
	}

	a, aok := convert.AsInt(prior)
	b, bok := convert.AsInt(value)

	if aok && bok && isInteger(prior) && isInteger(value) {
		return ints(a, b), nil
	}

	fa, err := toFloat(prior)
	if err != nil {
		return nil, fmt.Errorf("prior: %w", err)
	}

	fb, err := toFloat(value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}

	return floats(fa, fb), nil
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func toFloat(v any) (float64, error) {
	f, ok, err := convert.Float().Input(v)
	if err != nil {
		return 0, err
	}

	if !ok {
		return 0, fmt.Errorf("%w: %v", errNotNumeric, v)
	}

	return f.(float64), nil
}

// Append adds value to the array at the target. A non-array prior becomes
// the first element.
func Append(value, prior any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch p := prior.(type) {
	case nil:
		return []any{value}, nil
	case []any:
		out := make([]any, len(p), len(p)+1)
		copy(out, p)

		return append(out, value), nil
	default:
		return []any{p, value}, nil
	}
}

// KeepFirst keeps an existing value and only fills unset targets.
func KeepFirst(value, prior any) (any, error) {
	if prior != nil {
		return prior, nil
	}

	return value, nil
}

// Join concatenates string forms with ", ".
func Join(value, prior any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if prior == nil || convert.Stringify(prior) == "" {
		return convert.Stringify(value), nil
	}

	return convert.Stringify(prior) + ", " + convert.Stringify(value), nil
}

// StripNulls returns a copy of rec without nil properties, recursively.
// Array positions are kept.
func StripNulls(rec record.Record) (record.Record, []record.Record, error) {
	out := record.Record(stripMap(rec))

	return out, nil, nil
}

func stripMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for k, v := range m {
		if v == nil {
			continue
		}

		out[k] = stripValue(v)
	}

	return out
}

func stripValue(v any) any {
	switch x := v.(type) {
	case record.Record:
		return stripMap(x)
	case map[string]any:
		return stripMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = stripValue(e)
		}

		return out
	default:
		return v
	}
}

package convert

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// number widens any Go numeric type to float64.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// integer converts Go integer types to int without widening to float64.
// handled reports whether v is an integer type, fits whether its value is
// representable as int.
func integer(v any) (n int, handled, fits bool) {
	switch x := v.(type) {
	case int:
		return x, true, true
	case int8:
		return int(x), true, true
	case int16:
		return int(x), true, true
	case int32:
		return int(x), true, true
	case int64:
		return int(x), true, int64(int(x)) == x
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int(x), true, true
	case uint16:
		return int(x), true, true
	case uint32:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	default:
		return 0, false, false
	}
}

func fromUint(x uint64) (int, bool, bool) {
	if x > uint64(math.MaxInt) {
		return 0, true, false
	}

	return int(x), true, true
}

// inIntRange reports whether the already-integral f converts to int
// without overflow. float64(math.MaxInt) rounds up to 2^63, hence >=.
func inIntRange(f float64) bool {
	return f >= float64(math.MinInt) && f < float64(math.MaxInt)
}

func toInt(raw any) (any, bool, error) {
	if n, handled, fits := integer(raw); handled {
		if !fits {
			return nil, false, fmt.Errorf("%w: %v is out of integer range", ErrUnparsable, raw)
		}

		return n, true, nil
	}

	switch x := raw.(type) {
	case nil:
		return nil, false, ErrEmptyValue
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, false, ErrEmptyValue
		}

		if n, err := strconv.Atoi(s); err == nil {
			return n, true, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %q is not an integer", ErrUnparsable, x)
		}

		return floorInt(f)
	}

	f, ok := number(raw)
	if !ok {
		return nil, false, fmt.Errorf("%w: int from %T", ErrTypeMismatch, raw)
	}

	return floorInt(f)
}

func floorInt(f float64) (any, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false, fmt.Errorf("%w: %v is not finite", ErrUnparsable, f)
	}

	f = math.Floor(f)
	if !inIntRange(f) {
		return nil, false, fmt.Errorf("%w: %v is out of integer range", ErrUnparsable, f)
	}

	return int(f), true, nil
}

func toFloat(raw any) (any, bool, error) {
	switch x := raw.(type) {
	case nil:
		return nil, false, ErrEmptyValue
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, false, ErrEmptyValue
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %q is not a number", ErrUnparsable, x)
		}

		return f, true, nil
	}

	f, ok := number(raw)
	if !ok {
		return nil, false, fmt.Errorf("%w: float from %T", ErrTypeMismatch, raw)
	}

	return f, true, nil
}

// toBool keeps the historical truthiness of string cells: only "false"
// and "0" (any case) are false, every other non-empty string is true.
func toBool(raw any) (any, bool, error) {
	switch x := raw.(type) {
	case nil:
		return nil, false, ErrEmptyValue
	case bool:
		return x, true, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		switch s {
		case "":
			return nil, false, ErrEmptyValue
		case "true":
			return true, true, nil
		case "false", "0":
			return false, true, nil
		default:
			return true, true, nil
		}
	}

	f, ok := number(raw)
	if !ok {
		return nil, false, fmt.Errorf("%w: bool from %T", ErrTypeMismatch, raw)
	}

	return f != 0, true, nil
}

// Stringify renders a cell value as text. Whole floats print without a
// fraction or exponent and nil prints as the empty string.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// AsInt reports the integral value of v: an integer, a float without a
// fraction or a string holding a base-10 integer. Values outside the int
// range are not integral.
func AsInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}

	if n, handled, fits := integer(v); handled {
		return n, fits
	}

	f, ok := number(v)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) || !inIntRange(f) {
		return 0, false
	}

	return int(f), true
}

// roundNoise drops binary floating point noise below 1e-9 so that
// 0.29*100 scales to 29 rather than 28.999999999999996.
func roundNoise(f float64) float64 {
	const scale = 1e9

	r := math.Round(f*scale) / scale
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return f
	}

	return r
}

func equalScalar(a, b any) bool {
	fa, okA := number(a)
	fb, okB := number(b)

	if okA && okB {
		return fa == fb
	}

	if okA || okB {
		return false
	}

	return reflect.DeepEqual(a, b)
}

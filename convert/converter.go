package convert

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DefaultSep is the separator used by List and Tuple when none is given.
const DefaultSep = ","

// Converter is a tagged converter value. Only the fields relevant to
// Kind are used.
type Converter struct {
	Kind Kind

	// Sep splits List and Tuple cells.
	Sep string
	// Elem converts every List element.
	Elem *Converter
	// Items convert Tuple positions; extra positions use Str.
	Items []Converter
	// Values maps Enum keys to values.
	Values map[string]any
	// Fallback is the Enum default.
	Fallback any
	// Ratio scales RatioInt and RatioFloat input.
	Ratio float64
}

// Int converts numbers and numeric strings to int, flooring fractions.
func Int() Converter { return Converter{Kind: KindInt} }

// Float converts numbers and numeric strings to float64.
func Float() Converter { return Converter{Kind: KindFloat} }

// Str stringifies any cell.
func Str() Converter { return Converter{Kind: KindStr} }

// Bool converts booleans, numbers and strings to bool.
func Bool() Converter { return Converter{Kind: KindBool} }

// Template marks the column holding a template record id.
func Template() Converter { return Converter{Kind: KindTemplate} }

// List splits a cell on sep and converts every piece with elem.
func List(sep string, elem Converter) Converter {
	return Converter{Kind: KindList, Sep: sep, Elem: &elem}
}

// Tuple splits a cell on sep and converts each position with its own
// converter.
func Tuple(sep string, items ...Converter) Converter {
	return Converter{Kind: KindTuple, Sep: sep, Items: items}
}

// Enum looks string cells up in values.
func Enum(values map[string]any) Converter {
	return Converter{Kind: KindEnum, Values: values}
}

// EnumOr is Enum with a default value.
func EnumOr(values map[string]any, fallback any) Converter {
	return Converter{Kind: KindEnum, Values: values, Fallback: fallback}
}

// RatioInt multiplies numeric cells by ratio, then converts to int.
func RatioInt(ratio float64) Converter {
	return Converter{Kind: KindRatioInt, Ratio: ratio}
}

// RatioFloat multiplies numeric cells by ratio.
func RatioFloat(ratio float64) Converter {
	return Converter{Kind: KindRatioFloat, Ratio: ratio}
}

// Validate checks that the fields required by Kind are set.
func (c Converter) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidConverter, c.Kind)
	}

	switch c.Kind {
	case KindList:
		if c.Elem == nil {
			return fmt.Errorf("%w: list without element converter", ErrInvalidConverter)
		}

		return c.Elem.Validate()
	case KindTuple:
		for i, item := range c.Items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("tuple item %d: %w", i, err)
			}
		}

		return nil
	case KindEnum:
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: enum without values", ErrInvalidConverter)
		}

		return nil
	case KindRatioInt, KindRatioFloat:
		if c.Ratio == 0 {
			return fmt.Errorf("%w: %s with zero ratio", ErrInvalidConverter, c.Kind)
		}
	}

	return nil
}

// Input converts a raw cell. ok == false means no value was produced.
// With ok == true a non-nil err reports a partial value, such as a list
// with unconvertible elements.
func (c Converter) Input(raw any) (value any, ok bool, err error) {
	switch c.Kind {
	case KindInt:
		return toInt(raw)
	case KindFloat:
		return toFloat(raw)
	case KindStr, KindTemplate:
		return Stringify(raw), true, nil
	case KindBool:
		return toBool(raw)
	case KindList:
		return c.inputSeq(raw, func(int) Converter { return c.elem() })
	case KindTuple:
		return c.inputSeq(raw, c.item)
	case KindEnum:
		s, isStr := raw.(string)
		if !isStr {
			return nil, false, nil
		}

		v, found := c.Values[strings.TrimSpace(s)]

		return v, found, nil
	case KindRatioInt, KindRatioFloat:
		return c.inputRatio(raw)
	default:
		return nil, false, fmt.Errorf("%w: unknown kind %s", ErrInvalidConverter, c.Kind)
	}
}

// Default returns the value assigned by the DEFAULT directive.
func (c Converter) Default() (any, error) {
	switch c.Kind {
	case KindInt, KindRatioInt:
		return 0, nil
	case KindFloat, KindRatioFloat:
		return 0.0, nil
	case KindStr:
		return "", nil
	case KindBool:
		return false, nil
	case KindList:
		return []any{}, nil
	case KindTuple:
		out := make([]any, len(c.Items))
		for i, item := range c.Items {
			v, err := item.Default()
			if err != nil {
				return nil, fmt.Errorf("tuple item %d: %w", i, err)
			}

			out[i] = v
		}

		return out, nil
	case KindEnum:
		return c.Fallback, nil
	case KindTemplate:
		return nil, ErrNoDefault
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrInvalidConverter, c.Kind)
	}
}

// Output renders a typed value back into its raw cell form.
func (c Converter) Output(value any) any {
	switch c.Kind {
	case KindList:
		return c.outputSeq(value, func(int) Converter { return c.elem() })
	case KindTuple:
		return c.outputSeq(value, c.item)
	case KindEnum:
		return c.outputEnum(value)
	case KindRatioInt, KindRatioFloat:
		f, ok := number(value)
		if !ok || c.Ratio == 0 {
			return value
		}

		return f / c.Ratio
	default:
		return value
	}
}

// String describes the converter, e.g. List(",", Int).
func (c Converter) String() string {
	switch c.Kind {
	case KindList:
		return fmt.Sprintf("List(%q, %s)", c.sep(), c.elem())
	case KindTuple:
		items := make([]string, len(c.Items))
		for i, item := range c.Items {
			items[i] = item.String()
		}

		return fmt.Sprintf("Tuple(%q, %s)", c.sep(), strings.Join(items, ", "))
	case KindEnum:
		return fmt.Sprintf("Enum(%s)", strings.Join(slices.Sorted(maps.Keys(c.Values)), "|"))
	case KindRatioInt, KindRatioFloat:
		return c.Kind.String() + "(" + strconv.FormatFloat(c.Ratio, 'f', -1, 64) + ")"
	default:
		return c.Kind.String()
	}
}

func (c Converter) sep() string {
	if c.Sep == "" {
		return DefaultSep
	}

	return c.Sep
}

func (c Converter) elem() Converter {
	if c.Elem == nil {
		return Str()
	}

	return *c.Elem
}

func (c Converter) item(i int) Converter {
	if i < len(c.Items) {
		return c.Items[i]
	}

	return Str()
}

func (c Converter) inputSeq(raw any, at func(int) Converter) (any, bool, error) {
	var pieces []any

	switch x := raw.(type) {
	case []any:
		pieces = x
	default:
		s := strings.TrimSpace(Stringify(raw))
		if s == "" {
			return nil, false, ErrEmptyValue
		}

		for p := range strings.SplitSeq(s, c.sep()) {
			pieces = append(pieces, strings.TrimSpace(p))
		}
	}

	out := make([]any, len(pieces))

	var errs []error

	for i, p := range pieces {
		v, ok, err := at(i).Input(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
		}

		if ok {
			out[i] = v
		}
	}

	return out, true, errors.Join(errs...)
}

func (c Converter) outputSeq(value any, at func(int) Converter) any {
	items, ok := value.([]any)
	if !ok {
		if value == nil {
			return ""
		}

		return value
	}

	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = Stringify(at(i).Output(v))
	}

	return strings.Join(parts, c.sep())
}

func (c Converter) outputEnum(value any) any {
	if value == nil {
		return nil
	}

	for _, k := range slices.Sorted(maps.Keys(c.Values)) {
		if equalScalar(c.Values[k], value) {
			return k
		}
	}

	return nil
}

func (c Converter) inputRatio(raw any) (any, bool, error) {
	f, ok, err := toFloat(raw)
	if !ok {
		return nil, false, err
	}

	scaled := roundNoise(f.(float64) * c.Ratio)
	if c.Kind == KindRatioFloat {
		return scaled, true, nil
	}

	return toInt(scaled)
}

package record

import (
	"errors"
	"fmt"
)

// Canonical identity properties set on every emitted record.
const (
	UIDKey = "uid"
	KeyKey = "key"
)

// ErrPathConflict is returned when a path walks through a value that is
// neither an object nor an array.
var ErrPathConflict = errors.New("path conflicts with existing value")

// Record is one object definition as a JSON-like map.
type Record map[string]any

// New returns an empty record.
func New() Record { return Record{} }

// UID returns the record's uid property when it is a non-empty string.
func (r Record) UID() (string, bool) {
	uid, ok := r[UIDKey].(string)
	if !ok || uid == "" {
		return "", false
	}

	return uid, true
}

// Clone returns a deep copy of r. Nested objects come back as
// map[string]any and arrays as []any.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Record:
		return map[string]any(x.Clone())
	case map[string]any:
		return map[string]any(Record(x).Clone())
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}

		return out
	default:
		return v
	}
}

// Get returns the value at path.
func (r Record) Get(path Path) (any, bool) {
	var cur any = map[string]any(r)

	for _, seg := range path {
		switch seg.Kind {
		case SegmentKey:
			m, ok := asObject(cur)
			if !ok {
				return nil, false
			}

			v, ok := m[seg.Key]
			if !ok {
				return nil, false
			}

			cur = v
		case SegmentIndex:
			s, ok := cur.([]any)
			if !ok || seg.Index >= len(s) {
				return nil, false
			}

			cur = s[seg.Index]
		case SegmentAppend:
			// Reading through an append addresses the array itself.
			if _, ok := cur.([]any); !ok {
				return nil, false
			}
		}
	}

	return cur, true
}

// Set stores v at path, creating intermediate objects and arrays.
// An append segment pushes v onto the array at that location.
func (r Record) Set(path Path, v any) error {
	if err := path.validate(); err != nil {
		return err
	}

	if _, err := setIn(map[string]any(r), path, v); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	return nil
}

// Delete removes the value at path. Array positions are set to nil.
func (r Record) Delete(path Path) {
	if len(path) == 0 {
		return
	}

	parent, ok := r.Get(path.Parent())
	if len(path) == 1 {
		parent, ok = map[string]any(r), true
	}

	if !ok {
		return
	}

	last := path[len(path)-1]
	switch last.Kind {
	case SegmentKey:
		if m, ok := asObject(parent); ok {
			delete(m, last.Key)
		}
	case SegmentIndex:
		if s, ok := parent.([]any); ok && last.Index < len(s) {
			s[last.Index] = nil
		}
	case SegmentAppend:
	}
}

func setIn(cur any, segs []Segment, v any) (any, error) {
	if len(segs) == 0 {
		return v, nil
	}

	seg, rest := segs[0], segs[1:]

	switch seg.Kind {
	case SegmentKey:
		m, ok := asObject(cur)
		if !ok {
			if cur != nil {
				return nil, fmt.Errorf("%w: %q is %T", ErrPathConflict, seg.Key, cur)
			}

			m = map[string]any{}
		}

		child, err := setIn(m[seg.Key], rest, v)
		if err != nil {
			return nil, err
		}

		m[seg.Key] = child

		return m, nil

	case SegmentIndex:
		s, err := asArray(cur, seg)
		if err != nil {
			return nil, err
		}

		for len(s) <= seg.Index {
			s = append(s, nil)
		}

		child, err := setIn(s[seg.Index], rest, v)
		if err != nil {
			return nil, err
		}

		s[seg.Index] = child

		return s, nil

	case SegmentAppend:
		s, err := asArray(cur, seg)
		if err != nil {
			return nil, err
		}

		return append(s, v), nil
	}

	return nil, fmt.Errorf("unknown segment kind %d", seg.Kind)
}

func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case Record:
		return x, true
	default:
		return nil, false
	}
}

func asArray(v any, seg Segment) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	default:
		return nil, fmt.Errorf("%w: %s on %T", ErrPathConflict, seg, v)
	}
}

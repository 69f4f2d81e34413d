package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind tells how a path segment addresses its container.
type SegmentKind int

const (
	// SegmentKey addresses an object property.
	SegmentKey SegmentKind = iota
	// SegmentIndex addresses a fixed array position.
	SegmentIndex
	// SegmentAppend pushes onto an array. Only valid as the last segment.
	SegmentAppend
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key returns a property segment.
func Key(name string) Segment { return Segment{Kind: SegmentKey, Key: name} }

// Index returns an array position segment.
func Index(i int) Segment { return Segment{Kind: SegmentIndex, Index: i} }

// Append returns an append segment.
func Append() Segment { return Segment{Kind: SegmentAppend} }

// String renders the segment the way ParsePath accepts it.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SegmentAppend:
		return "[]"
	default:
		return s.Key
	}
}

// Path addresses a value inside a Record.
type Path []Segment

var (
	errEmptyPath   = errors.New("empty path")
	errAppendFirst = errors.New("path must start with a property name")
)

// ParsePath parses a path string into a Path.
// Supports: "name", "stats.hp", "pos[1]", "pos.1", "tags[]", "grid[0][2]".
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	var segments Path

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		name, brackets, _ := strings.Cut(part, "[")
		switch {
		case name == "" && len(segments) == 0:
			return nil, fmt.Errorf("invalid path %q: %w", path, errAppendFirst)
		case name == "":
		case isDigits(name) && len(segments) > 0:
			n, _ := strconv.Atoi(name)
			segments = append(segments, Index(n))
		default:
			if strings.ContainsRune(name, ']') {
				return nil, fmt.Errorf("invalid path %q: unbalanced bracket in %q", path, part)
			}

			segments = append(segments, Key(name))
		}

		if !strings.Contains(part, "[") {
			continue
		}

		idx, err := parseBrackets("[" + brackets)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}

		segments = append(segments, idx...)
	}

	if err := segments.validate(); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	return segments, nil
}

// MustParsePath is like ParsePath but panics on error. For use in
// Go-defined rules and tests.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

// parseBrackets parses a run of "[n]" and "[]" groups.
func parseBrackets(s string) (Path, error) {
	var out Path

	for s != "" {
		if s[0] != '[' {
			return nil, fmt.Errorf("unexpected %q after index", s)
		}

		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, errors.New("unbalanced bracket")
		}

		inner := s[1:end]
		switch {
		case inner == "":
			out = append(out, Append())
		case isDigits(inner):
			n, err := strconv.Atoi(inner)
			if err != nil {
				return nil, err
			}

			out = append(out, Index(n))
		default:
			return nil, fmt.Errorf("invalid index %q", inner)
		}

		s = s[end+1:]
	}

	return out, nil
}

func (p Path) validate() error {
	if len(p) == 0 {
		return errEmptyPath
	}

	if p[0].Kind != SegmentKey {
		return errAppendFirst
	}

	for i, seg := range p {
		if seg.Kind == SegmentAppend && i != len(p)-1 {
			return errors.New("[] is only allowed as the last segment")
		}
	}

	return nil
}

// Validate reports whether a programmatically built path is well formed.
func (p Path) Validate() error {
	return p.validate()
}

// String returns the path as a string.
func (p Path) String() string {
	var sb strings.Builder

	for i, seg := range p {
		if i > 0 && seg.Kind == SegmentKey {
			sb.WriteString(".")
		}

		sb.WriteString(seg.String())
	}

	return sb.String()
}

// IsEmpty returns true if the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p) == 0
}

// Appends reports whether the path ends with an append segment.
func (p Path) Appends() bool {
	return len(p) > 0 && p[len(p)-1].Kind == SegmentAppend
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}

	return p[:len(p)-1]
}

// Concat returns a new path made of p followed by q.
func (p Path) Concat(q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)

	return append(out, q...)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

package rule

import (
	"errors"
	"fmt"

	"sheet-importer/internal/record"
)

//go:generate go tool stringer -type=DirectiveKind -trimprefix=Directive -output=directive_string.go

// DirectiveKind selects how a converted value is written into a record.
type DirectiveKind int

const (
	// DirectiveNone assigns the value when conversion produced one.
	DirectiveNone DirectiveKind = iota
	// DirectiveDefault assigns the converter default for empty cells.
	DirectiveDefault
	// DirectiveRequired reports empty cells and skips the assignment.
	DirectiveRequired
	// DirectiveIgnore converts the cell but never assigns it.
	DirectiveIgnore
	// DirectiveRemap redirects the assignment to another path.
	DirectiveRemap
	// DirectiveFold combines the value with what is already at the target.
	DirectiveFold
)

// FoldFunc computes the value to store from the converted cell value and
// the value currently at the target path (nil when unset).
type FoldFunc func(value, prior any, s Scope) (any, error)

// Fold2 adapts a function that does not need the row scope.
func Fold2(fn func(value, prior any) (any, error)) FoldFunc {
	return func(value, prior any, _ Scope) (any, error) {
		return fn(value, prior)
	}
}

// Directive is the per-field write policy. Remap carries a Path and an
// Inner directive; Fold carries Fn.
type Directive struct {
	Kind  DirectiveKind
	Path  record.Path
	Inner *Directive
	Fn    FoldFunc
	// Name labels a fold resolved from a rule file.
	Name string
}

var (
	None     = Directive{Kind: DirectiveNone}
	Default  = Directive{Kind: DirectiveDefault}
	Required = Directive{Kind: DirectiveRequired}
	Ignore   = Directive{Kind: DirectiveIgnore}
)

// As redirects the write to path and applies inner there. It panics on a
// malformed path; use AsPath with a parsed path otherwise.
func As(path string, inner Directive) Directive {
	return AsPath(record.MustParsePath(path), inner)
}

// AsPath is As with a parsed path.
func AsPath(path record.Path, inner Directive) Directive {
	return Directive{Kind: DirectiveRemap, Path: path, Inner: &inner}
}

// Fold returns a directive that stores fn(value, prior, scope).
func Fold(fn FoldFunc) Directive {
	return Directive{Kind: DirectiveFold, Fn: fn}
}

// NamedFold is Fold with a label used when describing the rule.
func NamedFold(name string, fn FoldFunc) Directive {
	return Directive{Kind: DirectiveFold, Fn: fn, Name: name}
}

// IsRemap reports whether the directive redirects its write.
func (d Directive) IsRemap() bool {
	return d.Kind == DirectiveRemap
}

// Resolve flattens a remap chain. It returns the concatenated remap path
// (nil when d is not a remap) and the terminal directive.
func (d Directive) Resolve() (record.Path, Directive) {
	var path record.Path

	cur := d
	for cur.Kind == DirectiveRemap {
		path = path.Concat(cur.Path)

		if cur.Inner == nil {
			return path, None
		}

		cur = *cur.Inner
	}

	return path, cur
}

var (
	errRemapTerminal = errors.New("remap must end in none, default or a fold")
	errFoldWithoutFn = errors.New("fold without a function")
)

// Validate checks that a remap chain is well formed and terminates in a
// directive that assigns.
func (d Directive) Validate() error {
	switch d.Kind {
	case DirectiveNone, DirectiveDefault, DirectiveRequired, DirectiveIgnore:
		return nil
	case DirectiveFold:
		if d.Fn == nil {
			return errFoldWithoutFn
		}

		return nil
	case DirectiveRemap:
		path, terminal := d.Resolve()
		if err := path.Validate(); err != nil {
			return fmt.Errorf("remap path: %w", err)
		}

		switch terminal.Kind {
		case DirectiveNone, DirectiveDefault:
			return nil
		case DirectiveFold:
			return terminal.Validate()
		default:
			return fmt.Errorf("%w, got %s", errRemapTerminal, terminal.Kind)
		}
	default:
		return fmt.Errorf("unknown directive kind %s", d.Kind)
	}
}

// String describes the directive, e.g. AS(stats.hp, Default).
func (d Directive) String() string {
	switch d.Kind {
	case DirectiveRemap:
		inner := None
		if d.Inner != nil {
			inner = *d.Inner
		}

		return fmt.Sprintf("AS(%s, %s)", d.Path, inner)
	case DirectiveFold:
		if d.Name != "" {
			return "Fold(" + d.Name + ")"
		}

		return "Fold"
	default:
		return d.Kind.String()
	}
}

package rule

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"sheet-importer/convert"
)

// Resolver looks up the named functions a rule file refers to.
type Resolver interface {
	Filter(name string) (RowFilter, bool)
	Hook(name string) (PostRowHook, bool)
	Fold(name string) (FoldFunc, bool)
}

var errNoResolver = errors.New("no resolver for named functions")

// Compile builds a Rule from its file form. base is the rule named by
// spec.Extends, or nil. Named filters, hooks and folds are looked up in
// res, which may be nil for rules that use none.
func Compile(spec *RuleSpec, res Resolver, base *Rule) (*Rule, error) {
	if spec.Extends != "" && base == nil {
		return nil, fmt.Errorf("%w %q: base rule %q not found", ErrInvalidRule, spec.Name, spec.Extends)
	}

	var b *Builder
	if base != nil {
		b = Derive(base).Named(spec.Name)
	} else {
		b = New(spec.Name, spec.Type)
	}

	applyScalars(b, spec)

	var errs []error

	if spec.Index != nil {
		conv := convert.Int()

		if spec.Index.Converter != nil {
			c, err := spec.Index.Converter.Compile()
			if err != nil {
				errs = append(errs, fmt.Errorf("index: %w", err))
			}

			conv = c
		}

		b.IndexBy(spec.Index.Column, conv)

		if spec.Index.Path != nil {
			b.r.index.Path = spec.Index.Path.Path
		}
	}

	if spec.Template != nil {
		b.TemplateBy(spec.Template.Column)
	}

	for _, col := range spec.Remove {
		b.Without(col)
	}

	seen := map[string]struct{}{}

	for i := range spec.Fields {
		f, err := spec.Fields[i].Compile(res)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		col := strings.TrimSpace(f.Column)
		if _, dup := seen[col]; dup {
			errs = append(errs, fmt.Errorf("column %q is bound more than once", col))
			continue
		}

		seen[col] = struct{}{}

		b.Field(f)
	}

	errs = append(errs, applyNamed(b, spec, res)...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidRule, spec.Name, errors.Join(errs...))
	}

	return b.Build()
}

func applyScalars(b *Builder, spec *RuleSpec) {
	if spec.Type != "" {
		b.ObjectType(spec.Type)
	}

	if spec.Source != "" {
		b.Source(spec.Source)
	}

	if spec.Sheet != "" {
		b.Sheet(spec.Sheet)
	}

	if spec.HeaderRow != 0 {
		b.HeaderRow(spec.HeaderRow)
	}

	if spec.DataRow != 0 {
		b.StartBy(spec.DataRow)
	}

	if spec.Origin != "" {
		b.Origin(spec.Origin)
	}
}

func applyNamed(b *Builder, spec *RuleSpec, res Resolver) []error {
	var errs []error

	if spec.Filter != "" {
		if res == nil {
			return []error{errNoResolver}
		}

		fn, ok := res.Filter(spec.Filter)
		if ok {
			b.NamedFilter(spec.Filter, fn)
		} else {
			errs = append(errs, fmt.Errorf("unknown filter %q", spec.Filter))
		}
	}

	if spec.Hook != "" {
		if res == nil {
			return []error{errNoResolver}
		}

		fn, ok := res.Hook(spec.Hook)
		if ok {
			b.NamedHook(spec.Hook, fn)
		} else {
			errs = append(errs, fmt.Errorf("unknown hook %q", spec.Hook))
		}
	}

	return errs
}

// Compile builds the field definition.
func (s *FieldSpec) Compile(res Resolver) (FieldDef, error) {
	f := FieldDef{Column: s.Column, Converter: convert.Str(), Directive: None}

	if strings.TrimSpace(s.Column) == "" {
		return f, errors.New("field without column")
	}

	if s.Path != nil {
		f.Path = s.Path.Path
	} else {
		f.Path = columnPath(s.Column)
	}

	if s.Converter != nil {
		c, err := s.Converter.Compile()
		if err != nil {
			return f, fmt.Errorf("column %q: %w", s.Column, err)
		}

		f.Converter = c
	}

	if s.Directive != nil {
		d, err := s.Directive.Compile(res)
		if err != nil {
			return f, fmt.Errorf("column %q: %w", s.Column, err)
		}

		f.Directive = d
	}

	return f, nil
}

// Compile builds the converter.
func (s *ConverterSpec) Compile() (convert.Converter, error) {
	kind, ok := convert.ParseKind(s.Kind)
	if !ok {
		return convert.Converter{}, fmt.Errorf("unknown converter kind %q", s.Kind)
	}

	c := convert.Converter{Kind: kind, Sep: s.Sep, Ratio: s.Ratio}

	switch kind {
	case convert.KindList:
		elem := convert.Str()

		if s.Elem != nil {
			e, err := s.Elem.Compile()
			if err != nil {
				return c, fmt.Errorf("list element: %w", err)
			}

			elem = e
		}

		c.Elem = &elem
	case convert.KindTuple:
		for i := range s.Items {
			item, err := s.Items[i].Compile()
			if err != nil {
				return c, fmt.Errorf("tuple item %d: %w", i, err)
			}

			c.Items = append(c.Items, item)
		}
	case convert.KindEnum:
		c.Values = s.Values
		c.Fallback = s.Default
	default:
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

var directiveNames = map[string]Directive{
	"":         None,
	"none":     None,
	"default":  Default,
	"required": Required,
	"ignore":   Ignore,
}

// Compile builds the directive, resolving fold names through res.
func (s *DirectiveSpec) Compile(res Resolver) (Directive, error) {
	if s.As != nil {
		inner := None

		if s.Inner != nil {
			d, err := s.Inner.Compile(res)
			if err != nil {
				return Directive{}, err
			}

			inner = d
		}

		return AsPath(s.As.Path, inner), nil
	}

	if s.Fold != "" {
		if res == nil {
			return Directive{}, errNoResolver
		}

		fn, ok := res.Fold(s.Fold)
		if !ok {
			return Directive{}, fmt.Errorf("unknown fold %q", s.Fold)
		}

		return NamedFold(s.Fold, fn), nil
	}

	d, ok := directiveNames[normalizeName(s.Kind)]
	if !ok {
		return Directive{}, fmt.Errorf("unknown directive %q (want one of %s)",
			s.Kind, strings.Join(slices.Sorted(maps.Keys(directiveNames))[1:], ", "))
	}

	return d, nil
}

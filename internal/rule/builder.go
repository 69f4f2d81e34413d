package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"sheet-importer/convert"
	"sheet-importer/internal/record"
)

// Builder assembles a Rule. Methods record problems instead of failing
// immediately; Build reports them all.
type Builder struct {
	r    Rule
	errs []error
}

// New starts a rule writing records of objectType.
func New(name, objectType string) *Builder {
	return &Builder{r: Rule{name: name, objectType: objectType, headerRow: 1}}
}

// Derive starts a builder seeded from base. The result is independent of
// base; redefining a column replaces only that field.
func Derive(base *Rule) *Builder {
	r := *base
	r.fields = slices.Clone(base.fields)
	r.extends = base.name
	r.origin = ""

	return &Builder{r: r}
}

// Named renames the rule.
func (b *Builder) Named(name string) *Builder {
	b.r.name = name
	return b
}

// ObjectType sets the record type written by the rule.
func (b *Builder) ObjectType(objectType string) *Builder {
	b.r.objectType = objectType
	return b
}

// Source sets the workbook path.
func (b *Builder) Source(path string) *Builder {
	b.r.source = path
	return b
}

// Sheet sets the sheet name.
func (b *Builder) Sheet(name string) *Builder {
	b.r.sheet = name
	return b
}

// HeaderRow sets the 1-based header row.
func (b *Builder) HeaderRow(row int) *Builder {
	b.r.headerRow = row
	return b
}

// StartBy sets the 1-based first data row. By default data starts right
// below the header.
func (b *Builder) StartBy(row int) *Builder {
	b.r.dataRow = row
	return b
}

// IndexBy designates the id column. An optional path also stores the id
// value in the record under that path.
func (b *Builder) IndexBy(column string, conv convert.Converter, path ...string) *Builder {
	f := FieldDef{Column: column, Converter: conv}

	if len(path) > 0 && path[0] != "" {
		p, err := record.ParsePath(path[0])
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("index: %w", err))
		}

		f.Path = p
	}

	b.r.index = f

	return b
}

// TemplateBy designates the template id column.
func (b *Builder) TemplateBy(column string) *Builder {
	b.r.template = FieldDef{Column: column, Converter: convert.Template()}
	return b
}

// Def binds column to path. An empty path uses the column name. At most
// one directive may be given.
func (b *Builder) Def(column, path string, conv convert.Converter, directive ...Directive) *Builder {
	f := FieldDef{Column: column, Converter: conv, Directive: None}

	if path == "" {
		f.Path = columnPath(column)
	} else {
		p, err := record.ParsePath(path)
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("column %q: %w", column, err))
		}

		f.Path = p
	}

	switch len(directive) {
	case 0:
	case 1:
		f.Directive = directive[0]
	default:
		b.errs = append(b.errs, fmt.Errorf("column %q: more than one directive", column))
	}

	return b.Field(f)
}

// Field adds f, replacing an existing definition of the same column.
func (b *Builder) Field(f FieldDef) *Builder {
	col := strings.TrimSpace(f.Column)

	for i := range b.r.fields {
		if strings.TrimSpace(b.r.fields[i].Column) == col {
			b.r.fields[i] = f
			return b
		}
	}

	b.r.fields = append(b.r.fields, f)

	return b
}

// Without drops the definition of column, if any.
func (b *Builder) Without(column string) *Builder {
	col := strings.TrimSpace(column)
	b.r.fields = slices.DeleteFunc(b.r.fields, func(f FieldDef) bool {
		return strings.TrimSpace(f.Column) == col
	})

	return b
}

// Filter sets the row filter.
func (b *Builder) Filter(fn RowFilter) *Builder {
	return b.NamedFilter("", fn)
}

// NamedFilter sets the row filter and its label.
func (b *Builder) NamedFilter(name string, fn RowFilter) *Builder {
	b.r.filter, b.r.filterName = fn, name
	return b
}

// Hook sets the post-row hook.
func (b *Builder) Hook(fn PostRowHook) *Builder {
	return b.NamedHook("", fn)
}

// NamedHook sets the post-row hook and its label.
func (b *Builder) NamedHook(name string, fn PostRowHook) *Builder {
	b.r.hook, b.r.hookName = fn, name
	return b
}

// Origin records the file the rule came from.
func (b *Builder) Origin(path string) *Builder {
	b.r.origin = path
	return b
}

// Build validates the rule and returns a frozen copy. The builder may be
// reused afterwards without affecting the returned rule.
func (b *Builder) Build() (*Rule, error) {
	r := b.r
	r.fields = slices.Clone(b.r.fields)

	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidRule, r.name, errors.Join(b.errs...))
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Rule {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}

	return r
}

package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRule wraps every structural problem reported by Build.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a built, immutable import rule.
type Rule struct {
	name       string
	objectType string
	source     string
	sheet      string
	headerRow  int
	dataRow    int

	index    FieldDef
	template FieldDef
	fields   []FieldDef

	filter     RowFilter
	filterName string
	hook       PostRowHook
	hookName   string

	extends string
	origin  string
}

// Name identifies the rule in diagnostics and the registry.
func (r *Rule) Name() string { return r.name }

// ObjectType is the store directory the rule writes to.
func (r *Rule) ObjectType() string { return r.objectType }

// Source is the workbook path, relative to the source root unless absolute.
func (r *Rule) Source() string { return r.source }

// Sheet is the sheet name inside the workbook.
func (r *Rule) Sheet() string { return r.sheet }

// HeaderRow is the 1-based row holding column names.
func (r *Rule) HeaderRow() int { return r.headerRow }

// DataRow is the 1-based first data row.
func (r *Rule) DataRow() int {
	if r.dataRow == 0 {
		return r.headerRow + 1
	}

	return r.dataRow
}

// Index is the field supplying the record id.
func (r *Rule) Index() FieldDef { return r.index }

// Template is the field supplying the template record id.
func (r *Rule) Template() FieldDef { return r.template }

// Fields returns the remaining field definitions in authored order.
func (r *Rule) Fields() []FieldDef { return slices.Clone(r.fields) }

// Filter returns the row filter, or nil.
func (r *Rule) Filter() RowFilter { return r.filter }

// Hook returns the post-row hook, or nil.
func (r *Rule) Hook() PostRowHook { return r.hook }

// Extends names the rule this one was derived from, if any.
func (r *Rule) Extends() string { return r.extends }

// Origin is the rule file the rule was loaded from, if any.
func (r *Rule) Origin() string { return r.origin }

// Columns lists every column the rule reads: index, template, then fields.
func (r *Rule) Columns() []string {
	cols := make([]string, 0, len(r.fields)+2)
	cols = append(cols, r.index.Column, r.template.Column)

	for _, f := range r.fields {
		cols = append(cols, f.Column)
	}

	return cols
}

// Describe renders a multi-line summary of the rule.
func (r *Rule) Describe() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s) <- %s", r.name, r.objectType, r.source)
	if r.sheet != "" {
		fmt.Fprintf(&sb, "[%s]", r.sheet)
	}

	if r.extends != "" {
		fmt.Fprintf(&sb, " extends %s", r.extends)
	}

	fmt.Fprintf(&sb, "\n  index: %s (%s)", r.index.Column, r.index.Converter)
	if len(r.index.Path) > 0 {
		fmt.Fprintf(&sb, " -> %s", r.index.Path)
	}

	fmt.Fprintf(&sb, "\n  template: %s\n", r.template.Column)

	for _, f := range r.fields {
		fmt.Fprintf(&sb, "  %s\n", f)
	}

	if r.filterName != "" {
		fmt.Fprintf(&sb, "  filter: %s\n", r.filterName)
	}

	if r.hookName != "" {
		fmt.Fprintf(&sb, "  hook: %s\n", r.hookName)
	}

	return sb.String()
}

// Validate reports every structural problem of the rule.
func (r *Rule) Validate() error {
	var errs []error

	if r.name == "" {
		errs = append(errs, errors.New("missing name"))
	}

	if r.objectType == "" {
		errs = append(errs, errors.New("missing object type"))
	}

	if r.headerRow < 1 {
		errs = append(errs, fmt.Errorf("header row %d must be at least 1", r.headerRow))
	}

	if r.dataRow != 0 && r.dataRow <= r.headerRow {
		errs = append(errs, fmt.Errorf("data row %d must follow header row %d", r.dataRow, r.headerRow))
	}

	errs = append(errs, r.validateKeys()...)

	seen := map[string]struct{}{
		strings.TrimSpace(r.index.Column):    {},
		strings.TrimSpace(r.template.Column): {},
	}

	for _, f := range r.fields {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}

		col := strings.TrimSpace(f.Column)
		if _, dup := seen[col]; dup {
			errs = append(errs, fmt.Errorf("column %q is bound more than once", col))
		}

		seen[col] = struct{}{}
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w %q: %w", ErrInvalidRule, r.name, errors.Join(errs...))
}

func (r *Rule) validateKeys() []error {
	var errs []error

	switch {
	case strings.TrimSpace(r.index.Column) == "":
		errs = append(errs, errors.New("no index field"))
	case r.index.Converter.Kind == 0:
		errs = append(errs, errors.New("index field without converter"))
	default:
		if err := r.index.Converter.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("index: %w", err))
		}

		if r.index.Directive.Kind != DirectiveNone {
			errs = append(errs, errors.New("index field cannot carry a directive"))
		}

		if len(r.index.Path) > 0 {
			if err := r.index.Path.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("index path: %w", err))
			}
		}
	}

	if strings.TrimSpace(r.template.Column) == "" {
		errs = append(errs, errors.New("no template field"))
	} else if strings.TrimSpace(r.template.Column) == strings.TrimSpace(r.index.Column) {
		errs = append(errs, fmt.Errorf("column %q is both index and template", r.index.Column))
	}

	return errs
}

package rule

import (
	"errors"
	"fmt"
	"strings"

	"sheet-importer/convert"
	"sheet-importer/internal/record"
)

// FieldDef binds a source column to a target path, a converter and a
// write directive.
type FieldDef struct {
	Column    string
	Path      record.Path
	Converter convert.Converter
	Directive Directive
}

// Target returns the path the field writes to, following remaps.
// A remap path replaces the field's own path.
func (f FieldDef) Target() record.Path {
	if remap, _ := f.Directive.Resolve(); remap != nil {
		return remap
	}

	return f.Path
}

// Validate checks the field in isolation.
func (f FieldDef) Validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return errors.New("field without column")
	}

	if err := f.Converter.Validate(); err != nil {
		return fmt.Errorf("column %q: %w", f.Column, err)
	}

	if err := f.Directive.Validate(); err != nil {
		return fmt.Errorf("column %q: %w", f.Column, err)
	}

	if _, terminal := f.Directive.Resolve(); terminal.Kind == DirectiveIgnore {
		return nil
	}

	if err := f.Target().Validate(); err != nil {
		return fmt.Errorf("column %q: target: %w", f.Column, err)
	}

	return nil
}

// String describes the field, e.g. hp -> stats.hp Int Default.
func (f FieldDef) String() string {
	s := fmt.Sprintf("%s -> %s %s", f.Column, f.Target(), f.Converter)
	if f.Directive.Kind != DirectiveNone {
		s += " " + f.Directive.String()
	}

	return s
}

// columnPath derives a target path from a column name. Columns that do
// not parse as paths are used as a single property key.
func columnPath(column string) record.Path {
	column = strings.TrimSpace(column)

	if p, err := record.ParsePath(column); err == nil {
		return p
	}

	return record.Path{record.Key(column)}
}

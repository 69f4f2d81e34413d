package rule

import (
	"errors"
	"fmt"
	"strings"

	"sheet-importer/internal/record"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *IndexSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var column string
	if err := unmarshal(&column); err == nil {
		*s = IndexSpec{Column: column}
		return nil
	}

	type plain IndexSpec

	var full plain
	if err := unmarshal(&full); err != nil {
		return fmt.Errorf("index: expected column name or mapping: %w", err)
	}

	*s = IndexSpec(full)

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *TemplateSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var column string
	if err := unmarshal(&column); err == nil {
		*s = TemplateSpec{Column: column}
		return nil
	}

	type plain TemplateSpec

	var full plain
	if err := unmarshal(&full); err != nil {
		return fmt.Errorf("template: expected column name or mapping: %w", err)
	}

	*s = TemplateSpec(full)

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ConverterSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var kind string
	if err := unmarshal(&kind); err == nil {
		*s = ConverterSpec{Kind: kind}
		return nil
	}

	type plain ConverterSpec

	var full plain
	if err := unmarshal(&full); err != nil {
		return fmt.Errorf("converter: expected kind or mapping: %w", err)
	}

	*s = ConverterSpec(full)

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *DirectiveSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var kind string
	if err := unmarshal(&kind); err == nil {
		*s = DirectiveSpec{Kind: kind}
		return nil
	}

	type plain DirectiveSpec

	var full plain
	if err := unmarshal(&full); err != nil {
		return fmt.Errorf("directive: expected name or mapping: %w", err)
	}

	*s = DirectiveSpec(full)

	return nil
}

// PathSpec is a target path written either as a dotted string or as a
// list of property names and integer positions.
type PathSpec struct {
	Path record.Path
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PathSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		path, err := record.ParsePath(single)
		if err != nil {
			return err
		}

		p.Path = path

		return nil
	}

	var parts []any
	if err := unmarshal(&parts); err != nil {
		return errors.New("expected path string or list of keys and indices")
	}

	path := make(record.Path, 0, len(parts))

	for _, part := range parts {
		switch v := part.(type) {
		case int:
			path = append(path, record.Index(v))
		case string:
			if v == "[]" {
				path = append(path, record.Append())
			} else {
				path = append(path, record.Key(v))
			}
		default:
			return fmt.Errorf("invalid path segment %v (%T)", v, v)
		}
	}

	if err := path.Validate(); err != nil {
		return fmt.Errorf("invalid path %v: %w", parts, err)
	}

	p.Path = path

	return nil
}

// StringArray is a string slice that can be unmarshaled from a single string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return errors.New("expected string or list of strings")
}

// String renders the path spec as a dotted path.
func (p PathSpec) String() string {
	return p.Path.String()
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

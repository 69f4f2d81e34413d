package rule

// RuleFile is the root of a YAML rule file.
type RuleFile struct {
	// Version of the rule file schema.
	Version string `yaml:"version,omitempty"`

	// Rules defined in the file, in order.
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec is one rule as written in a rule file.
type RuleSpec struct {
	Name string `yaml:"name"`

	// Extends names a rule to derive from. Unset keys are inherited and
	// fields listed here replace the base definition of the same column.
	Extends string `yaml:"extends,omitempty"`

	// Type is the object type (store directory) of produced records.
	Type   string `yaml:"type,omitempty"`
	Source string `yaml:"source,omitempty"`
	Sheet  string `yaml:"sheet,omitempty"`

	// HeaderRow and DataRow are 1-based; zero keeps the default.
	HeaderRow int `yaml:"header_row,omitempty"`
	DataRow   int `yaml:"data_row,omitempty"`

	Index    *IndexSpec    `yaml:"index,omitempty"`
	Template *TemplateSpec `yaml:"template,omitempty"`

	Fields []FieldSpec `yaml:"fields,omitempty"`

	// Remove drops inherited fields by column.
	Remove StringArray `yaml:"remove,omitempty"`

	// Filter and Hook name registered row filters and post-row hooks.
	Filter string `yaml:"filter,omitempty"`
	Hook   string `yaml:"hook,omitempty"`

	// Origin is the file the spec was read from. Set by LoadFile.
	Origin string `yaml:"-"`
}

// IndexSpec designates the id column.
// YAML formats supported:
//   - Column only: "id" (Int converter)
//   - Full: {column: id, converter: str, path: code}
type IndexSpec struct {
	Column    string         `yaml:"column"`
	Converter *ConverterSpec `yaml:"converter,omitempty"`
	Path      *PathSpec      `yaml:"path,omitempty"`
}

// TemplateSpec designates the template id column.
// YAML formats supported:
//   - Column only: "base"
//   - Full: {column: base}
type TemplateSpec struct {
	Column string `yaml:"column"`
}

// FieldSpec binds one column.
type FieldSpec struct {
	Column string `yaml:"column"`

	// Path is the target path; defaults to the column name.
	// Examples: "name", "stats.hp", "pos[1]", ["pos", 1], "tags[]"
	Path *PathSpec `yaml:"path,omitempty"`

	// Converter defaults to str.
	Converter *ConverterSpec `yaml:"converter,omitempty"`

	Directive *DirectiveSpec `yaml:"directive,omitempty"`
}

// ConverterSpec describes a converter.
// YAML formats supported:
//   - Kind only: "int", "float", "str", "bool", "template"
//   - Full: {kind: list, sep: "|", elem: int}
//   - Enum: {kind: enum, values: {A: 1, B: 2}, default: 1}
//   - Ratio: {kind: ratio_int, ratio: 100}
type ConverterSpec struct {
	Kind    string          `yaml:"kind"`
	Sep     string          `yaml:"sep,omitempty"`
	Elem    *ConverterSpec  `yaml:"elem,omitempty"`
	Items   []ConverterSpec `yaml:"items,omitempty"`
	Values  map[string]any  `yaml:"values,omitempty"`
	Default any             `yaml:"default,omitempty"`
	Ratio   float64         `yaml:"ratio,omitempty"`
}

// DirectiveSpec describes a directive.
// YAML formats supported:
//   - Simple: "none", "default", "required", "ignore"
//   - Remap: {as: "stats.hp"} or {as: "tags[]", inner: default}
//   - Fold: {fold: sum}
//   - Remapped fold: {as: total, inner: {fold: sum}}
type DirectiveSpec struct {
	Kind  string         `yaml:"kind,omitempty"`
	As    *PathSpec      `yaml:"as,omitempty"`
	Inner *DirectiveSpec `yaml:"inner,omitempty"`
	Fold  string         `yaml:"fold,omitempty"`
}

// Missing lists the rule contract keys the spec leaves unset, after
// inheritance has been applied.
func (s *RuleSpec) Missing() []string {
	var missing []string

	if s.Type == "" {
		missing = append(missing, "type")
	}

	if s.Source == "" {
		missing = append(missing, "source")
	}

	if s.Sheet == "" {
		missing = append(missing, "sheet")
	}

	if len(s.Fields) == 0 && s.Index == nil {
		missing = append(missing, "fields")
	}

	return missing
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sheet-importer/internal/common"
	"sheet-importer/internal/ctxlog"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/match"
	"sheet-importer/internal/rule"
	"sheet-importer/internal/sheet"
	"sheet-importer/internal/store"
)

// Config tunes column matching.
type Config struct {
	// NormalizedMatch accepts a header that only matches a rule column
	// after normalization (case, separators, camel case).
	NormalizedMatch bool
	// SuggestScore is the minimum similarity for a "did you mean" hint.
	// Zero means match.DefaultSuggestScore.
	SuggestScore float64
	// SuggestCount caps the hints per missing column. Zero means
	// match.DefaultSuggestCount.
	SuggestCount int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		NormalizedMatch: true,
		SuggestScore:    match.DefaultSuggestScore,
		SuggestCount:    match.DefaultSuggestCount,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the engine configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// Engine runs rules over sheet sources.
type Engine struct {
	templates store.Reader
	config    Config
}

// New returns an engine that falls back to templates for template ids not
// produced earlier in the same run. templates may be nil.
func New(templates store.Reader, opts ...Option) *Engine {
	e := &Engine{templates: templates, config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// binding is a rule field resolved to a header position.
type binding struct {
	field rule.FieldDef
	pos   int
}

func (b binding) column() string { return strings.TrimSpace(b.field.Column) }

// Run converts every data row of src with r. The returned error is a
// *RuleError when the rule does not fit the header, or a read error from
// src; in the latter case the partial result is returned as well.
func (e *Engine) Run(ctx context.Context, r *rule.Rule, src *sheet.Source) (*Result, error) {
	if r == nil {
		return nil, errors.New("nil rule")
	}

	if src == nil {
		return nil, errors.New("nil source")
	}

	log := ctxlog.FromContext(ctx).With("rule", r.Name())
	res := newResult(r.Name(), r.ObjectType())

	cols := match.NewColumns(src.Header)

	index, err := e.bindRequired(r, cols, r.Index(), "index")
	if err != nil {
		return nil, err
	}

	template, err := e.bindRequired(r, cols, r.Template(), "template")
	if err != nil {
		return nil, err
	}

	fields, err := e.bindFields(r, cols, []binding{index, template}, &res.Diagnostics)
	if err != nil {
		return nil, err
	}

	log.Debug("Columns bound.", "fields", len(fields), "missing", len(r.Fields())-len(fields))

	c := &conversion{
		ctx:      ctx,
		engine:   e,
		rule:     r,
		res:      res,
		header:   src.Header,
		index:    index,
		template: template,
		fields:   fields,
	}

	for n, cells := range src.Rows {
		if common.AllBlank(cells) {
			continue
		}

		res.RowsRead++

		if filter := r.Filter(); filter != nil && !filter(rule.Row{Number: n, Cells: cells, Header: src.Header}) {
			res.Diagnostics.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticInfo,
				Code:     diagnostic.CodeRowFiltered,
				Message:  "row filtered out",
				Rule:     r.Name(),
				Row:      n,
			})
			res.skip(n, "filtered")

			continue
		}

		c.row(n, cells)
	}

	if err := src.Err(); err != nil {
		return res, fmt.Errorf("reading rows of rule %q: %w", r.Name(), err)
	}

	log.Debug("Rule converted.", "rows", res.RowsRead, "records", res.Len(), "skipped", len(res.Skipped))

	return res, nil
}

func (e *Engine) lookup(cols *match.Columns, column string) (int, bool) {
	pos, exact, ok := cols.Lookup(column)
	if !ok || (!exact && !e.config.NormalizedMatch) {
		return -1, false
	}

	return pos, true
}

func (e *Engine) suggest(cols *match.Columns, column string) []string {
	return cols.Suggest(column, e.config.SuggestScore, e.config.SuggestCount)
}

func (e *Engine) bindRequired(r *rule.Rule, cols *match.Columns, f rule.FieldDef, role string) (binding, error) {
	pos, ok := e.lookup(cols, f.Column)
	if !ok {
		return binding{}, &RuleError{
			Rule:        r.Name(),
			Column:      f.Column,
			Reason:      role + " column not found in header",
			Suggestions: e.suggest(cols, f.Column),
		}
	}

	return binding{field: f, pos: pos}, nil
}

// bindFields resolves every field column. Missing columns are warned about
// and dropped; two rule columns landing on the same header position make
// the rule invalid.
func (e *Engine) bindFields(
	r *rule.Rule,
	cols *match.Columns,
	fixed []binding,
	diags *diagnostic.Diagnostics,
) ([]binding, error) {
	taken := map[int]string{}
	for _, b := range fixed {
		if other, dup := taken[b.pos]; dup {
			return nil, duplicateBinding(r, cols, b, other)
		}

		taken[b.pos] = b.field.Column
	}

	var out []binding

	for _, f := range r.Fields() {
		pos, ok := e.lookup(cols, f.Column)
		if !ok {
			diags.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticWarning,
				Code:        diagnostic.CodeColumnMissing,
				Message:     "column not found in header, field skipped",
				Rule:        r.Name(),
				Field:       f.Column,
				Suggestions: e.suggest(cols, f.Column),
			})

			continue
		}

		b := binding{field: f, pos: pos}
		if other, dup := taken[pos]; dup {
			return nil, duplicateBinding(r, cols, b, other)
		}

		taken[pos] = f.Column
		out = append(out, b)
	}

	return out, nil
}

func duplicateBinding(r *rule.Rule, cols *match.Columns, b binding, other string) *RuleError {
	return &RuleError{
		Rule:   r.Name(),
		Column: b.field.Column,
		Reason: fmt.Sprintf("header column %q is already bound to %q", cols.Header()[b.pos], other),
	}
}

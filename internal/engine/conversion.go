package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sheet-importer/convert"
	"sheet-importer/internal/common"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/record"
	"sheet-importer/internal/rule"
)

// conversion is the state of one Run.
type conversion struct {
	ctx    context.Context
	engine *Engine
	rule   *rule.Rule
	res    *Result
	header []string

	index    binding
	template binding
	fields   []binding
}

// cell is a converted column value.
type cell struct {
	raw   any
	value any
	// ok is false when the column produced no value.
	ok    bool
	blank bool
}

func (c *conversion) diag(sev diagnostic.DiagnosticSeverity, code string, row int, field, msg string) {
	c.res.Diagnostics.Add(diagnostic.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Rule:     c.rule.Name(),
		Field:    field,
		Row:      row,
	})
}

func (c *conversion) reject(row int, field, reason string) {
	c.diag(diagnostic.DiagnosticError, diagnostic.CodeRowRejected, row, field, reason)
	c.res.skip(row, reason)
}

// convert runs the binding's converter over its cell in cells. Conversion
// failures are recorded; blank cells are no value without a diagnostic.
func (c *conversion) convert(row int, b binding, cells []any) cell {
	var raw any
	if b.pos < len(cells) {
		raw = cells[b.pos]
	}

	if common.IsBlank(raw) {
		return cell{raw: raw, blank: true}
	}

	v, ok, err := b.field.Converter.Input(raw)
	if err != nil {
		sev := diagnostic.DiagnosticError
		if ok {
			sev = diagnostic.DiagnosticWarning
		}

		c.diag(sev, diagnostic.CodeConversionFailure, row, b.field.Column,
			fmt.Sprintf("%s: %v", b.field.Converter, err))
	}

	return cell{raw: raw, value: v, ok: ok}
}

func (c *conversion) row(n int, cells []any) {
	tpl := c.convert(n, c.template, cells)

	rec, ok := c.seed(n, tpl)
	if !ok {
		return
	}

	scope := &rowScope{rec: rec, row: n, cells: make(map[string]cell, len(c.fields)+2)}
	scope.cells[c.template.column()] = tpl
	scope.cells[c.index.column()] = c.convert(n, c.index, cells)

	for _, b := range c.fields {
		scope.cells[b.column()] = c.convert(n, b, cells)
	}

	// Arrays appended to in this row; the first append replaces whatever
	// the template left there.
	appended := map[string]bool{}

	for _, b := range c.fields {
		if !b.field.Directive.IsRemap() {
			c.apply(scope, b, appended)
		}
	}

	for _, b := range c.fields {
		if b.field.Directive.IsRemap() {
			c.apply(scope, b, appended)
		}
	}

	if !c.stampIndex(n, rec, scope.cells[c.index.column()]) {
		return
	}

	c.emit(n, rec)
}

// seed returns the starting record for a row: a deep copy of the template
// record when the template column names one, an empty record otherwise.
func (c *conversion) seed(n int, tpl cell) (record.Record, bool) {
	if !tpl.ok {
		return record.New(), true
	}

	id := strings.TrimSpace(convert.Stringify(tpl.value))
	if id == "" {
		return record.New(), true
	}

	if rec, found := c.res.Get(id); found {
		return rec.Clone(), true
	}

	if c.engine.templates != nil {
		rec, found, err := c.engine.templates.Read(c.ctx, c.rule.ObjectType(), id)
		if err != nil {
			c.reject(n, c.template.field.Column, fmt.Sprintf("reading template %q: %v", id, err))
			return nil, false
		}

		if found {
			return rec.Clone(), true
		}
	}

	c.diag(diagnostic.DiagnosticWarning, diagnostic.CodeTemplateMissing, n, c.template.field.Column,
		fmt.Sprintf("template %q not found, starting from an empty record", id))

	return record.New(), true
}

func (c *conversion) apply(scope *rowScope, b binding, appended map[string]bool) {
	f := b.field
	cv := scope.cells[b.column()]
	_, terminal := f.Directive.Resolve()
	target := f.Target()

	var value any

	switch terminal.Kind {
	case rule.DirectiveIgnore:
		return
	case rule.DirectiveRequired:
		if cv.blank {
			c.diag(diagnostic.DiagnosticError, diagnostic.CodeRequiredFieldMissing, scope.row, f.Column,
				"required value is empty")

			return
		}

		if !cv.ok {
			return
		}

		value = cv.value
	case rule.DirectiveDefault:
		if cv.ok {
			value = cv.value
			break
		}

		def, err := f.Converter.Default()
		if err != nil {
			c.diag(diagnostic.DiagnosticError, diagnostic.CodeConversionFailure, scope.row, f.Column, err.Error())
			return
		}

		value = def
	case rule.DirectiveFold:
		prior, _ := scope.rec.Get(target)

		var in any
		if cv.ok {
			in = cv.value
		}

		out, err := terminal.Fn(in, prior, scope)
		if err != nil {
			c.diag(diagnostic.DiagnosticError, diagnostic.CodeConversionFailure, scope.row, f.Column,
				fmt.Sprintf("%s: %v", terminal, err))

			return
		}

		if out == nil {
			return
		}

		value = out
	default:
		if !cv.ok {
			return
		}

		value = cv.value
	}

	if target.Appends() {
		key := target.String()
		if !appended[key] {
			appended[key] = true
			scope.rec.Delete(target.Parent())
		}
	}

	if err := scope.rec.Set(target, value); err != nil {
		c.diag(diagnostic.DiagnosticError, diagnostic.CodeConversionFailure, scope.row, f.Column, err.Error())
	}
}

// stampIndex writes uid and key from the index cell.
func (c *conversion) stampIndex(n int, rec record.Record, idx cell) bool {
	column := c.index.field.Column

	if !idx.ok {
		c.reject(n, column, "index value is empty or invalid")
		return false
	}

	uid := strings.TrimSpace(convert.Stringify(idx.value))
	if uid == "" {
		c.reject(n, column, "index value is empty")
		return false
	}

	rec[record.UIDKey] = uid

	switch key, kind := numericKey(idx.value); kind {
	case keyInt:
		rec[record.KeyKey] = key
	case keyFloat:
		rec[record.KeyKey] = key
		c.diag(diagnostic.DiagnosticWarning, diagnostic.CodeNonIntegralKey, n, column,
			fmt.Sprintf("index %q is not an integer, key kept as %v", uid, key))
	default:
		delete(rec, record.KeyKey)
		c.diag(diagnostic.DiagnosticWarning, diagnostic.CodeNonIntegralKey, n, column,
			fmt.Sprintf("index %q is not numeric, key not set", uid))
	}

	if p := c.index.field.Path; !p.IsEmpty() {
		if err := rec.Set(p, idx.value); err != nil {
			c.diag(diagnostic.DiagnosticError, diagnostic.CodeConversionFailure, n, column, err.Error())
		}
	}

	return true
}

type keyKind int

const (
	keyNone keyKind = iota
	keyInt
	keyFloat
)

// numericKey derives the record key from an index value: an int when the
// value is integral and fits, otherwise its finite float value.
func numericKey(v any) (any, keyKind) {
	if key, ok := convert.AsInt(v); ok {
		return key, keyInt
	}

	f, ok, err := convert.Float().Input(v)
	if err != nil || !ok {
		return nil, keyNone
	}

	if x := f.(float64); !math.IsInf(x, 0) && !math.IsNaN(x) {
		return x, keyFloat
	}

	return nil, keyNone
}

// emit runs the post-row hook and stores every resulting record by uid.
func (c *conversion) emit(n int, rec record.Record) {
	out := []record.Record{rec}

	if hook := c.rule.Hook(); hook != nil {
		replacement, extra, err := hook(rec)
		if err != nil {
			c.reject(n, "", fmt.Sprintf("post-row hook: %v", err))
			return
		}

		if replacement != nil {
			out[0] = replacement
		}

		out = append(out, extra...)
	}

	for _, r := range out {
		uid, ok := r.UID()
		if !ok {
			c.reject(n, "", "hook produced a record without uid")
			continue
		}

		c.res.put(uid, r)
	}
}

// rowScope is the rule.Scope handed to fold functions.
type rowScope struct {
	rec   record.Record
	row   int
	cells map[string]cell
}

func (s *rowScope) Record() record.Record { return s.rec }

func (s *rowScope) Row() int { return s.row }

func (s *rowScope) Value(column string) (any, bool) {
	cv, ok := s.cells[strings.TrimSpace(column)]
	if !ok || !cv.ok {
		return nil, false
	}

	return cv.value, true
}

func (s *rowScope) Raw(column string) (any, bool) {
	cv, ok := s.cells[strings.TrimSpace(column)]
	if !ok {
		return nil, false
	}

	return cv.raw, true
}

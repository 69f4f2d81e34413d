package engine

import (
	"errors"
	"fmt"

	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/record"
)

// ErrRuleStructure is wrapped by every *RuleError.
var ErrRuleStructure = errors.New("rule structure invalid")

// RuleError reports a rule that cannot run against a sheet.
type RuleError struct {
	Rule        string
	Column      string
	Reason      string
	Suggestions []string
}

func (e *RuleError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
	}

	return fmt.Sprintf("rule %q: column %q: %s", e.Rule, e.Column, e.Reason)
}

func (e *RuleError) Unwrap() error { return ErrRuleStructure }

// Diagnostic renders the error as a rule_structure_invalid diagnostic.
func (e *RuleError) Diagnostic() diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeRuleStructureInvalid,
		Message:     e.Reason,
		Rule:        e.Rule,
		Field:       e.Column,
		Suggestions: e.Suggestions,
	}
}

// SkippedRow is a row that produced no record.
type SkippedRow struct {
	Rule   string
	Row    int
	Reason string
}

// Result is the output of one rule run.
type Result struct {
	Rule       string
	ObjectType string

	// Records maps uid to record. A later row with the same uid replaces
	// the earlier record.
	Records map[string]record.Record
	// Order lists every uid once, in the order it was first produced.
	Order []string

	// RowsRead counts the non-blank rows seen, filtered ones included.
	RowsRead int
	Skipped  []SkippedRow

	Diagnostics diagnostic.Diagnostics
}

func newResult(ruleName, objectType string) *Result {
	return &Result{
		Rule:       ruleName,
		ObjectType: objectType,
		Records:    map[string]record.Record{},
	}
}

// Len returns the number of distinct records.
func (r *Result) Len() int { return len(r.Order) }

// Get returns the record with the given uid.
func (r *Result) Get(uid string) (record.Record, bool) {
	rec, ok := r.Records[uid]
	return rec, ok
}

func (r *Result) put(uid string, rec record.Record) {
	if _, seen := r.Records[uid]; !seen {
		r.Order = append(r.Order, uid)
	}

	r.Records[uid] = rec
}

func (r *Result) skip(row int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Rule: r.Rule, Row: row, Reason: reason})
}

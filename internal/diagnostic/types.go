package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"sheet-importer/internal/common"
)

// Diagnostics holds all diagnostic information from a load or a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Rule names the rule (or rule file) this relates to, if any.
	Rule string
	// Field is the source column this relates to, if any.
	Field string
	// Row is the 1-based spreadsheet row, or 0 when not row-scoped.
	Row int
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends a fully populated diagnostic according to its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, rule, field string) {
	d.Add(Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Rule:     rule,
		Field:    field,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, rule, field string) {
	d.Add(Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Rule:     rule,
		Field:    field,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, rule, field string) {
	d.Add(Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Rule:     rule,
		Field:    field,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Len returns the total number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// ByCode returns every diagnostic, of any severity, carrying code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Rule != "" {
		prefix = append(prefix, "["+d.Rule+"]")
	}

	if d.Row > 0 {
		prefix = append(prefix, fmt.Sprintf("row %d", d.Row))
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

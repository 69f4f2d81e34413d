package export

import (
	"fmt"
	"strings"

	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/engine"
)

// RuleSummary reports one rule that ran.
type RuleSummary struct {
	Name       string
	ObjectType string
	RowsRead   int
	// Records is the number of distinct records converted.
	Records int
	// Written is the number of records stored; zero on a dry run.
	Written int
	Failed  int
}

// SkippedRule is a rule that did not run.
type SkippedRule struct {
	Name   string
	Reason string
}

// Summary is the outcome of a batch.
type Summary struct {
	RunID  string
	DryRun bool

	Rules        []RuleSummary
	SkippedRules []SkippedRule
	SkippedRows  []engine.SkippedRow
	Written      int

	Diagnostics diagnostic.Diagnostics
}

// OK reports whether every rule ran and nothing failed.
func (s *Summary) OK() bool {
	return len(s.SkippedRules) == 0 && !s.Diagnostics.HasErrors()
}

func (s *Summary) skipRule(name, reason string) {
	s.SkippedRules = append(s.SkippedRules, SkippedRule{Name: name, Reason: reason})
}

// Format renders the summary as text. Warnings are listed when verbose is
// set; errors always are.
func (s *Summary) Format(verbose bool) string {
	var b strings.Builder

	mode := ""
	if s.DryRun {
		mode = " (dry run)"
	}

	fmt.Fprintf(&b, "Run %s%s\n", s.RunID, mode)

	for _, r := range s.Rules {
		fmt.Fprintf(&b, "  %-24s %-16s rows %5d  records %5d  written %5d", r.Name, r.ObjectType, r.RowsRead, r.Records, r.Written)

		if r.Failed > 0 {
			fmt.Fprintf(&b, "  failed %d", r.Failed)
		}

		b.WriteString("\n")
	}

	if len(s.SkippedRules) > 0 {
		b.WriteString("\nSkipped rules:\n")

		for _, r := range s.SkippedRules {
			fmt.Fprintf(&b, "  %s: %s\n", r.Name, r.Reason)
		}
	}

	if len(s.SkippedRows) > 0 {
		b.WriteString("\nSkipped rows:\n")

		for _, r := range s.SkippedRows {
			fmt.Fprintf(&b, "  %s row %d: %s\n", r.Rule, r.Row, r.Reason)
		}
	}

	if len(s.Diagnostics.Errors) > 0 {
		b.WriteString("\nErrors:\n")

		for _, d := range s.Diagnostics.Errors {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}

	if verbose && len(s.Diagnostics.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")

		for _, d := range s.Diagnostics.Warnings {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}

	fmt.Fprintf(&b, "\nTotal written: %d\n", s.Written)

	return b.String()
}

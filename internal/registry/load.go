package registry

import (
	"context"
	"fmt"
	"strings"

	"sheet-importer/internal/ctxlog"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/fsutil"
	"sheet-importer/internal/rule"
)

// RuleExtensions are the file extensions LoadDir reads.
var RuleExtensions = []string{".yaml", ".yml"}

type entry struct {
	file string
	spec *rule.RuleSpec
}

// LoadDir reads every rule file below dir, compiles the rules against the
// registry's functions and registers them. It returns the rules it added
// in file order.
//
// A file that cannot be parsed, or a rule that does not compile, is
// reported as load_failure and left out; the rest still load. Entries
// lacking the rule contract keys are reported as not_a_rule.
func (r *Registry) LoadDir(ctx context.Context, dir string) ([]*rule.Rule, diagnostic.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading rule files.", "dir", dir)

	var diags diagnostic.Diagnostics

	files, err := fsutil.FindFilesByExtension(dir, RuleExtensions...)
	if err != nil {
		diags.AddError(diagnostic.CodeLoadFailure, fmt.Sprintf("scanning rule directory: %v", err), dir, "")
		return nil, diags
	}

	if len(files) == 0 {
		logger.Warn("No rule files found.", "dir", dir)
		return nil, diags
	}

	var entries []entry

	for _, file := range files {
		rf, err := rule.LoadFile(file)
		if err != nil {
			diags.AddError(diagnostic.CodeLoadFailure, err.Error(), file, "")
			continue
		}

		for i := range rf.Rules {
			entries = append(entries, entry{file: file, spec: &rf.Rules[i]})
		}

		logger.Debug("Rule file parsed.", "file", file, "rules", len(rf.Rules))
	}

	loaded := r.compileAll(entries, &diags)

	logger.Info("Rules loaded.", "files", len(files), "rules", len(loaded),
		"errors", len(diags.Errors), "warnings", len(diags.Warnings))

	return loaded, diags
}

// Reload drops the rules loaded earlier, loads dir again and returns the
// module-registered rules followed by the loaded ones.
func (r *Registry) Reload(ctx context.Context, dir string) ([]*rule.Rule, diagnostic.Diagnostics) {
	r.ClearRules()

	loaded, diags := r.LoadDir(ctx, dir)

	return append(r.Registered(), loaded...), diags
}

// compileAll compiles entries in an order that puts every base rule before
// the rules extending it. Bases may also be rules registered earlier.
func (r *Registry) compileAll(entries []entry, diags *diagnostic.Diagnostics) []*rule.Rule {
	compiled := make([]*rule.Rule, len(entries))
	done := make([]bool, len(entries))

	pending := map[string]bool{}

	for i, e := range entries {
		name := strings.TrimSpace(e.spec.Name)
		if name == "" {
			diags.AddWarning(diagnostic.CodeNotARule, fmt.Sprintf("entry %d has no name", i+1), e.file, "")
			done[i] = true

			continue
		}

		if pending[name] {
			diags.AddError(diagnostic.CodeLoadFailure, fmt.Sprintf("rule %q is defined more than once", name), e.file, "")
			done[i] = true

			continue
		}

		pending[name] = true
	}

	for progress := true; progress; {
		progress = false

		for i, e := range entries {
			if done[i] {
				continue
			}

			var base *rule.Rule

			ext := strings.TrimSpace(e.spec.Extends)
			if ext != "" {
				var ok bool

				base, ok = r.Rule(ext)
				if !ok && pending[ext] {
					// Wait for the base to compile.
					continue
				}
			}

			done[i] = true
			progress = true
			delete(pending, strings.TrimSpace(e.spec.Name))

			if ext != "" && base == nil {
				diags.AddError(diagnostic.CodeLoadFailure,
					fmt.Sprintf("rule %q: base rule %q not found", e.spec.Name, ext), e.file, "")

				continue
			}

			if missing := contractGaps(e.spec, base); len(missing) > 0 {
				diags.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticWarning,
					Code:     diagnostic.CodeNotARule,
					Message:  fmt.Sprintf("entry %q lacks %s", e.spec.Name, strings.Join(missing, ", ")),
					Rule:     e.file,
				})

				continue
			}

			ru, err := rule.Compile(e.spec, r, base)
			if err == nil {
				err = r.add(ru, true)
			}

			if err != nil {
				diags.AddError(diagnostic.CodeLoadFailure, err.Error(), e.file, "")
				continue
			}

			compiled[i] = ru
		}
	}

	for i, e := range entries {
		if !done[i] {
			diags.AddError(diagnostic.CodeLoadFailure,
				fmt.Sprintf("rule %q: base rule %q never loaded (cyclic extends?)", e.spec.Name, e.spec.Extends), e.file, "")
		}
	}

	var out []*rule.Rule

	for _, ru := range compiled {
		if ru != nil {
			out = append(out, ru)
		}
	}

	return out
}

// contractGaps lists the rule keys spec leaves unset once the base rule's
// values are taken into account.
func contractGaps(spec *rule.RuleSpec, base *rule.Rule) []string {
	s := *spec

	if base != nil {
		if s.Type == "" {
			s.Type = base.ObjectType()
		}

		if s.Source == "" {
			s.Source = base.Source()
		}

		if s.Sheet == "" {
			s.Sheet = base.Sheet()
		}

		if s.Index == nil {
			s.Index = &rule.IndexSpec{Column: base.Index().Column}
		}
	}

	return s.Missing()
}

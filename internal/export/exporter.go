package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"sheet-importer/internal/ctxlog"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/engine"
	"sheet-importer/internal/match"
	"sheet-importer/internal/record"
	"sheet-importer/internal/registry"
	"sheet-importer/internal/rule"
	"sheet-importer/internal/sheet"
	"sheet-importer/internal/store"
)

// Options configures a batch.
type Options struct {
	// Registry receives the rules loaded from RulesDir and supplies the
	// named functions they use. Rules its modules added run before the
	// loaded ones. Defaults to registry.Default().
	Registry *registry.Registry
	// RulesDir is scanned for rule files unless Rules is set.
	RulesDir string
	// Rules, when non-nil, is used as is.
	Rules []*rule.Rule
	// Only restricts the batch to the named rules.
	Only []string

	// SourceRoot resolves relative rule sources.
	SourceRoot string
	// Opener opens workbooks. Defaults to sheet.Open.
	Opener sheet.Opener
	Store  store.Store
	Engine []engine.Option

	// DryRun converts without writing.
	DryRun bool
	// Overwrite replaces existing records; when false an existing id is
	// a per-record write failure.
	Overwrite bool
}

// DefaultOptions returns options that overwrite existing records.
func DefaultOptions() Options {
	return Options{Overwrite: true}
}

// Exporter runs batches.
type Exporter struct {
	opts  Options
	state State
}

// New returns an exporter for opts. Store is required.
func New(opts Options) (*Exporter, error) {
	if opts.Store == nil {
		return nil, errors.New("export: no store")
	}

	if opts.Rules == nil && opts.RulesDir == "" {
		return nil, errors.New("export: no rules directory")
	}

	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}

	if opts.Opener == nil {
		opts.Opener = sheet.Open
	}

	return &Exporter{opts: opts}, nil
}

// State returns the current state.
func (e *Exporter) State() State { return e.state }

func (e *Exporter) transition(ctx context.Context, to State, args ...any) {
	args = append([]any{"from", e.state.String(), "to", to.String()}, args...)
	ctxlog.FromContext(ctx).Debug("Export state changed.", args...)
	e.state = to
}

// Export runs the batch. The summary is always returned; the error is
// non-nil only when the batch stopped early, because the destination root
// is missing or ctx was cancelled between rules.
func (e *Exporter) Export(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	sum := &Summary{RunID: runID, DryRun: e.opts.DryRun}

	defer e.transition(ctx, StateIdle)

	e.transition(ctx, StateLoadingRules)

	rules := e.loadRules(ctx, sum)

	if !e.opts.DryRun {
		if err := e.opts.Store.Check(ctx); err != nil {
			return sum, fmt.Errorf("export: %w", err)
		}
	}

	produced := store.NewMemStore()
	eng := engine.New(&overlay{run: produced, base: e.opts.Store}, e.opts.Engine...)

	logger.Info("Export started.", "rules", len(rules), "dry_run", e.opts.DryRun)

	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			logger.Warn("Export cancelled.", "error", err)
			return sum, fmt.Errorf("export cancelled: %w", err)
		}

		if err := e.runRule(ctx, eng, r, produced, sum); err != nil {
			return sum, err
		}
	}

	logger.Info("Export finished.", "written", sum.Written, "skipped_rules", len(sum.SkippedRules),
		"skipped_rows", len(sum.SkippedRows), "ok", sum.OK())

	return sum, nil
}

func (e *Exporter) loadRules(ctx context.Context, sum *Summary) []*rule.Rule {
	rules := e.opts.Rules

	if rules == nil {
		var diags diagnostic.Diagnostics

		rules, diags = e.opts.Registry.Reload(ctx, e.opts.RulesDir)
		sum.Diagnostics.Merge(diags)
	}

	if len(e.opts.Only) == 0 {
		return rules
	}

	var out []*rule.Rule

	for _, r := range rules {
		if slices.Contains(e.opts.Only, r.Name()) {
			out = append(out, r)
		}
	}

	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}

	for _, name := range e.opts.Only {
		if !slices.Contains(names, name) {
			sum.Diagnostics.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        diagnostic.CodeLoadFailure,
				Message:     "requested rule is not loaded",
				Rule:        name,
				Suggestions: match.RankCandidates(name, names).AboveThreshold(match.DefaultSuggestScore).Top(match.DefaultSuggestCount).Names(),
			})
		}
	}

	return out
}

// sourcePath resolves a rule source against the source root.
func (e *Exporter) sourcePath(r *rule.Rule) string {
	src := r.Source()
	if filepath.IsAbs(src) || e.opts.SourceRoot == "" {
		return src
	}

	return filepath.Join(e.opts.SourceRoot, src)
}

func (e *Exporter) runRule(ctx context.Context, eng *engine.Engine, r *rule.Rule, produced *store.MemStore, sum *Summary) error {
	ctx = ctxlog.With(ctx, "rule", r.Name())

	e.transition(ctx, StateReading)

	src, closeWorkbook, ok := e.read(ctx, r, sum)
	if !ok {
		return nil
	}
	defer closeWorkbook()

	e.transition(ctx, StateConverting)

	res, err := eng.Run(ctx, r, src)
	if err != nil {
		var ruleErr *engine.RuleError
		if errors.As(err, &ruleErr) {
			sum.Diagnostics.Add(ruleErr.Diagnostic())
		} else {
			sum.Diagnostics.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     diagnostic.CodeSourceUnreadable,
				Message:  err.Error(),
				Rule:     r.Name(),
			})
		}

		sum.skipRule(r.Name(), err.Error())

		return nil
	}

	sum.Diagnostics.Merge(res.Diagnostics)
	sum.SkippedRows = append(sum.SkippedRows, res.Skipped...)

	e.transition(ctx, StateWriting, "records", res.Len())

	rs := RuleSummary{
		Name:       r.Name(),
		ObjectType: r.ObjectType(),
		RowsRead:   res.RowsRead,
		Records:    res.Len(),
	}

	for _, id := range res.Order {
		rec := res.Records[id]
		produced.Put(r.ObjectType(), id, rec)

		if e.opts.DryRun {
			continue
		}

		if err := e.write(ctx, r, id, rec); err != nil {
			if errors.Is(err, store.ErrRootMissing) {
				sum.Rules = append(sum.Rules, rs)
				sum.Written += rs.Written

				return fmt.Errorf("export: %w", err)
			}

			rs.Failed++

			sum.Diagnostics.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     diagnostic.CodeWriteFailed,
				Message:  fmt.Sprintf("record %q: %v", id, err),
				Rule:     r.Name(),
			})

			continue
		}

		rs.Written++
	}

	sum.Rules = append(sum.Rules, rs)
	sum.Written += rs.Written

	return nil
}

// read opens the rule's sheet. On failure the rule is recorded as skipped
// and ok is false.
func (e *Exporter) read(ctx context.Context, r *rule.Rule, sum *Summary) (src *sheet.Source, closeFn func(), ok bool) {
	fail := func(msg string, suggestions []string) (*sheet.Source, func(), bool) {
		sum.Diagnostics.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticError,
			Code:        diagnostic.CodeSourceUnreadable,
			Message:     msg,
			Rule:        r.Name(),
			Suggestions: suggestions,
		})
		sum.skipRule(r.Name(), msg)
		ctxlog.FromContext(ctx).Warn("Rule skipped.", "reason", msg)

		return nil, nil, false
	}

	path := e.sourcePath(r)

	wb, err := e.opts.Opener(path)
	if err != nil {
		return fail(err.Error(), nil)
	}

	closeFn = func() {
		if err := wb.Close(); err != nil {
			ctxlog.FromContext(ctx).Warn("Closing workbook failed.", "path", path, "error", err)
		}
	}

	sh, found := wb.Sheet(r.Sheet())
	if !found {
		closeFn()

		names := wb.SheetNames()

		return fail(fmt.Sprintf("sheet %q not found in %s", r.Sheet(), path),
			match.RankCandidates(r.Sheet(), names).AboveThreshold(match.DefaultSuggestScore).Top(match.DefaultSuggestCount).Names())
	}

	src, err = sheet.NewSource(sh, r.HeaderRow(), r.DataRow())
	if err != nil {
		closeFn()
		return fail(err.Error(), nil)
	}

	return src, closeFn, true
}

func (e *Exporter) write(ctx context.Context, r *rule.Rule, id string, rec record.Record) error {
	if err := e.opts.Store.Write(ctx, r.ObjectType(), id, rec, e.opts.Overwrite); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Debug("Record written.", "type", r.ObjectType(), "id", id)

	return nil
}

// overlay serves template lookups from records produced earlier in the
// batch before falling back to the store.
type overlay struct {
	run  *store.MemStore
	base store.Reader
}

func (o *overlay) Read(ctx context.Context, objectType, id string) (record.Record, bool, error) {
	if rec, ok, _ := o.run.Read(ctx, objectType, id); ok {
		return rec, true, nil
	}

	return o.base.Read(ctx, objectType, id)
}

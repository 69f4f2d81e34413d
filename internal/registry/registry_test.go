package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-importer/convert"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/record"
	"sheet-importer/internal/rule"
)

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterFilter("skip_comments", func(rule.Row) bool { return true })
	r.RegisterHook("noop", func(rec record.Record) (record.Record, []record.Record, error) {
		return nil, nil, nil
	})
	r.RegisterFold("sum", rule.Fold2(func(v, prior any) (any, error) { return v, nil }))
}

func writeRules(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

const itemsYAML = `
rules:
  - name: items
    type: item
    source: items.xlsx
    sheet: Items
    index: id
    template: base
    filter: skip_comments
    fields:
      - column: name
      - column: bonus
        converter: int
        directive: {fold: sum}
`

func TestRegistryFunctions(t *testing.T) {
	r := New().Use(testModule{})

	_, ok := r.Filter("skip_comments")
	assert.True(t, ok)
	_, ok = r.Hook("noop")
	assert.True(t, ok)
	_, ok = r.Fold("sum")
	assert.True(t, ok)
	_, ok = r.Fold("missing")
	assert.False(t, ok)

	filters, hooks, folds := r.Names()
	assert.Equal(t, []string{"skip_comments"}, filters)
	assert.Equal(t, []string{"noop"}, hooks)
	assert.Equal(t, []string{"sum"}, folds)

	assert.Panics(t, func() { r.RegisterFilter("", func(rule.Row) bool { return true }) })
	assert.Panics(t, func() { r.RegisterHook("x", nil) })

	r.Reset()
	_, ok = r.Filter("skip_comments")
	assert.False(t, ok)
}

func TestRegistryRules(t *testing.T) {
	r := New()
	items := rule.New("items", "item").IndexBy("id", convert.Int()).TemplateBy("base").MustBuild()

	require.NoError(t, r.AddRule(items))
	require.Error(t, r.AddRule(items))
	assert.Panics(t, func() { r.MustAddRule(items) })

	got, ok := r.Rule("items")
	require.True(t, ok)
	assert.Same(t, items, got)
	assert.Len(t, r.Rules(), 1)

	r.ClearRules()
	assert.Equal(t, []*rule.Rule{items}, r.Rules(), "rules added in code survive a reload")

	r.Reset()
	assert.Empty(t, r.Rules())
}

func TestReload(t *testing.T) {
	r := New().Use(testModule{})
	r.MustAddRule(rule.New("base_items", "item").
		Source("items.csv").
		Sheet("items").
		IndexBy("id", convert.Int()).
		TemplateBy("base").
		Def("name", "", convert.Str()).
		MustBuild())

	dir := writeRules(t, map[string]string{
		"items.yaml": itemsYAML,
		"more.yaml":  "rules:\n  - name: more_items\n    extends: base_items\n    sheet: more\n",
	})

	for range 2 {
		rules, diags := r.Reload(context.Background(), dir)
		assert.Zero(t, diags.Len())

		names := make([]string, len(rules))
		for i, ru := range rules {
			names[i] = ru.Name()
		}

		assert.Equal(t, []string{"base_items", "items", "more_items"}, names)
	}

	r.ClearRules()
	require.Len(t, r.Rules(), 1)
	assert.Equal(t, "base_items", r.Rules()[0].Name())
	assert.Equal(t, r.Rules(), r.Registered())
}

func TestLoadDir(t *testing.T) {
	dir := writeRules(t, map[string]string{
		"items.yaml": itemsYAML,
		// Sorts before items.yaml but extends a rule defined there.
		"a/rare.yml": `
rules:
  - name: rare_items
    extends: items
    sheet: Rare
    fields:
      - column: name
        path: title
`,
		"broken.yaml": "rules: [",
		"notes.yaml": `
rules:
  - name: scratch
    type: item
`,
		"unknown.yaml": `
rules:
  - name: hooked
    type: item
    source: h.csv
    sheet: h
    index: id
    template: base
    hook: nope
`,
		"readme.txt": "not a rule",
	})

	r := New().Use(testModule{})

	rules, diags := r.LoadDir(context.Background(), dir)

	require.Len(t, rules, 2)
	assert.Equal(t, "rare_items", rules[0].Name())
	assert.Equal(t, "items", rules[1].Name())

	rare := rules[0]
	assert.Equal(t, "items", rare.Extends())
	assert.Equal(t, "item", rare.ObjectType())
	assert.Equal(t, "items.xlsx", rare.Source())
	assert.Equal(t, "Rare", rare.Sheet())
	assert.Equal(t, filepath.Join(dir, "a", "rare.yml"), rare.Origin())
	assert.NotNil(t, rare.Filter())

	fields := rare.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "title", fields[0].Target().String())

	failures := diags.ByCode(diagnostic.CodeLoadFailure)
	require.Len(t, failures, 2)
	assert.Equal(t, filepath.Join(dir, "broken.yaml"), failures[0].Rule)
	assert.Contains(t, failures[1].Message, `unknown hook "nope"`)

	notRules := diags.ByCode(diagnostic.CodeNotARule)
	require.Len(t, notRules, 1)
	assert.Contains(t, notRules[0].Message, "source, sheet, fields")

	assert.Len(t, r.Rules(), 2)
}

func TestLoadDirExtends(t *testing.T) {
	t.Run("missing base", func(t *testing.T) {
		dir := writeRules(t, map[string]string{
			"x.yaml": "rules:\n  - name: child\n    extends: ghost\n    type: item\n    source: a.csv\n    sheet: a\n    index: id\n    template: base\n",
		})

		rules, diags := New().LoadDir(context.Background(), dir)
		assert.Empty(t, rules)
		require.Len(t, diags.Errors, 1)
		assert.Contains(t, diags.Errors[0].Message, `base rule "ghost" not found`)
	})

	t.Run("cycle", func(t *testing.T) {
		dir := writeRules(t, map[string]string{
			"x.yaml": "rules:\n  - name: a\n    extends: b\n  - name: b\n    extends: a\n",
		})

		rules, diags := New().LoadDir(context.Background(), dir)
		assert.Empty(t, rules)
		assert.Len(t, diags.ByCode(diagnostic.CodeLoadFailure), 2)
	})

	t.Run("registered base", func(t *testing.T) {
		r := New()
		r.MustAddRule(rule.New("items", "item").
			Source("items.csv").
			Sheet("items").
			IndexBy("id", convert.Int()).
			TemplateBy("base").
			Def("name", "", convert.Str()).
			MustBuild())

		dir := writeRules(t, map[string]string{
			"x.yaml": "rules:\n  - name: more\n    extends: items\n    remove: name\n",
		})

		rules, diags := r.LoadDir(context.Background(), dir)
		assert.Zero(t, diags.Len())
		require.Len(t, rules, 1)
		assert.Empty(t, rules[0].Fields())
	})

	t.Run("duplicate", func(t *testing.T) {
		dir := writeRules(t, map[string]string{
			"a.yaml": itemsYAML,
			"b.yaml": itemsYAML,
		})

		rules, diags := New().Use(testModule{}).LoadDir(context.Background(), dir)
		assert.Len(t, rules, 1)
		require.Len(t, diags.Errors, 1)
		assert.Contains(t, diags.Errors[0].Message, "more than once")
	})
}

func TestLoadDirMissing(t *testing.T) {
	rules, diags := New().LoadDir(context.Background(), filepath.Join(t.TempDir(), "none"))
	assert.Empty(t, rules)
	assert.Len(t, diags.ByCode(diagnostic.CodeLoadFailure), 1)

	rules, diags = New().LoadDir(context.Background(), t.TempDir())
	assert.Empty(t, rules)
	assert.Zero(t, diags.Len())
}

func TestDefault(t *testing.T) {
	t.Cleanup(Default().Reset)

	Register(testModule{})

	_, ok := Default().Fold("sum")
	assert.True(t, ok)
}

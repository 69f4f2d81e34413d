package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-importer/convert"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/engine"
	"sheet-importer/internal/hooks"
	"sheet-importer/internal/record"
	"sheet-importer/internal/registry"
	"sheet-importer/internal/rule"
	"sheet-importer/internal/sheet"
	"sheet-importer/internal/store"
)

func memOpener(books map[string]*sheet.Memory) sheet.Opener {
	return func(path string) (sheet.Workbook, error) {
		wb, ok := books[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", sheet.ErrNotFound, path)
		}

		return wb, nil
	}
}

func monsters() *rule.Rule {
	return rule.New("monsters", "monster").
		Source("monsters.xlsx").
		Sheet("Monsters").
		IndexBy("id", convert.Int()).
		TemplateBy("base").
		Def("name", "", convert.Str()).
		Def("hp", "", convert.Int()).
		MustBuild()
}

func monsterBook() *sheet.Memory {
	return sheet.NewMemory().AddSheet("Monsters",
		[]any{"id", "base", "name", "hp"},
		[]any{"1", "", "Slime", "10"},
		[]any{"2", "1", "Big Slime", ""},
		[]any{"", "", "Nameless", "3"},
	)
}

func newExporter(t *testing.T, opts Options) *Exporter {
	t.Helper()

	e, err := New(opts)
	require.NoError(t, err)

	return e
}

func TestNew(t *testing.T) {
	_, err := New(Options{RulesDir: "rules"})
	require.Error(t, err)

	_, err = New(Options{Store: store.NewMemStore()})
	require.Error(t, err)

	e, err := New(Options{Store: store.NewMemStore(), Rules: []*rule.Rule{}})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, e.State())
	assert.True(t, DefaultOptions().Overwrite)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	e := newExporter(t, Options{
		Rules:     []*rule.Rule{monsters()},
		Opener:    memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:     st,
		Overwrite: true,
	})

	sum, err := e.Export(ctx)
	require.NoError(t, err)

	assert.False(t, sum.OK(), "the nameless row is rejected")
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Written)
	assert.Equal(t, []RuleSummary{{
		Name: "monsters", ObjectType: "monster", RowsRead: 3, Records: 2, Written: 2,
	}}, sum.Rules)
	assert.Equal(t, []engine.SkippedRow{{Rule: "monsters", Row: 4, Reason: "index value is empty or invalid"}}, sum.SkippedRows)
	assert.Equal(t, StateIdle, e.State())

	got, ok, err := st.Read(ctx, "monster", "2")
	require.NoError(t, err)
	require.True(t, ok)

	want := record.Record{"uid": "2", "key": 2, "name": "Big Slime", "hp": 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	text := sum.Format(false)
	assert.Contains(t, text, "monsters row 4: index value is empty or invalid")
	assert.Contains(t, text, "Total written: 2")
}

func TestExportTemplatesAcrossRules(t *testing.T) {
	bases := rule.New("bases", "monster").
		Source("bases.xlsx").
		Sheet("Bases").
		IndexBy("id", convert.Int()).
		TemplateBy("base").
		Def("hp", "", convert.Int()).
		Def("element", "", convert.Str()).
		MustBuild()

	books := map[string]*sheet.Memory{
		"bases.xlsx": sheet.NewMemory().AddSheet("Bases",
			[]any{"id", "base", "hp", "element"},
			[]any{"100", "", "40", "water"},
		),
		"monsters.xlsx": sheet.NewMemory().AddSheet("Monsters",
			[]any{"id", "base", "name", "hp"},
			[]any{"7", "100", "Frog", ""},
		),
	}

	st := store.NewMemStore()
	e := newExporter(t, Options{
		Rules:  []*rule.Rule{bases, monsters()},
		Opener: memOpener(books),
		Store:  st,
		DryRun: true,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.True(t, sum.DryRun)
	assert.Zero(t, sum.Written)
	assert.Zero(t, st.Len())
	require.Len(t, sum.Rules, 2)
	assert.Equal(t, 1, sum.Rules[1].Records)
	assert.Empty(t, sum.Diagnostics.ByCode(diagnostic.CodeTemplateMissing))
}

func TestExportSkipsUnreadableRules(t *testing.T) {
	broken := rule.New("broken", "monster").
		Source("monsters.xlsx").
		Sheet("Monsters").
		IndexBy("monster_id", convert.Int()).
		TemplateBy("base").
		MustBuild()
	wrongSheet := rule.New("wrong_sheet", "monster").
		Source("monsters.xlsx").
		Sheet("Monster").
		IndexBy("id", convert.Int()).
		TemplateBy("base").
		MustBuild()
	missingBook := rule.New("missing_book", "item").
		Source("items.xlsx").
		Sheet("Items").
		IndexBy("id", convert.Int()).
		TemplateBy("base").
		MustBuild()

	st := store.NewMemStore()
	e := newExporter(t, Options{
		Rules:     []*rule.Rule{missingBook, wrongSheet, broken, monsters()},
		Opener:    memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:     st,
		Overwrite: true,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.False(t, sum.OK())

	require.Len(t, sum.SkippedRules, 3)
	assert.Equal(t, "missing_book", sum.SkippedRules[0].Name)
	assert.Equal(t, "wrong_sheet", sum.SkippedRules[1].Name)
	assert.Equal(t, "broken", sum.SkippedRules[2].Name)

	unreadable := sum.Diagnostics.ByCode(diagnostic.CodeSourceUnreadable)
	require.Len(t, unreadable, 2)
	assert.Equal(t, []string{"Monsters"}, unreadable[1].Suggestions)

	structure := sum.Diagnostics.ByCode(diagnostic.CodeRuleStructureInvalid)
	require.Len(t, structure, 1)
	assert.Equal(t, "monster_id", structure[0].Field)

	// The valid rule still ran.
	require.Len(t, sum.Rules, 1)
	assert.Equal(t, 2, st.Len())
}

func TestExportNoOverwrite(t *testing.T) {
	st := store.NewMemStore().Put("monster", "1", record.Record{"uid": "1", "name": "Keep"})

	e := newExporter(t, Options{
		Rules:  []*rule.Rule{monsters()},
		Opener: memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:  st,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)

	failed := sum.Diagnostics.ByCode(diagnostic.CodeWriteFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Message, `record "1"`)
	assert.Equal(t, 1, sum.Rules[0].Failed)
	assert.Equal(t, 1, sum.Written)

	kept, _, _ := st.Read(context.Background(), "monster", "1")
	assert.Equal(t, "Keep", kept["name"])
}

func TestExportRootMissing(t *testing.T) {
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "missing"), 0)
	require.NoError(t, err)

	e := newExporter(t, Options{
		Rules:  []*rule.Rule{monsters()},
		Opener: memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:  fs,
	})

	sum, err := e.Export(context.Background())
	require.ErrorIs(t, err, store.ErrRootMissing)
	require.NotNil(t, sum)
	assert.Empty(t, sum.Rules)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newExporter(t, Options{
		Rules:  []*rule.Rule{monsters()},
		Opener: memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:  store.NewMemStore(),
	})

	sum, err := e.Export(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sum.Rules)
	assert.Equal(t, StateIdle, e.State())
}

func TestExportOnly(t *testing.T) {
	other := rule.Derive(monsters()).Named("other").MustBuild()

	e := newExporter(t, Options{
		Rules:     []*rule.Rule{monsters(), other},
		Only:      []string{"other", "monstres"},
		Opener:    memOpener(map[string]*sheet.Memory{"monsters.xlsx": monsterBook()}),
		Store:     store.NewMemStore(),
		Overwrite: true,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Rules, 1)
	assert.Equal(t, "other", sum.Rules[0].Name)

	unknown := sum.Diagnostics.ByCode(diagnostic.CodeLoadFailure)
	require.Len(t, unknown, 1)
	assert.Equal(t, "monstres", unknown[0].Rule)
	assert.Equal(t, []string{"monsters"}, unknown[0].Suggestions)
}

func TestExportFromDirectories(t *testing.T) {
	root := t.TempDir()
	rulesDir := filepath.Join(root, "rules")
	dataDir := filepath.Join(root, "data")
	destDir := filepath.Join(root, "db")

	for _, dir := range []string{rulesDir, dataDir, destDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "items.yaml"), []byte(`
rules:
  - name: items
    type: item
    source: items.csv
    sheet: items
    index: id
    template: base
    filter: skip_comments
    fields:
      - column: name
      - column: price
        converter: int
        directive: default
      - column: tags
        converter: {kind: list, sep: ";"}
`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "items.csv"), []byte(
		"id,base,name,price,tags\n"+
			"1,,Sword,100,weapon;iron\n"+
			"# 2,,Draft,,\n"+
			"3,1,Long Sword,,\n"), 0o644))

	fs, err := store.NewFileStore(destDir, 16)
	require.NoError(t, err)

	e := newExporter(t, Options{
		Registry:   registry.New().Use(hooks.Builtins{}),
		RulesDir:   rulesDir,
		SourceRoot: dataDir,
		Store:      fs,
		Overwrite:  true,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.OK(), sum.Format(true))
	assert.Equal(t, 2, sum.Written)
	assert.Len(t, sum.Diagnostics.ByCode(diagnostic.CodeRowFiltered), 1)

	data, err := os.ReadFile(filepath.Join(destDir, "item", "3.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"uid": "3",
		"key": 3,
		"name": "Long Sword",
		"price": 0,
		"tags": ["weapon", "iron"]
	}`, string(data))

	ids, err := fs.List(context.Background(), "item")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestExportSampleCatalog(t *testing.T) {
	const root = "../../examples/catalog"

	mem := store.NewMemStore()
	e := newExporter(t, Options{
		Registry:   registry.New().Use(hooks.Builtins{}),
		RulesDir:   filepath.Join(root, "rules"),
		SourceRoot: filepath.Join(root, "data"),
		Store:      mem,
		Overwrite:  true,
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	require.True(t, sum.OK(), sum.Format(true))
	assert.Len(t, sum.Rules, 3)
	assert.Equal(t, 7, sum.Written)

	expected := map[string]string{
		"item/2": `{
			"uid": "2", "key": 2, "name": "Long Sword", "price": 150, "weight": 3.5,
			"tags": ["weapon", "iron"], "rarity": 1, "pos": [3, 4]
		}`,
		"item/4": `{
			"uid": "4", "key": 4, "name": "Shield", "price": 0, "weight": 4,
			"tags": ["armor"], "rarity": 2, "pos": [0, 1]
		}`,
		"consumable/11": `{
			"uid": "11", "key": 11, "name": "Great Potion", "price": 20, "weight": 0.1,
			"tags": ["healing"], "rarity": 1, "effects": {"heal": 50}
		}`,
		"drop/1": `{"uid": "1", "key": 1, "last_item": "Potion", "gold": 35}`,
	}

	for key, want := range expected {
		t.Run(key, func(t *testing.T) {
			objectType, id, _ := strings.Cut(key, "/")

			rec, ok, err := mem.Read(context.Background(), objectType, id)
			require.NoError(t, err)
			require.True(t, ok)

			data, err := json.Marshal(rec)
			require.NoError(t, err)
			assert.JSONEq(t, want, string(data))
		})
	}
}

type monsterModule struct{}

func (monsterModule) Register(r *registry.Registry) {
	r.MustAddRule(monsters())
}

func TestExportModuleRulesWithFileRules(t *testing.T) {
	ctx := context.Background()

	rulesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "elites.yaml"), []byte(`
rules:
  - name: elites
    extends: monsters
    type: elite
    source: elites.xlsx
    sheet: Elites
    remove: hp
`), 0o644))

	books := map[string]*sheet.Memory{
		"monsters.xlsx": sheet.NewMemory().AddSheet("Monsters",
			[]any{"id", "base", "name", "hp"},
			[]any{"1", "", "Slime", "10"},
		),
		"elites.xlsx": sheet.NewMemory().AddSheet("Elites",
			[]any{"id", "base", "name", "hp"},
			[]any{"7", "", "Slime King", "99"},
		),
	}

	reg := registry.New().Use(monsterModule{})
	st := store.NewMemStore()

	e := newExporter(t, Options{
		Registry:  reg,
		RulesDir:  rulesDir,
		Opener:    memOpener(books),
		Store:     st,
		Overwrite: true,
	})

	for range 2 {
		sum, err := e.Export(ctx)
		require.NoError(t, err)
		require.True(t, sum.OK(), sum.Format(true))

		names := make([]string, len(sum.Rules))
		for i, r := range sum.Rules {
			names[i] = r.Name
		}

		assert.Equal(t, []string{"monsters", "elites"}, names)
		assert.Equal(t, 2, sum.Written)
	}

	assert.Len(t, reg.Rules(), 2)
	assert.Len(t, reg.Registered(), 1)

	elite, ok, err := st.Read(ctx, "elite", "7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Record{"uid": "7", "key": 7, "name": "Slime King"}, elite)
}

func TestExportUnknownBaseFails(t *testing.T) {
	rulesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "elites.yaml"),
		[]byte("rules:\n  - name: elites\n    extends: monsters\n    source: elites.xlsx\n"), 0o644))

	e := newExporter(t, Options{
		Registry: registry.New(),
		RulesDir: rulesDir,
		Opener:   memOpener(nil),
		Store:    store.NewMemStore(),
	})

	sum, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.False(t, sum.OK())

	failures := sum.Diagnostics.ByCode(diagnostic.CodeLoadFailure)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, `base rule "monsters" not found`)
}

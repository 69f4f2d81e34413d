package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-importer/internal/hooks"
	"sheet-importer/internal/registry"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "importer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules_dir: rules
dest_root: /var/db
log_level: debug
overwrite: false
only: [items]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "rules"), cfg.RulesDir)
	assert.Equal(t, "/var/db", cfg.DestRoot)
	assert.Empty(t, cfg.SourceRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Overwrite)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, []string{"items"}, cfg.Only)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule_dir: typo\n"), 0o644))

	_, err = LoadConfig(path)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	cfg, err := LoadConfig(empty)
	require.NoError(t, err)

	want := DefaultConfig()
	want.RulesDir = filepath.Join(dir, "rules")
	want.DestRoot = filepath.Join(dir, "db")
	assert.Equal(t, want, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no rules", func(c *Config) { c.RulesDir = "" }, "rules_dir"},
		{"no dest", func(c *Config) { c.DestRoot = "" }, "dest_root"},
		{"no dest dry run", func(c *Config) { c.DestRoot = ""; c.DryRun = true }, ""},
		{"level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"cache", func(c *Config) { c.CacheSize = -1 }, "cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "rule", "items")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"rule":"items"`)

	buf.Reset()
	NewLogger("nonsense", "text", &buf).Debug("quiet")
	assert.Empty(t, buf.String())
}

func TestAppRun(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.RulesDir = filepath.Join(root, "rules")
	cfg.SourceRoot = filepath.Join(root, "data")
	cfg.DestRoot = filepath.Join(root, "db")

	for _, dir := range []string{cfg.RulesDir, cfg.SourceRoot, cfg.DestRoot} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(cfg.RulesDir, "skills.yml"), []byte(`
rules:
  - name: skills
    type: skill
    source: skills.tsv
    sheet: skills
    index: id
    template: base
    fields:
      - column: name
      - column: power
        converter: {kind: ratio_int, ratio: 100}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SourceRoot, "skills.tsv"),
		[]byte("id\tbase\tname\tpower\n5\t\tFire\t0.29\n"), 0o644))

	var logs bytes.Buffer

	a, err := New(cfg, &logs, registry.New().Use(hooks.Builtins{}))
	require.NoError(t, err)

	rules, diags := a.LoadRules(context.Background())
	assert.Zero(t, diags.Len())
	require.Len(t, rules, 1)

	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.OK(), sum.Format(true))
	assert.Equal(t, 1, sum.Written)
	assert.Contains(t, logs.String(), "run_id=")

	rec, err := a.Show(context.Background(), "skill", "5")
	require.NoError(t, err)
	assert.Equal(t, "Fire", rec["name"])
	assert.Equal(t, float64(29), rec["power"])

	_, err = a.Show(context.Background(), "skill", "6")
	require.Error(t, err)

	ids, err := a.List(context.Background(), "skill")
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = "xml"

	_, err := New(cfg, &bytes.Buffer{}, nil)
	require.Error(t, err)
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sheet-importer/internal/ctxlog"
	"sheet-importer/internal/diagnostic"
	"sheet-importer/internal/export"
	"sheet-importer/internal/record"
	"sheet-importer/internal/registry"
	"sheet-importer/internal/rule"
	"sheet-importer/internal/store"
)

// App holds a validated configuration and the services built from it.
type App struct {
	config   Config
	logger   *slog.Logger
	registry *registry.Registry
}

// New validates cfg and builds an App logging to logW. A nil reg uses the
// default registry.
func New(cfg Config, logW io.Writer, reg *registry.Registry) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if reg == nil {
		reg = registry.Default()
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return &App{config: cfg, logger: logger, registry: reg}, nil
}

// Config returns the effective configuration.
func (a *App) Config() Config { return a.config }

// Registry returns the registry rules are loaded into.
func (a *App) Registry() *registry.Registry { return a.registry }

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) store() (*store.FileStore, error) {
	return store.NewFileStore(a.config.DestRoot, a.config.CacheSize)
}

// Run executes the batch described by the configuration.
func (a *App) Run(ctx context.Context) (*export.Summary, error) {
	ctx = a.context(ctx)

	st, err := a.store()
	if err != nil {
		return nil, err
	}

	opts := export.DefaultOptions()
	opts.Registry = a.registry
	opts.RulesDir = a.config.RulesDir
	opts.SourceRoot = a.config.SourceRoot
	opts.Store = st
	opts.DryRun = a.config.DryRun
	opts.Overwrite = a.config.Overwrite
	opts.Only = a.config.Only

	exp, err := export.New(opts)
	if err != nil {
		return nil, err
	}

	return exp.Export(ctx)
}

// LoadRules reloads the rule directory and returns every rule a run would
// consider: module-registered rules first, then the loaded ones.
func (a *App) LoadRules(ctx context.Context) ([]*rule.Rule, diagnostic.Diagnostics) {
	return a.registry.Reload(a.context(ctx), a.config.RulesDir)
}

// Show reads one stored record.
func (a *App) Show(ctx context.Context, objectType, id string) (record.Record, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}

	rec, ok, err := st.Read(a.context(ctx), objectType, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%s %q not found in %s", objectType, id, a.config.DestRoot)
	}

	return rec, nil
}

// List returns the ids stored for objectType.
func (a *App) List(ctx context.Context, objectType string) ([]string, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}

	return st.List(a.context(ctx), objectType)
}

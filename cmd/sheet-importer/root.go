package main

import (
	"errors"

	"github.com/spf13/cobra"

	"sheet-importer/internal/app"
)

// errRunFailed is returned when a run finished with a summary that is not
// OK. The summary has already been printed.
var errRunFailed = errors.New("run finished with errors")

type globalOptions struct {
	configPath string
	rulesDir   string
	sourceRoot string
	destRoot   string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "sheet-importer",
		Short: "Convert spreadsheet rows into JSON records",
		Long: `sheet-importer reads rule files describing how spreadsheet columns map
onto record fields, converts every matching row and writes one JSON file
per record under <dest>/<type>/<id>.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&opts.rulesDir, "rules", "", "directory holding rule files (overrides rules_dir)")
	pf.StringVar(&opts.sourceRoot, "source-root", "", "directory rule sources are relative to (overrides source_root)")
	pf.StringVar(&opts.destRoot, "dest", "", "record store root (overrides dest_root)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text, json")

	cmd.AddCommand(newRunCmd(&opts), newRulesCmd(&opts), newShowCmd(&opts))

	return cmd
}

// config loads the config file, if any, and applies the flags that were
// set explicitly on the command line.
func (o *globalOptions) config(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()

	if o.configPath != "" {
		var err error
		if cfg, err = app.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"rules", o.rulesDir, &cfg.RulesDir},
		{"source-root", o.sourceRoot, &cfg.SourceRoot},
		{"dest", o.destRoot, &cfg.DestRoot},
		{"log-level", o.logLevel, &cfg.LogLevel},
		{"log-format", o.logFormat, &cfg.LogFormat},
	}

	for _, ov := range overrides {
		if flags.Changed(ov.flag) {
			*ov.dst = ov.value
		}
	}

	return cfg, nil
}

func (o *globalOptions) app(cmd *cobra.Command, mutate func(*app.Config)) (*app.App, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}

	if mutate != nil {
		mutate(&cfg)
	}

	return app.New(cfg, cmd.ErrOrStderr(), nil)
}

package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Relative paths in a config file
// are resolved against the file's directory.
type Config struct {
	RulesDir   string `yaml:"rules_dir"`
	SourceRoot string `yaml:"source_root"`
	DestRoot   string `yaml:"dest_root"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Overwrite bool `yaml:"overwrite"`
	DryRun    bool `yaml:"dry_run"`
	// CacheSize is the number of records the store keeps in memory.
	CacheSize int `yaml:"cache_size"`
	// Only restricts a run to the named rules.
	Only []string `yaml:"only"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		RulesDir:  "rules",
		DestRoot:  "db",
		LogLevel:  "info",
		LogFormat: "text",
		Overwrite: true,
		CacheSize: 256,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.RulesDir, &cfg.SourceRoot, &cfg.DestRoot} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	return cfg, nil
}

// Validate checks the configuration for values the run cannot use.
func (c Config) Validate() error {
	var errs []error

	if c.RulesDir == "" {
		errs = append(errs, errors.New("rules_dir is required"))
	}

	if c.DestRoot == "" && !c.DryRun {
		errs = append(errs, errors.New("dest_root is required"))
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q: want one of %v", c.LogLevel, logLevels))
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q: want one of %v", c.LogFormat, logFormats))
	}

	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size %d must not be negative", c.CacheSize))
	}

	return errors.Join(errs...)
}

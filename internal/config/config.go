package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config captures CLI options sourced from config files or flags.
type Config struct {
	Matrix   string
	Variants []string

	OnlySteps []string
	SkipSteps []string

	DryRun   bool
	Verbose  bool
	Format   string
	Parallel int

	Warn WarnConfig
}

// WarnConfig controls additional warning behaviour.
type WarnConfig struct {
	VersionMismatch bool
}

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Format: FormatPretty,
		Warn: WarnConfig{
			VersionMismatch: true,
		},
	}
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Load reads .matrixci.yml from the repository root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, ".matrixci.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var doc configDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, doc)
	return cfg, nil
}

// configDocument mirrors the on-disk layout. Booleans that override a
// true default are pointers so an explicit false is distinguishable
// from an omitted key.
type configDocument struct {
	Matrix    string   `yaml:"matrix"`
	Variants  []string `yaml:"variants"`
	OnlySteps []string `yaml:"only_step"`
	SkipSteps []string `yaml:"skip_step"`
	DryRun    bool     `yaml:"dry_run"`
	Verbose   bool     `yaml:"verbose"`
	Format    string   `yaml:"format"`
	Parallel  int      `yaml:"parallel"`
	Warn      struct {
		VersionMismatch *bool `yaml:"version_mismatch"`
	} `yaml:"warn"`
}

func merge(base Config, doc configDocument) Config {
	out := base

	if doc.Matrix != "" {
		out.Matrix = doc.Matrix
	}
	if len(doc.Variants) > 0 {
		out.Variants = append([]string{}, doc.Variants...)
	}
	if len(doc.OnlySteps) > 0 {
		out.OnlySteps = append([]string{}, doc.OnlySteps...)
	}
	if len(doc.SkipSteps) > 0 {
		out.SkipSteps = append([]string{}, doc.SkipSteps...)
	}
	if doc.Format != "" {
		out.Format = doc.Format
	}
	if doc.Parallel > 0 {
		out.Parallel = doc.Parallel
	}
	if doc.DryRun {
		out.DryRun = true
	}
	if doc.Verbose {
		out.Verbose = true
	}

	if doc.Warn.VersionMismatch != nil {
		out.Warn.VersionMismatch = *doc.Warn.VersionMismatch
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Matrix.Set {
		cfg.Matrix = flags.Matrix.Value
	}
	if len(flags.Variants.Values) > 0 {
		cfg.Variants = append([]string{}, flags.Variants.Values...)
	}
	if len(flags.OnlySteps.Values) > 0 {
		cfg.OnlySteps = append([]string{}, flags.OnlySteps.Values...)
	}
	if len(flags.SkipSteps.Values) > 0 {
		cfg.SkipSteps = append([]string{}, flags.SkipSteps.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.Parallel.Set {
		cfg.Parallel = flags.Parallel.Value
	}
	if flags.DryRun.Set {
		cfg.DryRun = flags.DryRun.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Matrix    StringFlag
	Variants  SliceFlag
	OnlySteps SliceFlag
	SkipSteps SliceFlag
	Format    StringFlag
	Parallel  IntFlag
	DryRun    BoolFlag
	Verbose   BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

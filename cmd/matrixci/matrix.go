package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"matrixci/internal/config"
	"matrixci/internal/discovery"
	"matrixci/internal/filter"
	"matrixci/internal/matrix"
	"matrixci/internal/version"
)

// matrixData bundles the parsed matrix with warnings gathered while loading.
type matrixData struct {
	matrix   *matrix.Matrix
	warnings []matrix.Warning
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)

	return cfg, root, nil
}

func loadMatrix(root string, cfg config.Config) (matrixData, error) {
	path, err := discovery.Matrix(root, cfg.Matrix)
	if err != nil {
		if errors.Is(err, discovery.ErrNoMatrix) {
			return matrixData{}, fmt.Errorf("no matrix definition found; specify --matrix to provide one")
		}
		return matrixData{}, err
	}

	parser := matrix.NewParser(root)
	m, warnings, err := parser.Parse(path)
	if err != nil {
		return matrixData{}, err
	}

	warnings = append(warnings, detectVersionWarnings(m, cfg)...)
	return matrixData{matrix: m, warnings: warnings}, nil
}

func applyFilters(data matrixData, cfg config.Config) (matrixData, error) {
	variantPatterns, err := filter.Compile(cfg.Variants)
	if err != nil {
		return matrixData{}, err
	}
	onlyPatterns, err := filter.Compile(cfg.OnlySteps)
	if err != nil {
		return matrixData{}, err
	}
	skipPatterns, err := filter.Compile(cfg.SkipSteps)
	if err != nil {
		return matrixData{}, err
	}

	filtered := filter.FilterMatrix(data.matrix, variantPatterns, onlyPatterns, skipPatterns)
	return matrixData{matrix: filtered, warnings: data.warnings}, nil
}

func detectVersionWarnings(m *matrix.Matrix, cfg config.Config) []matrix.Warning {
	if !cfg.Warn.VersionMismatch {
		return nil
	}

	required := make([]string, 0, len(m.Variants))
	for _, variant := range m.Variants {
		if variant.Interpreter != "" {
			required = append(required, variant.Interpreter)
		}
	}
	if len(required) == 0 {
		return nil
	}

	info, detectErr := version.DetectPython()
	msg := buildVersionWarning("python", required, info.Version, detectErr)
	if msg == "" {
		return nil
	}
	return []matrix.Warning{{Message: msg}}
}

func buildVersionWarning(name string, required []string, actual string, detectErr error) string {
	if detectErr != nil {
		if version.Missing(detectErr) {
			return fmt.Sprintf("%s executable not found; matrix requires %s", name, strings.Join(required, ", "))
		}
		return fmt.Sprintf("unable to detect %s version: %v", name, detectErr)
	}
	for _, req := range required {
		if version.CompareMajorMinor(req, actual) {
			return ""
		}
	}
	return fmt.Sprintf("%s version mismatch: found %s but matrix variants require %s", name, actual, strings.Join(required, ", "))
}

func collapseWarnings(warnings []matrix.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if w.Variant != "" {
			out = append(out, fmt.Sprintf("%s: %s", w.Variant, w.Message))
			continue
		}
		out = append(out, w.Message)
	}
	return out
}

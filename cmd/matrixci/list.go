package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"matrixci/internal/config"
	"matrixci/internal/matrix"
	"matrixci/internal/output"
	"matrixci/internal/report"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List matrix variants and their steps",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := loadMatrix(root, cfg)
	if err != nil {
		return err
	}

	filtered, err := applyFilters(data, cfg)
	if err != nil {
		return err
	}

	return renderList(cmd, cfg, filtered.matrix, filtered.warnings)
}

func renderList(cmd *cobra.Command, cfg config.Config, m *matrix.Matrix, warnings []matrix.Warning) error {
	if len(m.Variants) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching variants")
		return nil
	}

	warningsList := collapseWarnings(warnings)
	format := strings.ToLower(cfg.Format)

	switch format {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		if err := renderer.RenderList(m); err != nil {
			return err
		}
	case config.FormatJSON:
		jsonReport := output.Report{
			Matrix:   m.Name,
			Variants: m.Variants,
			Summary:  computeListSummary(m),
			Warnings: warningsList,
		}
		renderer := output.NewJSON(cmd.OutOrStdout())
		if err := renderer.Render(jsonReport); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if len(warningsList) > 0 && format == config.FormatPretty {
		for _, msg := range warningsList {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
		}
	}

	return nil
}

func computeListSummary(m *matrix.Matrix) report.Summary {
	var steps int
	for _, variant := range m.Variants {
		for _, step := range m.Steps {
			if step.AppliesTo(variant.ID) {
				steps++
			}
		}
	}
	return report.Summary{
		TotalVariants: len(m.Variants),
		TotalSteps:    steps,
	}
}

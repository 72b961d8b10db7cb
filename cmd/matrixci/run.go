package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"matrixci/internal/config"
	"matrixci/internal/executor"
	"matrixci/internal/output"
	"matrixci/internal/report"
	"matrixci/internal/runner"
	"matrixci/internal/scheduler"
	"matrixci/internal/sink"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the matrix and report results",
		RunE:  runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
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

	m := filtered.matrix
	if len(m.Variants) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching variants")
		return nil
	}

	exec := executor.New(executor.Options{
		Root:    root,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Verbose: cfg.Verbose,
	})
	jobRunner := runner.New(exec, runner.Options{
		DryRun:    cfg.DryRun,
		TailLines: 20,
	})

	runID := uuid.NewString()
	var reporter scheduler.Reporter
	if !cfg.DryRun {
		reporter = sink.NewAggregator(exec, m.Report, sink.AggregatorOptions{
			RunID: runID,
			Root:  root,
		})
	}

	sched := scheduler.New(jobRunner, scheduler.Options{
		Parallel: cfg.Parallel,
		RunID:    runID,
		Reporter: reporter,
	})
	results, summary := sched.RunAll(cmd.Context(), m)

	warnings := collapseWarnings(filtered.warnings)
	jobs := make([]*report.JobResult, 0, len(m.Variants))
	for _, variant := range m.Variants {
		if res := results[variant.ID]; res != nil {
			jobs = append(jobs, res)
		}
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		if err := renderer.RenderResults(m, results, summary); err != nil {
			return err
		}
		for _, msg := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
		}
	case config.FormatJSON:
		jsonReport := output.Report{
			Matrix:   m.Name,
			Variants: m.Variants,
			Jobs:     jobs,
			Summary:  summary,
			Warnings: warnings,
		}
		renderer := output.NewJSON(cmd.OutOrStdout())
		if err := renderer.Render(jsonReport); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if summary.ExitCode != 0 {
		return fmt.Errorf("one or more jobs failed")
	}

	return nil
}

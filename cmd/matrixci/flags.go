package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matrixci/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("matrix") {
		v, err := flags.GetString("matrix")
		if err != nil {
			return values, fmt.Errorf("parse --matrix: %w", err)
		}
		values.Matrix = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("variant") {
		v, err := flags.GetStringArray("variant")
		if err != nil {
			return values, fmt.Errorf("parse --variant: %w", err)
		}
		values.Variants = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("only-step") {
		v, err := flags.GetStringArray("only-step")
		if err != nil {
			return values, fmt.Errorf("parse --only-step: %w", err)
		}
		values.OnlySteps = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("skip-step") {
		v, err := flags.GetStringArray("skip-step")
		if err != nil {
			return values, fmt.Errorf("parse --skip-step: %w", err)
		}
		values.SkipSteps = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("parallel") {
		v, err := flags.GetInt("parallel")
		if err != nil {
			return values, fmt.Errorf("parse --parallel: %w", err)
		}
		values.Parallel = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return values, fmt.Errorf("parse --dry-run: %w", err)
		}
		values.DryRun = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "matrixci",
		Short:         "Matrixci executes a declared test matrix across environment variants",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("matrix", "", "matrix definition file to use")
	persistent.StringArray("variant", nil, "variant filter (repeatable)")
	persistent.StringArray("only-step", nil, "include only matching steps")
	persistent.StringArray("skip-step", nil, "exclude matching steps")
	persistent.Bool("dry-run", false, "print steps without executing them")
	persistent.BoolP("verbose", "v", false, "stream command output in real time")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.Int("parallel", 0, "maximum concurrently running jobs (default NumCPU)")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

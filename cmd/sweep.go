// File: cmd/sweep.go
// License: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sendpath/sendpath/internal/bench"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <plan.yaml>",
	Short: "Run a YAML plan of benchmark experiments",
	Long: `Run every experiment in a YAML sweep plan back to back, emitting one
RESULT line per experiment to stdout. Each entry names the strategy
label, server port, message size, thread count and duration; servers
must already be running on the listed ports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := bench.LoadPlan(args[0])
		if err != nil {
			return err
		}
		return plan.Run(cmd.OutOrStdout(), zap.L())
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

// File: cmd/stress.go
// License: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sendpath/sendpath/internal/stress"
)

var stressIterations int

var stressCmd = &cobra.Command{
	Use:   "stress <cpu|mem|io> <workers>",
	Short: "Run concurrent resource stress workers",
	Long: `Run a fixed-work stress demo: the given number of goroutines each
execute an iteration-bound CPU, memory, or disk I/O loop. Useful for
loading a host while a benchmark runs on it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := stress.Kind(args[0])
		workers, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid worker count %q: %w", args[1], err)
		}
		return stress.Run(kind, workers, stressIterations, zap.L())
	},
}

func init() {
	stressCmd.Flags().IntVar(&stressIterations, "iterations", stress.DefaultIterations,
		"iterations per worker")
	rootCmd.AddCommand(stressCmd)
}

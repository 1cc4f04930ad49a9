// File: cmd/bench.go
// License: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sendpath/sendpath/internal/bench"
	"github.com/sendpath/sendpath/internal/sendstrat"
)

var (
	benchStrategy string
	benchFields   int
	benchPin      bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <server_ip> <port> <msg_size> <thread_count> [duration_s]",
	Short: "Run the benchmark client",
	Long: `Run the multi-threaded benchmark client against a running server.
Each thread opens its own connection and drains messages for the given
duration (default 10s). The aggregate RESULT line goes to stdout; the
--strategy flag only labels that line, the server decides the actual
send path.`,
	Args: cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		msgSize, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid msg_size %q: %w", args[2], err)
		}
		threads, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid thread_count %q: %w", args[3], err)
		}
		durationS := viper.GetInt("bench.duration_s")
		if len(args) == 5 {
			durationS, err = strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("invalid duration_s %q: %w", args[4], err)
			}
		}

		agg, err := bench.Run(bench.Options{
			Host:     args[0],
			Port:     port,
			MsgSize:  msgSize,
			Threads:  threads,
			Duration: time.Duration(durationS) * time.Second,
			Fields:   viper.GetInt("bench.fields"),
			Strategy: viper.GetString("bench.strategy"),
			Pin:      benchPin,
		}, zap.L())
		if err != nil {
			return err
		}
		return bench.Emit(cmd.OutOrStdout(), agg)
	},
}

func init() {
	benchCmd.Flags().StringVarP(&benchStrategy, "strategy", "s", sendstrat.TwoCopy,
		fmt.Sprintf("strategy label for the RESULT line, one of %v", sendstrat.Names()))
	benchCmd.Flags().IntVar(&benchFields, "fields", 0,
		"fields per message (default 8)")
	benchCmd.Flags().BoolVar(&benchPin, "pin", false,
		"pin each client thread to a CPU")
	// SENDPATH_BENCH_* environment variables override the defaults.
	_ = viper.BindPFlag("bench.strategy", benchCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("bench.fields", benchCmd.Flags().Lookup("fields"))
	viper.SetDefault("bench.duration_s", 10)
	rootCmd.AddCommand(benchCmd)
}

// File: cmd/serve.go
// License: Apache-2.0

package cmd

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sendpath/sendpath/internal/sendstrat"
	"github.com/sendpath/sendpath/internal/server"
)

var (
	serveStrategy string
	serveFields   int
)

var serveCmd = &cobra.Command{
	Use:   "serve <port> <msg_size>",
	Short: "Run the benchmark server",
	Long: `Run a thread-per-connection benchmark server that streams fixed-size
messages to every client using the selected send strategy. Run one
server process per strategy when comparing paths.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		msgSize, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid msg_size %q: %w", args[1], err)
		}

		srv, err := server.New(server.Config{
			Port:     port,
			MsgSize:  msgSize,
			Fields:   viper.GetInt("serve.fields"),
			Strategy: viper.GetString("serve.strategy"),
		}, zap.L())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveStrategy, "strategy", "s", sendstrat.TwoCopy,
		fmt.Sprintf("send strategy, one of %v", sendstrat.Names()))
	serveCmd.Flags().IntVar(&serveFields, "fields", 0,
		"fields per message (default 8)")
	// SENDPATH_SERVE_STRATEGY / SENDPATH_SERVE_FIELDS override the
	// defaults; explicit flags override both.
	_ = viper.BindPFlag("serve.strategy", serveCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("serve.fields", serveCmd.Flags().Lookup("fields"))
	rootCmd.AddCommand(serveCmd)
}

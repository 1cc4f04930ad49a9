// File: cmd/root.go
// License: Apache-2.0

// Package cmd wires the sendpath subcommands. Diagnostics go to stderr
// through the global zap logger; stdout is reserved for RESULT lines so
// runs stay script-parseable.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is stamped at build time via -ldflags.
	Version = "dev"

	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sendpath",
	Short: "TCP send-path benchmark harness",
	Long: strings.TrimSpace(`
sendpath measures the throughput and latency of three TCP transmission
strategies: the ordinary two-copy write path, scatter-gather writev, and
zero-copy sends with completion draining. Start a server per strategy,
then point the bench client (or a sweep plan) at it.`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sendpath version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sendpath %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig layers environment configuration under the flags:
// .env.local overrides .env, and SENDPATH_* variables override both.
func initConfig() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
	viper.SetEnvPrefix("sendpath")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// initLogging installs the process-wide logger. Console encoding on
// stderr keeps stdout clean for RESULT output.
func initLogging() error {
	level := zapcore.InfoLevel
	if viper.GetBool("verbose") {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return nil
}

// Execute runs the CLI and reports failure through the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		zap.L().Sync()
		os.Exit(1)
	}
	zap.L().Sync()
}

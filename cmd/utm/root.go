package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/utm/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "utm",
	Short: "utm runs Turing machines",
	Long: `utm executes single-tape Turing machines described in .properties, .yaml or .json files.
It animates the tape in the terminal, checks rule tables, draws state diagrams and
serves machines over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing machine descriptions")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error or off")
}

// loggerFor builds the logger selected by --log-level.
func loggerFor(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := logging.FromName(level)
	if err != nil {
		fail("Invalid --log-level: %v", err)
	}
	return logger
}

// fail prints to stderr and exits with status 1.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

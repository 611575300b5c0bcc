package main

import (
	"github.com/aretw0/utm/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|name> [input]",
	Short: "Run a machine on an input",
	Long: `Loads a machine description and runs it on the given input until it halts,
the step budget runs out or the run is interrupted.

The first argument is a description file, or the name of a machine in --dir.
The default budget comes from UTM_MAX_STEPS; --max-steps -1 disables it.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{Machine: args[0]}
		if len(args) > 1 {
			opts.Input = args[1]
		}
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.NoAnimation, _ = cmd.Flags().GetBool("noanimation")
		opts.FrameDelay, _ = cmd.Flags().GetDuration("delay")
		opts.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
		opts.Strict, _ = cmd.Flags().GetBool("strict")
		opts.Store, _ = cmd.Flags().GetString("store")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		if err := cli.Execute(opts); err != nil {
			fail("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("noanimation", false, "Only show the final tape")
	runCmd.Flags().Duration("delay", 0, "Pause between animation frames (default 40ms on a terminal)")
	runCmd.Flags().Int("max-steps", 0, "Step budget (0 uses UTM_MAX_STEPS or the built-in default)")
	runCmd.Flags().Bool("strict", false, "Reject unknown direction tokens instead of treating them as RESET")
	runCmd.Flags().String("store", cli.StoreFile, "Run store: memory, file, redis or sqlite")
	runCmd.Flags().Bool("json", false, "Print the run record as JSON")
}

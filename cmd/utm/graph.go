package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/utm/internal/cli"
	"github.com/aretw0/utm/internal/presentation/graph"
	"github.com/aretw0/utm/pkg/runner"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file|name>",
	Short: "Export the machine as a Mermaid state diagram",
	Long: `Outputs a Mermaid stateDiagram-v2 with one edge per rule.
With --input the machine is run first and the visited states are highlighted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		desc, _, err := cli.LoadMachine(dir, args[0])
		if err != nil {
			fail("Error loading machine: %v", err)
		}

		var overlay *graph.GraphOverlay
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			maxSteps, _ := cmd.Flags().GetInt("max-steps")

			trace := graph.NewTrace()
			r := runner.NewRunner(
				runner.WithMaxSteps(maxSteps),
				runner.WithHooks(trace.Hooks()),
				runner.WithLogger(loggerFor(cmd)),
			)
			if _, err := r.Run(context.Background(), desc, input); err != nil {
				// The partial trace is still worth drawing.
				fmt.Fprintf(os.Stderr, "Run did not halt: %v\n", err)
			}
			overlay = trace.Overlay()
		}

		fmt.Print(graph.GenerateMermaid(desc, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("input", "", "Run the machine on this input and highlight the visited states")
	graphCmd.Flags().Int("max-steps", 10_000, "Step budget for the --input run")
}

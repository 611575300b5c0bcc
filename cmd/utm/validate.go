package main

import (
	"fmt"

	"github.com/aretw0/utm/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|name>",
	Short: "Check a machine for consistency",
	Long: `Compiles the rule table and reports duplicate transitions, unreachable states,
states without rules and machines that can never halt.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		strict, _ := cmd.Flags().GetBool("strict")

		desc, warnings, err := cli.Lint(dir, args[0], strict)
		for _, w := range warnings {
			fmt.Println(w)
		}
		if err != nil {
			fail("Validation failed: %v", err)
		}
		fmt.Printf("Machine %q is valid! ✅ (%d rules, %s)\n", desc.Name, desc.Rules.Count(), desc.Variant)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Reject unknown direction tokens")
}

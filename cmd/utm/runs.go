package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aretw0/utm/internal/cli"
	"github.com/aretw0/utm/pkg/session"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded runs",
	Long:  `List, inspect, and remove run records kept by the selected store (default .utm/runs).`,
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded runs",
	Run: func(cmd *cobra.Command, args []string) {
		runs, closeFn := openRuns(cmd)
		defer closeFn()

		recs, err := runs.Records(cmd.Context())
		if err != nil {
			fail("Error listing runs: %v", err)
		}
		if len(recs) == 0 {
			fmt.Println("No runs found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMACHINE\tRESULT\tSTEPS\tFINISHED")
		for _, rec := range recs {
			result := rec.Outcome.String()
			if !rec.Halted() {
				result = "ABORTED"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				rec.ID, rec.Machine, result, rec.Steps, rec.FinishedAt.Local().Format(time.DateTime))
		}
		w.Flush()
	},
}

var runsInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print a run record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runs, closeFn := openRuns(cmd)
		defer closeFn()

		rec, err := runs.Load(cmd.Context(), args[0])
		if err != nil {
			fail("Error loading run '%s': %v", args[0], err)
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			fail("Error marshaling run: %v", err)
		}
		fmt.Println(string(data))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm [run-id]...",
	Short: "Remove one or more runs",
	Run: func(cmd *cobra.Command, args []string) {
		runs, closeFn := openRuns(cmd)
		defer closeFn()

		ids := args
		if all, _ := cmd.Flags().GetBool("all"); all {
			var err error
			if ids, err = runs.List(cmd.Context()); err != nil {
				fail("Error listing runs: %v", err)
			}
		} else if len(ids) == 0 {
			fail("Specify at least one run ID, or --all")
		}

		hasError := false
		for _, id := range ids {
			if err := runs.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed run '%s'\n", id)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsInspectCmd)
	runsCmd.AddCommand(runsRmCmd)

	runsCmd.PersistentFlags().String("store", cli.StoreFile, "Run store: file, redis or sqlite")
	runsRmCmd.Flags().Bool("all", false, "Remove every recorded run")
}

func openRuns(cmd *cobra.Command) (*session.Manager, func() error) {
	dir, _ := cmd.Flags().GetString("dir")
	kind, _ := cmd.Flags().GetString("store")

	runs, closeFn, err := cli.OpenRuns(cmd.Context(), kind, dir, loggerFor(cmd))
	if err != nil {
		fail("Error opening store: %v", err)
	}
	return runs, closeFn
}

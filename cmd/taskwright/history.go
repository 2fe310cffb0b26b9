package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
)

var historyVerbose bool

var historyCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show a task's execution history",
	Long: `Display every execution record for a task, oldest first.

Each record carries the full step-by-step log and the list of changes
made, which is enough to diagnose the failing step of an unsuccessful
run and to pick an execution to roll back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			records, err := engine.GetExecutionHistory(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(records)
			}

			if len(records) == 0 {
				fmt.Println("No executions recorded.")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("%s  %s  %s\n",
					heading(shortID(rec.ExecutionID)), renderOutcome(rec.Success), renderTime(rec.StartedAt))
				if rec.ResultPayload != "" {
					fmt.Printf("  %s\n", rec.ResultPayload)
				}
				if len(rec.ChangesMade) > 0 {
					fmt.Println("  Changes:")
					for _, c := range rec.ChangesMade {
						fmt.Printf("    %-12s %s", c.Kind, c.Target)
						if c.SnapshotID != "" {
							fmt.Printf("  (snapshot %s)", shortID(c.SnapshotID))
						}
						fmt.Println()
					}
				}
				if historyVerbose {
					fmt.Println("  Log:")
					for _, entry := range rec.Log {
						fmt.Printf("    %s  %s\n", entry.Timestamp.Local().Format("15:04:05"), entry.Message)
					}
				}
				fmt.Println()
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyVerbose, "log", false, "include the step-by-step log")
}

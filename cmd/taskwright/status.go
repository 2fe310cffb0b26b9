package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show a task's execution status",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			snapshot, err := engine.GetTaskStatus(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(snapshot)
			}

			fmt.Printf("Task:       %s\n", snapshot.TaskID)
			fmt.Printf("Status:     %s\n", renderStatus(snapshot.Status))
			fmt.Printf("Runs:       %d\n", snapshot.ExecutionCount)
			fmt.Printf("Last run:   %s\n", renderTime(snapshot.LastExecutedAt))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <task-id> <execution-id>",
	Short: "Restore the snapshots taken by an execution's backup steps",
	Long: `Restore every file that the given execution backed up before
modifying. Rollback is always explicit; a failed execution never rolls
itself back. Use 'taskwright history' to find the execution id.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			report, err := engine.Rollback(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			if len(report.Restored) == 0 {
				fmt.Println("Nothing to restore: the execution made no backups.")
				return nil
			}
			for _, path := range report.Restored {
				fmt.Printf("Restored %s\n", path)
			}
			fmt.Printf("%d file(s) restored from execution %s\n", len(report.Restored), shortID(report.ExecutionID))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

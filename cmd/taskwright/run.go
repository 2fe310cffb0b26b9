package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
)

var runWait bool

var runCmd = &cobra.Command{
	Use:   "run <task-id>",
	Short: "Generate a plan for the task and schedule its execution",
	Long: `Generate a fresh plan from the task's requirements and schedule it
for background execution. The command returns as soon as the execution is
scheduled; use --wait to poll until the task reaches a terminal status.

Rescheduling a failed task produces a fresh execution record under the
same task id. A task that already has an execution in flight is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			taskID := args[0]

			p, err := engine.CreatePlan(ctx, taskID)
			if err != nil {
				return err
			}

			if err := engine.ScheduleExecution(ctx, taskID, p); err != nil {
				return err
			}
			fmt.Printf("Scheduled execution of task %s (%d steps)\n", shortID(taskID), p.Len())

			if runWait {
				for {
					snapshot, err := engine.GetTaskStatus(ctx, taskID)
					if err != nil {
						return err
					}
					if snapshot.Status.IsTerminal() {
						fmt.Printf("Task %s finished: %s (run #%d)\n",
							shortID(taskID), renderStatus(snapshot.Status), snapshot.ExecutionCount)
						return nil
					}
					time.Sleep(200 * time.Millisecond)
				}
			}

			// The store closes when withEngine returns; don't abandon the
			// in-flight execution before it finalizes.
			engine.Wait()
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runWait, "wait", false, "poll until the task reaches a terminal status")
}

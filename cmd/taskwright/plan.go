package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
)

var planCmd = &cobra.Command{
	Use:   "plan <task-id>",
	Short: "Show the step plan generated for a task",
	Long: `Generate and display the ordered step plan for a task without
executing anything. Each free-text requirement is classified into one
typed step; requirements that cannot be classified become diagnostic
steps that only record themselves in the execution log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			p, err := engine.CreatePlan(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", heading(fmt.Sprintf("Plan for task %s", shortID(p.TaskID()))))
			if p.Objective() != "" {
				fmt.Printf("Objective: %s\n", p.Objective())
			}
			if p.RollbackEnabled() {
				fmt.Println("Rollback:  enabled (plan contains backup steps)")
			}
			fmt.Println()
			for i, step := range p.Steps() {
				fmt.Printf("%2d. [%s] %s\n", i+1, step.Kind(), step.Describe())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/app"
	"github.com/casaops/taskwright/internal/domain/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage maintenance tasks",
}

var (
	taskAddObjective    string
	taskAddPriority     string
	taskAddRequirements []string
	taskAddConstraints  []string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new task",
	Long: `Create a new pending task from free-text requirements.

Each requirement becomes one typed step when a plan is generated:
  taskwright task add "Rotate backend log" \
    --objective "Keep log size bounded" \
    --req "Backup /var/log/hearth/backend.log" \
    --req "Execute truncate -s 0 /var/log/hearth/backend.log" \
    --req "Verify service healthy by running curl -sf localhost:8123/health"`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			t, err := engine.CreateTask(ctx, args[0], taskAddObjective, taskAddRequirements,
				task.WithPriority(task.ParsePriority(taskAddPriority)),
				task.WithConstraints(taskAddConstraints),
			)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s (%s)\n", t.ID, t.Title)
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			tasks, err := engine.ListTasks(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(tasks)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tRUNS\tLAST RUN")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(t.ID), truncate(t.Title, 40), t.Priority,
					renderStatus(t.Status), t.ExecutionCount, renderTime(t.LastExecutedAt))
			}
			return w.Flush()
		})
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			t, err := engine.GetTask(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(t)
			}

			fmt.Printf("%s  %s\n", heading(t.Title), renderStatus(t.Status))
			fmt.Printf("ID:         %s\n", t.ID)
			fmt.Printf("Objective:  %s\n", t.Objective)
			fmt.Printf("Priority:   %s\n", t.Priority)
			fmt.Printf("Created:    %s\n", renderTime(t.CreatedAt))
			fmt.Printf("Last run:   %s\n", renderTime(t.LastExecutedAt))
			fmt.Printf("Runs:       %d\n", t.ExecutionCount)
			fmt.Println("Requirements:")
			for _, req := range t.Requirements {
				fmt.Printf("  - %s\n", req)
			}
			for _, c := range t.Constraints {
				fmt.Printf("Constraint: %s\n", c)
			}
			return nil
		})
	},
}

var taskImportCmd = &cobra.Command{
	Use:   "import <file.toml>",
	Short: "Import task definitions from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			tasks, err := engine.ImportTasks(ctx, args[0])
			if err != nil {
				return err
			}
			for _, t := range tasks {
				fmt.Printf("Imported task %s (%s)\n", shortID(t.ID), t.Title)
			}
			fmt.Printf("%d task(s) imported\n", len(tasks))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskImportCmd)

	taskAddCmd.Flags().StringVar(&taskAddObjective, "objective", "", "what the task is trying to achieve")
	taskAddCmd.Flags().StringVar(&taskAddPriority, "priority", "medium", "task priority (low, medium, high, critical)")
	taskAddCmd.Flags().StringArrayVar(&taskAddRequirements, "req", nil, "requirement (repeatable)")
	taskAddCmd.Flags().StringArrayVar(&taskAddConstraints, "constraint", nil, "constraint (repeatable)")
}

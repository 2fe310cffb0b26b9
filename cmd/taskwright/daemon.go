package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/agent"
	"github.com/casaops/taskwright/internal/app"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background janitor until interrupted",
	Long: `Run the maintenance janitor in the foreground. On every sweep
interval it prunes backup snapshots older than the configured retention
window. Stop it with Ctrl-C.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withEngine(func(ctx context.Context, engine *app.Engine) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			janitor, err := agent.NewJanitor(agent.Config{
				Interval:        cfg.SweepInterval,
				BackupRetention: cfg.BackupRetention,
			})
			if err != nil {
				return err
			}

			janitor.SetSweepHandler(func(ctx context.Context, retention time.Duration) (*agent.SweepResult, error) {
				pruned, err := engine.PruneBackups(ctx, retention)
				if err != nil {
					return nil, err
				}
				return &agent.SweepResult{SnapshotsPruned: pruned}, nil
			})

			if err := janitor.Start(ctx); err != nil {
				return err
			}
			fmt.Printf("Janitor running: sweep every %s, retention %s\n",
				cfg.SweepInterval, cfg.BackupRetention)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			fmt.Println("Shutting down...")
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := janitor.Stop(stopCtx); err != nil {
				return err
			}

			status := janitor.Status()
			fmt.Printf("Janitor stopped after %d sweep(s), %d error(s)\n",
				status.SweepCount, status.ErrorCount)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

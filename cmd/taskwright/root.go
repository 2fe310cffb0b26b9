package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/casaops/taskwright/internal/adapters/command"
	"github.com/casaops/taskwright/internal/adapters/filesystem"
	"github.com/casaops/taskwright/internal/adapters/logging"
	"github.com/casaops/taskwright/internal/adapters/store"
	"github.com/casaops/taskwright/internal/app"
	"github.com/casaops/taskwright/internal/config"
	"github.com/casaops/taskwright/internal/domain/backup"
	"github.com/casaops/taskwright/internal/ports"
)

var (
	// Global flags
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "taskwright",
	Short: "Maintenance-task engine for the Hearth platform",
	Long: `Taskwright turns free-text maintenance requirements into ordered,
typed step plans and executes them in the background.

Tasks are persisted together with their full execution history, so every
run is auditable and file-touching steps can be rolled back on request:
  Requirements → Plan → Schedule → Execute → History`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.taskwright/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the active configuration.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = ports.ExpandPath("~/.taskwright/config.yaml")
		return config.LoadOrDefault(path)
	}
	return config.Load(path)
}

// withEngine builds a fully wired engine and runs fn against it.
func withEngine(fn func(ctx context.Context, engine *app.Engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return fmt.Errorf("prepare store directory: %w", err)
	}

	repo, err := store.NewSQLite(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	level := ports.ParseLevel(cfg.LogLevel)
	if verbose {
		level = ports.LevelDebug
	}
	logger := logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSONFormat(cfg.LogJSON),
	)

	engine := app.New(
		repo,
		backup.NewFileStore(cfg.BackupDir),
		command.NewRealRunner(),
		filesystem.NewReal(),
		logger,
		cfg.CommandTimeout,
	)

	return fn(context.Background(), engine)
}

// printError prints an error message to stderr.
func printError(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

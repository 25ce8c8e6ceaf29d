// Package cli defines the cobra commands of the reading-tracker binary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/entrypoint"
	"github.com/mrlokans/reading-tracker/internal/logger"
)

// ConfigLoader returns the configuration a command runs with.
type ConfigLoader func() *config.Config

// NewRootCmd builds the command tree. loadConfig is called lazily by each
// subcommand so that --help never touches the environment.
func NewRootCmd(version string, loadConfig ConfigLoader) *cobra.Command {
	root := &cobra.Command{
		Use:   "reading-tracker",
		Short: "Personal reading tracker",
		Long: `Reading Tracker keeps a library of books, reading sessions and highlights.
It serves a JSON API and can export, import and back up complete library snapshots.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(version, loadConfig),
		newExportCmd(loadConfig),
		newImportCmd(loadConfig),
		newSummaryCmd(loadConfig),
		newUserCmd(loadConfig),
		newBackupCmd(loadConfig),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCmd(version, config.NewConfig).Execute(); err != nil {
		l, logErr := logger.New(config.Log{Level: "info", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// withApp builds the core services, runs fn and tears everything down.
func withApp(cmd *cobra.Command, loadConfig ConfigLoader, fn func(ctx context.Context, app *entrypoint.App) error) error {
	cfg := loadConfig()
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := entrypoint.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Shutdown(ctx)

	return fn(ctx, app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

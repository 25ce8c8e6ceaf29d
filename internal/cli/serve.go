package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/reading-tracker/internal/entrypoint"
	"github.com/mrlokans/reading-tracker/internal/logger"
)

func newServeCmd(version string, loadConfig ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, task queue and scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			return entrypoint.Run(cfg, log, version)
		},
	}
}

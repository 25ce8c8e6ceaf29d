package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/reading-tracker/internal/entrypoint"
)

func newBackupCmd(loadConfig ConfigLoader) *cobra.Command {
	var userID uint

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up library snapshots now",
		Long: `Backup exports snapshots and stores them in the configured backup sink,
the BACKUP_DIR directory or an S3-compatible bucket when BACKUP_STORAGE_ENDPOINT is set.
Without --user every user is backed up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, loadConfig, func(ctx context.Context, app *entrypoint.App) error {
				out := cmd.OutOrStdout()
				if userID != 0 {
					location, err := app.Backup.BackupUser(ctx, userID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Backed up user %d to %s\n", userID, location)
					return nil
				}

				n, err := app.Backup.BackupAll(ctx)
				fmt.Fprintf(out, "Backed up %d users\n", n)
				return err
			})
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "Back up a single user (default: all users)")
	return cmd
}

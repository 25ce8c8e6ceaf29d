package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/reading-tracker/internal/entrypoint"
)

func newUserCmd(loadConfig ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and API tokens",
	}
	cmd.AddCommand(newUserCreateCmd(loadConfig), newUserTokenCmd(loadConfig))
	return cmd
}

func newUserCreateCmd(loadConfig ConfigLoader) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user and print its API token",
		Long: `Create adds a user and issues an API token for it.
The token is printed once and cannot be recovered; use "user token" to issue a new one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, loadConfig, func(ctx context.Context, app *entrypoint.App) error {
				user, token, err := app.Auth.CreateUser(ctx, args[0], email)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created user %s (id %d)\n", user.Username, user.ID)
				fmt.Fprintf(out, "API token: %s\n", token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the user")
	return cmd
}

func newUserTokenCmd(loadConfig ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a new API token, revoking the previous one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, loadConfig, func(ctx context.Context, app *entrypoint.App) error {
				user, err := app.Users.GetUserByUsername(ctx, args[0])
				if err != nil {
					return err
				}
				token, err := app.Auth.GenerateToken(ctx, user.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API token: %s\n", token)
				return nil
			})
		},
	}
}

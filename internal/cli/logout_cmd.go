package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/helpdesk-console/internal/model"
)

func newLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the console user and remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Config()
			if err != nil {
				return err
			}

			vault, err := env.Vault()
			if err != nil {
				return err
			}
			if err := vault.ClearToken(); err != nil {
				return err
			}

			email := cfg.User.Email
			cfg.User = model.User{}
			if err := model.SaveConfig(env.ConfigPath, cfg); err != nil {
				return err
			}

			if email == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", email)
			return nil
		},
	}
}

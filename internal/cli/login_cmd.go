package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/source/helpdesk"
)

func newLoginCmd(env *Env) *cobra.Command {
	var email, password, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify an account against the backend and save it as the console user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Config()
			if err != nil {
				return err
			}

			if email == "" || password == "" {
				if env.IsInteractive == nil || !env.IsInteractive() {
					return fmt.Errorf("--email and --password are required")
				}
				if err := promptCredentials(&email, &password); err != nil {
					return err
				}
			}

			timeout := time.Duration(cfg.Backend.TimeoutSec) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			adapter := helpdesk.NewAdapter(cfg.Backend.BaseURL, token, timeout)
			user, err := adapter.Authenticate(ctx, email, password)
			if err != nil {
				return err
			}

			if token != "" {
				vault, err := env.Vault()
				if err != nil {
					return err
				}
				if err := vault.SetToken(token); err != nil {
					return err
				}
			}

			cfg.User = *user
			if err := model.SaveConfig(env.ConfigPath, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s, id %s)\n", user.Email, user.Role, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token to store in the keyring")

	return cmd
}

func promptCredentials(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password),
		),
	).Run()
}

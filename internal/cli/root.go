package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/helpdesk-console/internal/credential"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
)

// Env holds the global flags every command resolves its config and
// cache from.
type Env struct {
	ConfigPath string
	DBPath     string

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	// OpenVault overrides where the API token lives. Nil means the
	// platform keyring.
	OpenVault func() (*credential.Vault, error)
}

// Config loads the configuration file named by --config.
func (e *Env) Config() (*model.AppConfig, error) {
	return model.LoadConfig(e.ConfigPath)
}

// Vault opens the credential vault holding the API token.
func (e *Env) Vault() (*credential.Vault, error) {
	if e.OpenVault != nil {
		return e.OpenVault()
	}
	return credential.Open()
}

// OpenStore opens the local cache named by --db, creating its directory.
func (e *Env) OpenStore() (*store.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(e.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return store.NewSQLiteStore(e.DBPath)
}

// NewRootCmd creates the top-level "helpdesk" command. Without a
// subcommand it runs the terminal UI.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "helpdesk",
		Short:         "Help-desk task board with a countdown timer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(env)
		},
	}

	root.PersistentFlags().StringVar(&env.ConfigPath, "config", model.DefaultConfigPath(), "Config file")
	root.PersistentFlags().StringVar(&env.DBPath, "db", model.DefaultDBPath(), "Local cache database")

	root.AddCommand(
		newTasksCmd(env),
		newLoginCmd(env),
		newLogoutCmd(env),
		newHistoryCmd(env),
		newConfigCmd(env),
	)

	return root
}

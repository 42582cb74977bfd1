package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/helpdesk-console/internal/app"
	"github.com/nhle/helpdesk-console/internal/model"
)

var errNotTerminal = errors.New("the board needs an interactive terminal; try 'helpdesk tasks'")

func runTUI(env *Env) error {
	if env.IsInteractive != nil && !env.IsInteractive() {
		return errNotTerminal
	}

	cfg, err := env.Config()
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	s, err := env.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()

	// A missing keyring is not fatal; the backend may not need a token.
	var token string
	vault, err := env.Vault()
	if err != nil {
		slog.Warn("opening credential vault", "error", err)
	} else if token, err = vault.Token(); err != nil {
		slog.Warn("reading API token", "error", err)
	}

	m := app.New(app.Options{
		Store:      s,
		Config:     cfg,
		ConfigPath: env.ConfigPath,
		Token:      token,
		LoadToken: func() (string, error) {
			if vault == nil {
				return "", nil
			}
			return vault.Token()
		},
		SaveToken: func(v string) error {
			if vault == nil {
				return fmt.Errorf("no credential vault available")
			}
			return vault.SetToken(v)
		},
		Logger: slog.Default(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

// setupLogging sends the structured log to the configured file, since
// the terminal belongs to the UI.
func setupLogging(cfg model.LogConfig) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.File, "helpdesk")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
)

// drain runs cmd and returns the first message of the given type,
// looking inside batches.
func drain[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if found, ok := c().(T); ok {
				return found
			}
		}
		t.Fatalf("no %T in batch", *new(T))
	}
	found, ok := msg.(T)
	require.True(t, ok, "got %T", msg)
	return found
}

func TestSettings_SubmitValidatesThenSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var savedToken string
	validate := func(_ context.Context, baseURL, token string) (string, error) {
		assert.Equal(t, "http://desk.local/api", baseURL)
		assert.Equal(t, "s3cret", token)
		return "3 statuses", nil
	}

	m := New(path, validate, func(tok string) error { savedToken = tok; return nil }, keys.DefaultKeyMap(), 100, 40)
	m.Open(model.DefaultAppConfig())
	m.fb.baseURL = "http://desk.local/api/"
	m.fb.token = "s3cret"
	m.fb.userID = "7"
	m.fb.role = model.RoleAdmin

	m, cmd := m.submit()
	assert.Equal(t, ModeValidating, m.mode)
	validated := drain[validatedMsg](t, cmd)
	require.NoError(t, validated.err)

	m, cmd = m.Update(validated)
	saved := drain[savedMsg](t, cmd)
	require.NoError(t, saved.err)

	_, cmd = m.Update(saved)
	done := drain[SettingsSavedMsg](t, cmd)
	assert.True(t, done.TokenChanged)
	assert.Equal(t, "s3cret", savedToken)
	assert.Equal(t, "http://desk.local/api", done.Config.Backend.BaseURL)

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7", loaded.User.ID)
	assert.Equal(t, model.RoleAdmin, loaded.User.Role)
	assert.Equal(t, "http://desk.local/api", loaded.Backend.BaseURL)
}

func TestSettings_ValidationFailureOffersChoices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	validate := func(context.Context, string, string) (string, error) {
		return "", errors.New("connection refused")
	}

	m := New(path, validate, nil, keys.DefaultKeyMap(), 100, 40)
	m.Open(model.DefaultAppConfig())
	m.fb.userID = "7"

	m, cmd := m.submit()
	m, _ = m.Update(drain[validatedMsg](t, cmd))
	assert.Equal(t, ModeResult, m.mode)
	assert.Contains(t, m.View(), "connection refused")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.IsType(t, SettingsClosedMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	saved := drain[savedMsg](t, cmd)
	require.NoError(t, saved.err)
	assert.False(t, saved.tokenChanged)
}

func TestSettings_OpenKeepsCallerConfig(t *testing.T) {
	cfg := model.DefaultAppConfig()
	m := New("unused", nil, nil, keys.DefaultKeyMap(), 100, 40)
	m.Open(cfg)
	m.fb.baseURL = "http://elsewhere"

	assert.Equal(t, model.DefaultAppConfig().Backend.BaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, "http://elsewhere", m.applied().Backend.BaseURL)
	assert.Equal(t, model.RoleAgent, m.fb.role)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:8080/api"))
	assert.Error(t, validateURL("localhost"))
	assert.NoError(t, validateOptionalURL(""))
	assert.NoError(t, validateHMS("00:10:00"))
	assert.Error(t, validateHMS("10 min"))
	assert.Error(t, validateRequired("User ID")(" "))
}

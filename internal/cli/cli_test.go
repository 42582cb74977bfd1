package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nhle/helpdesk-console/internal/credential"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/testutil"
)

type testEnv struct {
	env   *Env
	dir   string
	vault *credential.Vault
}

func newTestEnv(t *testing.T, cfg *model.AppConfig) testEnv {
	t.Helper()
	dir := t.TempDir()
	vault := credential.New(keyring.NewArrayKeyring(nil))
	env := &Env{
		ConfigPath:    filepath.Join(dir, "config.yaml"),
		DBPath:        filepath.Join(dir, "cache", "helpdesk.db"),
		IsInteractive: func() bool { return false },
		OpenVault:     func() (*credential.Vault, error) { return vault, nil },
	}
	if cfg != nil {
		require.NoError(t, model.SaveConfig(env.ConfigPath, cfg))
	}
	return testEnv{env: env, dir: dir, vault: vault}
}

func (te testEnv) seed(t *testing.T, tasks ...model.Task) {
	t.Helper()
	s, err := te.env.OpenStore()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SyncStatuses(ctx, testutil.Statuses()))
	_, err = s.SyncTasks(ctx, tasks)
	require.NoError(t, err)
}

func (te testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(te.env)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", te.env.ConfigPath, "--db", te.env.DBPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func agentConfig() *model.AppConfig {
	cfg := model.DefaultAppConfig()
	cfg.User = model.User{ID: "7", Email: "agent@example.com", Role: model.RoleAgent}
	return cfg
}

func boardTasks() []model.Task {
	a := testutil.Task(1, "Reset VPN")
	b := testutil.Task(2, "Swap monitor")
	b.StatusID = 2
	b.Progress = 40
	c := testutil.Task(3, "Someone else's")
	c.Assignee = "9"
	return []model.Task{a, b, c}
}

func TestTasks_TextGroupsVisibleTasks(t *testing.T) {
	te := newTestEnv(t, agentConfig())
	te.seed(t, boardTasks()...)

	out, err := te.run(t, "tasks")
	require.NoError(t, err)

	assert.Contains(t, out, "À faire (1)")
	assert.Contains(t, out, "En cours (1)")
	assert.Contains(t, out, "Reset VPN")
	assert.Contains(t, out, " 40%  Swap monitor")
	assert.NotContains(t, out, "Someone else's")
}

func TestTasks_AllAndStatusFilter(t *testing.T) {
	te := newTestEnv(t, agentConfig())
	te.seed(t, boardTasks()...)

	out, err := te.run(t, "tasks", "--all", "--status", "a faire", "--output", "json")
	require.NoError(t, err)

	var got []taskOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
	assert.Equal(t, model.StatusTodo, got[0].Kind)
	assert.Equal(t, "À faire", got[0].Status)
}

func TestTasks_YAML(t *testing.T) {
	te := newTestEnv(t, agentConfig())
	te.seed(t, boardTasks()...)

	out, err := te.run(t, "tasks", "-o", "yaml")
	require.NoError(t, err)

	var got []taskOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Swap monitor", got[1].Title)
	assert.Equal(t, model.StatusInProgress, got[1].Kind)
}

func TestTasks_UnknownFormat(t *testing.T) {
	te := newTestEnv(t, agentConfig())
	te.seed(t)

	_, err := te.run(t, "tasks", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestHistory(t *testing.T) {
	te := newTestEnv(t, agentConfig())

	out, err := te.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No timer sessions recorded yet.")

	s, err := store.NewSQLiteStore(te.env.DBPath)
	require.NoError(t, err)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordSession(context.Background(), model.SessionRecord{
		TaskID: 1, TaskTitle: "Reset VPN", AllottedSeconds: 600, ExtraSeconds: 300,
		Progress: 150, Outcome: model.OutcomeCompleted,
		StartedAt: start, EndedAt: start.Add(15 * time.Minute),
	}))
	require.NoError(t, s.Close())

	out, err = te.run(t, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 Reset VPN")
	assert.Contains(t, out, "00:05:00")
	assert.Contains(t, out, "150%")
}

func TestLogin_SavesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/utilisateurs", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"id": 4, "email": "boss@example.com", "motDePasseUtilisateur": "x", "typeUtilisateur": "Admin"},
			{"id": 7, "email": "agent@example.com", "motDePasseUtilisateur": "secret", "typeUtilisateur": "Agent"}
		]`)
	}))
	defer srv.Close()

	cfg := model.DefaultAppConfig()
	cfg.Backend.BaseURL = srv.URL + "/api"
	te := newTestEnv(t, cfg)

	out, err := te.run(t, "login", "--email", "AGENT@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as agent@example.com (agent, id 7)")

	saved, err := model.LoadConfig(te.env.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: "7", Email: "agent@example.com", Role: model.RoleAgent}, saved.User)

	_, err = te.run(t, "login", "--email", "agent@example.com", "--password", "wrong")
	require.Error(t, err)
}

func TestLogin_StoresTokenAndLogoutClearsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id": 7, "email": "agent@example.com", "motDePasseUtilisateur": "secret", "typeUtilisateur": "Agent"}]`)
	}))
	defer srv.Close()

	cfg := model.DefaultAppConfig()
	cfg.Backend.BaseURL = srv.URL + "/api"
	te := newTestEnv(t, cfg)

	_, err := te.run(t, "login", "--email", "agent@example.com", "--password", "secret", "--token", "s3cret")
	require.NoError(t, err)

	token, err := te.vault.Token()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token)

	out, err := te.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out agent@example.com")

	token, err = te.vault.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	saved, err := model.LoadConfig(te.env.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, model.User{}, saved.User)

	out, err = te.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLogin_RequiresFlagsWithoutTerminal(t *testing.T) {
	te := newTestEnv(t, nil)

	_, err := te.run(t, "login", "--email", "agent@example.com")
	require.Error(t, err)
}

func TestRoot_RefusesWithoutTerminal(t *testing.T) {
	te := newTestEnv(t, nil)

	_, err := te.run(t)
	assert.ErrorIs(t, err, errNotTerminal)
}

func TestConfigPath(t *testing.T) {
	te := newTestEnv(t, nil)

	out, err := te.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, te.env.ConfigPath+"\n", out)
}

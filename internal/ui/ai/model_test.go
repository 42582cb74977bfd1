package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aiservice "github.com/nhle/helpdesk-console/internal/ai"
	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/testutil"
)

func newAIServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/ai/suggest-questions":
			_, _ = w.Write([]byte(`{"questions":["Quels agents sont surchargés ?"]}`))
		case "/api/ai/analyze":
			_, _ = w.Write([]byte(`{"response":"Deux tâches en retard.","structured_data":{"type":"overdue"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPanel_AsksAndRendersAnswer(t *testing.T) {
	srv, bodies := newAIServer(t)
	client := aiservice.NewClient(srv.URL+"/api/ai", 5*time.Second)
	m := New(client, testutil.NewTestStore(t), nil, keys.DefaultKeyMap(), 100, 40)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "retards")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Analyzing")

	m, _ = m.Update(cmd())
	view := m.View()
	assert.Contains(t, view, "Deux tâches en retard.")
	assert.Contains(t, view, "Report (overdue):")

	require.Len(t, *bodies, 1)
	assert.Equal(t, "retards", (*bodies)[0]["query"])
	assert.Equal(t, aiservice.PeriodWeek, (*bodies)[0]["filterPeriod"])
	assert.Equal(t, "fr", (*bodies)[0]["language"])
}

func TestPanel_SuggestionsFillInput(t *testing.T) {
	srv, _ := newAIServer(t)
	client := aiservice.NewClient(srv.URL+"/api/ai", 5*time.Second)
	m := New(client, testutil.NewTestStore(t), nil, keys.DefaultKeyMap(), 100, 40)

	cmd := m.LoadSuggestions()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "Quels agents sont surchargés ?")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Quels agents sont surchargés ?", m.input.Value())
}

func TestPanel_ServiceErrorIsShown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"model unavailable"}`))
	}))
	defer srv.Close()

	m := New(aiservice.NewClient(srv.URL, time.Second), testutil.NewTestStore(t), nil, keys.DefaultKeyMap(), 100, 40)
	m = typeText(m, "charge")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "model unavailable")
}

func TestPanel_NotConfigured(t *testing.T) {
	m := New(nil, testutil.NewTestStore(t), nil, keys.DefaultKeyMap(), 100, 40)

	assert.Contains(t, m.View(), "analysis service URL")
	assert.Nil(t, m.LoadSuggestions())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, AIPanelCloseMsg{}, cmd())
}

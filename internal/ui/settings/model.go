// Package settings is the backend and user configuration screen. It
// doubles as the first-run setup.
package settings

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// Mode is the current state of the settings screen.
type Mode int

const (
	ModeForm       Mode = iota // editing
	ModeValidating             // testing the connection
	ModeResult                 // connection test failed
)

// SettingsSavedMsg is sent after the configuration was written.
type SettingsSavedMsg struct {
	Config       *model.AppConfig
	TokenChanged bool
}

// SettingsClosedMsg is sent when the user leaves without saving.
type SettingsClosedMsg struct{}

type validatedMsg struct {
	info string
	err  error
}

type savedMsg struct {
	cfg          *model.AppConfig
	tokenChanged bool
	err          error
}

// Validator checks that the backend answers with the given settings and
// returns a short description of what it found.
type Validator func(ctx context.Context, baseURL, token string) (string, error)

// formBindings keeps huh's Value pointers valid across model copies.
type formBindings struct {
	baseURL   string
	aiBaseURL string
	userID    string
	email     string
	role      string
	token     string
	extra     string
}

// Model is the settings screen.
type Model struct {
	mode       Mode
	form       *huh.Form
	fb         *formBindings
	cfg        *model.AppConfig
	configPath string
	validate   Validator
	saveToken  func(string) error
	spinner    spinner.Model
	result     string
	resultErr  error
	keys       *keys.KeyMap
	width      int
	height     int
}

// New creates the settings screen. validate may be nil to skip the
// connection test; saveToken stores the API token.
func New(
	configPath string,
	validate Validator,
	saveToken func(string) error,
	k *keys.KeyMap,
	width, height int,
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		fb:         &formBindings{},
		configPath: configPath,
		validate:   validate,
		saveToken:  saveToken,
		spinner:    sp,
		keys:       k,
		width:      width,
		height:     height,
	}
}

// Open starts editing a copy of cfg.
func (m *Model) Open(cfg *model.AppConfig) tea.Cmd {
	c := *cfg
	m.cfg = &c
	m.mode = ModeForm
	m.result = ""
	m.resultErr = nil

	m.fb.baseURL = c.Backend.BaseURL
	m.fb.aiBaseURL = c.Backend.AIBaseURL
	m.fb.userID = c.User.ID
	m.fb.email = c.User.Email
	m.fb.role = c.User.Role
	if m.fb.role == "" {
		m.fb.role = model.RoleAgent
	}
	m.fb.token = ""
	m.fb.extra = c.Timer.DefaultExtraTime

	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("REST API root, e.g. http://localhost:8080/api").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API token").
				Description("Bearer token; leave blank to keep the stored one").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewInput().
				Title("AI service URL").
				Description("Optional, e.g. http://localhost:8000/api/ai").
				Value(&m.fb.aiBaseURL).
				Validate(validateOptionalURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("User ID").
				Description("Your id on the backend; agents see tasks assigned to it").
				Value(&m.fb.userID).
				Validate(validateRequired("User ID")),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("Agent", model.RoleAgent),
					huh.NewOption("Administrator", model.RoleAdmin),
				).
				Value(&m.fb.role),
			huh.NewInput().
				Title("Default extra time").
				Description("HH:MM:SS offered when a timer runs out").
				Value(&m.fb.extra).
				Validate(validateHMS),
		),
	).WithWidth(m.formWidth())
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the settings screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case validatedMsg:
		if msg.err != nil {
			m.mode = ModeResult
			m.result = ""
			m.resultErr = msg.err
			return m, nil
		}
		m.result = msg.info
		return m, m.save()

	case savedMsg:
		if msg.err != nil {
			m.mode = ModeResult
			m.resultErr = msg.err
			return m, nil
		}
		return m, func() tea.Msg {
			return SettingsSavedMsg{Config: msg.cfg, TokenChanged: msg.tokenChanged}
		}

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			if key.Matches(msg, m.keys.Back) {
				m.mode = ModeForm
				return m, m.reopen()
			}
			return m, nil
		case ModeResult:
			return m.handleResultKeys(msg)
		}
	}

	if m.mode == ModeForm && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		return m, func() tea.Msg { return SettingsClosedMsg{} }
	}
	return m, cmd
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.save()
	case "e":
		m.mode = ModeForm
		return m, m.reopen()
	case "r":
		return m.submit()
	case "esc":
		return m, func() tea.Msg { return SettingsClosedMsg{} }
	}
	return m, nil
}

// reopen rebuilds the form with the values entered so far.
func (m *Model) reopen() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// submit tests the connection, then saves.
func (m Model) submit() (Model, tea.Cmd) {
	if m.validate == nil {
		return m, m.save()
	}
	m.mode = ModeValidating
	validate := m.validate
	baseURL := strings.TrimSpace(m.fb.baseURL)
	token := m.fb.token
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			info, err := validate(ctx, baseURL, token)
			return validatedMsg{info: info, err: err}
		},
	)
}

// applied returns the edited configuration.
func (m Model) applied() *model.AppConfig {
	c := *m.cfg
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	c.Backend.AIBaseURL = strings.TrimRight(strings.TrimSpace(m.fb.aiBaseURL), "/")
	c.User.ID = strings.TrimSpace(m.fb.userID)
	c.User.Email = strings.TrimSpace(m.fb.email)
	c.User.Role = m.fb.role
	c.Timer.DefaultExtraTime = strings.TrimSpace(m.fb.extra)
	return &c
}

func (m Model) save() tea.Cmd {
	cfg := m.applied()
	path := m.configPath
	token := m.fb.token
	saveToken := m.saveToken
	return func() tea.Msg {
		if err := model.SaveConfig(path, cfg); err != nil {
			return savedMsg{err: err}
		}
		if token == "" || saveToken == nil {
			return savedMsg{cfg: cfg}
		}
		if err := saveToken(token); err != nil {
			return savedMsg{err: fmt.Errorf("storing API token: %w", err)}
		}
		return savedMsg{cfg: cfg, tokenChanged: true}
	}
}

// View renders the settings screen.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var body string
	switch m.mode {
	case ModeValidating:
		body = m.spinner.View() + " Testing connection to " + m.fb.baseURL + "..."
	case ModeResult:
		errStyle := lipgloss.NewStyle().Foreground(theme.ColorRed)
		body = lipgloss.JoinVertical(lipgloss.Left,
			errStyle.Render("✗ "+m.resultErr.Error()),
			"",
			theme.HelpStyle.Render("enter save anyway · r retry · e edit · esc cancel"),
		)
	default:
		if m.form != nil {
			body = m.form.View()
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), body)
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-8, 40), 80)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8080/api)")
	}
	return nil
}

func validateOptionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateURL(s)
}

func validateHMS(s string) error {
	_, err := timer.ParsePositiveHMS(strings.TrimSpace(s))
	return err
}

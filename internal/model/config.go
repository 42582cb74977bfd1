package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the help-desk REST
// backend and the AI analysis service.
type BackendConfig struct {
	// BaseURL is the REST root, e.g. http://localhost:8080/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// AIBaseURL is the analysis service root, e.g. http://localhost:8000/api/ai.
	AIBaseURL string `mapstructure:"ai_base_url" yaml:"ai_base_url"`

	TimeoutSec      int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// TimerConfig holds countdown widget preferences.
type TimerConfig struct {
	// DefaultExtraTime pre-fills the extra time prompt.
	DefaultExtraTime string `mapstructure:"default_extra_time" yaml:"default_extra_time"`

	// ClampToViewport keeps the floating widget fully on screen while
	// it is dragged.
	ClampToViewport bool `mapstructure:"clamp_to_viewport" yaml:"clamp_to_viewport"`

	// NotificationTTLSec is how long a snackbar message stays visible.
	NotificationTTLSec int `mapstructure:"notification_ttl_sec" yaml:"notification_ttl_sec"`

	StartX int `mapstructure:"start_x" yaml:"start_x"`
	StartY int `mapstructure:"start_y" yaml:"start_y"`
}

// StatusAliases lists the (diacritic-insensitive) substrings used to
// recognise each lifecycle stage among the backend's status names.
type StatusAliases struct {
	Todo       []string `mapstructure:"todo" yaml:"todo"`
	InProgress []string `mapstructure:"in_progress" yaml:"in_progress"`
	Done       []string `mapstructure:"done" yaml:"done"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls where the structured log goes.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend  BackendConfig `mapstructure:"backend" yaml:"backend"`
	User     User          `mapstructure:"user" yaml:"user"`
	Timer    TimerConfig   `mapstructure:"timer" yaml:"timer"`
	Statuses StatusAliases `mapstructure:"statuses" yaml:"statuses"`
	Display  DisplayConfig `mapstructure:"display" yaml:"display"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/helpdesk, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "helpdesk")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/helpdesk/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the default location of the local cache.
func DefaultDBPath() string {
	return filepath.Join(ConfigDir(), "helpdesk.db")
}

// DefaultStatusAliases returns the aliases matching the backend's
// French status names as well as their English equivalents.
func DefaultStatusAliases() StatusAliases {
	return StatusAliases{
		Todo:       []string{"a faire", "to do", "todo"},
		InProgress: []string{"en cours", "in progress"},
		Done:       []string{"termine", "done"},
	}
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8080/api",
			AIBaseURL:       "http://localhost:8000/api/ai",
			TimeoutSec:      30,
			PollIntervalSec: 60,
		},
		Timer: TimerConfig{
			DefaultExtraTime:   "00:10:00",
			ClampToViewport:    true,
			NotificationTTLSec: 6,
			StartX:             2,
			StartY:             1,
		},
		Statuses: DefaultStatusAliases(),
		Display:  DisplayConfig{Theme: "default"},
		Log: LogConfig{
			File:  filepath.Join(ConfigDir(), "helpdesk.log"),
			Level: "info",
		},
	}
}

// Configured reports whether the backend and user identity are set.
// An unconfigured console opens the settings form on start.
func (c *AppConfig) Configured() bool {
	return strings.TrimSpace(c.Backend.BaseURL) != "" &&
		strings.TrimSpace(c.User.ID) != "" &&
		strings.TrimSpace(c.User.Role) != ""
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values can be overridden with HELPDESK_* environment variables, e.g.
// HELPDESK_BACKEND_BASE_URL. If the file does not exist, defaults apply.
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("helpdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.base_url", def.Backend.BaseURL)
	v.SetDefault("backend.ai_base_url", def.Backend.AIBaseURL)
	v.SetDefault("backend.timeout_sec", def.Backend.TimeoutSec)
	v.SetDefault("backend.poll_interval_sec", def.Backend.PollIntervalSec)
	v.SetDefault("user.id", "")
	v.SetDefault("user.email", "")
	v.SetDefault("user.role", "")
	v.SetDefault("timer.default_extra_time", def.Timer.DefaultExtraTime)
	v.SetDefault("timer.clamp_to_viewport", def.Timer.ClampToViewport)
	v.SetDefault("timer.notification_ttl_sec", def.Timer.NotificationTTLSec)
	v.SetDefault("timer.start_x", def.Timer.StartX)
	v.SetDefault("timer.start_y", def.Timer.StartY)
	v.SetDefault("statuses.todo", def.Statuses.Todo)
	v.SetDefault("statuses.in_progress", def.Statuses.InProgress)
	v.SetDefault("statuses.done", def.Statuses.Done)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = def.Backend.TimeoutSec
	}
	if cfg.Backend.PollIntervalSec <= 0 {
		cfg.Backend.PollIntervalSec = def.Backend.PollIntervalSec
	}
	if cfg.Timer.NotificationTTLSec <= 0 {
		cfg.Timer.NotificationTTLSec = def.Timer.NotificationTTLSec
	}
	if strings.TrimSpace(cfg.Timer.DefaultExtraTime) == "" {
		cfg.Timer.DefaultExtraTime = def.Timer.DefaultExtraTime
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("user", cfg.User)
	v.Set("timer", cfg.Timer)
	v.Set("statuses", cfg.Statuses)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

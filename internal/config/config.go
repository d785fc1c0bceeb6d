// Package config loads bookey's settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bookey/internal/theme"
)

// Backend names accepted in the configuration.
const (
	BackendGoogle = "google"
	BackendCalDAV = "caldav"
	BackendMemory = "memory"
)

// GoogleConfig configures the Google Calendar and Tasks backend.
type GoogleConfig struct {
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	CalendarID      string `yaml:"calendar_id"`
	TaskList        string `yaml:"task_list"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// CalDAVConfig configures the CalDAV backend.
type CalDAVConfig struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// CalendarName is the display name of the calendar holding events.
	CalendarName string `yaml:"calendar_name"`
	// TaskCalendarName is the calendar holding VTODOs. Defaults to CalendarName.
	TaskCalendarName string `yaml:"task_calendar_name"`
}

// Config is the top-level application configuration.
type Config struct {
	// Backend selects the calendar service: "google", "caldav" or "memory".
	Backend string `yaml:"backend"`

	// Timezone is the IANA zone used for display and for zone-less input.
	Timezone string `yaml:"timezone"`

	// LogFile receives logs of the interactive UI so they never hit the screen.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Google GoogleConfig  `yaml:"google"`
	CalDAV CalDAVConfig  `yaml:"caldav"`
	Theme  theme.Palette `yaml:"theme"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendGoogle,
		Timezone: "Local",
		LogLevel: "info",
		Google: GoogleConfig{
			CalendarID:      "primary",
			TaskList:        "@default",
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
		CalDAV: CalDAVConfig{
			CalendarName: "Calendar",
		},
		Theme: theme.DefaultPalette(),
	}
}

// Normalize fills in missing values so partially-filled files still work.
func (c *Config) Normalize() {
	def := DefaultConfig()
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = def.Google.CalendarID
	}
	if c.Google.TaskList == "" {
		c.Google.TaskList = def.Google.TaskList
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = def.Google.CredentialsFile
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = def.Google.TokenFile
	}
	if c.CalDAV.CalendarName == "" {
		c.CalDAV.CalendarName = def.CalDAV.CalendarName
	}
	if c.CalDAV.TaskCalendarName == "" {
		c.CalDAV.TaskCalendarName = c.CalDAV.CalendarName
	}
	c.Theme.Normalize()
}

// Validate checks values Normalize cannot fix.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGoogle, BackendMemory:
	case BackendCalDAV:
		if c.CalDAV.Endpoint == "" {
			return errors.New("caldav backend needs caldav.endpoint (or CALDAV_ENDPOINT)")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultPath returns <user config dir>/bookey/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "bookey", "config.yaml")
}

// DefaultLogFile returns <user cache dir>/bookey/bookey.log.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bookey.log")
	}
	return filepath.Join(dir, "bookey", "bookey.log")
}

// Load reads the YAML file at path, applies environment overrides and
// normalizes the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.Normalize()
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile()
	}
	return cfg, nil
}

// applyEnv overrides file values with non-empty environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	for name, dst := range map[string]*string{
		"BOOKEY_BACKEND":       &c.Backend,
		"BOOKEY_TIMEZONE":      &c.Timezone,
		"BOOKEY_LOG_FILE":      &c.LogFile,
		"LOG_LEVEL":            &c.LogLevel,
		"GOOGLE_CLIENT_ID":     &c.Google.ClientID,
		"GOOGLE_CLIENT_SECRET": &c.Google.ClientSecret,
		"GOOGLE_CALENDAR_ID":   &c.Google.CalendarID,
		"CALDAV_ENDPOINT":      &c.CalDAV.Endpoint,
		"CALDAV_USERNAME":      &c.CalDAV.Username,
		"CALDAV_PASSWORD":      &c.CalDAV.Password,
		"CALDAV_CALENDAR_NAME": &c.CalDAV.CalendarName,
	} {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
}

// Save writes the configuration as YAML with 0600 permissions, since it may
// hold credentials.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Package config handles the configuration directory, token path and API origin.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the application directory name.
	AppName = "tasktrackr"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// RemoteHost is the host of the hosted deployment.
	RemoteHost = "tasktrackr-kg3v.onrender.com"

	// RemoteAPIBase is the API origin used unless another one is requested.
	RemoteAPIBase = "https://" + RemoteHost + "/api"

	// LocalAPIBase is the API origin of a backend running on this machine.
	LocalAPIBase = "http://localhost:3000/api"

	// EnvAPIBase overrides the API origin.
	EnvAPIBase = "TASKTRACKR_API"

	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "TASKTRACKR_CONFIG"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIBase is the resolved API origin, without a trailing slash.
	APIBase string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses $TASKTRACKR_CONFIG, then XDG_CONFIG_HOME/tasktrackr
// or $HOME/.config/tasktrackr.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, APIBase: RemoteAPIBase}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ResolveAPIBase picks the API origin once at startup.
// Precedence: explicit flag value, $TASKTRACKR_API, the local origin when
// local is set, and finally the hosted deployment.
func ResolveAPIBase(flagValue string, local bool) string {
	base := flagValue
	if base == "" {
		base = os.Getenv(EnvAPIBase)
	}
	if base == "" {
		if local {
			base = LocalAPIBase
		} else {
			base = RemoteAPIBase
		}
	}
	return strings.TrimRight(base, "/")
}

// AuthURL returns the base URL of the auth endpoints.
func (c *Config) AuthURL() string {
	return c.APIBase + "/auth"
}

// TasksURL returns the base URL of the tasks endpoints.
func (c *Config) TasksURL() string {
	return c.APIBase + "/tasks"
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// Package config loads CLI settings from the XDG config file, an optional
// .env file and the process environment, in that order of precedence
// (later sources win). Secrets are never stored here; the API token and the
// local database DSN go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/xdg"
)

// DefaultAPIURL is the development origin used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Environment variables understood by Load.
const (
	EnvAPIURL     = "SQLAGENT_API_URL"
	EnvViteAPIURL = "VITE_API_URL"
	EnvShowSQL    = "SQLAGENT_SHOW_SQL"
	EnvLogLevel   = "SQLAGENT_LOG_LEVEL"
	EnvTimeout    = "SQLAGENT_TIMEOUT"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL   string `json:"api_url"`
	ShowSQL  bool   `json:"show_sql"`
	LogLevel string `json:"log_level"`
	// RowPreview caps how many result rows the response panel prints.
	RowPreview int `json:"row_preview"`
	// Timeout bounds each HTTP call. Zero leaves the transport default in charge.
	Timeout Duration `json:"timeout"`
}

// Duration is a time.Duration that reads "30s" style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts either a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("timeout: expected duration string or seconds: %w", err)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		APIURL:     DefaultAPIURL,
		ShowSQL:    true,
		LogLevel:   "info",
		RowPreview: 100,
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults.
// A .env file in the working directory is loaded into the environment first
// without overriding variables that are already set.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, apperrors.Wrap(apperrors.ConfigInvalid, "parse "+p, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return c, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c.normalized(), nil
}

// applyEnv overlays environment variables onto c.
func applyEnv(c *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	} else if v := strings.TrimSpace(os.Getenv(EnvViteAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvShowSQL)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ConfigInvalid, EnvShowSQL, err)
		}
		c.ShowSQL = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ConfigInvalid, EnvTimeout, err)
		}
		c.Timeout = Duration(d)
	}
	return nil
}

func (c Config) normalized() Config {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.RowPreview <= 0 {
		c.RowPreview = 100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

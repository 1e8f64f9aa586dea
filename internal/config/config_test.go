package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "sqlagent/cli/internal/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{EnvAPIURL, EnvViteAPIURL, EnvShowSQL, EnvLogLevel, EnvTimeout} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", c.APIURL, DefaultAPIURL)
	}
	if !c.ShowSQL {
		t.Error("ShowSQL = false, want true")
	}
	if c.RowPreview != 100 {
		t.Errorf("RowPreview = %d, want 100", c.RowPreview)
	}
	if c.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", time.Duration(c.Timeout))
	}
}

func TestLoadPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantURL string
		wantSQL bool
	}{
		{
			name:    "file only",
			file:    `{"api_url": "https://agent.example.com/", "show_sql": false}`,
			wantURL: "https://agent.example.com",
			wantSQL: false,
		},
		{
			name:    "env beats file",
			file:    `{"api_url": "https://file.example.com"}`,
			env:     map[string]string{EnvAPIURL: "https://env.example.com"},
			wantURL: "https://env.example.com",
			wantSQL: true,
		},
		{
			name:    "vite variable is a fallback",
			env:     map[string]string{EnvViteAPIURL: "http://127.0.0.1:9000"},
			wantURL: "http://127.0.0.1:9000",
			wantSQL: true,
		},
		{
			name:    "primary variable wins over vite",
			env:     map[string]string{EnvAPIURL: "http://a", EnvViteAPIURL: "http://b", EnvShowSQL: "false"},
			wantURL: "http://a",
			wantSQL: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				p := filepath.Join(dir, "sqlagent", "config.json")
				if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(p, []byte(tt.file), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			c, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if c.APIURL != tt.wantURL {
				t.Errorf("APIURL = %q, want %q", c.APIURL, tt.wantURL)
			}
			if c.ShowSQL != tt.wantSQL {
				t.Errorf("ShowSQL = %v, want %v", c.ShowSQL, tt.wantSQL)
			}
		})
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTimeout, "soon")

	if _, err := Load(); apperrors.KindOf(err) != apperrors.ConfigInvalid {
		t.Fatalf("Load() error = %v, want config_invalid", err)
	}
}

func TestSaveRoundTripKeepsTimeout(t *testing.T) {
	isolate(t)
	c := Defaults()
	c.Timeout = Duration(45 * time.Second)
	if err := Save(c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if time.Duration(got.Timeout) != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", time.Duration(got.Timeout))
	}
}

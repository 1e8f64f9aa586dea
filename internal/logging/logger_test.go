package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFiltersByLevelAndMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := New(zapcore.AddSync(&buf), "info")

	log.Debug("hidden")
	log.Info("connecting", Secret("dsn", "postgres://u:pw@localhost/db"), zap.Int("attempt", 1))
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
	if !strings.Contains(out, `"msg":"connecting"`) || !strings.Contains(out, `"app":"sqlagent"`) {
		t.Errorf("missing fields: %s", out)
	}
	if strings.Contains(out, "pw") {
		t.Errorf("secret leaked: %s", out)
	}
}

func TestSetupDisabled(t *testing.T) {
	log, path, err := Setup(false, "debug")
	if err != nil || path != "" || log == nil {
		t.Errorf("Setup(false) = %v, %q, %v", log, path, err)
	}
}

func TestSetupWritesUnderStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	log, path, err := Setup(true, "debug")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer log.Sync()
	if !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, LogFileName) {
		t.Errorf("path = %q, want under %q", path, dir)
	}
}

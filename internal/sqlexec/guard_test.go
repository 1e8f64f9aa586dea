package sqlexec

import (
	"errors"
	"testing"
)

func TestPrepareReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		want    string
		wantErr error
	}{
		{name: "adds limit", sql: "SELECT * FROM orders;", want: "SELECT * FROM orders LIMIT 100"},
		{name: "keeps existing limit", sql: "select id from t limit 5", want: "select id from t limit 5"},
		{name: "cte", sql: "WITH x AS (SELECT 1) SELECT * FROM x", want: "WITH x AS (SELECT 1) SELECT * FROM x LIMIT 100"},
		{name: "rejects update", sql: "UPDATE t SET a = 1", wantErr: ErrNotSelect},
		{name: "rejects word containing select", sql: "DELETE FROM selection", wantErr: ErrNotSelect},
		{name: "rejects stacked statements", sql: "SELECT 1; DROP TABLE t", wantErr: ErrMultipleStatements},
		{name: "semicolon in string literal", sql: "SELECT * FROM notes WHERE body = 'a;b'", want: "SELECT * FROM notes WHERE body = 'a;b' LIMIT 100"},
		{name: "semicolon in escaped literal", sql: "SELECT 'it''s;ok' AS x;", want: "SELECT 'it''s;ok' AS x LIMIT 100"},
		{name: "semicolon in quoted identifier", sql: `SELECT "a;b" FROM t LIMIT 3`, want: `SELECT "a;b" FROM t LIMIT 3`},
		{name: "statement after closed literal", sql: "SELECT 'x'; DELETE FROM t", wantErr: ErrMultipleStatements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrepareReadOnly(tt.sql, 100)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PrepareReadOnly() = %q, want %q", got, tt.want)
			}
		})
	}
	if _, err := PrepareReadOnly("  ;  ", 10); err == nil {
		t.Error("empty statement accepted")
	}
}

func TestResolveDSN(t *testing.T) {
	stored := func() (string, error) { return "postgres://u:p@stored.example/db", nil }

	t.Run("env first", func(t *testing.T) {
		t.Setenv("SQLAGENT_DSN", "postgres://u:p@env.example/sales")
		t.Setenv("DATABASE_URL", "postgres://u:p@other.example/x")
		dsn, origin, err := ResolveDSN(stored)
		if err != nil || origin != "SQLAGENT_DSN" || DatabaseName(dsn) != "sales" {
			t.Errorf("ResolveDSN() = %q, %q, %v", dsn, origin, err)
		}
	})

	t.Run("keychain fallback", func(t *testing.T) {
		t.Setenv("SQLAGENT_DSN", "")
		t.Setenv("DATABASE_URL", "")
		dsn, origin, err := ResolveDSN(stored)
		if err != nil || origin != "keychain" || DatabaseName(dsn) != "db" {
			t.Errorf("ResolveDSN() = %q, %q, %v", dsn, origin, err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("SQLAGENT_DSN", "")
		t.Setenv("DATABASE_URL", "")
		_, _, err := ResolveDSN(func() (string, error) { return "", errors.New("missing") })
		if !errors.Is(err, ErrNoDSN) {
			t.Errorf("error = %v, want ErrNoDSN", err)
		}
	})
}

func TestNormalizeValue(t *testing.T) {
	id := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	if got := normalizeValue(id); got != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("uuid = %v", got)
	}
	if got := normalizeValue([]byte{0xde, 0xad}); got != `\xdead` {
		t.Errorf("bytes = %v", got)
	}
	if got := normalizeValue(int64(7)); got != int64(7) {
		t.Errorf("int = %v", got)
	}
}

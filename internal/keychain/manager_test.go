package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func newTestManager() *Manager {
	return NewWithKeyring(keyring.NewArrayKeyring(nil))
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestManager()

	if err := m.SaveAPIToken("  tok-123 "); err != nil {
		t.Fatalf("SaveAPIToken() error = %v", err)
	}
	if err := m.SaveDBDSN("postgres://u:p@localhost/db"); err != nil {
		t.Fatalf("SaveDBDSN() error = %v", err)
	}

	if got, err := m.LoadAPIToken(); err != nil || got != "tok-123" {
		t.Errorf("LoadAPIToken() = %q, %v", got, err)
	}
	if got, err := m.LoadDBDSN(); err != nil || got != "postgres://u:p@localhost/db" {
		t.Errorf("LoadDBDSN() = %q, %v", got, err)
	}
}

func TestMissingSecrets(t *testing.T) {
	m := newTestManager()
	if _, err := m.LoadAPIToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadAPIToken() error = %v, want ErrNotFound", err)
	}
	if err := m.ClearAll(); err != nil {
		t.Errorf("ClearAll() on empty keyring error = %v", err)
	}
}

func TestClear(t *testing.T) {
	m := newTestManager()
	_ = m.SaveAPIToken("tok")
	_ = m.SaveDBDSN("postgres://h/db")

	if err := m.ClearDB(); err != nil {
		t.Fatalf("ClearDB() error = %v", err)
	}
	if _, err := m.LoadDBDSN(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DSN still present: %v", err)
	}
	if _, err := m.LoadAPIToken(); err != nil {
		t.Errorf("token removed by ClearDB: %v", err)
	}
}

func TestRefusesEmptyValues(t *testing.T) {
	if err := newTestManager().SaveAPIToken("   "); err == nil {
		t.Error("SaveAPIToken(blank) error = nil")
	}
}

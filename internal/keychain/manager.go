// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe access to the OS
// credential store for sqlagent secrets: the optional API bearer token and the
// DSN of the database generated SQL is re-run against.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlagent"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAPIToken = "api_token"
	KeyDBDSN    = "db_dsn"
)

// ErrNotFound is returned when a secret has not been stored.
var ErrNotFound = errors.New("secret not found in keychain")

// Manager provides thread-safe operations over a keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithKeyring wraps an already opened keyring (tests use keyring.NewArrayKeyring).
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowed,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		KeychainTrustApplication: true,
	}
	return keyring.Open(cfg)
}

// SaveAPIToken stores the API bearer token.
func (m *Manager) SaveAPIToken(token string) error {
	return m.set(KeyAPIToken, token)
}

// LoadAPIToken returns the stored API bearer token.
func (m *Manager) LoadAPIToken() (string, error) {
	return m.get(KeyAPIToken)
}

// SaveDBDSN stores the database DSN.
func (m *Manager) SaveDBDSN(dsn string) error {
	return m.set(KeyDBDSN, dsn)
}

// LoadDBDSN returns the stored database DSN.
func (m *Manager) LoadDBDSN() (string, error) {
	return m.get(KeyDBDSN)
}

// ClearAPIToken removes the API token. A missing token is not an error.
func (m *Manager) ClearAPIToken() error { return m.remove(KeyAPIToken) }

// ClearDB removes the database DSN. A missing DSN is not an error.
func (m *Manager) ClearDB() error { return m.remove(KeyDBDSN) }

// ClearAll removes every sqlagent secret.
func (m *Manager) ClearAll() error {
	return errors.Join(m.ClearAPIToken(), m.ClearDB())
}

func (m *Manager) set(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("refusing to store an empty " + key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

func (m *Manager) remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

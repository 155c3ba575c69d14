package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileSettingsStore implements domain.SettingsStore over a single JSON
// file of string keys to opaque string values. It is the CLI's stand-in
// for a host settings service.
type FileSettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSettingsStore creates a store persisting to the given path
func NewFileSettingsStore(path string) *FileSettingsStore {
	return &FileSettingsStore{path: path}
}

// DefaultSettingsPath returns the per-user settings file location
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crev-settings.json"
	}
	return filepath.Join(home, ".crev", "settings.json")
}

// Get returns the value for key, or "" when the key (or the file) is absent
func (s *FileSettingsStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set writes one key and persists the whole file
func (s *FileSettingsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileSettingsStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, err
	}
	// A corrupt settings file means no settings, not a crash
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string), nil
	}
	return values, nil
}

// MemorySettingsStore is an in-memory store for tests and embedding hosts
type MemorySettingsStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemorySettingsStore creates an empty in-memory store
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: make(map[string]string)}
}

// Get returns the value for key, "" when absent
func (s *MemorySettingsStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

// Set stores one key
func (s *MemorySettingsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

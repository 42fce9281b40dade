// Package memory provides in-memory driven-port implementations used in
// tests and as lightweight defaults.
package memory

import (
	"sync"

	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. It mirrors the file-backed store
// keyed by the same dotted names ("vault.root", "chunking.max_tokens")
// but nothing ever touches disk, which makes it the store of choice for
// service tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
	}
}

// NewConfigStoreFrom creates a store pre-seeded with the given values.
func NewConfigStoreFrom(values map[string]any) *ConfigStore {
	s := NewConfigStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get returns the raw value stored under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns the value under key, or "" when absent or not a
// string.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt returns the value under key, accepting the numeric types a
// decoded config file may produce. Absent or mistyped values are 0.
func (s *ConfigStore) GetInt(key string) int {
	v, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// GetBool returns the value under key, or false when absent or not a
// bool.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := s.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetStringSlice returns the value under key as a []string. Slices of
// any keep their string elements and drop the rest.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Set stores a value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op; the store has no backing file.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op; the store has no backing file.
func (s *ConfigStore) Load() error {
	return nil
}

// Path identifies the store in log output.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

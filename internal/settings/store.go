package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists saved per-theme settings as a single YAML file mapping
// theme machine names to key/value maps. Writes replace the file
// through an atomic rename, mirroring the cache store's last-writer-wins
// policy.
type Store struct {
	path string

	mutex  sync.Mutex
	loaded bool
	data   map[string]map[string]any
}

// NewStore creates a store backed by the YAML file at path. The file is
// read lazily; a missing file is an empty store.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Theme returns a copy of the saved settings for theme.
func (s *Store) Theme(theme string) map[string]any {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.loadLocked()

	saved := s.data[theme]
	result := make(map[string]any, len(saved))
	for k, v := range saved {
		result[k] = v
	}
	return result
}

// Set stores one saved setting and persists the file.
func (s *Store) Set(theme, name string, value any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.loadLocked()

	if s.data == nil {
		s.data = make(map[string]map[string]any)
	}
	if s.data[theme] == nil {
		s.data[theme] = make(map[string]any)
	}
	s.data[theme][name] = value

	return s.persistLocked()
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.data = make(map[string]map[string]any)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	// Unreadable content degrades to an empty store; resolution then
	// falls through to the info-file tiers.
	_ = yaml.Unmarshal(raw, &s.data)
}

func (s *Store) persistLocked() error {
	out, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding saved settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

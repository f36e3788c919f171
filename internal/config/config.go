// Package config stores application-wide settings such as the last opened
// directory. The store is constructed explicitly and handed to whoever needs
// it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	// KeyLastOpenedDirectory holds the root of the most recently opened folder.
	KeyLastOpenedDirectory = "lastOpenedDirectory"
	// KeyImageDirectory holds the project-relative prefix for embedded images.
	KeyImageDirectory = "imageDirectory"

	appDirName = "theoremnote"
	fileName   = "config.json"
)

// ErrSave is returned when the configuration could not be written.
var ErrSave = errors.New("設定の保存中にエラーが発生しました")

// Store reads and writes the JSON configuration file.
type Store struct {
	path   string
	logger *log.Logger

	mu     sync.Mutex
	values map[string]any
	loaded bool
}

// DefaultPath returns the configuration file location inside the user's
// configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, fileName), nil
}

// New creates a store backed by the file at path. A nil logger discards
// output.
func New(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		path:   path,
		logger: logger,
		values: map[string]any{},
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration. A missing or unparsable file yields an empty
// map.
func (s *Store) Load() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return copyValues(s.values)
}

func (s *Store) load() {
	s.loaded = true
	values := map[string]any{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Printf("config: %s not readable, using defaults: %v", s.path, err)
		s.values = values
		return
	}
	if err := json.Unmarshal(data, &values); err != nil || values == nil {
		s.logger.Printf("config: %s is not valid JSON, using defaults: %v", s.path, err)
		s.values = map[string]any{}
		return
	}
	s.values = values
}

// Save merges values over the previously loaded state and writes the result.
// Keys in values replace keys of the same name; other keys are kept.
func (s *Store) Save(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.load()
	}
	merged := copyValues(s.values)
	for k, v := range values {
		merged[k] = v
	}

	if err := s.write(merged); err != nil {
		s.logger.Printf("config: save %s: %v", s.path, err)
		return ErrSave
	}
	s.values = merged
	return nil
}

func (s *Store) write(values map[string]any) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// LastOpenedDirectory returns the stored directory, or "" when none is set.
func (s *Store) LastOpenedDirectory() string {
	return stringValue(s.Load(), KeyLastOpenedDirectory)
}

// SetLastOpenedDirectory records dir as the last opened directory.
func (s *Store) SetLastOpenedDirectory(dir string) error {
	return s.Save(map[string]any{KeyLastOpenedDirectory: dir})
}

// ImageDirectory returns the configured image prefix, or "" when none is set.
func (s *Store) ImageDirectory() string {
	return stringValue(s.Load(), KeyImageDirectory)
}

func stringValue(values map[string]any, key string) string {
	v, _ := values[key].(string)
	return v
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

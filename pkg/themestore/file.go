package themestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// preferences is the on-disk document. Unknown keys are kept across saves.
type preferences struct {
	Theme string         `yaml:"theme,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// FileStore persists the theme preference in a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ attendance.ThemeStore = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("themestore: file path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// LoadTheme implements attendance.ThemeStore. A missing file is an unset preference.
func (s *FileStore) LoadTheme(context.Context) (attendance.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return "", err
	}
	return attendance.Theme(doc.Theme), nil
}

// SaveTheme implements attendance.ThemeStore.
func (s *FileStore) SaveTheme(_ context.Context, theme attendance.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Theme = string(theme)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("themestore: encode %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("themestore: create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("themestore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("themestore: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) read() (preferences, error) {
	var doc preferences
	data, err := os.ReadFile(s.path) //nolint:gosec
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("themestore: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("themestore: decode %s: %w", s.path, err)
	}
	return doc, nil
}

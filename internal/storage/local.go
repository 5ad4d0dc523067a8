package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidName is returned for names that would escape the uploads directory.
var ErrInvalidName = errors.New("invalid file name")

// Local stores uploaded blobs in a flat directory served under /uploads/.
type Local struct {
	basePath string
	mu       sync.RWMutex
}

func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

// Dir returns the uploads directory.
func (s *Local) Dir() string {
	return s.basePath
}

func cleanName(name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", ErrInvalidName
	}
	return name, nil
}

// Save writes data under name and returns the absolute file path.
func (s *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", name, err)
	}
	return path, nil
}

// Path returns where name would live on disk. Only the base name is used.
func (s *Local) Path(name string) string {
	name, err := cleanName(name)
	if err != nil {
		return ""
	}
	return filepath.Join(s.basePath, name)
}

// Exists reports whether name is a regular file in the uploads directory.
func (s *Local) Exists(name string) bool {
	path := s.Path(name)
	if path == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes name. A missing file is not an error.
func (s *Local) Remove(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path := s.Path(name)
	if path == "" {
		return ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove upload %s: %w", name, err)
	}
	return nil
}

// List returns the names of regular files in the uploads directory, sorted.
func (s *Local) List(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

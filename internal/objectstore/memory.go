package objectstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
)

// Memory is an in-process Store. It backs tests and local development.
type Memory struct {
	mu         sync.RWMutex
	objects    map[string][]byte
	publicBase string

	// FailUpload, when set, is consulted before every upload.
	FailUpload func(key string, data []byte) error
	// FailExists, when set, makes Exists return its error.
	FailExists func(key string) error
}

func NewMemory(publicBase string) *Memory {
	if publicBase == "" {
		publicBase = "https://storage.test"
	}
	return &Memory{
		objects:    make(map[string][]byte),
		publicBase: publicBase,
	}
}

func (m *Memory) Enabled() bool { return true }

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	if m.FailExists != nil {
		if err := m.FailExists(key); err != nil {
			return false, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) UploadBuffer(ctx context.Context, data []byte, key, _ string) error {
	select {
	case <-ctx.Done():
		return apperr.StorageUnavailable("upload cancelled", ctx.Err())
	default:
	}
	if m.FailUpload != nil {
		if err := m.FailUpload(key, data); err != nil {
			return apperr.StorageUnavailable("upload failed", err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) UploadFromLocalPath(ctx context.Context, path, key string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read local file: %w", err)
	}
	return m.UploadBuffer(ctx, data, key, "")
}

func (m *Memory) PublicURL(key string) string {
	return BuildPublicURL(m.publicBase, "", "", key)
}

func (m *Memory) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s?X-Amz-Expires=%d", m.PublicURL(key), int(ttl.Seconds())), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns a copy of the stored bytes.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys lists stored keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

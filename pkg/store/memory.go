package store

import (
	"context"
	"fmt"
	"path"
	"sync"
)

// Memory is a map-backed FileStore for tests and in-process embedding.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemory creates a Memory store seeded with a copy of the provided files.
// A nil seed yields an empty store.
func NewMemory(seed map[string]string) *Memory {
	files := make(map[string]string, len(seed))
	for k, v := range seed {
		files[path.Clean(k)] = v
	}
	return &Memory{files: files}
}

func (m *Memory) ReadFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path.Clean(name)]
	if !ok {
		return "", fmt.Errorf("failed to read %s: file does not exist", name)
	}
	return content, nil
}

func (m *Memory) WriteFile(ctx context.Context, name, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned := path.Clean(name)
	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("invalid path %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleaned] = content
	return nil
}

// Snapshot returns a copy of the current file map.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}

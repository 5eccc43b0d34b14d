package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/agentx-labs/bootkeeper/internal/faults"
)

// MemStorage is a map-backed storage.Storage.
type MemStorage struct {
	mu     sync.Mutex
	files  map[string][]byte
	writes []string

	// FailWrite, when set, is consulted before every write; a non-nil
	// result fails the write without changing anything.
	FailWrite func(path string) error
}

// NewMemStorage returns a MemStorage seeded with files.
func NewMemStorage(files map[string][]byte) *MemStorage {
	m := &MemStorage{files: make(map[string][]byte)}
	for k, v := range files {
		m.files[k] = append([]byte(nil), v...)
	}
	return m
}

// ReadFile implements storage.Storage.
func (m *MemStorage) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, faults.Wrap(faults.ErrStorage, "reading "+path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// WriteFile implements storage.Storage.
func (m *MemStorage) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		if err := m.FailWrite(path); err != nil {
			return faults.Wrap(faults.ErrStorage, "writing "+path, err)
		}
	}
	m.files[path] = append([]byte(nil), data...)
	m.writes = append(m.writes, path)
	return nil
}

// File returns the content of path and whether it exists.
func (m *MemStorage) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return data, ok
}

// Writes returns the paths written so far, in order.
func (m *MemStorage) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// Paths returns the stored paths, sorted.
func (m *MemStorage) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MemTransport serves fixed bodies by path. Missing paths fail with a
// network error, as does every path listed in Fail.
type MemTransport struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	requests []string

	Fail map[string]bool
}

// NewMemTransport returns a MemTransport serving bodies.
func NewMemTransport(bodies map[string][]byte) *MemTransport {
	t := &MemTransport{bodies: make(map[string][]byte), Fail: make(map[string]bool)}
	for k, v := range bodies {
		t.bodies[k] = v
	}
	return t
}

// Set replaces the body served for path.
func (t *MemTransport) Set(path string, body []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bodies[path] = body
}

// Get implements transport.Transport.
func (t *MemTransport) Get(ctx context.Context, path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, path)
	if err := ctx.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrNetwork, "fetching "+path, err)
	}
	body, ok := t.bodies[path]
	if !ok || t.Fail[path] {
		return nil, faults.Wrap(faults.ErrNetwork, "fetching "+path, fmt.Errorf("unexpected status 404"))
	}
	return append([]byte(nil), body...), nil
}

// Requests returns the requested paths, in order.
func (t *MemTransport) Requests() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requests...)
}

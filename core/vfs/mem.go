package vfs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Mem is an in-memory FileSystem. It backs tools and tests that drive the
// pipeline without touching disk, and can simulate network serviced paths:
// a path marked remote stays invisible until Deliver moves it local.
type Mem struct {
	mu             sync.Mutex
	files          map[string][]byte
	mods           map[string]time.Time
	remote         map[string][]byte
	networkEnabled bool

	reads atomic.Int64
}

// NewMem creates an empty in-memory file system with network I/O enabled.
func NewMem() *Mem {
	return &Mem{
		files:          make(map[string][]byte),
		mods:           make(map[string]time.Time),
		remote:         make(map[string][]byte),
		networkEnabled: true,
	}
}

// Put stores a local file.
func (m *Mem) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	m.mods[path] = time.Now()
}

// PutRemote stores a file on the simulated network side only.
func (m *Mem) PutRemote(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote[path] = data
}

// Deliver moves a remote file into local storage, as a completed prefetch
// would.
func (m *Mem) Deliver(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.remote[path]; ok {
		m.files[path] = data
		m.mods[path] = time.Now()
		delete(m.remote, path)
	}
}

// SetNetworkEnabled toggles simulated network I/O.
func (m *Mem) SetNetworkEnabled(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networkEnabled = v
}

// Reads returns how many ReadAll calls have been served. Tests use it to
// assert idempotence of repeated content requests.
func (m *Mem) Reads() int { return int(m.reads.Load()) }

// Exists implements FileSystem.
func (m *Mem) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

// ModTime implements FileSystem.
func (m *Mem) ModTime(path string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.mods[path]
	if !ok {
		return time.Time{}, ErrNotExist
	}
	return t, nil
}

// ReadAll implements FileSystem.
func (m *Mem) ReadAll(_ context.Context, path string) ([]byte, error) {
	m.reads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteAll implements FileSystem.
func (m *Mem) WriteAll(path string, data []byte) error {
	m.Put(path, data)
	return nil
}

// IsServicedByNetwork implements FileSystem.
func (m *Mem) IsServicedByNetwork(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, local := m.files[path]
	if local {
		return false
	}
	_, remote := m.remote[path]
	return remote
}

// IsNetworkFileIOEnabled implements FileSystem.
func (m *Mem) IsNetworkFileIOEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.networkEnabled
}

// NetworkPrefetch implements FileSystem. The simulated download does not
// complete on its own; tests call Deliver to land it.
func (m *Mem) NetworkPrefetch(_ context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.networkEnabled
}

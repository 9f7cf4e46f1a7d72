package script

import (
	"content-pipeline/content"
	"content-pipeline/core/cook"
	"content-pipeline/core/vfs"

	"go.uber.org/zap"
)

// Config holds configuration for script content.
type Config struct {
	// LRULimitBytes caps resident script memory; least recently used scripts
	// are unloaded above it. 0 disables the cap.
	LRULimitBytes int `mapstructure:"lru_limit_bytes" default:"0"`
}

// Manager owns the script store and implements content.Traits for scripts.
type Manager struct {
	cfg    Config
	loads  *content.Manager
	fs     vfs.FileSystem
	cooker cook.Cooker
	logger *zap.Logger

	store       *content.Store[Script]
	placeholder *Script
	errValue    *Script
}

// NewManager wires a script manager into the load manager.
func NewManager(cfg Config, loads *content.Manager, fs vfs.FileSystem, cooker cook.Cooker, logger *zap.Logger) *Manager {
	if cooker == nil {
		cooker = cook.Disabled{}
	}
	m := &Manager{
		cfg:    cfg,
		loads:  loads,
		fs:     fs,
		cooker: cooker,
		logger: logger.Named("script"),
		// Empty bytecode: running the placeholder or the error value is a
		// no-op rather than a crash.
		placeholder: &Script{Checksum: Checksum(nil)},
		errValue:    &Script{Checksum: Checksum(nil)},
	}
	m.store = content.NewStore[Script](m, m.logger,
		content.WithLRULimit[Script](cfg.LRULimitBytes))
	loads.Register(m.store)
	return m
}

// Store exposes the underlying content store.
func (m *Manager) Store() *content.Store[Script] { return m.store }

// GetScript returns a handle for the script at the given cooked path.
func (m *Manager) GetScript(p string) *content.Handle[Script] {
	return m.store.GetContent(content.NewKey(content.TypeScript, p))
}

// PlaceholderScript returns the shared while-loading sentinel.
func (m *Manager) PlaceholderScript() *Script { return m.placeholder }

// ErrorScript returns the shared failed-load sentinel.
func (m *Manager) ErrorScript() *Script { return m.errValue }

// Placeholder implements content.Traits.
func (m *Manager) Placeholder(content.Key) *Script { return m.placeholder }

// ErrorValue implements content.Traits.
func (m *Manager) ErrorValue(content.Key) *Script { return m.errValue }

// Load implements content.Traits.
func (m *Manager) Load(key content.Key, h *content.Handle[Script]) {
	m.loads.Queue(newLoader(m, key, h))
}

// CanUnload implements content.Traits.
func (m *Manager) CanUnload(content.Key, *Script) bool { return true }

// MemoryUsage implements content.Traits.
func (m *Manager) MemoryUsage(v *Script) int { return v.MemoryUsage() }

// OnFileChange implements content.Traits: a changed script is reloaded in
// place, the old bytecode staying visible until the new load publishes.
func (m *Manager) OnFileChange(key content.Key, h *content.Handle[Script]) bool {
	m.Load(key, h.Clone())
	return true
}

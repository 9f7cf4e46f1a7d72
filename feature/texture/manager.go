package texture

import (
	"path"
	"strconv"
	"strings"

	"content-pipeline/content"
	"content-pipeline/core/cook"
	"content-pipeline/core/vfs"

	"go.uber.org/zap"
)

// Config holds configuration for texture content.
type Config struct {
	// MipLevels is how many progressively larger mip files each texture is
	// cooked into. 1 disables progressive loading.
	MipLevels int `mapstructure:"mip_levels" default:"1"`
	// LRULimitBytes caps resident texture memory; least recently used
	// textures are unloaded above it. 0 disables the cap.
	LRULimitBytes int `mapstructure:"lru_limit_bytes" default:"0"`
}

// Manager owns the texture store and implements content.Traits for textures.
// It carries the external collaborators texture loads need: the file system,
// the cooker and the render device.
type Manager struct {
	cfg    Config
	loads  *content.Manager
	fs     vfs.FileSystem
	cooker cook.Cooker
	device Device
	logger *zap.Logger

	store       *content.Store[Texture]
	placeholder *Texture
	errValue    *Texture
}

// NewManager wires a texture manager into the load manager. device may be
// nil for tools that only need decoded pixels.
func NewManager(cfg Config, loads *content.Manager, fs vfs.FileSystem, cooker cook.Cooker, device Device, logger *zap.Logger) *Manager {
	if cfg.MipLevels < 1 {
		cfg.MipLevels = 1
	}
	if cooker == nil {
		cooker = cook.Disabled{}
	}
	m := &Manager{
		cfg:         cfg,
		loads:       loads,
		fs:          fs,
		cooker:      cooker,
		device:      device,
		logger:      logger.Named("texture"),
		placeholder: solidTexture([]byte{0xff, 0xff, 0xff, 0xff}),
		errValue:    solidTexture([]byte{0xff, 0x00, 0xff, 0xff}),
	}
	m.store = content.NewStore[Texture](m, m.logger,
		content.WithLRULimit[Texture](cfg.LRULimitBytes))
	loads.Register(m.store)
	return m
}

// solidTexture builds a 1x1 sentinel.
func solidTexture(rgba []byte) *Texture {
	return &Texture{
		Width: 1, Height: 1,
		Format: FormatRGBA8,
		Levels: []Level{{Width: 1, Height: 1, Pixels: rgba}},
		ScaleU: 1, ScaleV: 1,
	}
}

// Store exposes the underlying content store.
func (m *Manager) Store() *content.Store[Texture] { return m.store }

// GetTexture returns a handle for the texture at the given cooked path.
func (m *Manager) GetTexture(p string) *content.Handle[Texture] {
	return m.store.GetContent(content.NewKey(content.TypeTexture, p))
}

// PlaceholderTexture returns the shared while-loading sentinel.
func (m *Manager) PlaceholderTexture() *Texture { return m.placeholder }

// ErrorTexture returns the shared failed-load sentinel.
func (m *Manager) ErrorTexture() *Texture { return m.errValue }

// Placeholder implements content.Traits.
func (m *Manager) Placeholder(content.Key) *Texture { return m.placeholder }

// ErrorValue implements content.Traits.
func (m *Manager) ErrorValue(content.Key) *Texture { return m.errValue }

// Load implements content.Traits.
func (m *Manager) Load(key content.Key, h *content.Handle[Texture]) {
	m.loads.Queue(newLoader(m, key, h))
}

// CanUnload implements content.Traits. Sentinels stay resident; everything
// else releases its device object and goes.
func (m *Manager) CanUnload(_ content.Key, v *Texture) bool {
	if v == m.placeholder || v == m.errValue {
		return true
	}
	if v != nil && v.Device != nil {
		v.Device.Release()
	}
	return true
}

// MemoryUsage implements content.Traits.
func (m *Manager) MemoryUsage(v *Texture) int { return v.MemoryUsage() }

// retireDevice releases the device object behind a value displaced from an
// entry. Sentinels never carry one.
func (m *Manager) retireDevice(old *Texture) {
	if old == nil || old == m.placeholder || old == m.errValue {
		return
	}
	if old.Device != nil {
		old.Device.Release()
	}
}

// OnFileChange implements content.Traits: a changed texture is reloaded in
// place, the old value staying visible until the new load publishes.
func (m *Manager) OnFileChange(key content.Key, h *content.Handle[Texture]) bool {
	m.Load(key, h.Clone())
	return true
}

// LevelPath returns the cooked artifact path of one mip level. Level 0 is
// the full resolution file itself; smaller levels carry a .mipN infix.
func LevelPath(p string, level int) string {
	if level <= 0 {
		return p
	}
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + ".mip" + strconv.Itoa(level) + ext
}

package cook

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"content-pipeline/core/vfs"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCannotCook is returned by a Func when the input is structurally not
// cookable, as opposed to a transient failure.
var ErrCannotCook = errors.New("cook: input cannot be cooked")

// Func transforms one source asset into its cooked artifact.
type Func func(source []byte) ([]byte, error)

// Rule binds a cooked artifact extension to the source extension it is
// produced from and the transform that produces it.
type Rule struct {
	SourceExt string
	Cook      Func
}

// Manager cooks artifacts on demand. Concurrent cooks of one artifact are
// collapsed into a single run; a sqlite database remembers source
// modification times so timestamp-checked requests short-circuit.
type Manager struct {
	cfg    Config
	source vfs.FileSystem
	out    vfs.FileSystem
	db     *Database
	rules  map[string]Rule
	group  singleflight.Group
	logger *zap.Logger
}

// NewManager builds a cook manager reading sources from source and writing
// artifacts through out. db may be nil, in which case every timestamp check
// falls back to comparing against the artifact's absence only.
func NewManager(cfg Config, source, out vfs.FileSystem, db *Database, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		source: source,
		out:    out,
		db:     db,
		rules:  make(map[string]Rule),
		logger: logger,
	}
}

// Register installs the rule for artifacts with extension ext (including the
// dot).
func (m *Manager) Register(ext string, rule Rule) {
	m.rules[strings.ToLower(ext)] = rule
}

// SupportsCooking implements Cooker.
func (m *Manager) SupportsCooking(ext string) bool {
	if !m.cfg.Enabled {
		return false
	}
	_, ok := m.rules[strings.ToLower(ext)]
	return ok
}

// Cook implements Cooker.
func (m *Manager) Cook(ctx context.Context, path string, checkTimestamp bool) Result {
	if !m.cfg.Enabled {
		return ResultDisabled
	}
	rule, ok := m.rules[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return ResultMissingSupport
	}

	v, _, _ := m.group.Do(path, func() (any, error) {
		return m.cook(ctx, path, rule, checkTimestamp), nil
	})
	return v.(Result)
}

func (m *Manager) cook(ctx context.Context, path string, rule Rule, checkTimestamp bool) Result {
	srcPath := strings.TrimSuffix(path, filepath.Ext(path)) + rule.SourceExt

	srcMod, err := m.source.ModTime(srcPath)
	if err != nil {
		return ResultSourceNotFound
	}

	if checkTimestamp && m.out.Exists(path) && m.db != nil && m.db.UpToDate(path, srcMod) {
		return ResultUpToDate
	}

	src, err := m.source.ReadAll(ctx, srcPath)
	if err != nil {
		m.logger.Warn("cook source unreadable", zap.String("source", srcPath), zap.Error(err))
		return ResultSourceNotFound
	}

	cooked, err := rule.Cook(src)
	if err != nil {
		if errors.Is(err, ErrCannotCook) {
			m.logger.Warn("asset not cookable", zap.String("path", path), zap.Error(err))
			return ResultCannotCook
		}
		m.logger.Warn("cook failed", zap.String("path", path), zap.Error(err))
		return ResultFailed
	}

	if err := m.out.WriteAll(path, cooked); err != nil {
		m.logger.Warn("cook write failed", zap.String("path", path), zap.Error(err))
		return ResultFailed
	}
	if m.db != nil {
		if err := m.db.Put(path, srcMod); err != nil {
			m.logger.Warn("cook database update failed", zap.String("path", path), zap.Error(err))
		}
	}

	m.logger.Info("cooked asset", zap.String("path", path), zap.String("source", srcPath))
	return ResultSuccess
}

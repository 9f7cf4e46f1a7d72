package texture

import (
	"context"
	"path"

	"content-pipeline/content"

	"go.uber.org/zap"
)

// Loader executes one texture key's multi-stage load. A mipped texture is
// cooked into one file per level; the loader runs the whole pipeline once
// per level starting with the smallest, and each completed level publishes a
// texture with one more level so the entry stays usable mid-chain.
type Loader struct {
	mgr    *Manager
	key    content.Key
	h      *content.Handle[Texture]
	ticket *content.LoaderTicket[Texture]
	ctx    context.Context
	logger *zap.Logger

	// level counts down from levels-1 (smallest mip) to 0 (full size).
	levels int
	level  int

	scratch     []byte
	decoded     []Level
	format      Format
	scaleU      float32
	scaleV      float32
	pending     DeviceTexture
	prefetched  bool
	triedRecook bool
}

func newLoader(m *Manager, key content.Key, h *content.Handle[Texture]) *Loader {
	l := &Loader{
		mgr:    m,
		key:    key,
		h:      h,
		ticket: h.Entry().AttachLoader(),
		ctx:    context.Background(),
		logger: m.logger.With(zap.Stringer("key", key)),
		levels: m.cfg.MipLevels,
	}
	l.level = l.levels - 1

	// Start pulling remote data immediately; a no-op for local files.
	l.prefetched = m.fs.NetworkPrefetch(l.ctx, l.levelPath())
	return l
}

// Key implements content.Loader.
func (l *Loader) Key() content.Key { return l.key }

// ExecuteStep implements content.Loader.
func (l *Loader) ExecuteStep(state content.State) content.State {
	switch state {
	case content.StateLoadingOnWorkerThread:
		return l.stepDecode()
	case content.StateLoadingOnRenderThread:
		return l.stepCreate()
	default:
		return l.stepRead()
	}
}

func (l *Loader) levelPath() string {
	return LevelPath(l.key.Path, l.level)
}

// stepRead runs on the file I/O executor: cancellation check, network guard,
// advisory cook, then the blocking read.
func (l *Loader) stepRead() content.State {
	if l.h.IsUnique() {
		return l.cancel()
	}

	p := l.levelPath()
	if l.mgr.fs.IsServicedByNetwork(p) {
		if !l.mgr.fs.IsNetworkFileIOEnabled() {
			// Required download will never arrive.
			l.logger.Warn("network file io disabled", zap.String("path", p))
			l.replace(l.mgr.errValue)
			return l.finish(content.StateError)
		}
		if !l.prefetched {
			l.prefetched = l.mgr.fs.NetworkPrefetch(l.ctx, p)
		}
		return content.StateWaitingForDependency
	}

	// Advisory: a failed cook just means the read below decides.
	l.mgr.cooker.Cook(l.ctx, p, !l.triedRecook)

	data, err := l.mgr.fs.ReadAll(l.ctx, p)
	if err != nil {
		l.logger.Warn("texture read failed", zap.String("path", p), zap.Error(err))
		return l.fail()
	}
	l.scratch = data
	return content.StateLoadingOnWorkerThread
}

// stepDecode runs on a worker: decompression and container validation.
func (l *Loader) stepDecode() content.State {
	if l.h.IsUnique() {
		return l.cancel()
	}

	lvl, format, scaleU, scaleV, err := DecodeLevel(l.scratch)
	l.scratch = nil
	if err != nil {
		l.logger.Warn("texture decode failed", zap.String("path", l.levelPath()), zap.Error(err))
		return l.fail()
	}

	if len(l.decoded) == 0 {
		l.format = format
		l.scaleU, l.scaleV = scaleU, scaleV
	} else if format != l.format {
		l.logger.Warn("mip chain format mismatch", zap.String("path", l.levelPath()))
		return l.fail()
	}
	// Each new level is larger than everything loaded so far.
	l.decoded = append([]Level{lvl}, l.decoded...)

	if l.mgr.device == nil {
		l.publish(nil)
		return l.advance()
	}

	if l.mgr.device.SupportsAsyncCreate() {
		tex, err := l.mgr.device.CreateTexture(l.desc(), l.decoded)
		if err == nil {
			// Publish still happens on the render executor so the device
			// object enters service there.
			l.pending = tex
			return content.StateLoadingOnRenderThread
		}
		l.logger.Warn("async texture create failed, retrying on render thread", zap.Error(err))
	}
	return content.StateLoadingOnRenderThread
}

// stepCreate runs on the render executor and must not block: create the
// device object if the worker didn't, then publish.
func (l *Loader) stepCreate() content.State {
	if l.pending == nil {
		tex, err := l.mgr.device.CreateTexture(l.desc(), l.decoded)
		if err != nil {
			l.logger.Warn("texture create failed", zap.Error(err))
			return l.fail()
		}
		l.pending = tex
	}

	// Creation cannot be interrupted, but its result can be discarded if
	// interest evaporated meanwhile.
	if l.h.IsUnique() {
		return l.cancel()
	}

	l.publish(l.pending)
	l.pending = nil
	return l.advance()
}

func (l *Loader) desc() TextureDesc {
	return TextureDesc{
		Width:  l.decoded[0].Width,
		Height: l.decoded[0].Height,
		Format: l.format,
		Levels: len(l.decoded),
	}
}

func (l *Loader) publish(dev DeviceTexture) {
	top := l.decoded[0]
	levels := make([]Level, len(l.decoded))
	copy(levels, l.decoded)
	l.replace(&Texture{
		Width:  top.Width,
		Height: top.Height,
		Format: l.format,
		Levels: levels,
		Device: dev,
		ScaleU: l.scaleU,
		ScaleV: l.scaleV,
	})
}

// replace publishes v and retires the device object behind the value it
// displaced. Every mip level publish and every hot reload creates a fresh
// device texture, so the displaced one has no remaining owner.
func (l *Loader) replace(v *Texture) {
	l.mgr.retireDevice(l.h.Entry().AtomicReplace(v))
}

// advance moves to the next larger mip level, or finishes the load after the
// last one.
func (l *Loader) advance() content.State {
	if l.level > 0 {
		l.level--
		l.triedRecook = false
		l.prefetched = l.mgr.fs.NetworkPrefetch(l.ctx, l.levelPath())
		return content.StateLoadingOnFileIOThread
	}
	return l.finish(content.StateLoaded)
}

// fail substitutes the error texture, after one forced recook attempt to
// recover from a stale local artifact.
func (l *Loader) fail() content.State {
	l.scratch = nil
	if !l.triedRecook && l.mgr.cooker.SupportsCooking(path.Ext(l.levelPath())) {
		l.triedRecook = true
		l.logger.Info("forcing recook after failed load", zap.String("path", l.levelPath()))
		return content.StateLoadingOnFileIOThread
	}
	l.replace(l.mgr.errValue)
	return l.finish(content.StateError)
}

// cancel ends the load with the entry's value untouched. Not an error.
func (l *Loader) cancel() content.State {
	l.scratch = nil
	if l.pending != nil {
		l.pending.Release()
		l.pending = nil
	}
	l.h.Entry().CancelLoad()
	return l.finish(content.StateLoaded)
}

// finish releases the loader's handle first and its ticket second, so
// waiters observing not-loading can rely on the reference already being
// gone.
func (l *Loader) finish(s content.State) content.State {
	l.h.Release()
	l.ticket.Release()
	return s
}

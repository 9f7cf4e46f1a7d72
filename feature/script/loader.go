package script

import (
	"context"
	"path"

	"content-pipeline/content"

	"go.uber.org/zap"
)

// Loader executes one script key's load: read on the file I/O executor,
// decompress and verify on a worker. Scripts have no render stage.
type Loader struct {
	mgr    *Manager
	key    content.Key
	h      *content.Handle[Script]
	ticket *content.LoaderTicket[Script]
	ctx    context.Context
	logger *zap.Logger

	scratch     []byte
	prefetched  bool
	triedRecook bool
}

func newLoader(m *Manager, key content.Key, h *content.Handle[Script]) *Loader {
	l := &Loader{
		mgr:    m,
		key:    key,
		h:      h,
		ticket: h.Entry().AttachLoader(),
		ctx:    context.Background(),
		logger: m.logger.With(zap.Stringer("key", key)),
	}
	l.prefetched = m.fs.NetworkPrefetch(l.ctx, key.Path)
	return l
}

// Key implements content.Loader.
func (l *Loader) Key() content.Key { return l.key }

// ExecuteStep implements content.Loader.
func (l *Loader) ExecuteStep(state content.State) content.State {
	if state == content.StateLoadingOnWorkerThread {
		return l.stepDecode()
	}
	return l.stepRead()
}

func (l *Loader) stepRead() content.State {
	if l.h.IsUnique() {
		return l.cancel()
	}

	p := l.key.Path
	if l.mgr.fs.IsServicedByNetwork(p) {
		if !l.mgr.fs.IsNetworkFileIOEnabled() {
			l.logger.Warn("network file io disabled", zap.String("path", p))
			l.h.Entry().AtomicReplace(l.mgr.errValue)
			return l.finish(content.StateError)
		}
		if !l.prefetched {
			l.prefetched = l.mgr.fs.NetworkPrefetch(l.ctx, p)
		}
		return content.StateWaitingForDependency
	}

	l.mgr.cooker.Cook(l.ctx, p, !l.triedRecook)

	data, err := l.mgr.fs.ReadAll(l.ctx, p)
	if err != nil {
		l.logger.Warn("script read failed", zap.String("path", p), zap.Error(err))
		return l.fail()
	}
	l.scratch = data
	return content.StateLoadingOnWorkerThread
}

func (l *Loader) stepDecode() content.State {
	if l.h.IsUnique() {
		return l.cancel()
	}

	bytecode, sum, err := Decode(l.scratch)
	l.scratch = nil
	if err != nil {
		l.logger.Warn("script decode failed", zap.String("path", l.key.Path), zap.Error(err))
		return l.fail()
	}

	l.h.Entry().AtomicReplace(&Script{Bytecode: bytecode, Checksum: sum})
	return l.finish(content.StateLoaded)
}

func (l *Loader) fail() content.State {
	l.scratch = nil
	if !l.triedRecook && l.mgr.cooker.SupportsCooking(path.Ext(l.key.Path)) {
		l.triedRecook = true
		l.logger.Info("forcing recook after failed load", zap.String("path", l.key.Path))
		return content.StateLoadingOnFileIOThread
	}
	l.h.Entry().AtomicReplace(l.mgr.errValue)
	return l.finish(content.StateError)
}

func (l *Loader) cancel() content.State {
	l.scratch = nil
	l.h.Entry().CancelLoad()
	return l.finish(content.StateLoaded)
}

func (l *Loader) finish(s content.State) content.State {
	l.h.Release()
	l.ticket.Release()
	return s
}

package content

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HotLoadMode controls how the Manager responds to buffered file changes.
type HotLoadMode int

const (
	// HotLoadNoAction buffers changes without acting on them.
	HotLoadNoAction HotLoadMode = iota
	// HotLoadAccept applies the currently buffered changes once, then
	// returns to HotLoadNoAction.
	HotLoadAccept
	// HotLoadReject discards the currently buffered changes once.
	HotLoadReject
	// HotLoadPermanentAccept applies changes as they arrive until the mode
	// is changed.
	HotLoadPermanentAccept
)

// tempSuppressWindow is how long a TempSuppressHotLoad call shields a key.
// Long enough to cover a save-then-notify sequence.
const tempSuppressWindow = 2 * time.Second

// Manager owns the pipeline's scheduler, the registered stores and the hot
// reload machinery. It is the single choke point for content loads; per-type
// managers queue their loaders here and register their stores for event
// fan-out.
type Manager struct {
	cfg    Config
	logger *zap.Logger
	sched  *Scheduler

	active      atomic.Int32
	allLoadWait atomic.Int32
	sensitive   atomic.Int32
	hotSuppress atomic.Int32

	mu           sync.Mutex
	stores       []BaseStore
	loadComplete []func(Key)
	hotMode      HotLoadMode

	notifier *ChangeNotifier

	// Buffered changes and per-key suppression. chMu guards both so Poll
	// and InjectChange may run from any goroutine (a ticker loop and an
	// HTTP handler, say).
	chMu          sync.Mutex
	changes       map[Key]*ChangeEvent
	suppressUntil map[Key]time.Time
}

// NewManager builds a manager and starts its scheduler. If cfg.Watch is set
// a change notifier is started over cfg.WatchRoot; a watch failure is
// reported but does not prevent loads.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	m := &Manager{
		cfg:           cfg,
		logger:        logger,
		changes:       make(map[Key]*ChangeEvent),
		suppressUntil: make(map[Key]time.Time),
	}
	m.sched = NewScheduler(cfg, logger, m.onLoaderDone)

	if cfg.Watch {
		n, err := NewChangeNotifier(cfg.WatchRoot, DefaultKeyResolver, logger)
		if err != nil {
			logger.Warn("hot reload watcher unavailable",
				zap.String("root", cfg.WatchRoot), zap.Error(err))
		} else {
			m.notifier = n
		}
	}
	return m
}

// Close stops the watcher and the scheduler. In-flight loads are waited for
// so entries are not left mid-publish.
func (m *Manager) Close() error {
	var err error
	if m.notifier != nil {
		err = m.notifier.Close()
	}
	m.WaitUntilAllLoadsAreFinished()
	m.sched.Close()
	return err
}

// Register adds a store to event fan-out (file changes, reload, unload).
func (m *Manager) Register(s BaseStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, s)
}

// OnLoadComplete registers a callback fired after each successful load.
// Callbacks run on the executor that finished the load and must be cheap.
func (m *Manager) OnLoadComplete(fn func(Key)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadComplete = append(m.loadComplete, fn)
}

// Queue starts a loader on the file I/O executor. Each load gets a
// correlation id carried through the scheduler's logging.
func (m *Manager) Queue(l Loader) {
	id := uuid.NewString()
	m.active.Add(1)
	m.logger.Debug("load queued",
		zap.Stringer("key", l.Key()),
		zap.String("load_id", id))
	m.sched.Enqueue(l, StateLoadingOnFileIOThread, id)
}

func (m *Manager) onLoaderDone(l Loader, final State) {
	if final == StateLoaded {
		m.mu.Lock()
		callbacks := make([]func(Key), len(m.loadComplete))
		copy(callbacks, m.loadComplete)
		m.mu.Unlock()
		for _, fn := range callbacks {
			fn(l.Key())
		}
	} else {
		m.logger.Warn("load failed", zap.Stringer("key", l.Key()))
	}
	m.active.Add(-1)
}

// HasActiveLoads reports whether any load is in flight.
func (m *Manager) HasActiveLoads() bool { return m.active.Load() > 0 }

// ActiveLoads returns the number of in-flight loads.
func (m *Manager) ActiveLoads() int { return int(m.active.Load()) }

// IsWaitingForLoads reports whether some goroutine is blocked in
// WaitUntilAllLoadsAreFinished.
func (m *Manager) IsWaitingForLoads() bool { return m.allLoadWait.Load() > 0 }

// BeginSensitiveContent marks the start of a load that patching and hot
// reload should not interleave with.
func (m *Manager) BeginSensitiveContent() { m.sensitive.Add(1) }

// EndSensitiveContent ends a sensitive load scope.
func (m *Manager) EndSensitiveContent() { m.sensitive.Add(-1) }

// IsSensitiveContentLoading reports whether a sensitive load is in flight.
func (m *Manager) IsSensitiveContentLoading() bool { return m.sensitive.Load() > 0 }

// BeginHotLoadSuppress opens a scope in which buffered changes are not
// applied.
func (m *Manager) BeginHotLoadSuppress() { m.hotSuppress.Add(1) }

// EndHotLoadSuppress closes a suppression scope.
func (m *Manager) EndHotLoadSuppress() { m.hotSuppress.Add(-1) }

// IsHotLoadingSuppressed reports whether hot reload is currently suppressed.
func (m *Manager) IsHotLoadingSuppressed() bool { return m.hotSuppress.Load() > 0 }

// SetHotLoadMode updates how Poll treats buffered changes.
func (m *Manager) SetHotLoadMode(mode HotLoadMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotMode = mode
}

// TempSuppressHotLoad shields key from hot reload for a short window.
// Intended for files the process itself is about to write.
func (m *Manager) TempSuppressHotLoad(key Key) {
	m.chMu.Lock()
	defer m.chMu.Unlock()
	m.suppressUntil[key] = time.Now().Add(tempSuppressWindow)
}

// WaitUntilAllLoadsAreFinished blocks until no load is in flight.
func (m *Manager) WaitUntilAllLoadsAreFinished() {
	m.allLoadWait.Add(1)
	defer m.allLoadWait.Add(-1)
	for m.active.Load() > 0 {
		runtime.Gosched()
	}
}

// IsFileLoaded reports whether any registered store holds an entry for key.
func (m *Manager) IsFileLoaded(key Key) bool {
	m.mu.Lock()
	stores := m.storesLocked()
	m.mu.Unlock()
	for _, s := range stores {
		if s.IsFileLoaded(key) {
			return true
		}
	}
	return false
}

// Reload asks every registered store to re-issue loads per the request.
func (m *Manager) Reload(r *Reload) {
	m.mu.Lock()
	stores := m.storesLocked()
	m.mu.Unlock()
	for _, s := range stores {
		s.Reload(r)
	}
}

// UnloadAll aggressively unloads until no store makes further progress.
func (m *Manager) UnloadAll() {
	last := -1
	for {
		remaining := 0
		m.mu.Lock()
		stores := m.storesLocked()
		m.mu.Unlock()
		for _, s := range stores {
			remaining += s.Unload()
		}
		if remaining == 0 || remaining == last {
			return
		}
		last = remaining
	}
}

// UnloadLRU gives each store one LRU pass. Returns true if anything was
// unloaded.
func (m *Manager) UnloadLRU() bool {
	m.mu.Lock()
	stores := m.storesLocked()
	m.mu.Unlock()
	out := false
	for _, s := range stores {
		if s.UnloadLRU() {
			out = true
		}
	}
	return out
}

func (m *Manager) storesLocked() []BaseStore {
	out := make([]BaseStore, len(m.stores))
	copy(out, m.stores)
	return out
}

// Poll drains buffered file changes and dispatches them according to the hot
// load mode. Safe to call from any goroutine.
func (m *Manager) Poll() {
	if m.notifier != nil {
		m.chMu.Lock()
	drain:
		for {
			select {
			case ev := <-m.notifier.Events():
				e := ev
				m.changes[ev.New] = &e
			default:
				break drain
			}
		}
		m.chMu.Unlock()
	}
	m.dispatchChanges()
}

// InjectChange buffers a change event as if the watcher had observed it.
// Useful for tools and tests driving hot reload without a file system.
func (m *Manager) InjectChange(ev ChangeEvent) {
	m.chMu.Lock()
	defer m.chMu.Unlock()
	e := ev
	m.changes[ev.New] = &e
}

func (m *Manager) dispatchChanges() {
	// Suppression defers the whole dispatch, one-shot modes included; an
	// Accept issued under suppression still fires on a later poll.
	if m.IsHotLoadingSuppressed() || m.IsSensitiveContentLoading() {
		return
	}

	m.chMu.Lock()
	if len(m.changes) == 0 {
		m.chMu.Unlock()
		return
	}
	m.chMu.Unlock()

	m.mu.Lock()
	mode := m.hotMode
	if mode == HotLoadAccept || mode == HotLoadReject {
		m.hotMode = HotLoadNoAction
	}
	stores := m.storesLocked()
	m.mu.Unlock()

	switch mode {
	case HotLoadReject:
		m.chMu.Lock()
		m.changes = make(map[Key]*ChangeEvent)
		m.chMu.Unlock()
		return
	case HotLoadAccept, HotLoadPermanentAccept:
	default:
		return
	}

	// Take the ready changes while holding chMu, dispatch without it: a
	// FileChange spawns loaders and must not run under the buffer lock.
	now := time.Now()
	m.chMu.Lock()
	ready := make([]*ChangeEvent, 0, len(m.changes))
	for key, ev := range m.changes {
		if until, ok := m.suppressUntil[key]; ok {
			if now.Before(until) {
				delete(m.changes, key)
				continue
			}
			delete(m.suppressUntil, key)
		}
		ready = append(ready, ev)
		// Changes to content nothing has loaded are simply dropped.
		delete(m.changes, key)
	}
	m.chMu.Unlock()

	for _, ev := range ready {
		handled := false
		for _, s := range stores {
			if s.FileChange(ev) {
				handled = true
				break
			}
		}
		if handled {
			m.logger.Info("hot reload triggered", zap.Stringer("key", ev.New))
		}
	}
}

// WaitUntilLoadIsFinished blocks until the load behind h reaches a terminal
// state. Long waits are reported once, with the elapsed time, since a
// blocking wait on the main or render goroutine is almost always a bug.
func WaitUntilLoadIsFinished[T any](m *Manager, h *Handle[T]) {
	if !h.IsLoading() {
		return
	}
	start := time.Now()
	warned := false
	for h.IsLoading() {
		runtime.Gosched()
		if !warned && time.Since(start) > time.Second {
			warned = true
			m.logger.Warn("blocking on content load",
				zap.Stringer("key", h.Key()),
				zap.Duration("elapsed", time.Since(start)))
		}
	}
}

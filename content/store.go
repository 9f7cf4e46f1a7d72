package content

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// BaseStore is the type-erased surface the Manager uses to fan events out to
// every registered store, regardless of content type.
type BaseStore interface {
	// IsFileLoaded reports whether the store has an entry for key.
	IsFileLoaded(key Key) bool
	// FileChange handles an on-disk change event. Returns true if handled.
	FileChange(ev *ChangeEvent) bool
	// Reload re-issues loads per the request.
	Reload(r *Reload)
	// Unload drops every unreferenced entry and returns how many remain.
	Unload() int
	// UnloadLRU unloads least recently used entries down to the configured
	// memory threshold. Returns true if anything was unloaded.
	UnloadLRU() bool
}

// Store is the key -> entry table for one content type. It guarantees
// exactly-once entry creation per key: concurrent GetContent calls for the
// same key observe the same entry and at most one loader is spawned.
type Store[T any] struct {
	traits Traits[T]
	logger *zap.Logger

	mu       sync.Mutex
	entries  map[Key]*Entry[T]
	lruHead  *Entry[T]
	lruTail  *Entry[T]
	lruOK    bool
	lruLimit int

	// unloadAll makes FileChange flush unreferenced entries after a handled
	// event, so stale values don't linger past a hot reload.
	unloadAll bool

	// sentinel backs handles for invalid keys. Permanent, never loaded.
	sentinel *Entry[T]
}

// StoreOption adjusts Store construction.
type StoreOption[T any] func(*Store[T])

// WithUnloadAll controls whether a handled file change flushes unreferenced
// entries. Defaults to true.
func WithUnloadAll[T any](v bool) StoreOption[T] {
	return func(s *Store[T]) { s.unloadAll = v }
}

// WithLRULimit sets the memory threshold in bytes above which UnloadLRU drops
// least recently used entries. Zero disables LRU unloading.
func WithLRULimit[T any](bytes int) StoreOption[T] {
	return func(s *Store[T]) { s.lruLimit = bytes }
}

// NewStore builds a store around the given traits.
func NewStore[T any](traits Traits[T], logger *zap.Logger, opts ...StoreOption[T]) *Store[T] {
	s := &Store[T]{
		traits:    traits,
		logger:    logger,
		entries:   make(map[Key]*Entry[T]),
		unloadAll: true,
		sentinel:  newEntry(Key{}, traits.Placeholder(Key{})),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetContent returns a handle for key, creating the entry and spawning a load
// on first miss. An invalid key resolves to the permanent sentinel entry with
// no load attempted. The caller owns the returned handle and must release it
// when done.
func (s *Store[T]) GetContent(key Key) *Handle[T] {
	if !key.IsValid() {
		return newHandle(s.sentinel)
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		h := newHandle(e)

		// A loader may have cancelled mid-load after every outside handle
		// went away. If the key is requested again before cleanup the entry
		// would otherwise stay unloaded forever, so re-issue the load.
		if e.wasLoadCancelled() {
			e.resetCancelledLoad()
			s.mu.Unlock()
			s.traits.Load(key, h.Clone())
			s.mu.Lock()
		}

		s.lruInsert(e)
		s.lruOK = false
		s.mu.Unlock()
		return h
	}

	e := newEntry(key, s.traits.Placeholder(key))
	s.entries[key] = e
	h := newHandle(e)
	s.mu.Unlock()

	// The loader owns its own handle; the mutex is not held across Load so
	// a synchronous first step cannot deadlock against the store.
	s.traits.Load(key, h.Clone())

	s.mu.Lock()
	s.lruInsert(e)
	s.lruOK = false
	s.mu.Unlock()
	return h
}

// SetContent publishes v under key without a load, creating the entry if
// needed. Entries populated this way are skipped by Reload and UnloadLRU
// since their value cannot be recovered from disk.
func (s *Store[T]) SetContent(key Key, v *T) *Handle[T] {
	if !key.IsValid() {
		s.sentinel.AtomicReplace(v)
		return newHandle(s.sentinel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = newEntry(key, v)
		s.entries[key] = e
		s.lruInsert(e)
		s.lruOK = false
	} else {
		e.AtomicReplace(v)
	}
	return newHandle(e)
}

// Apply invokes fn with a short-lived handle for every entry until fn returns
// true ("handled").
func (s *Store[T]) Apply(fn func(h *Handle[T]) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		h := newHandle(e)
		done := fn(h)
		h.Release()
		if done {
			return
		}
	}
}

// Len returns the number of live entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IsFileLoaded implements BaseStore.
func (s *Store[T]) IsFileLoaded(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// FileChange implements BaseStore. Changes to keys that are mid-load are
// acknowledged but ignored, so loads do not pile up on a file being written
// repeatedly.
func (s *Store[T]) FileChange(ev *ChangeEvent) bool {
	key := ev.New

	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if e.IsLoading() {
		return true
	}

	h := newHandle(e)
	handled := s.traits.OnFileChange(key, h)
	h.Release()

	if handled && s.unloadAll {
		s.Unload()
	}
	return handled
}

// Reload implements BaseStore: re-issues a load for every entry covered by
// the request that has loaded at least once. The old value stays published
// until the new load completes. Entries mid-load are skipped, as in
// FileChange: an entry never has two loaders attached.
func (s *Store[T]) Reload(r *Reload) {
	var toReload []*Entry[T]
	s.mu.Lock()
	for _, e := range s.entries {
		if e.IsLoading() || e.TotalLoads() == 0 || !r.Wants(e.key) {
			continue
		}
		toReload = append(toReload, e)
	}
	s.mu.Unlock()

	for _, e := range toReload {
		s.traits.Load(e.key, newHandle(e))
		r.Reloaded = append(r.Reloaded, e)
	}
}

// Unload implements BaseStore.
func (s *Store[T]) Unload() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unloadLocked()
}

func (s *Store[T]) unloadLocked() int {
	for key, e := range s.entries {
		// IsLoading must be sampled before the reference count: loaders
		// release their handle first and detach their ticket second, so an
		// entry observed not-loading with one reference is truly idle.
		loading := e.IsLoading()
		if e.refs.Load() != 1 {
			continue
		}
		if loading {
			continue
		}
		if !s.traits.CanUnload(key, e.Value()) {
			continue
		}
		s.lruRemove(e)
		s.lruOK = false
		delete(s.entries, key)
	}
	return len(s.entries)
}

// Clear repeatedly unloads until the store is empty, yielding between rounds
// to give in-flight loaders time to finish. Returns false if entries remain
// because outside references are still held.
func (s *Store[T]) Clear() bool {
	last := -1
	for {
		runtime.Gosched()
		remaining := s.Unload()
		if remaining == 0 {
			return true
		}
		if remaining == last {
			for _, e := range s.snapshot() {
				s.logger.Warn("content entry still referenced",
					zap.Stringer("key", e.Key()),
					zap.Int32("refs", e.refs.Load()))
			}
			return false
		}
		last = remaining
	}
}

func (s *Store[T]) snapshot() []*Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry[T], 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// UnloadLRU implements BaseStore. Walks entries oldest-first and unloads
// unreferenced ones until resident memory fits under the configured limit.
func (s *Store[T]) UnloadLRU() bool {
	if s.lruLimit <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lruOK {
		return false
	}

	// Walk newest to oldest accumulating memory; everything past the point
	// where the budget is exceeded is a candidate.
	total := 0
	var cutoff *Entry[T]
	for e := s.lruHead; e != nil; e = e.lruNext {
		v := e.Value()
		if v == nil {
			continue
		}
		total += s.traits.MemoryUsage(v)
		if total > s.lruLimit {
			cutoff = e
			break
		}
	}
	if cutoff == nil {
		s.lruOK = true
		return false
	}

	// Everything from the cutoff to the tail is over budget and a candidate.
	unloaded := false
	for e := s.lruTail; e != nil; {
		victim := e
		e = e.lruPrev

		switch {
		// Content set through SetContent has no load history and may not be
		// recoverable; keep it resident.
		case victim.TotalLoads() == 0:
		case victim.refs.Load() != 1:
			// Actively referenced; treat as recently used.
			s.lruInsert(victim)
			s.lruOK = false
		case victim.IsLoading() || !s.traits.CanUnload(victim.key, victim.Value()):
		default:
			s.lruRemove(victim)
			s.lruOK = false
			delete(s.entries, victim.key)
			unloaded = true
		}

		if victim == cutoff {
			break
		}
	}
	return unloaded
}

// SetLRULimit updates the LRU memory threshold in bytes. Zero disables LRU
// unloading.
func (s *Store[T]) SetLRULimit(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lruLimit = bytes
	s.lruOK = false
}

// lruInsert moves e to the head of the LRU list. Caller holds s.mu.
func (s *Store[T]) lruInsert(e *Entry[T]) {
	s.lruRemove(e)
	e.lruNext = s.lruHead
	if s.lruHead != nil {
		s.lruHead.lruPrev = e
	}
	s.lruHead = e
	if s.lruTail == nil {
		s.lruTail = e
	}
}

// lruRemove unlinks e from the LRU list if present. Caller holds s.mu.
func (s *Store[T]) lruRemove(e *Entry[T]) {
	if e.lruPrev != nil {
		e.lruPrev.lruNext = e.lruNext
	} else if s.lruHead == e {
		s.lruHead = e.lruNext
	}
	if e.lruNext != nil {
		e.lruNext.lruPrev = e.lruPrev
	} else if s.lruTail == e {
		s.lruTail = e.lruPrev
	}
	e.lruPrev = nil
	e.lruNext = nil
}

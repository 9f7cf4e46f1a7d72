package content

import "sync/atomic"

// Entry is the reference counted cell holding the currently published value
// for one Key. The owning Store creates an entry on first request and always
// keeps one permanent reference, so an entry is never dropped while a loader
// targets it. The published value is only ever mutated through AtomicReplace;
// everything else on the entry is bookkeeping.
type Entry[T any] struct {
	key        Key
	value      atomic.Pointer[T]
	refs       atomic.Int32 // store's permanent ref + one per live Handle
	loaders    atomic.Int32
	totalLoads atomic.Uint32
	cancelled  atomic.Bool

	// LRU links, guarded by the owning Store's mutex.
	lruPrev, lruNext *Entry[T]
}

func newEntry[T any](key Key, v *T) *Entry[T] {
	e := &Entry[T]{key: key}
	e.value.Store(v)
	e.refs.Store(1)
	return e
}

// Key returns the key this entry was created for.
func (e *Entry[T]) Key() Key { return e.key }

// Value returns the currently published value: the placeholder until the
// first load completes, then whatever the last AtomicReplace installed.
func (e *Entry[T]) Value() *T { return e.value.Load() }

// AtomicReplace publishes v as the entry's value and returns the value it
// displaced. This is the sole mutation path: a concurrent reader observes
// either the previous value or v in full, never a mix. The displaced value
// comes back exactly once, so a caller owning external resources behind it
// (a device texture, say) can retire them without double frees.
func (e *Entry[T]) AtomicReplace(v *T) *T { return e.value.Swap(v) }

// IsLoading reports whether at least one loader is attached to the entry.
func (e *Entry[T]) IsLoading() bool { return e.loaders.Load() > 0 }

// TotalLoads returns how many loads have ever been attached. Entries that
// were populated through SetContent and never loaded report zero; reload and
// LRU unloading skip those since their value is not recoverable from disk.
func (e *Entry[T]) TotalLoads() uint32 { return e.totalLoads.Load() }

// CancelLoad records that the in-flight load bailed out because the entry had
// become unique. The Store re-issues the load if the key is requested again
// before cleanup.
func (e *Entry[T]) CancelLoad() { e.cancelled.Store(true) }

func (e *Entry[T]) wasLoadCancelled() bool { return e.cancelled.Load() }

func (e *Entry[T]) resetCancelledLoad() { e.cancelled.Store(false) }

// AttachLoader registers a loader against the entry and returns the ticket
// that detaches it. The ticket releases at most once no matter how many
// paths call it, so the loader count cannot underflow.
func (e *Entry[T]) AttachLoader() *LoaderTicket[T] {
	e.totalLoads.Add(1)
	e.loaders.Add(1)
	return &LoaderTicket[T]{entry: e}
}

// LoaderTicket detaches a loader from its entry exactly once.
type LoaderTicket[T any] struct {
	entry    *Entry[T]
	released atomic.Bool
}

// Release detaches the loader. Further calls are no-ops.
func (t *LoaderTicket[T]) Release() {
	if t == nil || t.entry == nil {
		return
	}
	if t.released.CompareAndSwap(false, true) {
		t.entry.loaders.Add(-1)
	}
}

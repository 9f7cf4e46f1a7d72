package content

import "sync/atomic"

// Handle is a shared client reference to an Entry. Many handles may exist per
// key; each one contributes a single reference to the entry until released.
// The zero Handle is valid and behaves like a handle to nothing.
type Handle[T any] struct {
	entry    *Entry[T]
	released atomic.Bool
}

func newHandle[T any](e *Entry[T]) *Handle[T] {
	e.refs.Add(1)
	return &Handle[T]{entry: e}
}

// IsValid reports whether the handle references an entry.
func (h *Handle[T]) IsValid() bool { return h != nil && h.entry != nil }

// Key returns the referenced entry's key, or the zero Key.
func (h *Handle[T]) Key() Key {
	if !h.IsValid() {
		return Key{}
	}
	return h.entry.key
}

// Value returns the currently published value: the type's placeholder until
// the load completes, the loaded value after, or the error value after a
// failed load. Returns nil for an invalid handle.
func (h *Handle[T]) Value() *T {
	if !h.IsValid() {
		return nil
	}
	return h.entry.Value()
}

// Entry exposes the underlying entry. Intended for loader implementations
// that need AtomicReplace and cancellation bookkeeping.
func (h *Handle[T]) Entry() *Entry[T] {
	if h == nil {
		return nil
	}
	return h.entry
}

// IsLoading reports whether a loader is currently attached to the entry.
func (h *Handle[T]) IsLoading() bool {
	return h.IsValid() && h.entry.IsLoading()
}

// IsUnique reports whether only the owning Store and this handle reference
// the entry. It is the pipeline's cancellation signal: loaders sample it at
// step boundaries and bail out when it turns true. The check is deliberately
// not synchronized with handle creation; a new handle attaching between the
// check and the cancel costs at most one extra load.
func (h *Handle[T]) IsUnique() bool {
	return h.IsValid() && h.entry.refs.Load() == 2
}

// Clone returns a new handle referencing the same entry.
func (h *Handle[T]) Clone() *Handle[T] {
	if !h.IsValid() {
		return &Handle[T]{}
	}
	return newHandle(h.entry)
}

// Release drops this handle's reference. Releasing more than once, or
// releasing an invalid handle, is a no-op. The handle may still read the
// published value afterwards; it simply no longer keeps the entry resident.
func (h *Handle[T]) Release() {
	if !h.IsValid() {
		return
	}
	if h.released.CompareAndSwap(false, true) {
		h.entry.refs.Add(-1)
	}
}

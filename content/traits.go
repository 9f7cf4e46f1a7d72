package content

// Traits supplies the type specific behavior a Store needs: sentinel values,
// how to start a load and policy hooks for unloading and hot reload. A per
// type manager (texture, script, ...) implements Traits and owns the external
// collaborators the loads need (file system, cooker, device).
type Traits[T any] interface {
	// Placeholder returns the value published while key is loading. It must
	// be safe to share between entries.
	Placeholder(key Key) *T

	// ErrorValue returns the value substituted after a failed load.
	ErrorValue(key Key) *T

	// Load starts an asynchronous load of key into the entry referenced by h.
	// The implementation takes ownership of h: it must release it when the
	// load reaches a terminal state.
	Load(key Key, h *Handle[T])

	// CanUnload reports whether the currently published value may be dropped
	// from memory right now.
	CanUnload(key Key, v *T) bool

	// MemoryUsage returns the approximate resident size of v in bytes, used
	// by LRU unloading.
	MemoryUsage(v *T) int

	// OnFileChange reacts to an on-disk change of key, typically by starting
	// a reload. Returning true marks the event handled. h is only valid for
	// the duration of the call; implementations that load must clone it.
	OnFileChange(key Key, h *Handle[T]) bool
}

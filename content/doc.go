// Package content implements the engine's asynchronous content loading
// pipeline: a reference counted cache of keyed assets populated by transient
// state machine workers scheduled across execution affinities.
//
// # Components
//
//   - Key: value identifying an asset and its kind.
//   - Entry: reference counted cell holding a key's currently published
//     value (or placeholder), a loader count and cancellation bookkeeping.
//   - Handle: shared client reference to an entry; IsUnique is the
//     pipeline's cooperative cancellation signal.
//   - Store: key -> entry table with exactly-once entry creation, reload,
//     unload and LRU eviction.
//   - Loader: per-key worker implementing the multi stage state machine.
//   - Scheduler: re-queues each loader onto the executor its current state
//     demands (file I/O, worker pool, render).
//   - Manager: load choke point, wait primitives and hot reload dispatch.
//
// # Flow
//
// A client calls Store.GetContent(key). On first miss the store creates an
// entry published with the type's placeholder and the type's Traits queue a
// loader on the Manager. The Scheduler steps the loader through file I/O,
// CPU decode and device creation stages until a terminal state; the terminal
// transition performs one atomic publish into the entry and releases the
// loader's reference. Every handle holder then observes the new value.
//
// # Cancellation
//
// Cancellation is cooperative and sampled: at each I/O boundary a loader
// checks Handle.IsUnique and, when nothing else references the entry,
// releases its resources and finishes with the value unchanged. Cancellation
// is not an error. The check-then-cancel window is intentionally racy; a
// handle attaching in between costs at most one completed load.
package content

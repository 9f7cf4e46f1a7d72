package content

// State identifies the stage an in-flight load is currently in. A Loader
// receives its current state from the Scheduler on every step and returns the
// state it wants to move to; it must branch on the passed state only.
type State int32

const (
	// StateNotLoaded is the initial state of an entry before any load.
	StateNotLoaded State = iota
	// StateLoadingOnFileIOThread covers synchronous disk reads and the
	// cook-on-demand call. Blocking is allowed here.
	StateLoadingOnFileIOThread
	// StateLoadingOnWorkerThread covers CPU decode and decompression.
	StateLoadingOnWorkerThread
	// StateLoadingOnRenderThread covers device object creation. Steps in this
	// state share the render executor with frame work and must not block.
	StateLoadingOnRenderThread
	// StateWaitingForDependency is a low priority variant of the file I/O
	// state: the loader is parked until an external dependency (typically a
	// network download) makes progress. The Scheduler re-queues it after a
	// poll interval instead of immediately.
	StateWaitingForDependency
	// StateLoaded is terminal: the load finished or was cancelled.
	StateLoaded
	// StateError is terminal: the load failed and the error value was
	// substituted into the entry.
	StateError
)

// Terminal reports whether s ends the load. A terminal state is never
// re-scheduled.
func (s State) Terminal() bool {
	return s == StateLoaded || s == StateError
}

// Affinity identifies the executor a load step must run on.
type Affinity int

const (
	// AffinityFileIO is the single file I/O goroutine.
	AffinityFileIO Affinity = iota
	// AffinityWorker is the N-way worker pool.
	AffinityWorker
	// AffinityRender is the single render executor.
	AffinityRender
)

// Affinity returns the executor the state's steps must run on. Terminal
// states have no affinity; callers must check Terminal first.
func (s State) Affinity() Affinity {
	switch s {
	case StateLoadingOnWorkerThread:
		return AffinityWorker
	case StateLoadingOnRenderThread:
		return AffinityRender
	default:
		return AffinityFileIO
	}
}

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoadingOnFileIOThread:
		return "loading_on_file_io"
	case StateLoadingOnWorkerThread:
		return "loading_on_worker"
	case StateLoadingOnRenderThread:
		return "loading_on_render"
	case StateWaitingForDependency:
		return "waiting_for_dependency"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

package content

// Loader is a transient worker executing one key's multi-stage load. The
// Scheduler repeatedly invokes ExecuteStep on the executor demanded by the
// current state's affinity until a terminal state comes back.
//
// Implementations must follow the step contract:
//   - branch on the state passed in, not on self-maintained state
//   - sample Handle.IsUnique at I/O boundaries and cancel (release scratch,
//     return StateLoaded, value untouched) when it turns true
//   - block only where the affinity tolerates it; render steps must not block
//   - on unrecoverable failure AtomicReplace the error value and return
//     StateError
//   - on success AtomicReplace the new value and release the handle and
//     ticket before returning StateLoaded, so waiters unblock promptly
type Loader interface {
	Key() Key
	ExecuteStep(state State) State
}

package content

import "time"

// ChangeEvent describes an on-disk change of a content file, produced by the
// ChangeNotifier and dispatched to stores during Manager.Poll. Old and New
// differ only for renames.
type ChangeEvent struct {
	Old Key
	New Key
	At  time.Time
}

// LoadWatcher is a read-only view of a reloading entry, exposed through
// Reload so callers can track completion without holding a typed handle.
type LoadWatcher interface {
	Key() Key
	IsLoading() bool
}

// Reload describes a reload request. Keys optionally restricts the reload to
// a subset; empty means every loaded entry. Stores append a watcher for each
// load they actually re-issued.
type Reload struct {
	Keys     []Key
	Reloaded []LoadWatcher
}

// Wants reports whether the request covers key.
func (r *Reload) Wants(key Key) bool {
	if len(r.Keys) == 0 {
		return true
	}
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// IsFinished reports whether every re-issued load has reached a terminal
// state.
func (r *Reload) IsFinished() bool {
	for _, w := range r.Reloaded {
		if w.IsLoading() {
			return false
		}
	}
	return true
}

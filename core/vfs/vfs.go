package vfs

import (
	"context"
	"errors"
	"time"
)

// ErrNotExist is returned by ReadAll when the file is absent everywhere the
// file system looks.
var ErrNotExist = errors.New("vfs: file does not exist")

// ErrNetworkDisabled is returned when a file is only reachable over the
// network and network file I/O is globally disabled.
var ErrNetworkDisabled = errors.New("vfs: network file io disabled")

// FileSystem abstracts where cooked content lives. All methods are
// synchronous and safe for concurrent use; loaders call them from the file
// I/O executor.
type FileSystem interface {
	// Exists reports whether path is readable right now.
	Exists(path string) bool

	// ModTime returns the modification time of path.
	ModTime(path string) (time.Time, error)

	// ReadAll returns the full contents of path.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// WriteAll replaces the contents of path, creating parents as needed.
	// Used by the cooker to publish artifacts.
	WriteAll(path string, data []byte) error

	// IsServicedByNetwork reports whether path must come over the network
	// before it can be read locally. Loaders park at low priority while this
	// is true instead of issuing a blocking read.
	IsServicedByNetwork(path string) bool

	// IsNetworkFileIOEnabled reports whether network retrieval is currently
	// allowed. A network serviced path with this false will never load.
	IsNetworkFileIOEnabled() bool

	// NetworkPrefetch starts retrieval of path in the background. Returns
	// true if the prefetch is running or the file is already local. A no-op
	// for purely local file systems.
	NetworkPrefetch(ctx context.Context, path string) bool
}

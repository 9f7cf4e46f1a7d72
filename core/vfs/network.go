package vfs

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Network layers an object storage bucket over a local cache directory.
// Reads are always served from the cache; NetworkPrefetch pulls remote
// objects into it in the background. A path counts as serviced by the
// network exactly until its cached copy exists, which is the condition
// loaders poll before reading.
type Network struct {
	client  ObjectClient
	bucket  string
	cache   *Local
	enabled atomic.Bool
	group   singleflight.Group
	logger  *zap.Logger
}

// NewNetwork builds a network file system over cacheDir. The cache directory
// is used as-is; stale entries are only replaced by explicit prefetches.
func NewNetwork(client ObjectClient, bucket, cacheDir string, logger *zap.Logger) *Network {
	n := &Network{
		client: client,
		bucket: bucket,
		cache:  NewLocal(cacheDir),
		logger: logger,
	}
	n.enabled.Store(true)
	return n
}

// SetNetworkEnabled toggles network retrieval globally. Disabling mid-flight
// makes pending network loads fail over to their error value.
func (n *Network) SetNetworkEnabled(v bool) { n.enabled.Store(v) }

// IsNetworkFileIOEnabled implements FileSystem.
func (n *Network) IsNetworkFileIOEnabled() bool { return n.enabled.Load() }

// Exists implements FileSystem: true if cached locally or present remotely.
func (n *Network) Exists(path string) bool {
	if n.cache.Exists(path) {
		return true
	}
	if !n.enabled.Load() {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := n.client.StatObject(ctx, n.bucket, path, minio.StatObjectOptions{})
	return err == nil
}

// ModTime implements FileSystem, against the cached copy.
func (n *Network) ModTime(path string) (time.Time, error) {
	return n.cache.ModTime(path)
}

// IsServicedByNetwork implements FileSystem.
func (n *Network) IsServicedByNetwork(path string) bool {
	return !n.cache.Exists(path)
}

// ReadAll implements FileSystem. Cached files are read directly; otherwise
// the object is fetched first, deduplicated per path, then read.
func (n *Network) ReadAll(ctx context.Context, path string) ([]byte, error) {
	if n.cache.Exists(path) {
		return n.cache.ReadAll(ctx, path)
	}
	if !n.enabled.Load() {
		return nil, fmt.Errorf("%w: %s", ErrNetworkDisabled, path)
	}
	if err := n.fetch(ctx, path); err != nil {
		return nil, err
	}
	return n.cache.ReadAll(ctx, path)
}

// WriteAll implements FileSystem, writing into the local cache only.
func (n *Network) WriteAll(path string, data []byte) error {
	return n.cache.WriteAll(path, data)
}

// NetworkPrefetch implements FileSystem: kicks off a background download of
// path into the cache. Concurrent prefetches of one path share a single
// download. Returns false if network I/O is disabled.
func (n *Network) NetworkPrefetch(ctx context.Context, path string) bool {
	if n.cache.Exists(path) {
		return true
	}
	if !n.enabled.Load() {
		return false
	}
	go func() {
		if err := n.fetch(ctx, path); err != nil {
			n.logger.Warn("prefetch failed", zap.String("path", path), zap.Error(err))
		}
	}()
	return true
}

func (n *Network) fetch(ctx context.Context, path string) error {
	_, err, _ := n.group.Do(path, func() (any, error) {
		obj, err := n.client.GetObject(ctx, n.bucket, path, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}
		defer obj.Close()

		data, err := io.ReadAll(obj)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", path, err)
		}
		return nil, n.cache.WriteAll(path, data)
	})
	return err
}
